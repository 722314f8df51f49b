package models

import (
	"time"

	"github.com/shopspring/decimal"

	"phoneshop_back_end/internal/cart"
)

type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	ImageURL    string          `json:"imageUrl"`
	Price       decimal.Decimal `json:"price"`
	CategoryID  string          `json:"categoryId"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// ProductUpdate ne contient que les champs modifiables. Un champ vide n'est pas modifié.
type ProductUpdate struct {
	CategoryID  string
	Name        string
	Description string
	ImageURL    string
	Price       *decimal.Decimal
}

// CartProduct renvoie l'instantané utilisé par les lignes du panier.
func (p Product) CartProduct() cart.Product {
	return cart.Product{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Description: p.Description,
	}
}
