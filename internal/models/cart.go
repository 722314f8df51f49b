package models

import (
	"phoneshop_back_end/internal/cart"

	"github.com/shopspring/decimal"
)

// CartView est la représentation HTTP / WebSocket d'un panier.
type CartView struct {
	Items []cart.LineItem `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

func NewCartView(c *cart.Cart) CartView {
	return CartView{Items: c.Items(), Total: c.Total(), Count: c.Len()}
}

// OrderItemRequest est une ligne demandée à la création d'une commande.
type OrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

type OrderRequest struct {
	Items []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
}
