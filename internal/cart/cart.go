// Package cart contient le panier en mémoire : une liste ordonnée de lignes
// (produit + quantité) qui ne change qu'à travers les opérations ci-dessous.
package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Product est l'instantané du produit catalogue nécessaire pour créer une ligne.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description"`
}

// LineItem est une ligne du panier. Quantity vaut toujours au moins 1.
type LineItem struct {
	ProductID   string          `json:"productId"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	ImageURL    string          `json:"imageUrl"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
}

// Subtotal renvoie price * quantity arrondi au centime.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity))).Round(2)
}

// Cart est le conteneur d'état du panier. La valeur zéro est un panier vide.
// Un Cart n'est pas protégé pour un usage concurrent : chaque mutation est
// appliquée par un seul propriétaire (requête HTTP ou transaction Redis).
type Cart struct {
	items []LineItem
}

// New reconstruit un panier à partir de lignes persistées. Les doublons sont
// fusionnés et les quantités < 1 ignorées.
func New(items []LineItem) *Cart {
	c := &Cart{}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity < 1 {
			continue
		}
		if i := c.index(it.ProductID); i >= 0 {
			c.items[i].Quantity += it.Quantity
			continue
		}
		c.items = append(c.items, it)
	}
	return c
}

func (c *Cart) index(productID string) int {
	for i := range c.items {
		if c.items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Items renvoie une copie des lignes dans l'ordre d'ajout.
func (c *Cart) Items() []LineItem {
	out := make([]LineItem, len(c.items))
	copy(out, c.items)
	return out
}

// Find renvoie la ligne du produit, si elle existe.
func (c *Cart) Find(productID string) (LineItem, bool) {
	if i := c.index(productID); i >= 0 {
		return c.items[i], true
	}
	return LineItem{}, false
}

// Len renvoie le nombre de lignes distinctes.
func (c *Cart) Len() int { return len(c.items) }

// Quantity renvoie le nombre total d'unités.
func (c *Cart) Quantity() int {
	n := 0
	for _, it := range c.items {
		n += it.Quantity
	}
	return n
}

// Total renvoie la somme des sous-totaux.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.items {
		total = total.Add(it.Subtotal())
	}
	return total
}

// IsEmpty indique si le panier ne contient aucune ligne.
func (c *Cart) IsEmpty() bool { return len(c.items) == 0 }

// Add ajoute le produit avec une quantité de 1. Si le produit est déjà
// présent, rien ne change : il faut passer par Increment.
func (c *Cart) Add(p Product) []LineItem {
	if c.index(p.ID) < 0 {
		c.items = append(c.items, LineItem{
			ProductID:   p.ID,
			Name:        p.Name,
			Price:       p.Price,
			ImageURL:    p.ImageURL,
			Description: p.Description,
			Quantity:    1,
		})
	}
	return c.Items()
}

// Increment augmente la quantité de 1, ou se comporte comme Add si le
// produit est absent.
func (c *Cart) Increment(p Product) []LineItem {
	i := c.index(p.ID)
	if i < 0 {
		return c.Add(p)
	}
	c.items[i].Quantity++
	return c.Items()
}

// Decrement diminue la quantité de 1. Une ligne à 1 est supprimée.
func (c *Cart) Decrement(productID string) []LineItem {
	i := c.index(productID)
	if i < 0 {
		return c.Items()
	}
	if c.items[i].Quantity > 1 {
		c.items[i].Quantity--
		return c.Items()
	}
	return c.Remove(productID)
}

// Remove supprime la ligne du produit. Sans effet si elle est absente.
func (c *Cart) Remove(productID string) []LineItem {
	i := c.index(productID)
	if i < 0 {
		return c.Items()
	}
	c.items = append(c.items[:i:i], c.items[i+1:]...)
	return c.Items()
}

// Subtract retire les quantités déjà commandées. Une ligne qui tombe à 0 est
// supprimée ; ce qui a été ajouté depuis reste dans le panier.
func (c *Cart) Subtract(ordered []LineItem) []LineItem {
	for _, o := range ordered {
		i := c.index(o.ProductID)
		if i < 0 {
			continue
		}
		if c.items[i].Quantity > o.Quantity {
			c.items[i].Quantity -= o.Quantity
			continue
		}
		c.Remove(o.ProductID)
	}
	return c.Items()
}

// Clear vide le panier (appelé après une commande réussie).
func (c *Cart) Clear() []LineItem {
	c.items = nil
	return c.Items()
}

func (c *Cart) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Items())
}

func (c *Cart) UnmarshalJSON(data []byte) error {
	var items []LineItem
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	*c = *New(items)
	return nil
}
