package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderPending   OrderStatus = "PENDING"
	OrderApproved  OrderStatus = "APPROVED"
	OrderRejected  OrderStatus = "REJECTED"
	OrderCancelled OrderStatus = "CANCELLED"
	OrderPaid      OrderStatus = "PAID"
)

// transitions liste les passages autorisés. Les statuts absents sont terminaux.
var transitions = map[OrderStatus][]OrderStatus{
	OrderPending:  {OrderApproved, OrderRejected, OrderCancelled},
	OrderApproved: {OrderPaid, OrderCancelled},
}

// ParseOrderStatus accepte n'importe quelle casse ("approved", "Approved"...).
func ParseOrderStatus(s string) (OrderStatus, error) {
	st := OrderStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case OrderPending, OrderApproved, OrderRejected, OrderCancelled, OrderPaid:
		return st, nil
	}
	return "", fmt.Errorf("statut de commande invalide: %q", s)
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s OrderStatus) IsTerminal() bool {
	return len(transitions[s]) == 0
}

type Order struct {
	ID         string          `json:"id"`
	UserID     string          `json:"userId"`
	Status     OrderStatus     `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	Items      []OrderItem     `json:"orderItemList"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// OrderItem : Price est le prix de la ligne (prix unitaire * quantité).
type OrderItem struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	ImageURL    string          `json:"imageUrl,omitempty"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// HasItem indique si la commande contient la ligne itemID.
func (o Order) HasItem(itemID string) bool {
	for _, it := range o.Items {
		if it.ID == itemID {
			return true
		}
	}
	return false
}

// OrderSummary est la vue commande attachée à chaque ligne listée.
type OrderSummary struct {
	ID         string          `json:"id"`
	Status     OrderStatus     `json:"status"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// OrderItemView est une ligne aplatie avec sa commande et son client.
type OrderItemView struct {
	OrderItem
	UserID string       `json:"userId"`
	Order  OrderSummary `json:"order"`
}

// Flatten renvoie les lignes de la commande sous forme de vues.
func (o Order) Flatten() []OrderItemView {
	summary := OrderSummary{ID: o.ID, Status: o.Status, TotalPrice: o.TotalPrice, CreatedAt: o.CreatedAt}
	out := make([]OrderItemView, 0, len(o.Items))
	for _, it := range o.Items {
		out = append(out, OrderItemView{OrderItem: it, UserID: o.UserID, Order: summary})
	}
	return out
}
