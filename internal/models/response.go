package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Response est l'enveloppe JSON commune à toutes les réponses de l'API.
// Les champs vides sont omis.
type Response struct {
	Status    int       `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	Token          string `json:"token,omitempty"`
	Role           Role   `json:"role,omitempty"`
	ExpirationTime string `json:"expirationTime,omitempty"`

	TotalPage    int   `json:"totalPage,omitempty"`
	TotalElement int64 `json:"totalElement,omitempty"`

	Address  *Address  `json:"address,omitempty"`
	User     *User     `json:"user,omitempty"`
	UserList []User    `json:"userList,omitempty"`
	Category *Category `json:"category,omitempty"`

	CategoryList []Category      `json:"categoryList,omitempty"`
	Product      *Product        `json:"product,omitempty"`
	ProductList  []Product       `json:"productList,omitempty"`
	OrderItem    *OrderItemView  `json:"orderItem,omitempty"`
	OrderItems   []OrderItemView `json:"orderItemList,omitempty"`
	Order        *Order          `json:"order,omitempty"`
	OrderList    []Order         `json:"orderList,omitempty"`
	Payment      *Payment        `json:"payment,omitempty"`
	PaymentList  []Payment       `json:"paymentList,omitempty"`

	Revenue *decimal.Decimal `json:"revenue,omitempty"`
}

// NewResponse prépare une enveloppe horodatée.
func NewResponse(status int, message string) Response {
	return Response{Status: status, Message: message, Timestamp: time.Now()}
}
