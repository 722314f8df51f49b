package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"phoneshop_back_end/internal/cart"
	"phoneshop_back_end/internal/models"
	"phoneshop_back_end/internal/services"
)

type Catalog interface {
	CreateCategory(ctx context.Context, name string) (*models.Category, error)
	UpdateCategory(ctx context.Context, id, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, id string) error
	GetCategory(ctx context.Context, id string) (*models.Category, error)
	ListCategories(ctx context.Context) ([]models.Category, error)

	CreateProduct(ctx context.Context, in models.ProductUpdate, image *services.ImageUpload) (*models.Product, error)
	UpdateProduct(ctx context.Context, id string, in models.ProductUpdate, image *services.ImageUpload) (*models.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
	ListProductsByCategory(ctx context.Context, categoryID string) ([]models.Product, error)
	SearchProducts(ctx context.Context, query string) ([]models.Product, error)
}

type Carts interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	Add(ctx context.Context, userID, productID string) (*cart.Cart, error)
	Increment(ctx context.Context, userID, productID string) (*cart.Cart, error)
	Decrement(ctx context.Context, userID, productID string) (*cart.Cart, error)
	Remove(ctx context.Context, userID, productID string) (*cart.Cart, error)
	Clear(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, userID string) *redis.PubSub
}

type Orders interface {
	PlaceOrder(ctx context.Context, actor services.Actor, items []models.OrderItemRequest) (*models.Order, error)
	Checkout(ctx context.Context, actor services.Actor) (*models.Order, error)
	ApproveOrder(ctx context.Context, id string) (*models.Order, error)
	RejectOrder(ctx context.Context, id string) (*models.Order, error)
	CancelOrder(ctx context.Context, actor services.Actor, id string) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id, status string) (*models.Order, error)
	UpdateOrderItemStatus(ctx context.Context, itemID, status string) (*models.Order, error)
	FilterOrderItems(ctx context.Context, f services.OrderItemFilter) (*services.OrderItemPage, error)
	GetUserOrders(ctx context.Context, userID string) ([]models.Order, error)
	GetOrderByID(ctx context.Context, actor services.Actor, id string) (*models.Order, error)
}

type Payments interface {
	ProcessPayment(ctx context.Context, actor services.Actor, req services.PaymentRequest) (*models.Payment, error)
	GetPaymentByOrderID(ctx context.Context, actor services.Actor, orderID string) (*models.Payment, error)
	GetAllPayments(ctx context.Context) ([]models.Payment, error)
	GetRevenueStats(ctx context.Context, period string) (decimal.Decimal, error)
	BankTransferQR(ctx context.Context, actor services.Actor, orderID string) ([]byte, error)
}

type Users interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) error
	MyInfo(ctx context.Context, userID string) (*models.User, error)
	GetAllCustomers(ctx context.Context) ([]models.User, error)
	GetAllAdmins(ctx context.Context) ([]models.User, error)
	GetCustomerByID(ctx context.Context, id string) (*models.User, error)
	CreateAdmin(ctx context.Context, actor services.Actor, req services.RegisterRequest) (*models.User, error)
	UpdateAdmin(ctx context.Context, actor services.Actor, id string, in services.AdminUpdate) (*models.User, error)
	DeleteAdmin(ctx context.Context, actor services.Actor, id string) error
	ChangeAdminPassword(ctx context.Context, actor services.Actor, id, oldPassword, newPassword string) error
	SaveAddress(ctx context.Context, userID string, patch models.Address) (*models.Address, bool, error)
}
