package services

import (
	"context"
	"io"
	"time"

	"github.com/redis/go-redis/v9"

	"phoneshop_back_end/internal/cart"
	"phoneshop_back_end/internal/models"
)

// Les repositories renvoient ErrNotFound (enveloppée) pour une ligne absente
// et ErrConflict pour une contrainte d'unicité violée.

type CategoryRepository interface {
	Create(ctx context.Context, c *models.Category) error
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	// Update réécrit le produit. previousCategoryID sert à maintenir l'index par catégorie.
	Update(ctx context.Context, p *models.Product, previousCategoryID string) error
	Delete(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
	ListByCategory(ctx context.Context, categoryID string) ([]models.Product, error)
}

type OrderRepository interface {
	Create(ctx context.Context, o *models.Order) error
	UpdateStatus(ctx context.Context, orderID string, status models.OrderStatus) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	GetByItemID(ctx context.Context, itemID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID string) ([]models.Order, error)
	List(ctx context.Context) ([]models.Order, error)
	ProductOrdered(ctx context.Context, productID string) (bool, error)
}

type PaymentRepository interface {
	// Reserve échoue avec ErrConflict si la commande a déjà un paiement.
	Reserve(ctx context.Context, p *models.Payment) error
	Release(ctx context.Context, p *models.Payment) error
	Create(ctx context.Context, p *models.Payment) error
	GetByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	List(ctx context.Context) ([]models.Payment, error)
}

type UserRepository interface {
	// Create échoue avec ErrConflict si l'e-mail est déjà pris.
	Create(ctx context.Context, u *models.User) error
	Update(ctx context.Context, u *models.User, previousEmail string) error
	Delete(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
}

type AddressRepository interface {
	Get(ctx context.Context, userID string) (*models.Address, error)
	Save(ctx context.Context, a *models.Address) error
}

type ResetTokenRepository interface {
	Create(ctx context.Context, t *models.PasswordResetToken) error
	Get(ctx context.Context, token string) (*models.PasswordResetToken, error)
	// MarkUsed échoue avec ErrConflict si le token a déjà servi.
	MarkUsed(ctx context.Context, token string) error
}

// CartRepository est implémenté par cache.CartStore.
type CartRepository interface {
	Get(ctx context.Context, userID string) (*cart.Cart, error)
	Apply(ctx context.Context, userID string, action cart.Action) (*cart.Cart, error)
	Update(ctx context.Context, userID string, fn func(*cart.Cart) error) (*cart.Cart, error)
	Clear(ctx context.Context, userID string) error
	Subscribe(ctx context.Context, userID string) *redis.PubSub
}

// Cache est implémenté par cache.JSONCache.
type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	Invalidate(ctx context.Context, keys ...string)
}

// ProductIndex est le moteur de recherche plein texte.
type ProductIndex interface {
	Index(ctx context.Context, p models.Product) error
	Remove(ctx context.Context, productID string) error
	Search(ctx context.Context, query string) ([]string, error)
}

// ImageStore stocke les images produit et renvoie leur URL publique.
type ImageStore interface {
	Upload(ctx context.Context, name, contentType string, r io.Reader, size int64) (string, error)
}

// CardGateway débite une carte et renvoie la référence du paiement.
type CardGateway interface {
	Charge(ctx context.Context, amountCents int64, paymentMethodID, orderID string) (string, error)
}

type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
