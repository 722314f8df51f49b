package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"phoneshop_back_end/internal/cart"
)

// CartService relie le panier Redis au catalogue : Add et Increment
// capturent le nom, le prix, l'image et la description du produit.
type CartService struct {
	carts    CartRepository
	products ProductRepository
}

func NewCartService(carts CartRepository, products ProductRepository) *CartService {
	return &CartService{carts: carts, products: products}
}

func (s *CartService) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	return s.carts.Get(ctx, userID)
}

func (s *CartService) Add(ctx context.Context, userID, productID string) (*cart.Cart, error) {
	return s.apply(ctx, userID, cart.AddItem(cart.Product{ID: productID}))
}

func (s *CartService) Increment(ctx context.Context, userID, productID string) (*cart.Cart, error) {
	return s.apply(ctx, userID, cart.IncrementItem(cart.Product{ID: productID}))
}

func (s *CartService) Decrement(ctx context.Context, userID, productID string) (*cart.Cart, error) {
	return s.apply(ctx, userID, cart.DecrementItem(productID))
}

func (s *CartService) Remove(ctx context.Context, userID, productID string) (*cart.Cart, error) {
	return s.apply(ctx, userID, cart.RemoveItem(productID))
}

// apply complète l'action avec l'instantané catalogue quand elle peut créer
// une ligne, puis l'exécute dans le panier Redis.
func (s *CartService) apply(ctx context.Context, userID string, action cart.Action) (*cart.Cart, error) {
	if action.NeedsProduct() {
		p, err := s.snapshot(ctx, action.Product.ID)
		if err != nil {
			return nil, err
		}
		action.Product = p
	}
	return s.carts.Apply(ctx, userID, action)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	return s.carts.Clear(ctx, userID)
}

func (s *CartService) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return s.carts.Subscribe(ctx, userID)
}

func (s *CartService) snapshot(ctx context.Context, productID string) (cart.Product, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return cart.Product{}, fmt.Errorf("productId requis: %w", ErrInvalidInput)
	}
	p, err := s.products.GetByID(ctx, productID)
	if err != nil {
		return cart.Product{}, err
	}
	return p.CartProduct(), nil
}
