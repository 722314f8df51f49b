package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"phoneshop_back_end/internal/cart"
)

const (
	CartTTL = 30 * 24 * time.Hour // 30 jours

	CartEventUpdated = "updated"
	CartEventCleared = "cleared"

	cartMaxRetries = 10
)

// ErrCartContention est renvoyée quand la transaction optimiste échoue
// cartMaxRetries fois de suite.
var ErrCartContention = errors.New("panier modifié en parallèle, réessayez")

// CartStore persiste un panier par utilisateur dans Redis sous cart:<userID>.
// Chaque mutation passe par WATCH/MULTI, deux requêtes concurrentes ne
// peuvent donc pas écraser la modification de l'autre.
type CartStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCartStore(rdb *redis.Client) *CartStore {
	return &CartStore{rdb: rdb, ttl: CartTTL}
}

// CartKey est à la fois la clé du panier et le canal pub/sub associé.
func CartKey(userID string) string {
	return "cart:" + userID
}

// Get renvoie le panier de l'utilisateur, vide s'il n'existe pas.
func (s *CartStore) Get(ctx context.Context, userID string) (*cart.Cart, error) {
	return load(ctx, s.rdb, CartKey(userID))
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func load(ctx context.Context, r getter, key string) (*cart.Cart, error) {
	data, err := r.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return &cart.Cart{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("lecture panier: %w", err)
	}
	c := &cart.Cart{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("décodage panier: %w", err)
	}
	return c, nil
}

// Update applique fn au panier dans une transaction optimiste puis publie
// l'événement correspondant. Si fn renvoie une erreur, rien n'est écrit.
func (s *CartStore) Update(ctx context.Context, userID string, fn func(*cart.Cart) error) (*cart.Cart, error) {
	key := CartKey(userID)
	var result *cart.Cart

	txf := func(tx *redis.Tx) error {
		c, err := load(ctx, tx, key)
		if err != nil {
			return err
		}
		if err := fn(c); err != nil {
			return err
		}

		data, err := json.Marshal(c)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if c.IsEmpty() {
				pipe.Del(ctx, key)
			} else {
				pipe.Set(ctx, key, data, s.ttl)
			}
			pipe.Publish(ctx, key, CartEventUpdated)
			return nil
		})
		if err != nil {
			return err
		}
		result = c
		return nil
	}

	for i := 0; i < cartMaxRetries; i++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return result, nil
	}
	return nil, ErrCartContention
}

// Apply exécute une action du panier de manière atomique.
func (s *CartStore) Apply(ctx context.Context, userID string, action cart.Action) (*cart.Cart, error) {
	return s.Update(ctx, userID, func(c *cart.Cart) error {
		_, err := c.Apply(action)
		return err
	})
}

// Clear supprime le panier et publie "cleared".
func (s *CartStore) Clear(ctx context.Context, userID string) error {
	key := CartKey(userID)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.Publish(ctx, key, CartEventCleared)
		return nil
	})
	return err
}

// Subscribe ouvre l'abonnement aux événements du panier de l'utilisateur.
func (s *CartStore) Subscribe(ctx context.Context, userID string) *redis.PubSub {
	return s.rdb.Subscribe(ctx, CartKey(userID))
}
