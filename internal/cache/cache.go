package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	ProductsKey   = "products:all"
	CategoriesKey = "categories:all"

	CatalogCacheTTL = time.Hour
)

// ErrMiss signale une clé absente du cache.
var ErrMiss = errors.New("cache: clé absente")

// JSONCache stocke des valeurs JSON dans Redis.
type JSONCache struct {
	rdb *redis.Client
	log *slog.Logger
}

func NewJSONCache(rdb *redis.Client, log *slog.Logger) *JSONCache {
	return &JSONCache{rdb: rdb, log: log}
}

// Get décode la valeur de key dans dest. Renvoie ErrMiss si elle est absente.
func (c *JSONCache) Get(ctx context.Context, key string, dest any) error {
	data, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set encode value sous key. Les erreurs sont seulement journalisées :
// un cache indisponible ne doit pas faire échouer la lecture.
func (c *JSONCache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		c.log.Warn("⚠️ Encodage cache impossible", "key", key, "error", err)
		return
	}
	if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
		c.log.Warn("⚠️ Écriture cache impossible", "key", key, "error", err)
	}
}

// Invalidate supprime les clés données.
func (c *JSONCache) Invalidate(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.log.Warn("⚠️ Invalidation cache impossible", "keys", keys, "error", err)
	}
}
