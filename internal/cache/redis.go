package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter compte les tentatives par clé sur une fenêtre fixe et place
// la clé en cooldown une fois la limite atteinte.
type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

// Cooldown renvoie le temps restant si key est bloquée.
func (r *RateLimiter) Cooldown(ctx context.Context, key string) (time.Duration, bool, error) {
	ttl, err := r.rdb.TTL(ctx, "cooldown:"+key).Result()
	if err != nil {
		return 0, false, err
	}
	if ttl <= 0 {
		return 0, false, nil
	}
	return ttl, true, nil
}

// Attempts renvoie le compteur courant de key.
func (r *RateLimiter) Attempts(ctx context.Context, key string) (int64, error) {
	n, err := r.rdb.Get(ctx, "attempts:"+key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Hit incrémente le compteur de key sur la fenêtre donnée. Quand la limite
// est atteinte, la clé passe en cooldown pour la même durée.
func (r *RateLimiter) Hit(ctx context.Context, key string, limit int64, window time.Duration) (int64, error) {
	pipe := r.rdb.TxPipeline()
	incr := pipe.Incr(ctx, "attempts:"+key)
	pipe.Expire(ctx, "attempts:"+key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	n := incr.Val()
	if n >= limit {
		pipe := r.rdb.TxPipeline()
		pipe.Set(ctx, "cooldown:"+key, "1", window)
		pipe.Del(ctx, "attempts:"+key)
		if _, err := pipe.Exec(ctx); err != nil {
			return n, err
		}
	}
	return n, nil
}

// Reset efface le compteur et le cooldown de key.
func (r *RateLimiter) Reset(ctx context.Context, key string) error {
	return r.rdb.Del(ctx, "attempts:"+key, "cooldown:"+key).Err()
}
