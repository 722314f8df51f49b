package cache

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phoneshop_back_end/internal/cart"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

var phoneA = cart.Product{ID: "phoneA", Name: "Phone A", Price: decimal.RequireFromString("300")}

func TestCartStoreApplyPersistsWithTTL(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()

	c, err := store.Apply(ctx, "u1", cart.AddItem(phoneA))
	require.NoError(t, err)
	assert.Equal(t, 1, c.Quantity())

	_, err = store.Apply(ctx, "u1", cart.IncrementItem(phoneA))
	require.NoError(t, err)

	assert.True(t, mr.Exists("cart:u1"))
	assert.Equal(t, CartTTL, mr.TTL("cart:u1"))

	got, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	items := got.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(300)))
}

func TestCartStoreEmptyCartDeletesKey(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()

	_, err := store.Apply(ctx, "u1", cart.AddItem(phoneA))
	require.NoError(t, err)
	c, err := store.Apply(ctx, "u1", cart.DecrementItem("phoneA"))
	require.NoError(t, err)

	assert.True(t, c.IsEmpty())
	assert.False(t, mr.Exists("cart:u1"))
}

func TestCartStoreGetMissingIsEmpty(t *testing.T) {
	_, rdb := newRedis(t)
	c, err := NewCartStore(rdb).Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

func TestCartStoreUpdateErrorWritesNothing(t *testing.T) {
	mr, rdb := newRedis(t)
	store := NewCartStore(rdb)

	_, err := store.Apply(context.Background(), "u1", cart.Action{Type: "BOGUS"})
	assert.Error(t, err)
	assert.False(t, mr.Exists("cart:u1"))
}

func TestCartStoreConcurrentIncrementsAreNotLost(t *testing.T) {
	_, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Apply(ctx, "u1", cart.IncrementItem(phoneA))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	c, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, workers, c.Quantity())
	assert.Equal(t, 1, c.Len())
}

func TestCartStorePublishesEvents(t *testing.T) {
	_, rdb := newRedis(t)
	store := NewCartStore(rdb)
	ctx := context.Background()

	sub := store.Subscribe(ctx, "u1")
	defer sub.Close()
	_, err := sub.Receive(ctx)
	require.NoError(t, err)
	ch := sub.Channel()

	_, err = store.Apply(ctx, "u1", cart.AddItem(phoneA))
	require.NoError(t, err)
	require.NoError(t, store.Clear(ctx, "u1"))

	for _, want := range []string{CartEventUpdated, CartEventCleared} {
		select {
		case msg := <-ch:
			assert.Equal(t, "cart:u1", msg.Channel)
			assert.Equal(t, want, msg.Payload)
		case <-time.After(2 * time.Second):
			t.Fatalf("événement %q non reçu", want)
		}
	}
}

func TestJSONCache(t *testing.T) {
	mr, rdb := newRedis(t)
	c := NewJSONCache(rdb, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	var out []string
	assert.ErrorIs(t, c.Get(ctx, ProductsKey, &out), ErrMiss)

	c.Set(ctx, ProductsKey, []string{"a", "b"}, CatalogCacheTTL)
	require.NoError(t, c.Get(ctx, ProductsKey, &out))
	assert.Equal(t, []string{"a", "b"}, out)
	assert.Equal(t, CatalogCacheTTL, mr.TTL(ProductsKey))

	c.Invalidate(ctx, ProductsKey, CategoriesKey)
	assert.False(t, mr.Exists(ProductsKey))
}

func TestRateLimiter(t *testing.T) {
	_, rdb := newRedis(t)
	rl := NewRateLimiter(rdb)
	ctx := context.Background()

	_, blocked, err := rl.Cooldown(ctx, "login:a@b.c")
	require.NoError(t, err)
	assert.False(t, blocked)

	for i := int64(1); i <= 2; i++ {
		n, err := rl.Hit(ctx, "login:a@b.c", 3, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	n, err := rl.Attempts(ctx, "login:a@b.c")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	_, err = rl.Hit(ctx, "login:a@b.c", 3, time.Minute)
	require.NoError(t, err)
	ttl, blocked, err := rl.Cooldown(ctx, "login:a@b.c")
	require.NoError(t, err)
	assert.True(t, blocked)
	assert.Equal(t, time.Minute, ttl)

	require.NoError(t, rl.Reset(ctx, "login:a@b.c"))
	_, blocked, err = rl.Cooldown(ctx, "login:a@b.c")
	require.NoError(t, err)
	assert.False(t, blocked)
}
