package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"phoneshop_back_end/internal/models"
)

type catalogFixture struct {
	svc        *CatalogService
	categories *memCategories
	products   *memProducts
	orders     *memOrders
	index      *fakeIndex
	images     *fakeImages
}

func newCatalog(t *testing.T, withIndex bool) catalogFixture {
	f := catalogFixture{
		categories: newMemCategories(),
		products:   newMemProducts(),
		orders:     newMemOrders(),
		images:     &fakeImages{},
	}
	deps := CatalogDeps{
		Categories: f.categories,
		Products:   f.products,
		Orders:     f.orders,
		Cache:      newJSONCache(t),
		Images:     f.images,
		Log:        discardLogger(),
	}
	if withIndex {
		f.index = &fakeIndex{}
		deps.Index = f.index
	}
	f.svc = NewCatalogService(deps)
	return f
}

func price(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestCategoryLifecycle(t *testing.T) {
	f := newCatalog(t, false)
	ctx := context.Background()

	_, err := f.svc.CreateCategory(ctx, "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)

	c, err := f.svc.CreateCategory(ctx, " Smartphones ")
	require.NoError(t, err)
	assert.Equal(t, "Smartphones", c.Name)

	list, err := f.svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	_, err = f.svc.UpdateCategory(ctx, c.ID, "Phones")
	require.NoError(t, err)
	list, err = f.svc.ListCategories(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Phones", list[0].Name, "le cache doit être invalidé")

	_, err = f.svc.UpdateCategory(ctx, "missing", "x")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteCategoryWithProductsIsRefused(t *testing.T) {
	f := newCatalog(t, false)
	ctx := context.Background()

	c, err := f.svc.CreateCategory(ctx, "Phones")
	require.NoError(t, err)
	_, err = f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "A", Price: price("10")}, nil)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, c.ID), ErrConflict)

	empty, err := f.svc.CreateCategory(ctx, "Empty")
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteCategory(ctx, empty.ID))
	assert.ErrorIs(t, f.svc.DeleteCategory(ctx, empty.ID), ErrNotFound)
}

func TestCreateProductValidation(t *testing.T) {
	f := newCatalog(t, true)
	ctx := context.Background()
	c, err := f.svc.CreateCategory(ctx, "Phones")
	require.NoError(t, err)

	t.Run("missing name -> invalid", func(t *testing.T) {
		_, err := f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "  ", Price: price("1")}, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("zero price -> invalid", func(t *testing.T) {
		_, err := f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "A", Price: price("0")}, nil)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("unknown category -> not found", func(t *testing.T) {
		_, err := f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: "nope", Name: "A", Price: price("1")}, nil)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("non image upload -> invalid", func(t *testing.T) {
		img := &ImageUpload{Name: "a.txt", ContentType: "text/plain", Reader: strings.NewReader("x")}
		_, err := f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "A", Price: price("1")}, img)
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("valid product is stored, indexed and gets the uploaded image", func(t *testing.T) {
		img := &ImageUpload{Name: "a.png", ContentType: "image/png", Reader: strings.NewReader("png"), Size: 3}
		p, err := f.svc.CreateProduct(ctx, models.ProductUpdate{
			CategoryID: c.ID, Name: "Phone A", Description: "Nice", Price: price("199.999"),
		}, img)
		require.NoError(t, err)
		assert.Equal(t, "http://minio/bucket/a.png", p.ImageURL)
		assert.Equal(t, "200.00", p.Price.StringFixed(2))
		assert.Contains(t, f.index.indexed, p.ID)
	})
}

func TestUpdateProductIsPartial(t *testing.T) {
	f := newCatalog(t, false)
	ctx := context.Background()
	c, _ := f.svc.CreateCategory(ctx, "Phones")
	other, _ := f.svc.CreateCategory(ctx, "Tablets")
	p, err := f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "A", Description: "desc", Price: price("10")}, nil)
	require.NoError(t, err)

	updated, err := f.svc.UpdateProduct(ctx, p.ID, models.ProductUpdate{Name: "B"}, nil)
	require.NoError(t, err)
	assert.Equal(t, "B", updated.Name)
	assert.Equal(t, "desc", updated.Description)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(10)))

	updated, err = f.svc.UpdateProduct(ctx, p.ID, models.ProductUpdate{CategoryID: other.ID, Price: price("12.5")}, nil)
	require.NoError(t, err)
	assert.Equal(t, other.ID, updated.CategoryID)
	assert.Equal(t, "12.50", updated.Price.StringFixed(2))

	_, err = f.svc.UpdateProduct(ctx, p.ID, models.ProductUpdate{Price: price("-1")}, nil)
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UpdateProduct(ctx, "missing", models.ProductUpdate{Name: "x"}, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteOrderedProductIsRefused(t *testing.T) {
	f := newCatalog(t, true)
	ctx := context.Background()
	c, _ := f.svc.CreateCategory(ctx, "Phones")
	ordered, _ := f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "A", Price: price("10")}, nil)
	free, _ := f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "B", Price: price("10")}, nil)

	require.NoError(t, f.orders.Create(ctx, &models.Order{
		UserID: "u1",
		Status: models.OrderPending,
		Items:  []models.OrderItem{{ProductID: ordered.ID, Quantity: 1}},
	}))

	assert.ErrorIs(t, f.svc.DeleteProduct(ctx, ordered.ID), ErrConflict)
	require.NoError(t, f.svc.DeleteProduct(ctx, free.ID))
	assert.Contains(t, f.index.removed, free.ID)

	_, err := f.svc.GetProduct(ctx, free.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListProductsIsCached(t *testing.T) {
	f := newCatalog(t, false)
	ctx := context.Background()
	c, _ := f.svc.CreateCategory(ctx, "Phones")
	_, err := f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "A", Price: price("10")}, nil)
	require.NoError(t, err)

	_, err = f.svc.ListProducts(ctx)
	require.NoError(t, err)
	list, err := f.svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.Equal(t, 1, f.products.lists)

	_, err = f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "B", Price: price("10")}, nil)
	require.NoError(t, err)
	list, err = f.svc.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestListProductsByCategory(t *testing.T) {
	f := newCatalog(t, false)
	ctx := context.Background()

	_, err := f.svc.ListProductsByCategory(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	c, _ := f.svc.CreateCategory(ctx, "Phones")
	_, _ = f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "A", Price: price("10")}, nil)
	list, err := f.svc.ListProductsByCategory(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSearchProducts(t *testing.T) {
	ctx := context.Background()

	t.Run("fallback scan matches name or description ignoring case", func(t *testing.T) {
		f := newCatalog(t, false)
		c, _ := f.svc.CreateCategory(ctx, "Phones")
		_, _ = f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "Galaxy S24", Price: price("10")}, nil)
		_, _ = f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "Pixel", Description: "the GALAXY killer", Price: price("10")}, nil)
		_, _ = f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "iPhone", Price: price("10")}, nil)

		found, err := f.svc.SearchProducts(ctx, "galaxy")
		require.NoError(t, err)
		assert.Len(t, found, 2)

		_, err = f.svc.SearchProducts(ctx, "  ")
		assert.ErrorIs(t, err, ErrInvalidInput)
	})

	t.Run("index hits are resolved from storage", func(t *testing.T) {
		f := newCatalog(t, true)
		c, _ := f.svc.CreateCategory(ctx, "Phones")
		p, _ := f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "Galaxy", Price: price("10")}, nil)
		f.index.ids = []string{p.ID, "stale-id"}

		found, err := f.svc.SearchProducts(ctx, "gal")
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, p.ID, found[0].ID)
	})

	t.Run("index failure falls back to scan", func(t *testing.T) {
		f := newCatalog(t, true)
		c, _ := f.svc.CreateCategory(ctx, "Phones")
		_, _ = f.svc.CreateProduct(ctx, models.ProductUpdate{CategoryID: c.ID, Name: "Galaxy", Price: price("10")}, nil)
		f.index.err = errors.New("elastic down")

		found, err := f.svc.SearchProducts(ctx, "gal")
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})
}
