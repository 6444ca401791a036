package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
)

func newTestCatalogService() (*CatalogService, *fakeProductRepo) {
	products := newFakeProductRepo()
	return NewCatalogService(products, discardLogger()), products
}

func seedProducts(t *testing.T, repo *fakeProductRepo, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		p := &model.Product{Name: "Widget", Price: float64(10 + i), Category: "tools", Stock: 5}
		require.NoError(t, repo.CreateProduct(context.Background(), p))
	}
}

func TestCatalogCreateValidation(t *testing.T) {
	svc, _ := newTestCatalogService()
	ctx := context.Background()

	tests := []struct {
		name    string
		product model.Product
	}{
		{"empty name", model.Product{Name: "  ", Price: 1}},
		{"negative price", model.Product{Name: "Widget", Price: -1}},
		{"negative stock", model.Product{Name: "Widget", Price: 1, Stock: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, &tt.product)
			assert.ErrorIs(t, err, apperror.ErrValidation)
		})
	}

	created, err := svc.Create(ctx, &model.Product{Name: "Widget", Price: 9.99, Stock: 3})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
}

func TestCatalogListDefaultsAndClamp(t *testing.T) {
	svc, products := newTestCatalogService()
	seedProducts(t, products, 15)
	ctx := context.Background()

	// Zero values fall back to page 1 with the default page size.
	page, total, err := svc.List(ctx, ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 15, total)
	assert.Len(t, page, DefaultPageSize)

	// Second page holds the remainder.
	page, _, err = svc.List(ctx, ListQuery{Page: 2})
	require.NoError(t, err)
	assert.Len(t, page, 5)

	// Oversized limits are clamped.
	_, _, err = svc.List(ctx, ListQuery{Limit: MaxPageSize * 10})
	assert.NoError(t, err)
}

func TestCatalogUpdateAndDelete(t *testing.T) {
	svc, _ := newTestCatalogService()
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.Product{Name: "Widget", Price: 5})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, &model.Product{Name: "Gadget", Price: 7, Stock: 2})
	require.NoError(t, err)
	assert.Equal(t, "Gadget", updated.Name)
	assert.Equal(t, 7.0, updated.Price)

	_, err = svc.Update(ctx, "missing", &model.Product{Name: "X", Price: 1})
	assert.ErrorIs(t, err, apperror.ErrNotFound)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.GetByID(ctx, created.ID)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}
