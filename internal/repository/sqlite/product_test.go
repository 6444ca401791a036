package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

func createTestProduct(t *testing.T, db *DB, name, category string, price float64) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:     name,
		Category: category,
		Price:    price,
		Stock:    10,
	}
	if err := db.CreateProduct(context.Background(), p); err != nil {
		t.Fatalf("failed to create test product: %v", err)
	}
	return p
}

func TestCreateProduct_AssignsIDAndTimestamps(t *testing.T) {
	db := newTestDB(t)

	p := createTestProduct(t, db, "Keyboard", "electronics", 49.99)
	if p.ID == "" || p.CreatedAt.IsZero() {
		t.Errorf("CreateProduct() left product unpopulated: %+v", p)
	}
}

func TestListProducts_FilterAndCount(t *testing.T) {
	db := newTestDB(t)
	createTestProduct(t, db, "Mechanical Keyboard", "electronics", 120)
	createTestProduct(t, db, "Membrane keyboard", "electronics", 25)
	createTestProduct(t, db, "Desk Lamp", "home", 30)

	tests := []struct {
		name      string
		filter    repository.ProductFilter
		wantTotal int
	}{
		{"all", repository.ProductFilter{Limit: 10}, 3},
		{"search is case-insensitive", repository.ProductFilter{Search: "keyboard", Limit: 10}, 2},
		{"category", repository.ProductFilter{Category: "home", Limit: 10}, 1},
		{"min price", repository.ProductFilter{MinPrice: 100, Limit: 10}, 1},
		{"max price", repository.ProductFilter{MaxPrice: 50, Limit: 10}, 2},
		{"combined", repository.ProductFilter{Search: "keyboard", MaxPrice: 50, Limit: 10}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			products, total, err := db.ListProducts(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("ListProducts() error = %v", err)
			}
			if total != tt.wantTotal {
				t.Errorf("total = %d, want %d", total, tt.wantTotal)
			}
			if len(products) != tt.wantTotal {
				t.Errorf("len(products) = %d, want %d", len(products), tt.wantTotal)
			}
		})
	}
}

func TestListProducts_Pagination(t *testing.T) {
	db := newTestDB(t)
	for i := 0; i < 5; i++ {
		createTestProduct(t, db, "Widget", "misc", float64(i+1))
	}

	page, total, err := db.ListProducts(context.Background(),
		repository.ProductFilter{Limit: 2, Offset: 4})
	if err != nil {
		t.Fatalf("ListProducts() error = %v", err)
	}
	if total != 5 {
		t.Errorf("total = %d, want 5", total)
	}
	// The last page has the single remaining row.
	if len(page) != 1 {
		t.Errorf("len(page) = %d, want 1", len(page))
	}
}

func TestUpdateProduct_NotFound(t *testing.T) {
	db := newTestDB(t)

	err := db.UpdateProduct(context.Background(), &model.Product{ID: "ghost"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("UpdateProduct() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteProduct(t *testing.T) {
	db := newTestDB(t)
	p := createTestProduct(t, db, "Short-lived", "misc", 1)

	if err := db.DeleteProduct(context.Background(), p.ID); err != nil {
		t.Fatalf("DeleteProduct() error = %v", err)
	}
	if _, err := db.GetProductByID(context.Background(), p.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("GetProductByID() after delete = %v, want ErrNotFound", err)
	}
}
