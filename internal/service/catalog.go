package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// CatalogService handles product browsing and the admin-only catalog
// mutations.
type CatalogService struct {
	products repository.ProductRepository
	logger   *slog.Logger
}

func NewCatalogService(products repository.ProductRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{products: products, logger: logger}
}

// ListQuery is the browse surface: free-text search over names, category
// and price narrowing, and 1-based pages.
type ListQuery struct {
	Search   string
	Category string
	MinPrice float64
	MaxPrice float64
	Page     int
	Limit    int
}

// List returns one catalog page plus the total match count.
func (s *CatalogService) List(ctx context.Context, q ListQuery) ([]model.Product, int, error) {
	if q.Page <= 0 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = DefaultPageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}

	products, total, err := s.products.ListProducts(ctx, repository.ProductFilter{
		Search:   strings.TrimSpace(q.Search),
		Category: strings.TrimSpace(q.Category),
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Limit:    q.Limit,
		Offset:   (q.Page - 1) * q.Limit,
	})
	if err != nil {
		s.logger.Error("failed to list products", slog.String("error", err.Error()))
		return nil, 0, fmt.Errorf("listing products: %w", err)
	}

	return products, total, nil
}

func (s *CatalogService) GetByID(ctx context.Context, id string) (*model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "product ID is required")
	}
	return s.products.GetProductByID(ctx, id)
}

// Create adds a product to the catalog. Callers are admin-gated at the
// route level.
func (s *CatalogService) Create(ctx context.Context, product *model.Product) (*model.Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return nil, apperror.ValidationFailed("name", "product name is required")
	}
	if product.Price < 0 {
		return nil, apperror.ValidationFailed("price", "price cannot be negative")
	}
	if product.Stock < 0 {
		return nil, apperror.ValidationFailed("stock", "stock cannot be negative")
	}

	if err := s.products.CreateProduct(ctx, product); err != nil {
		s.logger.Error("failed to create product",
			slog.String("name", product.Name),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating product: %w", err)
	}

	s.logger.Info("product created",
		slog.String("id", product.ID),
		slog.String("name", product.Name),
	)
	return product, nil
}

// Update replaces a product's fields wholesale, mirroring the PUT
// contract the frontend sends full objects to.
func (s *CatalogService) Update(ctx context.Context, id string, updated *model.Product) (*model.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "product ID is required")
	}
	if updated.Price < 0 {
		return nil, apperror.ValidationFailed("price", "price cannot be negative")
	}

	product, err := s.products.GetProductByID(ctx, id)
	if err != nil {
		return nil, err
	}

	product.Name = strings.TrimSpace(updated.Name)
	product.Description = updated.Description
	product.Price = updated.Price
	product.ImageURL = updated.ImageURL
	product.Category = updated.Category
	product.Stock = updated.Stock

	if err := s.products.UpdateProduct(ctx, product); err != nil {
		s.logger.Error("failed to update product",
			slog.String("id", id),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating product: %w", err)
	}

	return product, nil
}

func (s *CatalogService) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperror.ValidationFailed("id", "product ID is required")
	}

	if err := s.products.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted", slog.String("id", id))
	return nil
}
