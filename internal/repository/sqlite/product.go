package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

var _ repository.ProductRepository = (*DB)(nil)

const productColumns = `id, name, description, price, image_url, category, stock, created_at, updated_at`

func (db *DB) CreateProduct(ctx context.Context, product *model.Product) error {
	now := time.Now()
	product.ID = xid.New().String()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Name,
		product.Description,
		product.Price,
		product.ImageURL,
		product.Category,
		product.Stock,
		product.CreatedAt,
		product.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting product: %w", err)
	}
	return nil
}

func (db *DB) GetProductByID(ctx context.Context, id string) (*model.Product, error) {
	var p model.Product
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ?`, id,
	).Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
		&p.Category, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("product", id)
		}
		return nil, fmt.Errorf("sqlite: getting product %s: %w", id, err)
	}
	return &p, nil
}

// ListProducts applies the filter twice: once for the page, once for the
// total count the pager needs.
func (db *DB) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]model.Product, int, error) {
	where, args := productFilterClause(filter)

	var total int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM products`+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("sqlite: counting products: %w", err)
	}

	query := `SELECT ` + productColumns + ` FROM products` + where +
		` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	rows, err := db.conn.QueryContext(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("sqlite: listing products: %w", err)
	}
	defer rows.Close()

	products := []model.Product{}
	for rows.Next() {
		var p model.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
			&p.Category, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("sqlite: scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("sqlite: iterating products: %w", err)
	}

	return products, total, nil
}

func (db *DB) UpdateProduct(ctx context.Context, product *model.Product) error {
	product.UpdatedAt = time.Now()

	res, err := db.conn.ExecContext(ctx,
		`UPDATE products
		 SET name = ?, description = ?, price = ?, image_url = ?, category = ?, stock = ?, updated_at = ?
		 WHERE id = ?`,
		product.Name,
		product.Description,
		product.Price,
		product.ImageURL,
		product.Category,
		product.Stock,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating product %s: %w", product.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("product", product.ID)
	}
	return nil
}

func (db *DB) DeleteProduct(ctx context.Context, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting product %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("product", id)
	}
	return nil
}

// productFilterClause builds the WHERE clause shared by the count and the
// page queries. LIKE is case-insensitive for ASCII in SQLite, which covers
// the catalog search contract.
func productFilterClause(filter repository.ProductFilter) (string, []any) {
	conds := []string{}
	args := []any{}

	if filter.Search != "" {
		conds = append(conds, "name LIKE ?")
		args = append(args, "%"+filter.Search+"%")
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.MinPrice > 0 {
		conds = append(conds, "price >= ?")
		args = append(args, filter.MinPrice)
	}
	if filter.MaxPrice > 0 {
		conds = append(conds, "price <= ?")
		args = append(args, filter.MaxPrice)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}
