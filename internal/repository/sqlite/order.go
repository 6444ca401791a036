package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

var _ repository.OrderRepository = (*DB)(nil)

// CreateOrder writes the order header and its lines in one transaction so
// a failure mid-way never leaves a headless order or orphaned lines.
func (db *DB) CreateOrder(ctx context.Context, order *model.Order) error {
	now := time.Now()
	order.ID = xid.New().String()
	order.CreatedAt = now
	order.UpdatedAt = now
	if order.Status == "" {
		order.Status = model.OrderPending
	}
	if order.PaymentStatus == "" {
		order.PaymentStatus = model.PaymentUnpaid
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning order transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO orders (id, user_id, total_price, shipping_address, status, payment_status, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.UserID,
		order.TotalPrice,
		order.ShippingAddress,
		order.Status,
		order.PaymentStatus,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting order: %w", err)
	}

	for _, item := range order.Items {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO order_items (order_id, product_id, quantity) VALUES (?, ?, ?)`,
			order.ID, item.ProductID, item.Quantity,
		)
		if err != nil {
			return fmt.Errorf("sqlite: inserting order item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing order: %w", err)
	}
	return nil
}

func (db *DB) ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error) {
	return db.listOrders(ctx,
		`SELECT id, user_id, total_price, shipping_address, status, payment_status, created_at, updated_at
		 FROM orders WHERE user_id = ? ORDER BY created_at DESC`, userID)
}

func (db *DB) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	return db.listOrders(ctx,
		`SELECT id, user_id, total_price, shipping_address, status, payment_status, created_at, updated_at
		 FROM orders ORDER BY created_at DESC`)
}

func (db *DB) listOrders(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing orders: %w", err)
	}
	defer rows.Close()

	orders := []model.Order{}
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(
			&o.ID, &o.UserID, &o.TotalPrice, &o.ShippingAddress,
			&o.Status, &o.PaymentStatus, &o.CreatedAt, &o.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating orders: %w", err)
	}

	for i := range orders {
		items, err := db.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

// orderItems loads an order's lines with products joined in. A product
// deleted from the catalog after the order leaves Product nil rather than
// dropping the line — order history outlives the catalog.
func (db *DB) orderItems(ctx context.Context, orderID string) ([]model.OrderItem, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT oi.product_id, oi.quantity,
		        p.id, p.name, p.description, p.price, p.image_url, p.category, p.stock, p.created_at, p.updated_at
		 FROM order_items oi
		 LEFT JOIN products p ON p.id = oi.product_id
		 WHERE oi.order_id = ?`, orderID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading order items: %w", err)
	}
	defer rows.Close()

	items := []model.OrderItem{}
	for rows.Next() {
		var item model.OrderItem
		var pID, pName, pDesc, pImage, pCategory *string
		var pPrice *float64
		var pStock *int
		var pCreated, pUpdated *time.Time
		if err := rows.Scan(
			&item.ProductID, &item.Quantity,
			&pID, &pName, &pDesc, &pPrice, &pImage, &pCategory, &pStock, &pCreated, &pUpdated,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning order item: %w", err)
		}
		if pID != nil {
			item.Product = &model.Product{
				ID:          *pID,
				Name:        *pName,
				Description: *pDesc,
				Price:       *pPrice,
				ImageURL:    *pImage,
				Category:    *pCategory,
				Stock:       *pStock,
				CreatedAt:   *pCreated,
				UpdatedAt:   *pUpdated,
			}
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating order items: %w", err)
	}
	return items, nil
}
