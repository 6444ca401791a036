package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

var _ repository.CartRepository = (*DB)(nil)

// GetCart loads the user's cart with each line's product joined in.
// A user who never added anything has no cart rows at all — that reads as
// not-found, matching the historical API.
func (db *DB) GetCart(ctx context.Context, userID string) (*model.Cart, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT ci.id, ci.product_id, ci.quantity, ci.updated_at,
		        p.id, p.name, p.description, p.price, p.image_url, p.category, p.stock, p.created_at, p.updated_at
		 FROM cart_items ci
		 JOIN products p ON p.id = ci.product_id
		 WHERE ci.user_id = ?
		 ORDER BY ci.updated_at`, userID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: loading cart for %s: %w", userID, err)
	}
	defer rows.Close()

	cart := &model.Cart{UserID: userID, Items: []model.CartItem{}}
	for rows.Next() {
		var item model.CartItem
		var p model.Product
		var itemUpdated time.Time
		if err := rows.Scan(
			&item.ID, &item.ProductID, &item.Quantity, &itemUpdated,
			&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL,
			&p.Category, &p.Stock, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning cart item: %w", err)
		}
		item.Product = &p
		cart.Items = append(cart.Items, item)
		if itemUpdated.After(cart.UpdatedAt) {
			cart.UpdatedAt = itemUpdated
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating cart items: %w", err)
	}

	if len(cart.Items) == 0 {
		return nil, apperror.NotFound("cart", userID)
	}
	return cart, nil
}

// AddCartItem inserts the line or bumps its quantity. The UNIQUE
// (user_id, product_id) constraint plus the upsert keeps one row per
// product even when two adds race.
func (db *DB) AddCartItem(ctx context.Context, userID, productID string, quantity int) error {
	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO cart_items (id, user_id, product_id, quantity, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, product_id)
		 DO UPDATE SET quantity = quantity + excluded.quantity, updated_at = excluded.updated_at`,
		xid.New().String(), userID, productID, quantity, time.Now(),
	)
	if err != nil {
		return fmt.Errorf("sqlite: adding cart item (user=%s product=%s): %w", userID, productID, err)
	}
	return nil
}

// UpdateCartItem sets the quantity of one line. The WHERE clause pins the
// row to the calling user, so one user can never edit another's cart line
// even with a guessed item id.
func (db *DB) UpdateCartItem(ctx context.Context, userID, itemID string, quantity int) error {
	res, err := db.conn.ExecContext(ctx,
		`UPDATE cart_items SET quantity = ?, updated_at = ? WHERE id = ? AND user_id = ?`,
		quantity, time.Now(), itemID, userID,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating cart item %s: %w", itemID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("cart item", itemID)
	}
	return nil
}

func (db *DB) RemoveCartItem(ctx context.Context, userID, itemID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = ? AND user_id = ?`, itemID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: removing cart item %s: %w", itemID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("cart item", itemID)
	}
	return nil
}

// ClearCart empties the user's cart. Clearing a cart that was never
// created is not-found, matching GetCart.
func (db *DB) ClearCart(ctx context.Context, userID string) error {
	res, err := db.conn.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = ?`, userID)
	if err != nil {
		return fmt.Errorf("sqlite: clearing cart for %s: %w", userID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperror.NotFound("cart", userID)
	}
	return nil
}
