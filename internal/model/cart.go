package model

import "time"

// CartItem is one line in a user's cart. Product is populated on reads so
// the frontend renders the cart without a second round-trip.
type CartItem struct {
	ID        string   `json:"id"        db:"id"`
	ProductID string   `json:"productId" db:"product_id"`
	Quantity  int      `json:"quantity"  db:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// Cart is the full cart for one user. Each user has at most one cart,
// created lazily on the first add.
type Cart struct {
	UserID    string     `json:"userId"`
	Items     []CartItem `json:"items"`
	UpdatedAt time.Time  `json:"updatedAt"`
}
