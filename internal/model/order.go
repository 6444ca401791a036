package model

import "time"

// Order statuses. Status tracks fulfilment, PaymentStatus tracks payment;
// both default to the unfinished state on creation.
const (
	OrderPending   = "Pending"
	OrderShipped   = "Shipped"
	OrderDelivered = "Delivered"
	OrderCanceled  = "Canceled"

	PaymentPaid   = "Paid"
	PaymentUnpaid = "Unpaid"
)

// OrderItem is one product line in a placed order.
type OrderItem struct {
	ProductID string   `json:"productId" db:"product_id"`
	Quantity  int      `json:"quantity"  db:"quantity"`
	Product   *Product `json:"product,omitempty"`
}

// Order is a placed order. TotalPrice is supplied by the checkout flow;
// the server records it rather than re-deriving it (pricing arithmetic
// lives outside this service).
type Order struct {
	ID              string      `json:"id"              db:"id"`
	UserID          string      `json:"userId"          db:"user_id"`
	Items           []OrderItem `json:"items"`
	TotalPrice      float64     `json:"totalPrice"      db:"total_price"`
	ShippingAddress string      `json:"shippingAddress" db:"shipping_address"`
	Status          string      `json:"status"          db:"status"`
	PaymentStatus   string      `json:"paymentStatus"   db:"payment_status"`
	CreatedAt       time.Time   `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time   `json:"updatedAt"       db:"updated_at"`
}
