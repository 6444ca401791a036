// Package repository declares the narrow storage interfaces the service
// layer programs against. The sqlite subpackage implements them; tests use
// in-memory fakes.
package repository

import (
	"context"

	"github.com/sakif/storefront/internal/model"
)

// UserRepository is the credential store adapter. It carries no business
// logic — just typed accessors over the user collection. Uniqueness rules
// (one local account per email, one user per federated identity) are
// enforced by the implementation's write path atomically, so concurrent
// duplicate writes surface as a conflict rather than a second record.
// Method names carry their entity (CreateUser, not Create) because one
// concrete store implements all four interfaces on a single receiver.
type UserRepository interface {
	// CreateUser persists a locally-registered user, assigning ID and
	// timestamps. Returns a conflict error when the email is taken.
	CreateUser(ctx context.Context, user *model.User) error

	// FindOrCreateFederated resolves a federated identity to its user,
	// creating the record on first sight. Atomic: two concurrent calls
	// for the same (provider, providerID) return the same user.
	FindOrCreateFederated(ctx context.Context, user *model.User) (*model.User, error)

	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// UpdateUser persists mutable profile fields (name, avatar). The
	// caller is responsible for only ever passing the principal's own
	// record.
	UpdateUser(ctx context.Context, user *model.User) error
}

// ProductFilter narrows and pages a catalog listing.
type ProductFilter struct {
	Search   string  // case-insensitive substring match on name
	Category string
	MinPrice float64
	MaxPrice float64 // 0 means unbounded
	Limit    int
	Offset   int
}

type ProductRepository interface {
	CreateProduct(ctx context.Context, product *model.Product) error
	GetProductByID(ctx context.Context, id string) (*model.Product, error)
	// ListProducts returns the page plus the total count of rows matching
	// the filter, for the frontend's pager.
	ListProducts(ctx context.Context, filter ProductFilter) ([]model.Product, int, error)
	UpdateProduct(ctx context.Context, product *model.Product) error
	DeleteProduct(ctx context.Context, id string) error
}

type CartRepository interface {
	// GetCart returns the user's cart with product records populated, or
	// a not-found error when the user never added anything.
	GetCart(ctx context.Context, userID string) (*model.Cart, error)

	// AddCartItem adds a product to the cart, incrementing quantity when
	// the product is already present. Creates the cart on first use.
	AddCartItem(ctx context.Context, userID, productID string, quantity int) error

	UpdateCartItem(ctx context.Context, userID, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, userID, itemID string) error
	ClearCart(ctx context.Context, userID string) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, order *model.Order) error
	// ListOrdersByUser returns the user's orders, newest first.
	ListOrdersByUser(ctx context.Context, userID string) ([]model.Order, error)
	// ListAllOrders returns every order; admin-only callers.
	ListAllOrders(ctx context.Context) ([]model.Order, error)
}
