package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

// Totals pricing constants. Tax is a flat fraction of the item total and
// shipping is one flat fee; real rate tables live with the (external)
// payment integration.
const (
	taxRate      = 0.10
	shippingFlat = 5.0
)

// CartService handles the per-user cart. Every operation takes the owning
// user's id from the verified principal — there is no way to name another
// user's cart.
type CartService struct {
	carts    repository.CartRepository
	products repository.ProductRepository
	logger   *slog.Logger
}

func NewCartService(carts repository.CartRepository, products repository.ProductRepository, logger *slog.Logger) *CartService {
	return &CartService{carts: carts, products: products, logger: logger}
}

// CartTotals is the checkout preview: item total plus tax and shipping.
type CartTotals struct {
	TotalPrice         float64 `json:"totalPrice"`
	Tax                float64 `json:"tax"`
	ShippingCost       float64 `json:"shippingCost"`
	TotalAfterDiscount float64 `json:"totalAfterDiscount"`
}

// errCartNotFound carries the message clients match on.
func errCartNotFound() *apperror.AppError {
	return &apperror.AppError{Err: apperror.ErrNotFound, Message: "Cart not found"}
}

func errItemNotFound() *apperror.AppError {
	return &apperror.AppError{Err: apperror.ErrNotFound, Message: "Item not found in cart"}
}

// Get returns the user's cart, or not-found when nothing was ever added.
func (s *CartService) Get(ctx context.Context, userID string) (*model.Cart, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errCartNotFound()
		}
		return nil, err
	}
	return cart, nil
}

// AddItem puts quantity of a product into the cart, merging with an
// existing line for the same product. The product must exist.
func (s *CartService) AddItem(ctx context.Context, userID, productID string, quantity int) (*model.Cart, error) {
	if productID == "" || quantity <= 0 {
		return nil, apperror.ValidationFailed("quantity", "Invalid product ID or quantity")
	}

	if _, err := s.products.GetProductByID(ctx, productID); err != nil {
		return nil, err
	}

	if err := s.carts.AddCartItem(ctx, userID, productID, quantity); err != nil {
		s.logger.Error("failed to add cart item",
			slog.String("userID", userID),
			slog.String("productID", productID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("adding cart item: %w", err)
	}

	return s.carts.GetCart(ctx, userID)
}

// UpdateItem sets one line's quantity; zero or negative is rejected
// (removal is its own operation).
func (s *CartService) UpdateItem(ctx context.Context, userID, itemID string, quantity int) (*model.Cart, error) {
	if quantity <= 0 {
		return nil, apperror.ValidationFailed("quantity", "Valid quantity (greater than zero) is required")
	}

	if err := s.carts.UpdateCartItem(ctx, userID, itemID, quantity); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errItemNotFound()
		}
		return nil, err
	}

	return s.carts.GetCart(ctx, userID)
}

// RemoveItem deletes one line and returns the remaining cart. An emptied
// cart comes back with zero items rather than not-found, since the caller
// plainly had a cart a moment ago.
func (s *CartService) RemoveItem(ctx context.Context, userID, itemID string) (*model.Cart, error) {
	if err := s.carts.RemoveCartItem(ctx, userID, itemID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errItemNotFound()
		}
		return nil, err
	}

	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
		}
		return nil, err
	}
	return cart, nil
}

// Clear empties the cart. Clearing a cart that was never created is
// not-found, same as reading it.
func (s *CartService) Clear(ctx context.Context, userID string) (*model.Cart, error) {
	if _, err := s.carts.GetCart(ctx, userID); err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errCartNotFound()
		}
		return nil, err
	}

	if err := s.carts.ClearCart(ctx, userID); err != nil {
		return nil, err
	}
	return &model.Cart{UserID: userID, Items: []model.CartItem{}}, nil
}

// Calculate prices the cart: item total, 10% tax, flat shipping.
func (s *CartService) Calculate(ctx context.Context, userID string) (*CartTotals, error) {
	cart, err := s.carts.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errCartNotFound()
		}
		return nil, err
	}

	var total float64
	for _, item := range cart.Items {
		if item.Product == nil {
			continue
		}
		total += item.Product.Price * float64(item.Quantity)
	}

	tax := total * taxRate
	return &CartTotals{
		TotalPrice:         total,
		Tax:                tax,
		ShippingCost:       shippingFlat,
		TotalAfterDiscount: total + tax + shippingFlat,
	}, nil
}
