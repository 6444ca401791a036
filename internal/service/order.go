package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/model"
	"github.com/sakif/storefront/internal/repository"
)

// OrderService places and lists orders. Listing is scoped by the caller:
// admins see every order, everyone else sees only their own. The cart is
// left alone on checkout — the frontend clears it separately.
type OrderService struct {
	orders repository.OrderRepository
	logger *slog.Logger
}

func NewOrderService(orders repository.OrderRepository, logger *slog.Logger) *OrderService {
	return &OrderService{orders: orders, logger: logger}
}

// Create places an order for the caller. The item lines and total come
// from the request, already priced by the checkout flow.
func (s *OrderService) Create(ctx context.Context, userID string, items []model.OrderItem, totalPrice float64, shippingAddress string) (*model.Order, error) {
	if len(items) == 0 || totalPrice <= 0 {
		return nil, apperror.ValidationFailed("items", "Invalid order details")
	}
	for _, it := range items {
		if it.ProductID == "" || it.Quantity <= 0 {
			return nil, apperror.ValidationFailed("items", "Invalid order details")
		}
	}

	order := &model.Order{
		UserID:          userID,
		Items:           items,
		TotalPrice:      totalPrice,
		ShippingAddress: shippingAddress,
	}
	if err := s.orders.CreateOrder(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	s.logger.Info("order placed",
		slog.String("orderID", order.ID),
		slog.String("userID", userID),
		slog.Float64("total", totalPrice),
	)
	return order, nil
}

// List returns the caller's orders, or every order when the caller is an
// admin. An empty history is not-found, which the HTTP layer turns into
// the 404 clients already handle.
func (s *OrderService) List(ctx context.Context, principal auth.Principal) ([]model.Order, error) {
	var (
		orders []model.Order
		err    error
	)
	if principal.IsAdmin {
		orders, err = s.orders.ListAllOrders(ctx)
	} else {
		orders, err = s.orders.ListOrdersByUser(ctx, principal.UserID)
	}
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, &apperror.AppError{Err: apperror.ErrNotFound, Message: "No orders found"}
	}
	return orders, nil
}
