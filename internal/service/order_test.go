package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/storefront/internal/apperror"
	"github.com/sakif/storefront/internal/auth"
	"github.com/sakif/storefront/internal/model"
)

func newTestOrderService() (*OrderService, *fakeOrderRepo) {
	orders := newFakeOrderRepo()
	return NewOrderService(orders, discardLogger()), orders
}

func TestOrderCreate(t *testing.T) {
	svc, _ := newTestOrderService()
	ctx := context.Background()

	order, err := svc.Create(ctx, "u1",
		[]model.OrderItem{{ProductID: "p1", Quantity: 2}}, 19.98, "1 Main St")
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, model.OrderPending, order.Status)
	assert.Equal(t, model.PaymentUnpaid, order.PaymentStatus)
	assert.Equal(t, "u1", order.UserID)
}

func TestOrderCreateValidation(t *testing.T) {
	svc, _ := newTestOrderService()
	ctx := context.Background()

	tests := []struct {
		name  string
		items []model.OrderItem
		total float64
	}{
		{"no items", nil, 10},
		{"zero total", []model.OrderItem{{ProductID: "p1", Quantity: 1}}, 0},
		{"negative total", []model.OrderItem{{ProductID: "p1", Quantity: 1}}, -5},
		{"zero quantity line", []model.OrderItem{{ProductID: "p1", Quantity: 0}}, 10},
		{"missing product id", []model.OrderItem{{Quantity: 1}}, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, "u1", tt.items, tt.total, "1 Main St")
			require.Error(t, err)
			assert.ErrorIs(t, err, apperror.ErrValidation)
			var appErr *apperror.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "Invalid order details", appErr.Message)
		})
	}
}

func TestOrderListScoping(t *testing.T) {
	svc, _ := newTestOrderService()
	ctx := context.Background()

	// An empty history is not-found, for admins and users alike.
	_, err := svc.List(ctx, auth.Principal{UserID: "u1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperror.ErrNotFound)
	assert.EqualError(t, err, "No orders found")

	for _, userID := range []string{"u1", "u1", "u2"} {
		_, err := svc.Create(ctx, userID,
			[]model.OrderItem{{ProductID: "p1", Quantity: 1}}, 10, "")
		require.NoError(t, err)
	}

	own, err := svc.List(ctx, auth.Principal{UserID: "u1"})
	require.NoError(t, err)
	assert.Len(t, own, 2)
	for _, o := range own {
		assert.Equal(t, "u1", o.UserID)
	}

	all, err := svc.List(ctx, auth.Principal{UserID: "admin", IsAdmin: true})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	// A user with no orders of their own still gets not-found.
	_, err = svc.List(ctx, auth.Principal{UserID: "u3"})
	assert.ErrorIs(t, err, apperror.ErrNotFound)
}