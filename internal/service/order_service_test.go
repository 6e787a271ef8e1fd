package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/pkg/errors"
)

func TestOrderService_ListForUser(t *testing.T) {
	checkout, _, user, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := checkout.Checkout(ctx, user.ID, validCheckout())
	require.NoError(t, err)

	svc := NewOrderService(checkout.repos, zap.NewNop())
	orders, err := svc.ListForUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	other := &domain.User{Email: "other@example.com", PasswordHash: "x", EmailVerified: true}
	require.NoError(t, checkout.repos.User.Create(ctx, other))

	none, err := svc.ListForUser(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestOrderService_ListAllFilter(t *testing.T) {
	svc := NewOrderService(newTestRepos(t), zap.NewNop())

	_, err := svc.ListAll(context.Background(), 10, 0, "shipped")
	var validation *errors.ErrValidation
	assert.ErrorAs(t, err, &validation)

	orders, err := svc.ListAll(context.Background(), 0, -1, "pending")
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestOrderService_UpdateShipping(t *testing.T) {
	checkout, _, user, _ := newTestCheckout(t)
	ctx := context.Background()

	result, err := checkout.Checkout(ctx, user.ID, validCheckout())
	require.NoError(t, err)
	orderID := uuid.MustParse(result.OrderID)

	svc := NewOrderService(checkout.repos, zap.NewNop())

	_, err = svc.UpdateShipping(ctx, orderID, "", "GIG123")
	var validation *errors.ErrValidation
	require.ErrorAs(t, err, &validation)

	order, err := svc.UpdateShipping(ctx, orderID, "GIG Logistics", "GIG123")
	require.NoError(t, err)
	assert.Equal(t, "GIG Logistics", *order.ShippingCarrier)
	assert.Equal(t, domain.OrderStatusPending, order.Status)

	history, err := svc.History(ctx, orderID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.OrderEventShipping, history[1].EventType)

	_, err = svc.History(ctx, uuid.New())
	var notFound *errors.ErrNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestOrderService_GetByReference(t *testing.T) {
	checkout, _, user, _ := newTestCheckout(t)
	ctx := context.Background()

	result, err := checkout.Checkout(ctx, user.ID, validCheckout())
	require.NoError(t, err)

	svc := NewOrderService(checkout.repos, zap.NewNop())
	order, err := svc.GetByReference(ctx, result.Reference)
	require.NoError(t, err)
	assert.Equal(t, result.OrderID, order.ID.String())
}
