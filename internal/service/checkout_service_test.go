package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/paystack"
	"github.com/anchorfit/storefront/pkg/errors"
)

var fixedNow = time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC) // Monday

func newTestCheckout(t *testing.T) (*checkoutService, *fakeGateway, *domain.User, *domain.Profile) {
	t.Helper()
	repos := newTestRepos(t)
	user, profile := seedCustomer(t, repos, "ada@example.com")
	gw := &fakeGateway{}

	svc := NewCheckoutService(repos, gw, time.Second, zap.NewNop())
	svc.now = func() time.Time { return fixedNow }
	svc.discounts.now = svc.now
	return svc, gw, user, profile
}

func TestCheckout_PromoCodeTotals(t *testing.T) {
	svc, gw, user, profile := newTestCheckout(t)
	ctx := context.Background()

	_, err := svc.discounts.Create(ctx, CreatePromoRequest{Code: "save10", DiscountPercentage: 10})
	require.NoError(t, err)

	req := validCheckout()
	req.PromoCode = strPtr("SAVE10")
	req.Discount = decimal.NewFromInt(10)

	result, err := svc.Checkout(ctx, user.ID, req)
	require.NoError(t, err)

	require.Equal(t, 1, gw.callCount())
	assert.Equal(t, int64(6110000), gw.calls[0].Amount)
	assert.Equal(t, "ada@example.com", gw.calls[0].Email)
	assert.Equal(t, user.ID.String(), gw.calls[0].Metadata["user_id"])
	assert.Equal(t, "https://checkout.paystack.com/session", result.AuthorizationURL)

	order, err := svc.repos.Order.GetByReference(ctx, result.Reference)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, order.UserID)
	assert.Equal(t, domain.OrderStatusPending, order.Status)
	assert.True(t, decimal.NewFromInt(64000).Equal(order.Subtotal))
	assert.True(t, decimal.NewFromInt(6400).Equal(order.DiscountAmount))
	assert.True(t, decimal.NewFromInt(3500).Equal(order.ShippingFee))
	assert.True(t, decimal.NewFromInt(61100).Equal(order.TotalAmount))
	assert.True(t, order.TotalAmount.Equal(order.Subtotal.Sub(order.DiscountAmount).Add(order.ShippingFee)))
	assert.Equal(t, domain.DiscountTypePromoCode, order.DiscountType)
	require.NotNil(t, order.EstimatedDeliveryDate)
	assert.True(t, time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC).Equal(*order.EstimatedDeliveryDate))

	dc, err := svc.repos.DiscountCode.GetByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 1, dc.UsedCount)

	events, err := svc.repos.OrderEvent.ListByOrderID(ctx, order.ID)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, domain.OrderEventCreated, events[0].EventType)
}

func TestCheckout_ClientDiscountIsNotTrusted(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := svc.discounts.Create(ctx, CreatePromoRequest{Code: "SAVE10", DiscountPercentage: 10})
	require.NoError(t, err)

	req := validCheckout()
	req.PromoCode = strPtr("save10")
	req.Discount = decimal.NewFromInt(90)

	_, err = svc.Checkout(ctx, user.ID, req)
	require.NoError(t, err)
	assert.Equal(t, int64(6110000), gw.calls[0].Amount)
}

func TestCheckout_DiscountWithoutPromoCode(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)

	req := validCheckout()
	req.Discount = decimal.NewFromInt(10)

	_, err := svc.Checkout(context.Background(), user.ID, req)
	var validation *errors.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, 0, gw.callCount())
}

func TestCheckout_NoDiscount(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)

	result, err := svc.Checkout(context.Background(), user.ID, validCheckout())
	require.NoError(t, err)
	assert.Equal(t, int64(6750000), gw.calls[0].Amount)

	order, err := svc.repos.Order.GetByReference(context.Background(), result.Reference)
	require.NoError(t, err)
	assert.Nil(t, order.PromoCode)
	assert.Equal(t, domain.DiscountTypeNone, order.DiscountType)
}

func TestCheckout_RejectsIncompleteCustomerBeforeGateway(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)

	req := validCheckout()
	req.CustomerDetails.Address = ""

	_, err := svc.Checkout(context.Background(), user.ID, req)
	var validation *errors.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "Missing required payment information.", validation.Message)
	assert.Equal(t, 0, gw.callCount())

	orders, err := svc.repos.Order.List(context.Background(), 10, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_RejectsEmptyCartAndBadItems(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)
	ctx := context.Background()

	empty := validCheckout()
	empty.Items = nil

	zeroQty := validCheckout()
	zeroQty.Items[0].Quantity = 0

	freeItem := validCheckout()
	freeItem.Items[0].Price = decimal.Zero

	negativeShipping := validCheckout()
	negativeShipping.ShippingFee = decimal.NewFromInt(-1)

	for name, req := range map[string]CheckoutRequest{
		"empty cart":        empty,
		"zero quantity":     zeroQty,
		"zero price":        freeItem,
		"negative shipping": negativeShipping,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Checkout(ctx, user.ID, req)
			var validation *errors.ErrValidation
			assert.ErrorAs(t, err, &validation)
		})
	}
	assert.Equal(t, 0, gw.callCount())
}

func TestCheckout_GatewayFailureLeavesNoOrder(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)
	ctx := context.Background()

	_, err := svc.discounts.Create(ctx, CreatePromoRequest{Code: "SAVE10", DiscountPercentage: 10})
	require.NoError(t, err)

	gw.fn = func(ctx context.Context, req paystack.InitializeRequest) (*paystack.Transaction, error) {
		return nil, assert.AnError
	}

	req := validCheckout()
	req.PromoCode = strPtr("SAVE10")

	_, err = svc.Checkout(ctx, user.ID, req)
	var gatewayErr *errors.ErrGateway
	require.ErrorAs(t, err, &gatewayErr)

	orders, err := svc.repos.Order.List(ctx, 10, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)

	dc, err := svc.repos.DiscountCode.GetByCode(ctx, "SAVE10")
	require.NoError(t, err)
	assert.Equal(t, 0, dc.UsedCount)
}

func TestCheckout_GatewayTimeout(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)
	svc.timeout = 20 * time.Millisecond

	gw.fn = func(ctx context.Context, req paystack.InitializeRequest) (*paystack.Transaction, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}

	_, err := svc.Checkout(context.Background(), user.ID, validCheckout())
	var gatewayErr *errors.ErrGateway
	require.ErrorAs(t, err, &gatewayErr)

	orders, err := svc.repos.Order.List(context.Background(), 10, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_ProfileMissing(t *testing.T) {
	svc, gw, _, _ := newTestCheckout(t)
	ctx := context.Background()

	loner := &domain.User{Email: "noprofile@example.com", PasswordHash: "x", EmailVerified: true}
	require.NoError(t, svc.repos.User.Create(ctx, loner))

	_, err := svc.Checkout(ctx, loner.ID, validCheckout())
	var missing *errors.ErrProfileMissing
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, 0, gw.callCount())
}

func TestCheckout_UnknownUser(t *testing.T) {
	svc, _, _, _ := newTestCheckout(t)

	_, err := svc.Checkout(context.Background(), uuid.New(), validCheckout())
	var unauthorized *errors.ErrUnauthorized
	assert.ErrorAs(t, err, &unauthorized)
}

func TestCheckout_RejectsUnusablePromoCodes(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)
	ctx := context.Background()

	past := fixedNow.Add(-time.Hour)
	limit := 1
	require.NoError(t, svc.repos.DiscountCode.Create(ctx, &domain.DiscountCode{Code: "EXPIRED10", DiscountPercentage: 10, Active: true, ExpiresAt: &past}))
	require.NoError(t, svc.repos.DiscountCode.Create(ctx, &domain.DiscountCode{Code: "OFF", DiscountPercentage: 10, Active: false}))
	require.NoError(t, svc.repos.DiscountCode.Create(ctx, &domain.DiscountCode{Code: "USEDUP", DiscountPercentage: 10, Active: true, UsageLimit: &limit, UsedCount: 1}))

	for _, code := range []string{"EXPIRED10", "OFF", "USEDUP", "NOSUCHCODE"} {
		t.Run(code, func(t *testing.T) {
			req := validCheckout()
			req.PromoCode = strPtr(code)
			_, err := svc.Checkout(ctx, user.ID, req)
			var validation *errors.ErrValidation
			assert.ErrorAs(t, err, &validation)
		})
	}
	assert.Equal(t, 0, gw.callCount())
}

func TestCheckout_RejectsAmountsBeyondStoreLimit(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)
	ctx := context.Background()

	wraps := validCheckout()
	wraps.Items[0].Price = decimal.RequireFromString("184467440737095517.17")
	wraps.Items[0].Quantity = 1

	overCap := validCheckout()
	overCap.Items[0].Price = domain.MaxAmount

	hugeShipping := validCheckout()
	hugeShipping.ShippingFee = domain.MaxAmount

	for name, req := range map[string]CheckoutRequest{
		"wraps int64 minor units": wraps,
		"subtotal over cap":       overCap,
		"total over cap":          hugeShipping,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Checkout(ctx, user.ID, req)
			var validation *errors.ErrValidation
			assert.ErrorAs(t, err, &validation)
		})
	}

	assert.Equal(t, 0, gw.callCount())
	orders, err := svc.repos.Order.List(ctx, 10, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestCheckout_AmountSentMatchesStoredTotal(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)
	ctx := context.Background()

	req := validCheckout()
	req.Items[0].Price = decimal.RequireFromString("4999999999.99")
	req.Items[0].Quantity = 2
	req.ShippingFee = decimal.Zero

	result, err := svc.Checkout(ctx, user.ID, req)
	require.NoError(t, err)

	order, err := svc.repos.Order.GetByReference(ctx, result.Reference)
	require.NoError(t, err)
	assert.Equal(t, order.TotalAmount.Shift(2).Round(0).String(), decimal.NewFromInt(gw.calls[0].Amount).String())
	assert.Equal(t, int64(999999999998), gw.calls[0].Amount)
}

func TestCheckout_RejectsSubMinorUnitPrecision(t *testing.T) {
	svc, gw, user, _ := newTestCheckout(t)

	price := validCheckout()
	price.Items[0].Price = decimal.RequireFromString("19.999")

	shipping := validCheckout()
	shipping.ShippingFee = decimal.RequireFromString("3500.005")

	trailingZero := validCheckout()
	trailingZero.Items[0].Price = decimal.RequireFromString("32000.000")

	for name, req := range map[string]CheckoutRequest{
		"item price":   price,
		"shipping fee": shipping,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := svc.Checkout(context.Background(), user.ID, req)
			var validation *errors.ErrValidation
			assert.ErrorAs(t, err, &validation)
		})
	}
	assert.Equal(t, 0, gw.callCount())

	_, err := svc.Checkout(context.Background(), user.ID, trailingZero)
	require.NoError(t, err)
	assert.Equal(t, int64(6750000), gw.calls[0].Amount)
}
