package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals_PromoAndShipping(t *testing.T) {
	items := []OrderItem{
		{ProductID: "tee-01", Name: "Anchor Tee", Size: "M", Color: "Black", UnitPrice: decimal.NewFromInt(32000), Quantity: 2},
	}

	totals := ComputeTotals(items, 10, decimal.NewFromInt(3500))

	assert.True(t, decimal.NewFromInt(64000).Equal(totals.Subtotal))
	assert.True(t, decimal.NewFromInt(6400).Equal(totals.DiscountAmount))
	assert.True(t, decimal.NewFromInt(61100).Equal(totals.Total))
	amount, err := ToMinorUnits(totals.Total)
	require.NoError(t, err)
	assert.Equal(t, int64(6110000), amount)
}

func TestComputeTotals_NoDiscount(t *testing.T) {
	items := []OrderItem{
		{UnitPrice: decimal.RequireFromString("1999.99"), Quantity: 1},
		{UnitPrice: decimal.RequireFromString("500.50"), Quantity: 3},
	}

	totals := ComputeTotals(items, 0, decimal.Zero)

	assert.True(t, decimal.RequireFromString("3501.49").Equal(totals.Subtotal))
	assert.True(t, totals.DiscountAmount.IsZero())
	assert.True(t, totals.Subtotal.Equal(totals.Total))
}

func TestComputeTotals_DiscountRoundedToCents(t *testing.T) {
	items := []OrderItem{{UnitPrice: decimal.RequireFromString("333.33"), Quantity: 1}}

	totals := ComputeTotals(items, 15, decimal.Zero)

	// 333.33 * 0.15 = 49.9995
	assert.Equal(t, "50", totals.DiscountAmount.String())
	assert.Equal(t, "283.33", totals.Total.String())
}

func TestToMinorUnits(t *testing.T) {
	tests := []struct {
		amount string
		want   int64
	}{
		{"61100", 6110000},
		{"0.1", 10},
		{"1234.565", 123457},
		{"19.99", 1999},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.amount, func(t *testing.T) {
			got, err := ToMinorUnits(decimal.RequireFromString(tt.amount))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToMinorUnits_OutOfRange(t *testing.T) {
	for _, amount := range []string{"10000000000", "184467440737095517.17", "-10000000000"} {
		t.Run(amount, func(t *testing.T) {
			_, err := ToMinorUnits(decimal.RequireFromString(amount))
			assert.Error(t, err)
		})
	}

	got, err := ToMinorUnits(MaxAmount)
	require.NoError(t, err)
	assert.Equal(t, int64(999999999999), got)
}

func TestHasMinorUnitPrecision(t *testing.T) {
	assert.True(t, HasMinorUnitPrecision(decimal.RequireFromString("19.99")))
	assert.True(t, HasMinorUnitPrecision(decimal.RequireFromString("19.990")))
	assert.True(t, HasMinorUnitPrecision(decimal.NewFromInt(3500)))
	assert.False(t, HasMinorUnitPrecision(decimal.RequireFromString("19.999")))
}

func TestEstimatedDeliveryDate(t *testing.T) {
	tests := []struct {
		name string
		from time.Time
		want time.Time
	}{
		{
			name: "monday",
			from: time.Date(2024, 6, 3, 15, 0, 0, 0, time.UTC),
			want: time.Date(2024, 6, 6, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "thursday skips weekend",
			from: time.Date(2024, 6, 6, 9, 0, 0, 0, time.UTC),
			want: time.Date(2024, 6, 11, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "saturday",
			from: time.Date(2024, 6, 8, 9, 0, 0, 0, time.UTC),
			want: time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimatedDeliveryDate(tt.from)
			assert.True(t, tt.want.Equal(got), "got %s", got)
		})
	}
}

func TestOrderStatus_CanTransitionTo(t *testing.T) {
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCompleted))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusPaymentFailed))
	assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusPending))

	for _, terminal := range []OrderStatus{OrderStatusCompleted, OrderStatusPaymentFailed, OrderStatusCancelled} {
		assert.True(t, terminal.IsTerminal())
		for _, to := range []OrderStatus{OrderStatusPending, OrderStatusCompleted, OrderStatusPaymentFailed, OrderStatusCancelled} {
			assert.False(t, terminal.CanTransitionTo(to), "%s -> %s", terminal, to)
		}
	}
}

func TestPaymentEvent_TargetStatus(t *testing.T) {
	tests := []struct {
		event  PaymentEvent
		want   OrderStatus
		wantOK bool
	}{
		{"charge.success", OrderStatusCompleted, true},
		{"charge.failed", OrderStatusPaymentFailed, true},
		{"transfer.failed", OrderStatusPaymentFailed, true},
		{"charge.abandoned", OrderStatusCancelled, true},
		{"charge.cancelled", OrderStatusCancelled, true},
		{"subscription.create", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.event), func(t *testing.T) {
			got, ok := tt.event.TargetStatus()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDiscountCode_Usable(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)
	limit := 5

	tests := []struct {
		name string
		code DiscountCode
		want bool
	}{
		{"active no limits", DiscountCode{Active: true}, true},
		{"inactive", DiscountCode{Active: false}, false},
		{"expired", DiscountCode{Active: true, ExpiresAt: &past}, false},
		{"expires exactly now", DiscountCode{Active: true, ExpiresAt: &now}, false},
		{"not yet expired", DiscountCode{Active: true, ExpiresAt: &future}, true},
		{"at limit", DiscountCode{Active: true, UsageLimit: &limit, UsedCount: 5}, false},
		{"under limit", DiscountCode{Active: true, UsageLimit: &limit, UsedCount: 4}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.Usable(now))
		})
	}
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SAVE10", NormalizeCode("  save10 "))
}

func TestCustomerDetails_MissingFields(t *testing.T) {
	c := CustomerDetails{Name: "Ada", Email: "ada@example.com", Phone: "0800", Address: "  ", State: "Lagos"}
	assert.Equal(t, []string{"address"}, c.MissingFields())

	c.Address = "1 Marina"
	assert.Empty(t, c.MissingFields())
}

func TestOrderSnapshot_RoundTripAndVersioning(t *testing.T) {
	snapshot := NewOrderSnapshot(
		[]OrderItem{{ProductID: "hoodie", Name: "Hoodie", Size: "L", Color: "Navy", UnitPrice: decimal.RequireFromString("45000.50"), Quantity: 1}},
		CustomerDetails{Name: "Ada", Email: "ada@example.com", Phone: "0800", Address: "1 Marina", State: "Lagos"},
	)

	items, customer, err := snapshot.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(items), `"price":"45000.5"`)

	decoded, err := UnmarshalOrderSnapshot(CurrentSnapshotVersion, items, customer)
	require.NoError(t, err)
	assert.Equal(t, snapshot.Customer, decoded.Customer)
	require.Len(t, decoded.Items, 1)
	assert.True(t, snapshot.Items[0].UnitPrice.Equal(decoded.Items[0].UnitPrice))

	_, err = UnmarshalOrderSnapshot(99, items, customer)
	assert.Error(t, err)
}
