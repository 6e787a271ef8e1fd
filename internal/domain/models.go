package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User represents an authenticated account
type User struct {
	ID            uuid.UUID
	Email         string
	PasswordHash  string
	EmailVerified bool
	IsAdmin       bool
	CreatedAt     time.Time
}

// Profile is the customer record orders are attached to. It is resolved
// from the user's email and has its own id.
type Profile struct {
	ID        uuid.UUID
	Email     string
	FullName  string
	Phone     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Order represents a storefront order awaiting or past payment
type Order struct {
	ID                    uuid.UUID
	UserID                uuid.UUID // profile id
	Reference             string    // gateway reference, immutable once set
	Items                 []OrderItem
	Customer              CustomerDetails
	Subtotal              decimal.Decimal
	DiscountAmount        decimal.Decimal
	DiscountType          DiscountType
	PromoCode             *string
	ShippingFee           decimal.Decimal
	TotalAmount           decimal.Decimal
	Status                OrderStatus
	ShippingCarrier       *string
	TrackingNumber        *string
	EstimatedDeliveryDate *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// OrderItem is a frozen line item captured at checkout
type OrderItem struct {
	ProductID string
	Name      string
	Size      string
	Color     string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal returns unit price times quantity
func (i OrderItem) LineTotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CustomerDetails holds delivery details entered at checkout
type CustomerDetails struct {
	Name    string
	Email   string
	Phone   string
	Address string
	State   string
}

// MissingFields lists the required delivery fields that are blank
func (c CustomerDetails) MissingFields() []string {
	var missing []string
	fields := []struct {
		name  string
		value string
	}{
		{"email", c.Email},
		{"name", c.Name},
		{"address", c.Address},
		{"phone", c.Phone},
		{"state", c.State},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// DiscountCode is a promo code managed by administrators
type DiscountCode struct {
	ID                 uuid.UUID
	Code               string
	DiscountPercentage int
	UsageLimit         *int
	UsedCount          int
	Active             bool
	ExpiresAt          *time.Time
	CreatedAt          time.Time
}

// Usable reports whether the code may be redeemed at the given instant
func (d *DiscountCode) Usable(now time.Time) bool {
	if !d.Active {
		return false
	}
	if d.ExpiresAt != nil && !d.ExpiresAt.After(now) {
		return false
	}
	if d.UsageLimit != nil && d.UsedCount >= *d.UsageLimit {
		return false
	}
	return true
}

// NormalizeCode returns the canonical stored form of a promo code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// OrderEvent represents an audit event for an order
type OrderEvent struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	EventType OrderEventType
	EventData map[string]interface{} // JSONB
	CreatedAt time.Time
}
