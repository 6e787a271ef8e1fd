package service

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutRequest represents the checkout payload
type CheckoutRequest struct {
	Items           []CheckoutItem  `json:"items" binding:"required,min=1,dive"`
	CustomerDetails CustomerInput   `json:"customerDetails" binding:"required"`
	Discount        decimal.Decimal `json:"discount"`
	PromoCode       *string         `json:"promoCode"`
	ShippingFee     decimal.Decimal `json:"shippingFee"`
}

type CheckoutItem struct {
	ID       string          `json:"id" binding:"required"`
	Name     string          `json:"name" binding:"required"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity" binding:"required,min=1"`
	Size     string          `json:"size"`
	Color    string          `json:"color"`
}

type CustomerInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	State   string `json:"state"`
}

// CheckoutResult is returned once the gateway session is open and the order persisted
type CheckoutResult struct {
	AuthorizationURL string
	Reference        string
	OrderID          string
}

// CreatePromoRequest represents an admin promo code creation
type CreatePromoRequest struct {
	Code               string     `json:"code" binding:"required"`
	DiscountPercentage int        `json:"discount_percentage" binding:"required,min=1,max=99"`
	UsageLimit         *int       `json:"usage_limit" binding:"omitempty,min=1"`
	ExpiresAt          *time.Time `json:"expires_at"`
}

// ValidateResult is the outcome of a discount lookup
type ValidateResult struct {
	Valid    bool
	Discount *DiscountView
}

// DiscountView is the public shape of a usable discount code
type DiscountView struct {
	Code               string     `json:"code"`
	DiscountPercentage int        `json:"discount_percentage"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
}

// UpdateShippingRequest represents carrier and tracking details set by an admin
type UpdateShippingRequest struct {
	Carrier        string `json:"carrier" binding:"required"`
	TrackingNumber string `json:"tracking_number" binding:"required"`
}

// SignInRequest represents email/password credentials
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}
