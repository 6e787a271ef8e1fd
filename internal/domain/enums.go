package domain

import "strings"

// OrderStatus represents the status of a storefront order
type OrderStatus string

const (
	OrderStatusPending       OrderStatus = "pending"
	OrderStatusCompleted     OrderStatus = "completed"
	OrderStatusPaymentFailed OrderStatus = "payment_failed"
	OrderStatusCancelled     OrderStatus = "cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the order status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusCompleted,
		OrderStatusPaymentFailed,
		OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition is permitted
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusCompleted, OrderStatusPaymentFailed, OrderStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusCompleted ||
			newStatus == OrderStatusPaymentFailed ||
			newStatus == OrderStatusCancelled
	case OrderStatusCompleted, OrderStatusPaymentFailed, OrderStatusCancelled:
		return false // Terminal states
	default:
		return false
	}
}

// DiscountType describes where an order's discount came from
type DiscountType string

const (
	DiscountTypeNone      DiscountType = ""
	DiscountTypePromoCode DiscountType = "promo_code"
)

// PaymentEvent is a gateway webhook event type, e.g. "charge.success"
type PaymentEvent string

const (
	PaymentEventChargeSuccess PaymentEvent = "charge.success"
)

// TargetStatus maps a gateway event to the terminal order status it drives.
// ok is false for events the storefront does not act on.
func (e PaymentEvent) TargetStatus() (status OrderStatus, ok bool) {
	name := strings.ToLower(string(e))
	switch {
	case e == PaymentEventChargeSuccess:
		return OrderStatusCompleted, true
	case strings.Contains(name, "failed"):
		return OrderStatusPaymentFailed, true
	case strings.Contains(name, "cancel"), strings.Contains(name, "abandon"):
		return OrderStatusCancelled, true
	default:
		return "", false
	}
}

// OrderEventType names an audit entry in the order event log
type OrderEventType string

const (
	OrderEventCreated       OrderEventType = "order_created"
	OrderEventStatusChange  OrderEventType = "status_change"
	OrderEventShipping      OrderEventType = "shipping_updated"
	OrderEventWebhookReplay OrderEventType = "webhook_replay"
)
