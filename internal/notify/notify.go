package notify

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
)

// Notifier delivers order notices to the seller and the buyer
type Notifier interface {
	SendSellerOrderNotice(ctx context.Context, notice OrderNotice) error
	SendBuyerDeliveryConfirmation(ctx context.Context, notice OrderNotice) error
}

// OrderNotice is the data both order emails are rendered from
type OrderNotice struct {
	OrderID               string
	Reference             string
	Customer              domain.CustomerDetails
	Items                 []domain.OrderItem
	Subtotal              decimal.Decimal
	Discount              decimal.Decimal
	PromoCode             string
	ShippingFee           decimal.Decimal
	Total                 decimal.Decimal
	EstimatedDeliveryDate *time.Time
}

// NewOrderNotice builds a notice from the stored order
func NewOrderNotice(order *domain.Order) OrderNotice {
	notice := OrderNotice{
		OrderID:               order.ID.String(),
		Reference:             order.Reference,
		Customer:              order.Customer,
		Items:                 order.Items,
		Subtotal:              order.Subtotal,
		Discount:              order.DiscountAmount,
		ShippingFee:           order.ShippingFee,
		Total:                 order.TotalAmount,
		EstimatedDeliveryDate: order.EstimatedDeliveryDate,
	}
	if order.PromoCode != nil {
		notice.PromoCode = *order.PromoCode
	}
	return notice
}

// LogNotifier writes notices to the log instead of sending email
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a notifier used when no email provider is configured
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendSellerOrderNotice(ctx context.Context, notice OrderNotice) error {
	n.logger.Info("Seller order notice",
		zap.String("order_id", notice.OrderID),
		zap.String("reference", notice.Reference),
		zap.String("total", notice.Total.StringFixed(2)),
	)
	return nil
}

func (n *LogNotifier) SendBuyerDeliveryConfirmation(ctx context.Context, notice OrderNotice) error {
	n.logger.Info("Buyer delivery confirmation",
		zap.String("order_id", notice.OrderID),
		zap.String("email", notice.Customer.Email),
	)
	return nil
}
