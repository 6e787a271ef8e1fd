package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/api/middleware"
	"github.com/anchorfit/storefront/internal/domain"
)

// OrderReader is the order surface used by customer and admin routes
type OrderReader interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	ListAll(ctx context.Context, limit, offset int, status string) ([]*domain.Order, error)
	UpdateShipping(ctx context.Context, orderID uuid.UUID, carrier, trackingNumber string) (*domain.Order, error)
	History(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// OrderResponse represents the order response
type OrderResponse struct {
	ID                    string              `json:"id"`
	Reference             string              `json:"reference"`
	Status                domain.OrderStatus  `json:"status"`
	Items                 []OrderItemResponse `json:"items"`
	Customer              CustomerResponse    `json:"customer_details"`
	Subtotal              string              `json:"subtotal"`
	DiscountAmount        string              `json:"discount_amount"`
	DiscountType          domain.DiscountType `json:"discount_type,omitempty"`
	PromoCode             *string             `json:"promo_code,omitempty"`
	ShippingFee           string              `json:"shipping_fee"`
	TotalAmount           string              `json:"total_amount"`
	ShippingCarrier       *string             `json:"shipping_carrier,omitempty"`
	TrackingNumber        *string             `json:"tracking_number,omitempty"`
	EstimatedDeliveryDate *string             `json:"estimated_delivery_date,omitempty"`
	CreatedAt             string              `json:"created_at"`
	UpdatedAt             string              `json:"updated_at"`
}

type CustomerResponse struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	State   string `json:"state"`
}

type OrderItemResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Size     string `json:"size,omitempty"`
	Color    string `json:"color,omitempty"`
	Price    string `json:"price"`
	Quantity int    `json:"quantity"`
}

func toOrderResponse(order *domain.Order) OrderResponse {
	items := make([]OrderItemResponse, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItemResponse{
			ID:       item.ProductID,
			Name:     item.Name,
			Size:     item.Size,
			Color:    item.Color,
			Price:    item.UnitPrice.StringFixed(2),
			Quantity: item.Quantity,
		}
	}

	resp := OrderResponse{
		ID:        order.ID.String(),
		Reference: order.Reference,
		Status:    order.Status,
		Items:     items,
		Customer: CustomerResponse{
			Name:    order.Customer.Name,
			Email:   order.Customer.Email,
			Phone:   order.Customer.Phone,
			Address: order.Customer.Address,
			State:   order.Customer.State,
		},
		Subtotal:        order.Subtotal.StringFixed(2),
		DiscountAmount:  order.DiscountAmount.StringFixed(2),
		DiscountType:    order.DiscountType,
		PromoCode:       order.PromoCode,
		ShippingFee:     order.ShippingFee.StringFixed(2),
		TotalAmount:     order.TotalAmount.StringFixed(2),
		ShippingCarrier: order.ShippingCarrier,
		TrackingNumber:  order.TrackingNumber,
		CreatedAt:       order.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       order.UpdatedAt.Format(time.RFC3339),
	}
	if order.EstimatedDeliveryDate != nil {
		d := order.EstimatedDeliveryDate.Format("2006-01-02")
		resp.EstimatedDeliveryDate = &d
	}
	return resp
}

func toOrderResponses(orders []*domain.Order) []OrderResponse {
	out := make([]OrderResponse, len(orders))
	for i, o := range orders {
		out[i] = toOrderResponse(o)
	}
	return out
}

// HandleListMyOrders handles GET /api/orders
func HandleListMyOrders(orders OrderReader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		list, err := orders.ListForUser(c.Request.Context(), user.ID)
		if err != nil {
			respondError(c, err, logger, "list orders")
			return
		}

		c.JSON(http.StatusOK, gin.H{"orders": toOrderResponses(list)})
	}
}
