package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/service"
)

// PromoCodeResponse represents a promo code in admin listings
type PromoCodeResponse struct {
	ID                 string  `json:"id"`
	Code               string  `json:"code"`
	DiscountPercentage int     `json:"discount_percentage"`
	UsageLimit         *int    `json:"usage_limit"`
	UsedCount          int     `json:"used_count"`
	Active             bool    `json:"active"`
	ExpiresAt          *string `json:"expires_at"`
	CreatedAt          string  `json:"created_at"`
}

func toPromoCodeResponse(dc *domain.DiscountCode) PromoCodeResponse {
	resp := PromoCodeResponse{
		ID:                 dc.ID.String(),
		Code:               dc.Code,
		DiscountPercentage: dc.DiscountPercentage,
		UsageLimit:         dc.UsageLimit,
		UsedCount:          dc.UsedCount,
		Active:             dc.Active,
		CreatedAt:          dc.CreatedAt.Format(time.RFC3339),
	}
	if dc.ExpiresAt != nil {
		exp := dc.ExpiresAt.Format(time.RFC3339)
		resp.ExpiresAt = &exp
	}
	return resp
}

// OrderEventResponse represents one audit entry
type OrderEventResponse struct {
	ID        string                 `json:"id"`
	EventType domain.OrderEventType  `json:"event_type"`
	EventData map[string]interface{} `json:"event_data"`
	CreatedAt string                 `json:"created_at"`
}

// HandleListOrders handles GET /api/admin/orders
func HandleListOrders(orders OrderReader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
		offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

		list, err := orders.ListAll(c.Request.Context(), limit, offset, c.Query("status"))
		if err != nil {
			respondError(c, err, logger, "list all orders")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"orders": toOrderResponses(list),
			"limit":  limit,
			"offset": offset,
		})
	}
}

// HandleUpdateShipping handles POST /api/admin/orders/:id/shipping
func HandleUpdateShipping(orders OrderReader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		var req service.UpdateShippingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		order, err := orders.UpdateShipping(c.Request.Context(), orderID, req.Carrier, req.TrackingNumber)
		if err != nil {
			respondError(c, err, logger, "update shipping")
			return
		}

		c.JSON(http.StatusOK, toOrderResponse(order))
	}
}

// HandleOrderHistory handles GET /api/admin/orders/:id/events
func HandleOrderHistory(orders OrderReader, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		orderID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order ID"})
			return
		}

		events, err := orders.History(c.Request.Context(), orderID)
		if err != nil {
			respondError(c, err, logger, "order history")
			return
		}

		out := make([]OrderEventResponse, len(events))
		for i, e := range events {
			out[i] = OrderEventResponse{
				ID:        e.ID.String(),
				EventType: e.EventType,
				EventData: e.EventData,
				CreatedAt: e.CreatedAt.Format(time.RFC3339Nano),
			}
		}
		c.JSON(http.StatusOK, gin.H{"events": out})
	}
}

// HandleGeneratePromo handles POST /api/admin/generate-promo
func HandleGeneratePromo(ledger DiscountLedger, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req service.CreatePromoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		dc, err := ledger.Create(c.Request.Context(), req)
		if err != nil {
			respondError(c, err, logger, "generate promo")
			return
		}

		c.JSON(http.StatusCreated, gin.H{"success": true, "promo": toPromoCodeResponse(dc)})
	}
}

// HandleListPromoCodes handles GET /api/admin/promo-codes
func HandleListPromoCodes(ledger DiscountLedger, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		codes, err := ledger.List(c.Request.Context())
		if err != nil {
			respondError(c, err, logger, "list promo codes")
			return
		}

		out := make([]PromoCodeResponse, len(codes))
		for i, dc := range codes {
			out[i] = toPromoCodeResponse(dc)
		}
		c.JSON(http.StatusOK, gin.H{"promo_codes": out})
	}
}

// HandleDeactivatePromo handles POST /api/admin/promo-codes/:code/deactivate
func HandleDeactivatePromo(ledger DiscountLedger, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		code := c.Param("code")
		if err := ledger.Deactivate(c.Request.Context(), code); err != nil {
			respondError(c, err, logger, "deactivate promo")
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "code": domain.NormalizeCode(code), "active": false})
	}
}
