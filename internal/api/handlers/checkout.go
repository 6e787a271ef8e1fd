package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/api/middleware"
	"github.com/anchorfit/storefront/internal/service"
)

// Checkouter opens a payment session and records the pending order
type Checkouter interface {
	Checkout(ctx context.Context, userID uuid.UUID, req service.CheckoutRequest) (*service.CheckoutResult, error)
}

// CheckoutResponse represents the response
type CheckoutResponse struct {
	Success          bool   `json:"success"`
	AuthorizationURL string `json:"authorization_url"`
	Reference        string `json:"reference"`
	OrderID          string `json:"order_id"`
}

// HandleProcessPayment handles POST /api/process-payment
func HandleProcessPayment(checkout Checkouter, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.GetUserFromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var req service.CheckoutRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":   "Missing required payment information.",
				"details": err.Error(),
			})
			return
		}

		result, err := checkout.Checkout(c.Request.Context(), user.ID, req)
		if err != nil {
			respondError(c, err, logger, "checkout")
			return
		}

		c.JSON(http.StatusOK, CheckoutResponse{
			Success:          true,
			AuthorizationURL: result.AuthorizationURL,
			Reference:        result.Reference,
			OrderID:          result.OrderID,
		})
	}
}
