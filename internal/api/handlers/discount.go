package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/service"
)

// DiscountLedger validates and administers promo codes
type DiscountLedger interface {
	Validate(ctx context.Context, code string) (*service.ValidateResult, error)
	Create(ctx context.Context, req service.CreatePromoRequest) (*domain.DiscountCode, error)
	List(ctx context.Context) ([]*domain.DiscountCode, error)
	Deactivate(ctx context.Context, code string) error
}

// ValidateDiscountRequest represents a promo code lookup
type ValidateDiscountRequest struct {
	Code string `json:"code"`
}

// HandleValidateDiscount handles POST /api/discount/validate
func HandleValidateDiscount(ledger DiscountLedger, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ValidateDiscountRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return
		}

		result, err := ledger.Validate(c.Request.Context(), req.Code)
		if err != nil {
			respondError(c, err, logger, "validate discount")
			return
		}

		if !result.Valid {
			c.JSON(http.StatusOK, gin.H{"valid": false, "error": "Invalid or expired discount code"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": true, "discount": result.Discount})
	}
}
