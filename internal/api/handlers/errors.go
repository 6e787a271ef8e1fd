package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/pkg/errors"
)

// respondError maps a service error onto an HTTP response. Unknown errors are
// logged and reported as 500 without leaking details.
func respondError(c *gin.Context, err error, logger *zap.Logger, action string) {
	var (
		validation   *errors.ErrValidation
		unauthorized *errors.ErrUnauthorized
		forbidden    *errors.ErrForbidden
		notFound     *errors.ErrNotFound
		gateway      *errors.ErrGateway
		noProfile    *errors.ErrProfileMissing
		conflict     *errors.ErrConflict
		transition   *errors.ErrInvalidStateTransition
	)

	switch {
	case stderrors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Message})
	case stderrors.As(err, &noProfile):
		c.JSON(http.StatusBadRequest, gin.H{"error": "User profile not found", "code": "profile_missing"})
	case stderrors.As(err, &unauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": unauthorized.Message})
	case stderrors.As(err, &forbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": forbidden.Message})
	case stderrors.As(err, &notFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFound.Resource + " not found"})
	case stderrors.As(err, &conflict), stderrors.As(err, &transition):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case stderrors.As(err, &gateway):
		logger.Error("Payment gateway error", zap.String("action", action), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment initialization failed"})
	default:
		logger.Error("Request failed", zap.String("action", action), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindError reports a request body that failed to bind
func bindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "validation failed",
		"details": err.Error(),
	})
}
