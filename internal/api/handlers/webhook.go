package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/paystack"
	"github.com/anchorfit/storefront/internal/service"
)

// maxWebhookBody bounds the payload read from the gateway
const maxWebhookBody = 1 << 20

// WebhookReconciler applies a verified gateway event to the order store
type WebhookReconciler interface {
	Handle(ctx context.Context, event *paystack.Event) (service.WebhookOutcome, error)
}

// HandlePaystackWebhook handles POST /api/paystack-webhook. The signature is
// checked against the raw body before anything is parsed.
func HandlePaystackWebhook(reconciler WebhookReconciler, secret string, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
		if err != nil {
			c.String(http.StatusBadRequest, "Invalid payload")
			return
		}

		if err := paystack.VerifySignature(secret, body, c.GetHeader(paystack.SignatureHeader)); err != nil {
			logger.Warn("Rejected webhook", zap.String("remote_addr", c.ClientIP()), zap.Error(err))
			c.String(http.StatusUnauthorized, "Invalid signature")
			return
		}

		event, err := paystack.ParseEvent(body)
		if err != nil {
			logger.Warn("Malformed webhook payload", zap.Error(err))
			c.String(http.StatusBadRequest, "Invalid payload")
			return
		}

		outcome, err := reconciler.Handle(c.Request.Context(), event)
		if err != nil {
			logger.Error("Webhook processing failed",
				zap.String("event", event.Event),
				zap.String("reference", event.Data.Reference),
				zap.Error(err),
			)
			c.String(http.StatusInternalServerError, "Webhook processing failed")
			return
		}

		logger.Debug("Webhook acknowledged",
			zap.String("event", event.Event),
			zap.String("outcome", string(outcome)),
		)
		c.String(http.StatusOK, "Webhook received")
	}
}
