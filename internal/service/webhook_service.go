package service

import (
	"context"
	stderrors "errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/notify"
	"github.com/anchorfit/storefront/internal/paystack"
	"github.com/anchorfit/storefront/internal/repository"
	"github.com/anchorfit/storefront/pkg/errors"
)

// WebhookOutcome describes what handling an event did
type WebhookOutcome string

const (
	WebhookProcessed        WebhookOutcome = "processed"
	WebhookReplayed         WebhookOutcome = "replayed"
	WebhookUnknownReference WebhookOutcome = "unknown_reference"
	WebhookIgnored          WebhookOutcome = "ignored"
)

type webhookService struct {
	repos         *repository.Repositories
	notifier      notify.Notifier
	notifyTimeout time.Duration
	logger        *zap.Logger
	wg            sync.WaitGroup
}

// NewWebhookService creates a new payment webhook reconciler
func NewWebhookService(repos *repository.Repositories, notifier notify.Notifier, notifyTimeout time.Duration, logger *zap.Logger) *webhookService {
	return &webhookService{
		repos:         repos,
		notifier:      notifier,
		notifyTimeout: notifyTimeout,
		logger:        logger,
	}
}

// Handle applies a verified gateway event to the order it references. The
// returned error is non-nil only for transient failures worth a retry.
func (s *webhookService) Handle(ctx context.Context, event *paystack.Event) (WebhookOutcome, error) {
	logger := s.logger.With(zap.String("event", event.Event), zap.String("reference", event.Data.Reference))

	target, ok := domain.PaymentEvent(event.Event).TargetStatus()
	if !ok {
		logger.Info("Ignoring unhandled webhook event")
		return WebhookIgnored, nil
	}
	if event.Data.Reference == "" {
		logger.Warn("Webhook event without reference")
		return WebhookIgnored, nil
	}

	order, transitioned, err := s.repos.Order.TransitionByReference(ctx, event.Data.Reference, target)
	if err != nil {
		var notFound *errors.ErrNotFound
		if stderrors.As(err, &notFound) {
			logger.Warn("Webhook for unknown order reference")
			return WebhookUnknownReference, nil
		}
		logger.Error("Failed to apply webhook", zap.Error(err))
		return "", err
	}

	if !transitioned {
		logger.Info("Webhook replay for settled order", zap.String("status", order.Status.String()))
		s.recordEvent(ctx, order, domain.OrderEventWebhookReplay, map[string]interface{}{
			"event":  event.Event,
			"status": order.Status,
		})
		return WebhookReplayed, nil
	}

	if expected, err := domain.ToMinorUnits(order.TotalAmount); err != nil || (event.Data.Amount != 0 && event.Data.Amount != expected) {
		logger.Warn("Webhook amount differs from order total",
			zap.Int64("event_amount", event.Data.Amount),
			zap.String("order_total", order.TotalAmount.StringFixed(2)),
		)
	}

	s.recordEvent(ctx, order, domain.OrderEventStatusChange, map[string]interface{}{
		"from":  domain.OrderStatusPending,
		"to":    target,
		"event": event.Event,
	})
	logger.Info("Order status updated", zap.String("order_id", order.ID.String()), zap.String("status", target.String()))

	if target == domain.OrderStatusCompleted {
		s.dispatchNotifications(ctx, order)
	}

	return WebhookProcessed, nil
}

// Wait blocks until in-flight notifications finish
func (s *webhookService) Wait() {
	s.wg.Wait()
}

func (s *webhookService) recordEvent(ctx context.Context, order *domain.Order, eventType domain.OrderEventType, data map[string]interface{}) {
	event := &domain.OrderEvent{
		OrderID:   order.ID,
		EventType: eventType,
		EventData: data,
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record order event", zap.String("order_id", order.ID.String()), zap.Error(err))
	}
}

// dispatchNotifications sends both emails off the request path. Failures are
// logged and never reach the webhook response.
func (s *webhookService) dispatchNotifications(ctx context.Context, order *domain.Order) {
	notice := notify.NewOrderNotice(order)
	base := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ctx := base
		if s.notifyTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(base, s.notifyTimeout)
			defer cancel()
		}

		logger := s.logger.With(zap.String("order_id", notice.OrderID), zap.String("reference", notice.Reference))
		if err := s.notifier.SendSellerOrderNotice(ctx, notice); err != nil {
			logger.Error("Failed to send seller order notice", zap.Error(err))
		}
		if err := s.notifier.SendBuyerDeliveryConfirmation(ctx, notice); err != nil {
			logger.Error("Failed to send buyer delivery confirmation", zap.Error(err))
		}
	}()
}
