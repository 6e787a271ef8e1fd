package service

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/repository"
	"github.com/anchorfit/storefront/pkg/errors"
)

type orderService struct {
	repos  *repository.Repositories
	logger *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(repos *repository.Repositories, logger *zap.Logger) *orderService {
	return &orderService{
		repos:  repos,
		logger: logger,
	}
}

// ListForUser returns the orders placed under the caller's profile. A user
// without a profile has no orders.
func (s *orderService) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	profile, err := s.repos.Profile.GetByEmail(ctx, user.Email)
	if err != nil {
		var notFound *errors.ErrNotFound
		if stderrors.As(err, &notFound) {
			return []*domain.Order{}, nil
		}
		return nil, err
	}

	return s.repos.Order.ListByUserID(ctx, profile.ID)
}

// ListAll returns orders across all customers, optionally filtered by status
func (s *orderService) ListAll(ctx context.Context, limit, offset int, status string) ([]*domain.Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var filter *domain.OrderStatus
	if status = strings.TrimSpace(status); status != "" {
		st := domain.OrderStatus(status)
		if !st.IsValid() {
			return nil, &errors.ErrValidation{Message: "invalid status filter"}
		}
		filter = &st
	}

	return s.repos.Order.List(ctx, limit, offset, filter)
}

// GetByReference returns the order for a gateway reference
func (s *orderService) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	return s.repos.Order.GetByReference(ctx, reference)
}

// UpdateShipping records carrier and tracking details. Status is left alone.
func (s *orderService) UpdateShipping(ctx context.Context, orderID uuid.UUID, carrier, trackingNumber string) (*domain.Order, error) {
	carrier = strings.TrimSpace(carrier)
	trackingNumber = strings.TrimSpace(trackingNumber)
	if carrier == "" || trackingNumber == "" {
		return nil, &errors.ErrValidation{Message: "carrier and tracking number are required"}
	}

	order, err := s.repos.Order.UpdateShipping(ctx, orderID, carrier, trackingNumber)
	if err != nil {
		return nil, err
	}

	// Log event
	event := &domain.OrderEvent{
		OrderID:   orderID,
		EventType: domain.OrderEventShipping,
		EventData: map[string]interface{}{
			"carrier":         carrier,
			"tracking_number": trackingNumber,
		},
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record order event", zap.String("order_id", orderID.String()), zap.Error(err))
	}

	return order, nil
}

// History returns the audit trail for an order
func (s *orderService) History(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	if _, err := s.repos.Order.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return s.repos.OrderEvent.ListByOrderID(ctx, orderID)
}
