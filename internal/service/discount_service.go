package service

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/repository"
	"github.com/anchorfit/storefront/pkg/errors"
)

type discountService struct {
	repos  *repository.Repositories
	logger *zap.Logger
	now    func() time.Time
}

// NewDiscountService creates a new discount ledger service
func NewDiscountService(repos *repository.Repositories, logger *zap.Logger) *discountService {
	return &discountService{
		repos:  repos,
		logger: logger,
		now:    time.Now,
	}
}

// Validate looks a code up and reports whether it can be redeemed right now.
// Unknown, inactive, expired and exhausted codes are all reported as invalid.
func (s *discountService) Validate(ctx context.Context, code string) (*ValidateResult, error) {
	if strings.TrimSpace(code) == "" {
		return nil, &errors.ErrValidation{Message: "Code is required"}
	}

	dc, err := s.usableCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if dc == nil {
		return &ValidateResult{Valid: false}, nil
	}

	return &ValidateResult{
		Valid: true,
		Discount: &DiscountView{
			Code:               dc.Code,
			DiscountPercentage: dc.DiscountPercentage,
			ExpiresAt:          dc.ExpiresAt,
		},
	}, nil
}

// usableCode returns nil without error when the code cannot be redeemed
func (s *discountService) usableCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	dc, err := s.repos.DiscountCode.GetByCode(ctx, code)
	if err != nil {
		var notFound *errors.ErrNotFound
		if stderrors.As(err, &notFound) {
			return nil, nil
		}
		return nil, err
	}
	if !dc.Usable(s.now()) {
		return nil, nil
	}
	return dc, nil
}

// Create registers a new promo code
func (s *discountService) Create(ctx context.Context, req CreatePromoRequest) (*domain.DiscountCode, error) {
	code := domain.NormalizeCode(req.Code)
	if code == "" {
		return nil, &errors.ErrValidation{Message: "Code and discount percentage are required"}
	}
	if req.DiscountPercentage < 1 || req.DiscountPercentage > 99 {
		return nil, &errors.ErrValidation{Message: "discount percentage must be between 1 and 99"}
	}
	if req.UsageLimit != nil && *req.UsageLimit < 1 {
		return nil, &errors.ErrValidation{Message: "usage limit must be at least 1"}
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(s.now()) {
		return nil, &errors.ErrValidation{Message: "expiry must be in the future"}
	}

	dc := &domain.DiscountCode{
		Code:               code,
		DiscountPercentage: req.DiscountPercentage,
		UsageLimit:         req.UsageLimit,
		Active:             true,
		ExpiresAt:          req.ExpiresAt,
	}
	if err := s.repos.DiscountCode.Create(ctx, dc); err != nil {
		return nil, err
	}

	s.logger.Info("Promo code created",
		zap.String("code", dc.Code),
		zap.Int("discount_percentage", dc.DiscountPercentage),
	)
	return dc, nil
}

// List returns every promo code, newest first
func (s *discountService) List(ctx context.Context) ([]*domain.DiscountCode, error) {
	return s.repos.DiscountCode.List(ctx)
}

// Deactivate stops a code from being redeemed
func (s *discountService) Deactivate(ctx context.Context, code string) error {
	if err := s.repos.DiscountCode.SetActive(ctx, code, false); err != nil {
		return err
	}
	s.logger.Info("Promo code deactivated", zap.String("code", domain.NormalizeCode(code)))
	return nil
}
