package service

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/internal/paystack"
	"github.com/anchorfit/storefront/internal/repository"
	"github.com/anchorfit/storefront/pkg/errors"
)

// PaymentGateway opens hosted payment sessions
type PaymentGateway interface {
	InitializeTransaction(ctx context.Context, req paystack.InitializeRequest) (*paystack.Transaction, error)
}

const missingPaymentInfo = "Missing required payment information."

type checkoutService struct {
	repos     *repository.Repositories
	discounts *discountService
	gateway   PaymentGateway
	timeout   time.Duration
	logger    *zap.Logger
	now       func() time.Time
}

// NewCheckoutService creates a new checkout orchestrator. timeout bounds the
// gateway call; zero leaves it to the gateway client.
func NewCheckoutService(repos *repository.Repositories, gateway PaymentGateway, timeout time.Duration, logger *zap.Logger) *checkoutService {
	return &checkoutService{
		repos:     repos,
		discounts: NewDiscountService(repos, logger),
		gateway:   gateway,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

// Checkout prices the cart, opens a gateway transaction and persists a
// pending order keyed by the gateway reference. No order is written when the
// gateway call fails.
func (s *checkoutService) Checkout(ctx context.Context, userID uuid.UUID, req CheckoutRequest) (*CheckoutResult, error) {
	items, customer, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	discountPercent, promoCode, err := s.resolveDiscount(ctx, req)
	if err != nil {
		return nil, err
	}

	profile, err := s.resolveProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	totals := domain.ComputeTotals(items, discountPercent, req.ShippingFee)
	if totals.Subtotal.GreaterThan(domain.MaxAmount) || totals.Total.GreaterThan(domain.MaxAmount) {
		return nil, &errors.ErrValidation{Message: "order total exceeds the maximum allowed amount"}
	}
	amount, err := domain.ToMinorUnits(totals.Total)
	if err != nil {
		return nil, &errors.ErrValidation{Message: "order total exceeds the maximum allowed amount"}
	}
	if amount <= 0 {
		return nil, &errors.ErrValidation{Message: "order total must be greater than zero"}
	}

	tx, err := s.initializeTransaction(ctx, userID, customer, items, amount)
	if err != nil {
		return nil, err
	}

	now := s.now()
	delivery := domain.EstimatedDeliveryDate(now)
	order := &domain.Order{
		UserID:                profile.ID,
		Reference:             tx.Reference,
		Items:                 items,
		Customer:              customer,
		Subtotal:              totals.Subtotal,
		DiscountAmount:        totals.DiscountAmount,
		ShippingFee:           totals.ShippingFee,
		TotalAmount:           totals.Total,
		Status:                domain.OrderStatusPending,
		EstimatedDeliveryDate: &delivery,
		CreatedAt:             now,
	}
	if promoCode != "" {
		order.DiscountType = domain.DiscountTypePromoCode
		order.PromoCode = &promoCode
	}

	if err := s.repos.Order.Create(ctx, order, promoCode); err != nil {
		s.logger.Error("Failed to persist order after gateway initialization",
			zap.String("reference", tx.Reference),
			zap.Error(err),
		)
		var conflict *errors.ErrConflict
		if stderrors.As(err, &conflict) && conflict.Resource == "discount_code" {
			return nil, &errors.ErrValidation{Message: "promo code is no longer valid"}
		}
		return nil, err
	}

	event := &domain.OrderEvent{
		OrderID:   order.ID,
		EventType: domain.OrderEventCreated,
		EventData: map[string]interface{}{
			"reference":    order.Reference,
			"total_amount": order.TotalAmount.StringFixed(2),
			"amount_kobo":  amount,
		},
	}
	if err := s.repos.OrderEvent.Create(ctx, event); err != nil {
		s.logger.Warn("Failed to record order event", zap.String("order_id", order.ID.String()), zap.Error(err))
	}

	s.logger.Info("Order created",
		zap.String("order_id", order.ID.String()),
		zap.String("reference", order.Reference),
		zap.Int64("amount_kobo", amount),
	)

	return &CheckoutResult{
		AuthorizationURL: tx.AuthorizationURL,
		Reference:        tx.Reference,
		OrderID:          order.ID.String(),
	}, nil
}

func (s *checkoutService) validate(req CheckoutRequest) ([]domain.OrderItem, domain.CustomerDetails, error) {
	customer := domain.CustomerDetails{
		Name:    strings.TrimSpace(req.CustomerDetails.Name),
		Email:   strings.TrimSpace(req.CustomerDetails.Email),
		Phone:   strings.TrimSpace(req.CustomerDetails.Phone),
		Address: strings.TrimSpace(req.CustomerDetails.Address),
		State:   strings.TrimSpace(req.CustomerDetails.State),
	}

	if len(req.Items) == 0 || len(customer.MissingFields()) > 0 {
		return nil, customer, &errors.ErrValidation{Message: missingPaymentInfo}
	}
	if req.ShippingFee.IsNegative() {
		return nil, customer, &errors.ErrValidation{Message: "shipping fee cannot be negative"}
	}
	if !domain.HasMinorUnitPrecision(req.ShippingFee) {
		return nil, customer, &errors.ErrValidation{Message: "shipping fee cannot have more than 2 decimal places"}
	}

	items := make([]domain.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return nil, customer, &errors.ErrValidation{Message: "item quantity must be at least 1"}
		}
		if !it.Price.IsPositive() {
			return nil, customer, &errors.ErrValidation{Message: "item price must be greater than zero"}
		}
		if !domain.HasMinorUnitPrecision(it.Price) {
			return nil, customer, &errors.ErrValidation{Message: "item price cannot have more than 2 decimal places"}
		}
		items = append(items, domain.OrderItem{
			ProductID: it.ID,
			Name:      it.Name,
			Size:      it.Size,
			Color:     it.Color,
			UnitPrice: it.Price,
			Quantity:  it.Quantity,
		})
	}

	return items, customer, nil
}

// resolveDiscount takes the percentage from the ledger, never from the client
func (s *checkoutService) resolveDiscount(ctx context.Context, req CheckoutRequest) (int, string, error) {
	if req.PromoCode == nil || strings.TrimSpace(*req.PromoCode) == "" {
		if !req.Discount.IsZero() {
			return 0, "", &errors.ErrValidation{Message: "a discount requires a valid promo code"}
		}
		return 0, "", nil
	}

	dc, err := s.discounts.usableCode(ctx, *req.PromoCode)
	if err != nil {
		return 0, "", err
	}
	if dc == nil {
		return 0, "", &errors.ErrValidation{Message: "invalid or expired promo code"}
	}

	if !req.Discount.IsZero() && req.Discount.IntPart() != int64(dc.DiscountPercentage) {
		s.logger.Warn("Client discount does not match promo code",
			zap.String("code", dc.Code),
			zap.String("client_discount", req.Discount.String()),
			zap.Int("discount_percentage", dc.DiscountPercentage),
		)
	}

	return dc.DiscountPercentage, dc.Code, nil
}

func (s *checkoutService) resolveProfile(ctx context.Context, userID uuid.UUID) (*domain.Profile, error) {
	user, err := s.repos.User.GetByID(ctx, userID)
	if err != nil {
		var notFound *errors.ErrNotFound
		if stderrors.As(err, &notFound) {
			return nil, &errors.ErrUnauthorized{Message: "unauthorized"}
		}
		return nil, err
	}

	profile, err := s.repos.Profile.GetByEmail(ctx, user.Email)
	if err != nil {
		var notFound *errors.ErrNotFound
		if stderrors.As(err, &notFound) {
			return nil, &errors.ErrProfileMissing{UserID: userID.String()}
		}
		return nil, err
	}
	return profile, nil
}

func (s *checkoutService) initializeTransaction(
	ctx context.Context,
	userID uuid.UUID,
	customer domain.CustomerDetails,
	items []domain.OrderItem,
	amount int64,
) (*paystack.Transaction, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	summary := make([]map[string]interface{}, 0, len(items))
	for _, it := range items {
		summary = append(summary, map[string]interface{}{"name": it.Name, "quantity": it.Quantity})
	}
	itemsJSON, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	tx, err := s.gateway.InitializeTransaction(ctx, paystack.InitializeRequest{
		Email:  customer.Email,
		Amount: amount,
		Metadata: map[string]interface{}{
			"user_id":       userID.String(),
			"customer_name": customer.Name,
			"items":         string(itemsJSON),
		},
	})
	if err != nil {
		s.logger.Error("Failed to initialize payment", zap.Int64("amount_kobo", amount), zap.Error(err))
		return nil, &errors.ErrGateway{Message: "failed to initialize transaction", Err: err}
	}
	return tx, nil
}
