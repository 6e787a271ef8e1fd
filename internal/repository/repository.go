package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/anchorfit/storefront/internal/domain"
)

// UserRepository stores authenticated accounts
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) error
}

// ProfileRepository stores customer profiles
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (*domain.Profile, error)
	Create(ctx context.Context, profile *domain.Profile) error
}

// OrderRepository stores orders and drives their status transitions
type OrderRepository interface {
	// Create inserts the order. When redeemCode is not empty the code's usage
	// count is incremented in the same transaction, and the whole create
	// fails with ErrConflict if the code is no longer usable at order.CreatedAt.
	Create(ctx context.Context, order *domain.Order, redeemCode string) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetByReference(ctx context.Context, reference string) (*domain.Order, error)
	ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error)
	List(ctx context.Context, limit, offset int, status *domain.OrderStatus) ([]*domain.Order, error)
	// TransitionByReference moves a pending order to the given status. It
	// returns the current order and whether this call performed the change.
	TransitionByReference(ctx context.Context, reference string, to domain.OrderStatus) (*domain.Order, bool, error)
	UpdateShipping(ctx context.Context, id uuid.UUID, carrier, trackingNumber string) (*domain.Order, error)
}

// DiscountCodeRepository stores promo codes
type DiscountCodeRepository interface {
	GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error)
	Create(ctx context.Context, code *domain.DiscountCode) error
	List(ctx context.Context) ([]*domain.DiscountCode, error)
	SetActive(ctx context.Context, code string, active bool) error
}

// OrderEventRepository stores the order audit log
type OrderEventRepository interface {
	Create(ctx context.Context, event *domain.OrderEvent) error
	ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error)
}

// Repositories groups every store the services depend on
type Repositories struct {
	User         UserRepository
	Profile      ProfileRepository
	Order        OrderRepository
	DiscountCode DiscountCodeRepository
	OrderEvent   OrderEventRepository

	// Ping checks the backing store is reachable
	Ping func(ctx context.Context) error
	// Close releases the backing store
	Close func() error
}
