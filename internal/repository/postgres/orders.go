package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `
	id, user_id, reference, snapshot_version, items, customer_details,
	subtotal, discount_amount, discount_type, promo_code, shipping_fee, total_amount,
	status, shipping_carrier, tracking_number, estimated_delivery_date,
	created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order, redeemCode string) error {
	now := time.Now()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	snapshot := domain.NewOrderSnapshot(order.Items, order.Customer)
	itemsJSON, customerJSON, err := snapshot.Marshal()
	if err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		r.logger.Error("Failed to begin order transaction", zap.Error(err))
		return err
	}
	defer tx.Rollback()

	if redeemCode != "" {
		res, err := tx.ExecContext(ctx, `
			UPDATE discount_codes
			SET used_count = used_count + 1
			WHERE code = $1
			  AND is_active = true
			  AND (expires_at IS NULL OR expires_at > $2)
			  AND (usage_limit IS NULL OR used_count < usage_limit)
		`, domain.NormalizeCode(redeemCode), order.CreatedAt)
		if err != nil {
			r.logger.Error("Failed to redeem discount code", zap.Error(err))
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return &errors.ErrConflict{Resource: "discount_code", Message: "code is no longer usable"}
		}
	}

	query := `
		INSERT INTO orders (
			id, user_id, reference, snapshot_version, items, customer_details,
			subtotal, discount_amount, discount_type, promo_code, shipping_fee, total_amount,
			status, estimated_delivery_date, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	var discountType sql.NullString
	if order.DiscountType != domain.DiscountTypeNone {
		discountType = sql.NullString{String: string(order.DiscountType), Valid: true}
	}

	_, err = tx.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.Reference,
		snapshot.Version,
		itemsJSON,
		customerJSON,
		order.Subtotal,
		order.DiscountAmount,
		discountType,
		order.PromoCode,
		order.ShippingFee,
		order.TotalAmount,
		order.Status,
		order.EstimatedDeliveryDate,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &errors.ErrConflict{Resource: "order", Message: "reference already exists"}
		}
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	if err := tx.Commit(); err != nil {
		r.logger.Error("Failed to commit order", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to get order by ID", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE reference = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, reference))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: reference}
	}
	if err != nil {
		r.logger.Error("Failed to get order by reference", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		r.logger.Error("Failed to list orders for user", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *orderRepository) List(ctx context.Context, limit, offset int, status *domain.OrderStatus) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []interface{}{}
	argPos := 1

	if status != nil {
		query += fmt.Sprintf(" WHERE status = $%d", argPos)
		args = append(args, *status)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		r.logger.Error("Failed to list orders", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *orderRepository) TransitionByReference(ctx context.Context, reference string, to domain.OrderStatus) (*domain.Order, bool, error) {
	query := `
		UPDATE orders
		SET status = $2, updated_at = $3
		WHERE reference = $1 AND status = $4
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, reference, to, time.Now(), domain.OrderStatusPending))
	if err == nil {
		return order, true, nil
	}
	if err != sql.ErrNoRows {
		r.logger.Error("Failed to transition order",
			zap.String("reference", reference),
			zap.String("to", to.String()),
			zap.Error(err),
		)
		return nil, false, err
	}

	// Either the reference is unknown or the order already left pending.
	current, err := r.GetByReference(ctx, reference)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func (r *orderRepository) UpdateShipping(ctx context.Context, id uuid.UUID, carrier, trackingNumber string) (*domain.Order, error) {
	query := `
		UPDATE orders
		SET shipping_carrier = $2, tracking_number = $3, updated_at = $4
		WHERE id = $1
		RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id, carrier, trackingNumber, time.Now()))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if err != nil {
		r.logger.Error("Failed to update order shipping", zap.Error(err))
		return nil, err
	}
	return order, nil
}

func collectOrders(rows *sql.Rows) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return orders, nil
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var snapshotVersion int
	var itemsJSON, customerJSON []byte
	var discountType, promoCode, carrier, tracking sql.NullString
	var deliveryDate sql.NullTime

	err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Reference,
		&snapshotVersion,
		&itemsJSON,
		&customerJSON,
		&order.Subtotal,
		&order.DiscountAmount,
		&discountType,
		&promoCode,
		&order.ShippingFee,
		&order.TotalAmount,
		&order.Status,
		&carrier,
		&tracking,
		&deliveryDate,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	snapshot, err := domain.UnmarshalOrderSnapshot(snapshotVersion, itemsJSON, customerJSON)
	if err != nil {
		return nil, err
	}
	order.Items = snapshot.Items
	order.Customer = snapshot.Customer

	if discountType.Valid {
		order.DiscountType = domain.DiscountType(discountType.String)
	}
	if promoCode.Valid {
		order.PromoCode = &promoCode.String
	}
	if carrier.Valid {
		order.ShippingCarrier = &carrier.String
	}
	if tracking.Valid {
		order.TrackingNumber = &tracking.String
	}
	if deliveryDate.Valid {
		order.EstimatedDeliveryDate = &deliveryDate.Time
	}

	return &order, nil
}
