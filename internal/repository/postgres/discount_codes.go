package postgres

import (
	"context"
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/pkg/errors"
)

type discountCodeRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewDiscountCodeRepository creates a new discount code repository
func NewDiscountCodeRepository(db *sql.DB, logger *zap.Logger) *discountCodeRepository {
	return &discountCodeRepository{
		db:     db,
		logger: logger,
	}
}

const discountCodeColumns = `id, code, discount_percentage, usage_limit, used_count, is_active, expires_at, created_at`

func (r *discountCodeRepository) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	query := `SELECT ` + discountCodeColumns + ` FROM discount_codes WHERE code = $1`

	normalized := domain.NormalizeCode(code)
	dc, err := scanDiscountCode(r.db.QueryRowContext(ctx, query, normalized))
	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "discount_code", ID: normalized}
	}
	if err != nil {
		r.logger.Error("Failed to get discount code", zap.Error(err))
		return nil, err
	}
	return dc, nil
}

func (r *discountCodeRepository) Create(ctx context.Context, code *domain.DiscountCode) error {
	query := `
		INSERT INTO discount_codes (id, code, discount_percentage, usage_limit, used_count, is_active, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	code.Code = domain.NormalizeCode(code.Code)

	_, err := r.db.ExecContext(ctx, query,
		code.ID,
		code.Code,
		code.DiscountPercentage,
		code.UsageLimit,
		code.UsedCount,
		code.Active,
		code.ExpiresAt,
		code.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
			return &errors.ErrConflict{Resource: "discount_code", Message: "code already exists"}
		}
		r.logger.Error("Failed to create discount code", zap.Error(err))
		return err
	}

	return nil
}

func (r *discountCodeRepository) List(ctx context.Context) ([]*domain.DiscountCode, error) {
	query := `SELECT ` + discountCodeColumns + ` FROM discount_codes ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list discount codes", zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	codes := []*domain.DiscountCode{}
	for rows.Next() {
		dc, err := scanDiscountCode(rows)
		if err != nil {
			return nil, err
		}
		codes = append(codes, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return codes, nil
}

func (r *discountCodeRepository) SetActive(ctx context.Context, code string, active bool) error {
	query := `UPDATE discount_codes SET is_active = $2 WHERE code = $1`

	normalized := domain.NormalizeCode(code)
	res, err := r.db.ExecContext(ctx, query, normalized, active)
	if err != nil {
		r.logger.Error("Failed to update discount code", zap.Error(err))
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return &errors.ErrNotFound{Resource: "discount_code", ID: normalized}
	}
	return nil
}

func scanDiscountCode(row rowScanner) (*domain.DiscountCode, error) {
	var dc domain.DiscountCode
	var usageLimit sql.NullInt64
	var expiresAt sql.NullTime

	err := row.Scan(
		&dc.ID,
		&dc.Code,
		&dc.DiscountPercentage,
		&usageLimit,
		&dc.UsedCount,
		&dc.Active,
		&expiresAt,
		&dc.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if usageLimit.Valid {
		limit := int(usageLimit.Int64)
		dc.UsageLimit = &limit
	}
	if expiresAt.Valid {
		dc.ExpiresAt = &expiresAt.Time
	}
	return &dc, nil
}
