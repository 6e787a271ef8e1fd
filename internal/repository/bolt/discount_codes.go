package bolt

import (
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/pkg/errors"
)

type discountCodeRepository struct {
	db     *bolt.DB
	logger *zap.Logger
}

func (r *discountCodeRepository) GetByCode(ctx context.Context, code string) (*domain.DiscountCode, error) {
	normalized := domain.NormalizeCode(code)

	var dc domain.DiscountCode
	err := r.db.View(func(tx *bolt.Tx) error {
		ok, err := getJSON(tx.Bucket(bucketDiscountCodes), []byte(normalized), &dc)
		if err != nil {
			return err
		}
		if !ok {
			return &errors.ErrNotFound{Resource: "discount_code", ID: normalized}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &dc, nil
}

func (r *discountCodeRepository) Create(ctx context.Context, code *domain.DiscountCode) error {
	if code.ID == uuid.Nil {
		code.ID = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now().UTC()
	}
	code.Code = domain.NormalizeCode(code.Code)

	err := r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDiscountCodes)
		if b.Get([]byte(code.Code)) != nil {
			return &errors.ErrConflict{Resource: "discount_code", Message: "code already exists"}
		}
		return putJSON(b, []byte(code.Code), code)
	})
	if err != nil {
		r.logger.Error("Failed to create discount code", zap.Error(err))
		return err
	}
	return nil
}

func (r *discountCodeRepository) List(ctx context.Context) ([]*domain.DiscountCode, error) {
	codes := []*domain.DiscountCode{}
	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketDiscountCodes).ForEach(func(k, v []byte) error {
			var dc domain.DiscountCode
			if err := json.Unmarshal(v, &dc); err != nil {
				return err
			}
			codes = append(codes, &dc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(codes, func(i, j int) bool {
		return codes[i].CreatedAt.After(codes[j].CreatedAt)
	})
	return codes, nil
}

func (r *discountCodeRepository) SetActive(ctx context.Context, code string, active bool) error {
	normalized := domain.NormalizeCode(code)
	return r.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketDiscountCodes)
		var dc domain.DiscountCode
		ok, err := getJSON(b, []byte(normalized), &dc)
		if err != nil {
			return err
		}
		if !ok {
			return &errors.ErrNotFound{Resource: "discount_code", ID: normalized}
		}
		if dc.Active == active {
			return nil
		}
		dc.Active = active
		return putJSON(b, []byte(normalized), &dc)
	})
}
