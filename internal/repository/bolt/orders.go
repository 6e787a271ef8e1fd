package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/pkg/errors"
)

type orderRepository struct {
	db     *bolt.DB
	logger *zap.Logger
}

// orderRecord is the stored form of an order. Items and customer are kept
// as the versioned snapshot documents, same as the relational store.
type orderRecord struct {
	ID                    uuid.UUID       `json:"id"`
	UserID                uuid.UUID       `json:"user_id"`
	Reference             string          `json:"reference"`
	SnapshotVersion       int             `json:"snapshot_version"`
	Items                 json.RawMessage `json:"items"`
	Customer              json.RawMessage `json:"customer_details"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	DiscountAmount        decimal.Decimal `json:"discount_amount"`
	DiscountType          string          `json:"discount_type,omitempty"`
	PromoCode             *string         `json:"promo_code,omitempty"`
	ShippingFee           decimal.Decimal `json:"shipping_fee"`
	TotalAmount           decimal.Decimal `json:"total_amount"`
	Status                string          `json:"status"`
	ShippingCarrier       *string         `json:"shipping_carrier,omitempty"`
	TrackingNumber        *string         `json:"tracking_number,omitempty"`
	EstimatedDeliveryDate *time.Time      `json:"estimated_delivery_date,omitempty"`
	CreatedAt             time.Time       `json:"created_at"`
	UpdatedAt             time.Time       `json:"updated_at"`
}

func newOrderRecord(order *domain.Order) (*orderRecord, error) {
	snapshot := domain.NewOrderSnapshot(order.Items, order.Customer)
	items, customer, err := snapshot.Marshal()
	if err != nil {
		return nil, err
	}
	return &orderRecord{
		ID:                    order.ID,
		UserID:                order.UserID,
		Reference:             order.Reference,
		SnapshotVersion:       snapshot.Version,
		Items:                 items,
		Customer:              customer,
		Subtotal:              order.Subtotal,
		DiscountAmount:        order.DiscountAmount,
		DiscountType:          string(order.DiscountType),
		PromoCode:             order.PromoCode,
		ShippingFee:           order.ShippingFee,
		TotalAmount:           order.TotalAmount,
		Status:                string(order.Status),
		ShippingCarrier:       order.ShippingCarrier,
		TrackingNumber:        order.TrackingNumber,
		EstimatedDeliveryDate: order.EstimatedDeliveryDate,
		CreatedAt:             order.CreatedAt,
		UpdatedAt:             order.UpdatedAt,
	}, nil
}

func (rec *orderRecord) toDomain() (*domain.Order, error) {
	snapshot, err := domain.UnmarshalOrderSnapshot(rec.SnapshotVersion, rec.Items, rec.Customer)
	if err != nil {
		return nil, err
	}
	return &domain.Order{
		ID:                    rec.ID,
		UserID:                rec.UserID,
		Reference:             rec.Reference,
		Items:                 snapshot.Items,
		Customer:              snapshot.Customer,
		Subtotal:              rec.Subtotal,
		DiscountAmount:        rec.DiscountAmount,
		DiscountType:          domain.DiscountType(rec.DiscountType),
		PromoCode:             rec.PromoCode,
		ShippingFee:           rec.ShippingFee,
		TotalAmount:           rec.TotalAmount,
		Status:                domain.OrderStatus(rec.Status),
		ShippingCarrier:       rec.ShippingCarrier,
		TrackingNumber:        rec.TrackingNumber,
		EstimatedDeliveryDate: rec.EstimatedDeliveryDate,
		CreatedAt:             rec.CreatedAt,
		UpdatedAt:             rec.UpdatedAt,
	}, nil
}

func userOrderKey(userID, orderID uuid.UUID) []byte {
	return []byte(userID.String() + "/" + orderID.String())
}

func (r *orderRepository) Create(ctx context.Context, order *domain.Order, redeemCode string) error {
	now := time.Now().UTC()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = order.CreatedAt
	}

	rec, err := newOrderRecord(order)
	if err != nil {
		return err
	}

	err = r.db.Update(func(tx *bolt.Tx) error {
		byRef := tx.Bucket(bucketOrdersByReference)
		if byRef.Get([]byte(order.Reference)) != nil {
			return &errors.ErrConflict{Resource: "order", Message: "reference already exists"}
		}

		if redeemCode != "" {
			codes := tx.Bucket(bucketDiscountCodes)
			key := []byte(domain.NormalizeCode(redeemCode))
			var dc domain.DiscountCode
			ok, err := getJSON(codes, key, &dc)
			if err != nil {
				return err
			}
			if !ok || !dc.Usable(order.CreatedAt) {
				return &errors.ErrConflict{Resource: "discount_code", Message: "code is no longer usable"}
			}
			dc.UsedCount++
			if err := putJSON(codes, key, &dc); err != nil {
				return err
			}
		}

		id := []byte(order.ID.String())
		if err := putJSON(tx.Bucket(bucketOrders), id, rec); err != nil {
			return err
		}
		if err := byRef.Put([]byte(order.Reference), id); err != nil {
			return err
		}
		return tx.Bucket(bucketOrdersByUser).Put(userOrderKey(order.UserID, order.ID), id)
	})
	if err != nil {
		if _, ok := err.(*errors.ErrConflict); !ok {
			r.logger.Error("Failed to create order", zap.Error(err))
		}
		return err
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	var order *domain.Order
	err := r.db.View(func(tx *bolt.Tx) error {
		var err error
		order, err = loadOrder(tx, []byte(id.String()))
		if err != nil {
			return err
		}
		if order == nil {
			return &errors.ErrNotFound{Resource: "order", ID: id.String()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) GetByReference(ctx context.Context, reference string) (*domain.Order, error) {
	var order *domain.Order
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketOrdersByReference).Get([]byte(reference))
		if id == nil {
			return &errors.ErrNotFound{Resource: "order", ID: reference}
		}
		var err error
		order, err = loadOrder(tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) ListByUserID(ctx context.Context, userID uuid.UUID) ([]*domain.Order, error) {
	orders := []*domain.Order{}
	prefix := []byte(userID.String() + "/")

	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketOrdersByUser).Cursor()
		for k, id := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, id = c.Next() {
			order, err := loadOrder(tx, id)
			if err != nil {
				return err
			}
			if order != nil {
				orders = append(orders, order)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(orders)
	return orders, nil
}

func (r *orderRepository) List(ctx context.Context, limit, offset int, status *domain.OrderStatus) ([]*domain.Order, error) {
	orders := []*domain.Order{}

	err := r.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketOrders).ForEach(func(k, v []byte) error {
			var rec orderRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return err
			}
			if status != nil && rec.Status != string(*status) {
				return nil
			}
			order, err := rec.toDomain()
			if err != nil {
				return err
			}
			orders = append(orders, order)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(orders)
	if offset >= len(orders) {
		return []*domain.Order{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(orders) {
		end = len(orders)
	}
	return orders[offset:end], nil
}

func (r *orderRepository) TransitionByReference(ctx context.Context, reference string, to domain.OrderStatus) (*domain.Order, bool, error) {
	var result *domain.Order
	transitioned := false

	err := r.db.Update(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketOrdersByReference).Get([]byte(reference))
		if id == nil {
			return &errors.ErrNotFound{Resource: "order", ID: reference}
		}

		orders := tx.Bucket(bucketOrders)
		var rec orderRecord
		if _, err := getJSON(orders, id, &rec); err != nil {
			return err
		}

		if domain.OrderStatus(rec.Status) == domain.OrderStatusPending {
			rec.Status = string(to)
			rec.UpdatedAt = time.Now().UTC()
			if err := putJSON(orders, id, &rec); err != nil {
				return err
			}
			transitioned = true
		}

		var err error
		result, err = rec.toDomain()
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return result, transitioned, nil
}

func (r *orderRepository) UpdateShipping(ctx context.Context, id uuid.UUID, carrier, trackingNumber string) (*domain.Order, error) {
	var result *domain.Order

	err := r.db.Update(func(tx *bolt.Tx) error {
		orders := tx.Bucket(bucketOrders)
		key := []byte(id.String())

		var rec orderRecord
		ok, err := getJSON(orders, key, &rec)
		if err != nil {
			return err
		}
		if !ok {
			return &errors.ErrNotFound{Resource: "order", ID: id.String()}
		}

		rec.ShippingCarrier = &carrier
		rec.TrackingNumber = &trackingNumber
		rec.UpdatedAt = time.Now().UTC()
		if err := putJSON(orders, key, &rec); err != nil {
			return err
		}

		result, err = rec.toDomain()
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func loadOrder(tx *bolt.Tx, id []byte) (*domain.Order, error) {
	var rec orderRecord
	ok, err := getJSON(tx.Bucket(bucketOrders), id, &rec)
	if err != nil || !ok {
		return nil, err
	}
	return rec.toDomain()
}

func sortNewestFirst(orders []*domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
