package bolt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
)

type orderEventRepository struct {
	db     *bolt.DB
	logger *zap.Logger
}

// Keys sort by order then creation time: <order_id>/<unix nanos>/<event_id>
func orderEventKey(event *domain.OrderEvent) []byte {
	return []byte(fmt.Sprintf("%s/%020d/%s", event.OrderID, event.CreatedAt.UnixNano(), event.ID))
}

func (r *orderEventRepository) Create(ctx context.Context, event *domain.OrderEvent) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		return putJSON(tx.Bucket(bucketOrderEvents), orderEventKey(event), event)
	})
	if err != nil {
		r.logger.Error("Failed to create order event", zap.Error(err))
		return err
	}
	return nil
}

func (r *orderEventRepository) ListByOrderID(ctx context.Context, orderID uuid.UUID) ([]*domain.OrderEvent, error) {
	events := []*domain.OrderEvent{}
	prefix := []byte(orderID.String() + "/")

	err := r.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketOrderEvents).Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var event domain.OrderEvent
			if err := json.Unmarshal(v, &event); err != nil {
				return err
			}
			events = append(events, &event)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
