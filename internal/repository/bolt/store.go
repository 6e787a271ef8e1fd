// Package bolt implements the storefront repositories on an embedded BoltDB
// file. Every conditional write (redemption, status transition) runs inside a
// single db.Update transaction, which bolt serializes.
package bolt

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/repository"
)

var (
	bucketUsers             = []byte("users")
	bucketUsersByEmail      = []byte("users_by_email")
	bucketProfiles          = []byte("profiles")
	bucketProfilesByEmail   = []byte("profiles_by_email")
	bucketOrders            = []byte("orders")
	bucketOrdersByReference = []byte("orders_by_reference")
	bucketOrdersByUser      = []byte("orders_by_user")
	bucketDiscountCodes     = []byte("discount_codes")
	bucketOrderEvents       = []byte("order_events")

	allBuckets = [][]byte{
		bucketUsers,
		bucketUsersByEmail,
		bucketProfiles,
		bucketProfilesByEmail,
		bucketOrders,
		bucketOrdersByReference,
		bucketOrdersByUser,
		bucketDiscountCodes,
		bucketOrderEvents,
	}
)

// Open opens (or creates) a bolt database at path and ensures every bucket exists.
func Open(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, err
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range allBuckets {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// NewRepositories creates all repositories backed by db
func NewRepositories(db *bolt.DB, logger *zap.Logger) *repository.Repositories {
	return &repository.Repositories{
		User:         &userRepository{db: db, logger: logger},
		Profile:      &profileRepository{db: db, logger: logger},
		Order:        &orderRepository{db: db, logger: logger},
		DiscountCode: &discountCodeRepository{db: db, logger: logger},
		OrderEvent:   &orderEventRepository{db: db, logger: logger},
		Ping: func(ctx context.Context) error {
			return db.View(func(tx *bolt.Tx) error { return nil })
		},
		Close: db.Close,
	}
}

func getJSON(b *bolt.Bucket, key []byte, v interface{}) (bool, error) {
	raw := b.Get(key)
	if raw == nil {
		return false, nil
	}
	return true, json.Unmarshal(raw, v)
}

func putJSON(b *bolt.Bucket, key []byte, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return b.Put(key, data)
}
