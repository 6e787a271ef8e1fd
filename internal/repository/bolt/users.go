package bolt

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/domain"
	"github.com/anchorfit/storefront/pkg/errors"
)

type userRepository struct {
	db     *bolt.DB
	logger *zap.Logger
}

func emailKey(email string) []byte {
	return []byte(strings.ToLower(strings.TrimSpace(email)))
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		ok, err := getJSON(tx.Bucket(bucketUsers), []byte(id.String()), &user)
		if err != nil {
			return err
		}
		if !ok {
			return &errors.ErrNotFound{Resource: "user", ID: id.String()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketUsersByEmail).Get(emailKey(email))
		if id == nil {
			return &errors.ErrNotFound{Resource: "user", ID: email}
		}
		_, err := getJSON(tx.Bucket(bucketUsers), id, &user)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		byEmail := tx.Bucket(bucketUsersByEmail)
		if byEmail.Get(emailKey(user.Email)) != nil {
			return &errors.ErrConflict{Resource: "user", Message: "email already registered"}
		}
		if err := putJSON(tx.Bucket(bucketUsers), []byte(user.ID.String()), user); err != nil {
			return err
		}
		return byEmail.Put(emailKey(user.Email), []byte(user.ID.String()))
	})
	if err != nil {
		r.logger.Error("Failed to create user", zap.Error(err))
		return err
	}
	return nil
}

type profileRepository struct {
	db     *bolt.DB
	logger *zap.Logger
}

func (r *profileRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.View(func(tx *bolt.Tx) error {
		ok, err := getJSON(tx.Bucket(bucketProfiles), []byte(id.String()), &profile)
		if err != nil {
			return err
		}
		if !ok {
			return &errors.ErrNotFound{Resource: "profile", ID: id.String()}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	var profile domain.Profile
	err := r.db.View(func(tx *bolt.Tx) error {
		id := tx.Bucket(bucketProfilesByEmail).Get(emailKey(email))
		if id == nil {
			return &errors.ErrNotFound{Resource: "profile", ID: email}
		}
		_, err := getJSON(tx.Bucket(bucketProfiles), id, &profile)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	now := time.Now().UTC()
	if profile.ID == uuid.Nil {
		profile.ID = uuid.New()
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = now
	}

	err := r.db.Update(func(tx *bolt.Tx) error {
		byEmail := tx.Bucket(bucketProfilesByEmail)
		if byEmail.Get(emailKey(profile.Email)) != nil {
			return &errors.ErrConflict{Resource: "profile", Message: "email already has a profile"}
		}
		if err := putJSON(tx.Bucket(bucketProfiles), []byte(profile.ID.String()), profile); err != nil {
			return err
		}
		return byEmail.Put(emailKey(profile.Email), []byte(profile.ID.String()))
	})
	if err != nil {
		r.logger.Error("Failed to create profile", zap.Error(err))
		return err
	}
	return nil
}
