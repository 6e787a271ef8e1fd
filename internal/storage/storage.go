// Package storage opens the repository set selected by configuration.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/anchorfit/storefront/internal/config"
	"github.com/anchorfit/storefront/internal/repository"
	boltrepo "github.com/anchorfit/storefront/internal/repository/bolt"
	"github.com/anchorfit/storefront/internal/repository/postgres"
)

// Open connects to the configured store, prepares its schema and returns the
// repositories. The caller owns Close.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*repository.Repositories, error) {
	switch cfg.Storage.Driver {
	case config.DriverPostgres:
		db, err := postgres.NewConnection(cfg.Database)
		if err != nil {
			return nil, err
		}
		if err := postgres.InitSchema(ctx, db); err != nil {
			db.Close()
			return nil, err
		}
		logger.Info("Connected to postgres",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.DBName),
		)
		return postgres.NewRepositories(db, logger), nil

	case config.DriverBolt:
		db, err := boltrepo.Open(cfg.Storage.BoltPath)
		if err != nil {
			return nil, err
		}
		logger.Info("Opened bolt store", zap.String("path", cfg.Storage.BoltPath))
		return boltrepo.NewRepositories(db, logger), nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}
