package main

import (
	"context"
	"fmt"

	"github.com/angelmondragon/ecofinds-backend/api/controllers"
	"github.com/angelmondragon/ecofinds-backend/internal/marketplace"
	"github.com/angelmondragon/ecofinds-backend/pkg/config"
	"github.com/angelmondragon/ecofinds-backend/pkg/db"
	"github.com/angelmondragon/ecofinds-backend/pkg/logger"
	"github.com/angelmondragon/ecofinds-backend/pkg/migrate"
	"github.com/angelmondragon/ecofinds-backend/pkg/redis"
	"github.com/angelmondragon/ecofinds-backend/pkg/storage/memory"
)

type storageBackend struct {
	store   marketplace.Storage
	pingers map[string]controllers.Pinger
	closers []func() error
}

func (b *storageBackend) Close(ctx context.Context, logg *logger.Logger) {
	for _, closeFn := range b.closers {
		if err := closeFn(); err != nil {
			logg.Error(ctx, "error closing storage", err)
		}
	}
}

// openStorage connects the key-value backend selected by ECOFINDS_STORAGE_DRIVER.
func openStorage(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*storageBackend, error) {
	switch driver := cfg.Storage.NormalizedDriver(); driver {
	case config.StorageDriverMemory, "":
		mem := memory.New()
		return &storageBackend{
			store:   mem,
			pingers: map[string]controllers.Pinger{"memory": mem},
		}, nil

	case config.StorageDriverSQLite, config.StorageDriverPostgres:
		dbClient, err := db.New(ctx, cfg.Storage, cfg.DB, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap database: %w", err)
		}
		backend := &storageBackend{
			pingers: map[string]controllers.Pinger{"database": dbClient},
			closers: []func() error{dbClient.Close},
		}
		if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
			backend.Close(ctx, logg)
			return nil, fmt.Errorf("auto migrate: %w", err)
		}
		kv, err := db.NewKVStore(dbClient, cfg.Storage.Namespace)
		if err != nil {
			backend.Close(ctx, logg)
			return nil, err
		}
		backend.store = kv
		return backend, nil

	case config.StorageDriverRedis:
		redisClient, err := redis.New(ctx, cfg.Redis, cfg.Storage.Namespace, logg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap redis: %w", err)
		}
		return &storageBackend{
			store:   redis.NewStateStore(redisClient),
			pingers: map[string]controllers.Pinger{"redis": redisClient},
			closers: []func() error{redisClient.Close},
		}, nil

	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
