package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dejobratic/shoporders/internal/config"
	"github.com/dejobratic/shoporders/internal/database"
	"github.com/dejobratic/shoporders/internal/docstore"
	idemmemory "github.com/dejobratic/shoporders/internal/idempotency/memory"
	idempostgres "github.com/dejobratic/shoporders/internal/idempotency/postgres"
	ordersmemory "github.com/dejobratic/shoporders/internal/orders/adapters/memory"
	ordersmongo "github.com/dejobratic/shoporders/internal/orders/adapters/mongo"
	orderspostgres "github.com/dejobratic/shoporders/internal/orders/adapters/postgres"
	"github.com/dejobratic/shoporders/internal/orders/ports"
)

// storage is the order store selected by STORAGE_DRIVER.
type storage struct {
	orders      ports.OrderRepository
	idempotency ports.IdempotencyStore
	close       func(context.Context)
}

func openStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*storage, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		return openPostgres(ctx, cfg.Database, logger)
	case config.StorageMongo:
		return openMongo(ctx, cfg.Mongo, logger)
	case config.StorageMemory:
		logger.Warn("using in-memory storage, orders are lost on restart")
		return &storage{
			orders:      ordersmemory.NewRepository(),
			idempotency: idemmemory.NewStore(),
			close:       func(context.Context) {},
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", cfg.Storage.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*storage, error) {
	if cfg.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.MigrationsPath)
		version, err := database.RunMigrations(cfg.URL, cfg.MigrationsPath)
		if err != nil {
			return nil, err
		}
		logger.Info("migrations completed successfully", "version", version)
	}

	pool, err := database.NewPool(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}

	return &storage{
		orders:      orderspostgres.NewRepository(pool),
		idempotency: idempostgres.NewStore(pool),
		close:       func(context.Context) { pool.Close() },
	}, nil
}

// openMongo keeps idempotency keys in memory; the document store only holds orders.
func openMongo(ctx context.Context, cfg config.MongoConfig, logger *slog.Logger) (*storage, error) {
	client, err := docstore.Connect(ctx, cfg.URI)
	if err != nil {
		return nil, err
	}

	repo := ordersmongo.NewRepository(client.Database(cfg.Database).Collection(cfg.Collection))
	if err := repo.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ensure mongodb indexes: %w", err)
	}
	logger.Info("connected to mongodb", "database", cfg.Database, "collection", cfg.Collection)

	return &storage{
		orders:      repo,
		idempotency: idemmemory.NewStore(),
		close: func(ctx context.Context) {
			if err := client.Disconnect(ctx); err != nil {
				logger.Error("failed to disconnect mongodb", "error", err)
			}
		},
	}, nil
}
