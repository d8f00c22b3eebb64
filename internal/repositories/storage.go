package repositories

import (
	"context"
	"fmt"

	"finance-reporting/internal/config"
	"finance-reporting/internal/database"
)

// Storage bundles the repositories of the backend selected by DB_DRIVER
type Storage struct {
	Transactions TransactionRepositoryInterface
	Users        UserRepositoryInterface

	healthCheck func(ctx context.Context) error
	close       func(ctx context.Context) error
}

// OpenStorage connects the configured backend. SQL backends are migrated
// according to AUTO_MIGRATE; mongo gets its indexes ensured.
func OpenStorage(ctx context.Context, cfg *config.Config) (*Storage, error) {
	if err := cfg.Database.Validate(); err != nil {
		return nil, err
	}

	if cfg.Database.UsesMongo() {
		m, err := database.ConnectMongo(ctx, &cfg.Mongo)
		if err != nil {
			return nil, err
		}
		return &Storage{
			Transactions: NewMongoTransactionRepository(m.Database),
			Users:        NewMongoUserRepository(m.Database),
			healthCheck:  m.HealthCheck,
			close:        m.Close,
		}, nil
	}

	db, err := database.Initialize(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return &Storage{
		Transactions: NewTransactionRepository(db.DB),
		Users:        NewUserRepository(db.DB),
		healthCheck:  db.HealthCheck,
		close: func(context.Context) error {
			return db.Close()
		},
	}, nil
}

// HealthCheck pings the underlying backend
func (s *Storage) HealthCheck(ctx context.Context) error {
	return s.healthCheck(ctx)
}

func (s *Storage) Close(ctx context.Context) error {
	return s.close(ctx)
}
