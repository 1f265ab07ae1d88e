package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/bimakw/wallet-ranker/internal/config"
	"github.com/bimakw/wallet-ranker/internal/retry"
)

const pingTimeout = 5 * time.Second

// Store owns the wallet database pool
type Store struct {
	db      *sqlx.DB
	wallets *WalletRepo
}

// Open connects to Postgres, waiting for the server with backoff, and brings the
// schema up to date when MigrateOnStart is set
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	db, err := sqlx.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	backoff := &retry.Config{
		MaxAttempts:  cfg.ConnectAttempts,
		InitialDelay: time.Second,
		MaxDelay:     10 * time.Second,
		Multiplier:   2,
	}
	err = retry.Do(ctx, backoff, logger, "postgres ping", func(ctx context.Context, attempt int) error {
		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return db.PingContext(pingCtx)
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if cfg.MigrateOnStart {
		if err := RunMigrations(cfg.URL(), logger); err != nil {
			_ = db.Close()
			return nil, err
		}
	}

	logger.Info("Wallet store ready",
		zap.String("host", cfg.Host),
		zap.String("database", cfg.Name),
		zap.Bool("migrated", cfg.MigrateOnStart),
	)

	return &Store{db: db, wallets: NewWalletRepo(db)}, nil
}

// Wallets returns the wallet repository backed by this store
func (s *Store) Wallets() *WalletRepo {
	return s.wallets
}

// HealthCheck pings the database
func (s *Store) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the pool
func (s *Store) Close() error {
	return s.db.Close()
}
