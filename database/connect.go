package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jinzhu/gorm"
	"github.com/public-forge/go-tower-api/logging"
	"github.com/public-forge/go-tower-api/metrics"
	"github.com/public-forge/go-tower-api/retry"
	"go.uber.org/zap"

	// drivers for the supported dialects
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Opener opens a gorm handle for cfg. gorm.Open pings the database, so a
// returned handle is known to be reachable.
type Opener func(cfg Config) (*gorm.DB, error)

// Option customizes Open.
type Option func(*options)

type options struct {
	opener Opener
	policy retry.Policy
}

// WithOpener replaces the gorm opener used to create the pool.
func WithOpener(o Opener) Option {
	return func(opts *options) { opts.opener = o }
}

// WithRetry overrides the attempts and delay of both pool creation and connection checkout.
func WithRetry(p retry.Policy) Option {
	return func(opts *options) { opts.policy = p }
}

// Open creates the connection pool described by cfg. Creation is attempted
// up to the retry policy's attempts with a fixed delay in between; once every
// attempt has failed an error wrapping ErrPoolCreation is returned, which
// callers treat as fatal.
func Open(ctx context.Context, cfg Config, logger *zap.SugaredLogger, opts ...Option) (*Pool, error) {
	var o = options{opener: openGorm, policy: cfg.RetryPolicy()}
	for _, opt := range opts {
		opt(&o)
	}

	logger.Info("Creating connection pool...")
	db, err := retry.Value(ctx, o.policy, func(attempt int) (*gorm.DB, error) {
		logger.Infof("Connecting to %s %s@%s... (attempt %d of %d)",
			cfg.Driver, cfg.Name, cfg.Address(), attempt, o.policy.Attempts)

		db, err := o.opener(cfg)
		if err != nil {
			metrics.PoolCreateAttemptsTotal.WithLabelValues(metrics.Fail).Inc()
			logger.Errorf("Attempt %d: Error creating connection pool: %v", attempt, err)
			return nil, err
		}
		metrics.PoolCreateAttemptsTotal.WithLabelValues(metrics.Ok).Inc()
		return db, nil
	})
	if err != nil {
		logger.Errorf("Connecting to %s %s@%s FAILED: %v", cfg.Driver, cfg.Name, cfg.Address(), err)
		return nil, fmt.Errorf("%w: %w", ErrPoolCreation, err)
	}

	setSQLSettings(db.DB(), cfg)
	setGORMSettings(db, cfg, logger)
	logger.Infof("Connection pool created successfully (size %d)", cfg.PoolSize)

	return NewPool(db, cfg, logger, o.policy), nil
}

// openGorm opens the configured dialect from the rendered DSN.
func openGorm(cfg Config) (*gorm.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}
	return gorm.Open(cfg.Driver, dsn)
}

// setGORMSettings configures statement logging through the application logger.
func setGORMSettings(db *gorm.DB, cfg Config, logger *zap.SugaredLogger) {
	db.SetLogger(logging.NewGormLogger(logger))
	db.LogMode(cfg.LogMode)
}

// setSQLSettings bounds the pool to PoolSize connections and applies the connection lifetime.
func setSQLSettings(db *sql.DB, cfg Config) {
	if db == nil {
		return
	}
	db.SetMaxOpenConns(cfg.PoolSize)
	db.SetMaxIdleConns(cfg.PoolSize)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
}
