package database

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	"github.com/jinzhu/gorm"
	"github.com/public-forge/go-tower-api/metrics"
	"github.com/public-forge/go-tower-api/retry"
	"go.uber.org/zap"
)

// Pool wraps the process-wide gorm handle and the database/sql pool beneath
// it. A Pool is created once at startup and passed to whoever needs it.
type Pool struct {
	db     *gorm.DB
	cfg    Config
	policy retry.Policy
	logger *zap.SugaredLogger
}

// NewPool wraps an already opened gorm handle.
func NewPool(db *gorm.DB, cfg Config, logger *zap.SugaredLogger, policy retry.Policy) *Pool {
	return &Pool{db: db, cfg: cfg, policy: policy, logger: logger}
}

// Acquire checks out a live connection from the pool. Each attempt is bounded
// by the configured connection timeout and verified with a ping; a connection
// failing the ping is discarded and counts as a failed attempt.
// Once every attempt failed, an error wrapping ErrDatabaseUnavailable is
// returned. The caller owns the connection until it calls Close on it.
func (p *Pool) Acquire(ctx context.Context) (*sql.Conn, error) {
	conn, err := retry.Value(ctx, p.policy, func(attempt int) (*sql.Conn, error) {
		conn, err := p.checkout(ctx)
		if err != nil {
			metrics.PoolAcquireAttemptsTotal.WithLabelValues(metrics.Fail).Inc()
			p.logger.Errorf("Attempt %d: Error: %v", attempt, err)
			return nil, err
		}
		metrics.PoolAcquireAttemptsTotal.WithLabelValues(metrics.Ok).Inc()
		p.logger.Info("SQL Connection Successful")
		return conn, nil
	})
	if err != nil {
		p.logger.Errorf("Database connection pool exhausted: %v", err)
		return nil, fmt.Errorf("%w: %w", ErrDatabaseUnavailable, err)
	}
	return conn, nil
}

func (p *Pool) checkout(ctx context.Context) (*sql.Conn, error) {
	var sqlDB = p.db.DB()
	if sqlDB == nil {
		return nil, fmt.Errorf("no sql.DB behind the %s handle", p.cfg.Driver)
	}
	if p.cfg.ConnectionTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.ConnectionTimeout)
		defer cancel()
	}

	conn, err := sqlDB.Conn(ctx)
	if err != nil {
		return nil, err
	}
	if err = conn.PingContext(ctx); err != nil {
		// Returning driver.ErrBadConn from Raw drops the connection instead of
		// putting it back on the idle list.
		_ = conn.Raw(func(interface{}) error { return driver.ErrBadConn })
		return nil, err
	}
	return conn, nil
}

// HealthCheck runs a trivial statement against the pool.
func (p *Pool) HealthCheck(ctx context.Context) error {
	var sqlDB = p.db.DB()
	if sqlDB == nil {
		return ErrDatabaseUnavailable
	}
	if _, err := sqlDB.ExecContext(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("%w: %w", ErrDatabaseUnavailable, err)
	}
	return nil
}

// Dialect returns the gorm dialect of the pool, used to quote identifiers.
func (p *Pool) Dialect() gorm.Dialect {
	return p.db.Dialect()
}

// DB returns the underlying database/sql pool.
func (p *Pool) DB() *sql.DB {
	return p.db.DB()
}

// Stats returns the database/sql pool statistics.
func (p *Pool) Stats() sql.DBStats {
	if sqlDB := p.db.DB(); sqlDB != nil {
		return sqlDB.Stats()
	}
	return sql.DBStats{}
}

// Close closes every connection of the pool.
func (p *Pool) Close() error {
	p.logger.Info("Closing connection pool")
	return p.db.Close()
}
