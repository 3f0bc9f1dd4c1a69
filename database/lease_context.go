package database

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/google/uuid"
	log "github.com/public-forge/go-logger"
)

type contextKey string

// LeaseContextKey is the context key under which the connection lease is stored.
const LeaseContextKey = contextKey("LeaseContextKey")

var (
	// ErrLeaseReleased occurs when a released lease is used again.
	ErrLeaseReleased = errors.New("the connection lease has been released")

	// ErrNotLeased occurs when releasing a lease which holds nothing.
	ErrNotLeased = errors.New("no connection leased, Acquire() has not been called")
)

type (
	// IConnectionLease shares one pooled connection between everything
	// running under the same request context.
	//
	// Acquire() checks out a connection on first use and returns an id. The
	// caller that checked the connection out owns it; nested callers receive a
	// different id and reuse the connection.
	//   lease, ctx := GetLeaseContext(ctx, pool)
	//   id, err := lease.Acquire()
	//   if err != nil { return err }
	//   defer lease.Release(id)
	//
	// Release() returns the connection to the pool when called with the owner's id.
	//
	// Conn() returns the leased connection, or nil when none is held.
	IConnectionLease interface {
		Acquire() (uuid.UUID, error)
		Release(uuid.UUID) error
		Conn() *sql.Conn
	}

	connectionLease struct {
		mu       sync.Mutex
		ctx      context.Context
		pool     *Pool
		logger   log.Logger
		conn     *sql.Conn
		owner    *uuid.UUID
		released bool
	}
)

// GetLeaseContext returns the lease stored in ctx, or creates one over pool
// and returns it with a derived context carrying it. The lease logs through
// the logger carried by ctx.
//
//	func handle(ctx context.Context) error {
//	  lease, ctx := GetLeaseContext(ctx, pool)
//	  id, err := lease.Acquire()
//	  if err != nil { return err }
//	  defer lease.Release(id)
//	  return fetch(ctx, lease.Conn())
//	}
func GetLeaseContext(ctx context.Context, pool *Pool) (IConnectionLease, context.Context) {
	if lease, found := ctx.Value(LeaseContextKey).(IConnectionLease); found {
		return lease, ctx
	}
	var lease = &connectionLease{pool: pool, logger: log.FromContext(ctx)}
	var leaseCtx = context.WithValue(ctx, LeaseContextKey, lease)
	lease.ctx = leaseCtx
	return lease, leaseCtx
}

// Acquire checks out a connection if none is held yet.
func (l *connectionLease) Acquire() (id uuid.UUID, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		err = ErrLeaseReleased
		return
	}
	if id, err = uuid.NewRandom(); err != nil {
		return
	}

	if l.owner != nil {
		l.logger.Debugf("use existing connection lease: %v", l.owner)
		return
	}

	conn, err := l.pool.Acquire(l.ctx)
	if err != nil {
		return uuid.Nil, err
	}
	l.conn = conn
	l.owner = &id
	l.logger.Debugf("new connection lease: %v", id)
	return
}

// Release returns the connection to the pool if id owns the lease. Other ids are ignored.
func (l *connectionLease) Release(id uuid.UUID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.released {
		return ErrLeaseReleased
	}
	if l.owner == nil {
		return ErrNotLeased
	}
	if *l.owner != id {
		return nil
	}

	l.logger.Debugf("releasing connection lease: %v", id)
	var err = l.conn.Close()
	l.conn, l.owner, l.released = nil, nil, true
	return err
}

// Conn returns the leased connection, or nil if none is held.
func (l *connectionLease) Conn() *sql.Conn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.conn
}

var _ IConnectionLease = (*connectionLease)(nil)
