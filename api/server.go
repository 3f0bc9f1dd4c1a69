// Package api provides the HTTP server of the tower data service.
//
// It serves the closure table from the database, the chart documents from
// the data directory, and Prometheus metrics.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/public-forge/go-tower-api/database"
	"github.com/public-forge/go-tower-api/datafile"
	"go.uber.org/zap"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config       Config
	Logger       *zap.SugaredLogger
	Pool         *database.Pool
	Reader       *database.TableReader
	Data         *datafile.Store
	ClosureTable string
	Gatherer     prometheus.Gatherer // Defaults to prometheus.DefaultGatherer
}

// Server is the HTTP API server.
type Server struct {
	cfg          Config
	logger       *zap.SugaredLogger
	pool         *database.Pool
	reader       *database.TableReader
	data         *datafile.Store
	closureTable string
	gatherer     prometheus.Gatherer
	handler      http.Handler

	mu       sync.Mutex
	server   *http.Server
	listener net.Listener
}

// New creates a new API server with the given dependencies.
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Pool == nil || deps.Reader == nil {
		return nil, fmt.Errorf("database pool and table reader are required")
	}
	if deps.Data == nil {
		return nil, fmt.Errorf("data store is required")
	}
	if deps.ClosureTable == "" {
		return nil, fmt.Errorf("closure table is required")
	}
	if deps.Gatherer == nil {
		deps.Gatherer = prometheus.DefaultGatherer
	}

	s := &Server{
		cfg:          deps.Config,
		logger:       deps.Logger,
		pool:         deps.Pool,
		reader:       deps.Reader,
		data:         deps.Data,
		closureTable: deps.ClosureTable,
		gatherer:     deps.Gatherer,
	}
	s.handler = s.buildRouter()
	return s, nil
}

// Handler returns the routed and instrumented HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listener and serves requests in a background goroutine.
// Binding errors (port in use, etc.) are returned synchronously.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server != nil {
		return fmt.Errorf("api server already started")
	}

	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	listener, err := (&net.ListenConfig{}).Listen(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	s.listener = listener
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}

	s.logger.Infof("API server listening on %s", listener.Addr())
	go func(server *http.Server) {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Errorf("API server error: %v", err)
		}
	}(s.server)

	return nil
}

// Addr returns the bound listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	err := s.server.Shutdown(ctx)
	s.server, s.listener = nil, nil
	if err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
