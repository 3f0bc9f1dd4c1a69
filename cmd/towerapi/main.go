// Command towerapi serves tower closure data, chart documents and metrics
// to the tower management front end.
//
// Configuration is read from the environment (see config.Config), e.g.:
//
//	DB_HOST=db.example DB_PORT=3306 DB_USER=tower DB_PASSWORD=... DB_NAME=towers \
//	DB_POOL_SIZE=10 DB_CONNECTION_TIMEOUT=300s towerapi
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jessevdk/go-flags"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	log "github.com/public-forge/go-logger"
	"github.com/public-forge/go-tower-api/api"
	"github.com/public-forge/go-tower-api/config"
	"github.com/public-forge/go-tower-api/database"
	"github.com/public-forge/go-tower-api/datafile"
	"github.com/public-forge/go-tower-api/logging"
	"github.com/public-forge/go-tower-api/metrics"
	"github.com/spf13/afero"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:]); err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			return
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run wires the service together and blocks until ctx is cancelled.
func run(ctx context.Context, args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	log.SetDefaultLogger(logging.Wrap(logger))

	prometheus.MustRegister(metrics.TowerCollectors()...)

	pool, err := database.Open(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if closeErr := pool.Close(); closeErr != nil {
			logger.Errorf("Error closing connection pool: %v", closeErr)
		}
	}()
	prometheus.MustRegister(collectors.NewDBStatsCollector(pool.DB(), cfg.Database.Name))

	server, err := api.New(api.Deps{
		Config:       cfg.API,
		Logger:       logger,
		Pool:         pool,
		Reader:       database.NewTableReader(pool.Dialect(), logger, cfg.Database.QueryTimeout),
		Data:         datafile.New(afero.NewOsFs(), cfg.Data.Dir, logger),
		ClosureTable: cfg.Data.ClosureTable,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err = server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			logger.Errorf("Error stopping API server: %v", closeErr)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutdown signal received")
	return nil
}
