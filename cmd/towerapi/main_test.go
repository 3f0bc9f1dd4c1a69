package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/public-forge/go-tower-api/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Help(t *testing.T) {
	err := run(context.Background(), []string{"--help"})

	var flagsErr *flags.Error
	require.True(t, errors.As(err, &flagsErr))
	assert.Equal(t, flags.ErrHelp, flagsErr.Type)
}

func TestRun_InvalidConfig(t *testing.T) {
	t.Setenv("DB_POOL_SIZE", "")
	require.NoError(t, os.Unsetenv("DB_POOL_SIZE"))

	err := run(context.Background(), nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

// Test a full start and graceful shutdown against a SQLite database file
func TestRun_StartAndShutdown(t *testing.T) {
	dir := t.TempDir()
	for key, value := range map[string]string{
		"DB_DRIVER":             "sqlite3",
		"DB_NAME":               filepath.Join(dir, "tower.db"),
		"DB_POOL_SIZE":          "2",
		"DB_CONNECTION_TIMEOUT": "5s",
		"LOG_FILE":              filepath.Join(dir, "logs", "application.log"),
		"LOG_CONSOLE":           "none",
		"API_HOST":              "127.0.0.1",
		"API_PORT":              "0",
		"DATA_DIR":              dir,
	} {
		t.Setenv(key, value)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- run(ctx, nil) }()

	time.Sleep(200 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(15 * time.Second):
		t.Fatal("run did not return after cancellation")
	}

	logged, err := os.ReadFile(filepath.Join(dir, "logs", "application.log"))
	require.NoError(t, err)
	assert.Contains(t, string(logged), `"message":"Connection pool created successfully (size 2)"`)
	assert.Contains(t, string(logged), `"message":"Shutdown signal received"`)
}
