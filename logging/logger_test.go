package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected zapcore.Level
	}{
		{name: "debug level", input: "debug", expected: zapcore.DebugLevel},
		{name: "info level", input: "info", expected: zapcore.InfoLevel},
		{name: "warn level", input: "warn", expected: zapcore.WarnLevel},
		{name: "warning level", input: "warning", expected: zapcore.WarnLevel},
		{name: "error level", input: "error", expected: zapcore.ErrorLevel},
		{name: "empty defaults to info", input: "", expected: zapcore.InfoLevel},
		{name: "case insensitive", input: "DEBUG", expected: zapcore.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, level)
		})
	}

	_, err := ParseLevel("loud")
	assert.Error(t, err)
}

func TestParseSize(t *testing.T) {
	size, err := ParseSize("5MiB")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxSize, size)

	size, err = ParseSize("")
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxSize, size)

	size, err = ParseSize("512 kB")
	require.NoError(t, err)
	assert.Equal(t, int64(512000), size)

	_, err = ParseSize("lots")
	assert.Error(t, err)
	_, err = ParseSize("0B")
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	var cfg = Config{Level: "info", File: DefaultFile, MaxSize: "5MiB", Console: "stdout"}
	assert.NoError(t, cfg.Validate())

	cfg.File = " "
	assert.Error(t, cfg.Validate())

	cfg.File = DefaultFile
	cfg.Level = "verbose"
	assert.Error(t, cfg.Validate())
}

// Test that each entry reaches the console as text and the file as JSON.
func TestNewWithSinks_ConsoleAndFile(t *testing.T) {
	var console bytes.Buffer
	var fs = afero.NewMemMapFs()
	var file = NewRotatingFile(fs, "logs/application.log", DefaultMaxSize)

	var logger = NewWithSinks(zapcore.InfoLevel, &console, file)
	logger.Info("Creating connection pool...")
	logger.Warn("slow query")
	logger.Errorf("Attempt %d: Error: %s", 1, "refused")
	logger.Debug("not enabled")

	var consoleLines = strings.Split(strings.TrimSpace(console.String()), "\n")
	require.Len(t, consoleLines, 3)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[INFO\] Creating connection pool\.\.\.$`, consoleLines[0])
	assert.Regexp(t, `\[WARNING\] slow query$`, consoleLines[1])
	assert.Regexp(t, `\[ERROR\] Attempt 1: Error: refused$`, consoleLines[2])

	var fileLines = readLines(t, fs, "logs/application.log")
	require.Len(t, fileLines, 3)

	var expected = []struct{ level, message string }{
		{"INFO", "Creating connection pool..."},
		{"WARNING", "slow query"},
		{"ERROR", "Attempt 1: Error: refused"},
	}
	for i, line := range fileLines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))

		assert.Equal(t, expected[i].level, entry["level"])
		assert.Equal(t, expected[i].message, entry["message"])

		_, err := time.Parse(timestampLayout, entry["timestamp"].(string))
		assert.NoError(t, err)
	}
}

// Test that structured fields are carried into the JSON entry.
func TestNewWithSinks_Fields(t *testing.T) {
	var fs = afero.NewMemMapFs()
	var logger = NewWithSinks(zapcore.InfoLevel, nil, NewRotatingFile(fs, "app.log", DefaultMaxSize))

	logger.Infow("Request received", "method", "GET", "headers", map[string]string{"Accept": "*/*"})

	var lines = readLines(t, fs, "app.log")
	require.Len(t, lines, 1)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "GET", entry["method"])
	assert.Equal(t, map[string]interface{}{"Accept": "*/*"}, entry["headers"])
}

type failingSink struct{ writes int }

func (f *failingSink) Write([]byte) (int, error) {
	f.writes++
	return 0, errors.New("disk full")
}
func (f *failingSink) Sync() error { return nil }

// Test that a failing log file never surfaces to the caller.
func TestNewWithSinks_FileFailureIsContained(t *testing.T) {
	var console bytes.Buffer
	var sink = &failingSink{}
	var logger = NewWithSinks(zapcore.InfoLevel, &console, sink)

	assert.NotPanics(t, func() {
		logger.Info("still served")
		logger.Error("still served")
	})
	assert.Equal(t, 2, sink.writes)
	assert.Contains(t, console.String(), "still served")
}

func TestNewWithFs(t *testing.T) {
	var fs = afero.NewMemMapFs()
	logger, err := NewWithFs(Config{Level: "warning", File: "var/log/tower.log", MaxSize: "1MiB", Console: "none"}, fs)
	require.NoError(t, err)

	logger.Info("filtered")
	logger.Warn("kept")

	var lines = readLines(t, fs, "var/log/tower.log")
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], `"level":"WARNING"`)

	_, err = NewWithFs(Config{Level: "info", MaxSize: "huge"}, fs)
	assert.Error(t, err)
}

// Test gorm records are forwarded at debug level with their fields.
func TestGormLogger_Print(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	var gl = NewGormLogger(zap.New(core).Sugar())

	gl.Print("sql", "reader.go:42", 3*time.Millisecond, "SELECT 1", []interface{}{}, int64(1))
	gl.Print("log", "connect.go:10", "connection refused")

	require.Equal(t, 2, logs.Len())
	var sqlEntry = logs.All()[0]
	assert.Equal(t, "sql", sqlEntry.Message)
	assert.Equal(t, zapcore.DebugLevel, sqlEntry.Level)
	assert.Equal(t, "SELECT 1", sqlEntry.ContextMap()["query"])

	assert.Equal(t, "connection refused", logs.All()[1].Message)
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[1].Level)
	assert.Equal(t, "connect.go:10", logs.All()[1].ContextMap()["source"])
}

// Test that gorm errors stay visible at the default info level
func TestGormLogger_ErrorsAtInfoLevel(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	var gl = NewGormLogger(zap.New(core).Sugar())

	gl.Print("sql", "reader.go:42", time.Millisecond, "SELECT 1", []interface{}{}, int64(1))
	gl.Print("error", "reader.go:50", errors.New("Error 1146: Table 'towers.x' doesn't exist"))
	gl.Print("log", "scope.go:97")

	var entries = logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "Error 1146: Table 'towers.x' doesn't exist", entries[0].Message)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "gorm log", entries[1].Message)
	assert.Equal(t, "scope.go:97", entries[1].ContextMap()["source"])
}
