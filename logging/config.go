package logging

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultFile is the path of the active JSON log file.
	DefaultFile = "logs/application.log"
	// DefaultMaxSize is the size above which the active log file is rotated (5 MiB).
	DefaultMaxSize int64 = 5 * 1024 * 1024
)

// Config configures the console and file sinks of the application logger.
type Config struct {
	Level   string `long:"level" env:"LEVEL" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"warning" choice:"error" description:"Logging level"`
	File    string `long:"file" env:"FILE" default:"logs/application.log" description:"Path of the rotating JSON log file"`
	MaxSize string `long:"max-size" env:"MAX_SIZE" default:"5MiB" description:"Size above which the log file is rotated (e.g. 5MiB)"`
	Console string `long:"console" env:"CONSOLE" default:"stdout" choice:"stdout" choice:"stderr" choice:"none" description:"Destination of human-readable log lines"`
}

// Validate checks that the level and size are parseable.
func (c Config) Validate() error {
	if _, err := ParseLevel(c.Level); err != nil {
		return err
	}
	if _, err := ParseSize(c.MaxSize); err != nil {
		return err
	}
	if strings.TrimSpace(c.File) == "" {
		return fmt.Errorf("log file path is required")
	}
	return nil
}

// ParseLevel maps a configured level name onto a zap level.
// "warning" is accepted as an alias of "warn", and an empty value means info.
func ParseLevel(raw string) (zapcore.Level, error) {
	var value = strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "":
		return zapcore.InfoLevel, nil
	case "warning":
		value = "warn"
	}

	level, err := zapcore.ParseLevel(value)
	if err != nil {
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q", raw)
	}
	return level, nil
}

// ParseSize parses a human readable byte size such as "5MiB" or "512 kB".
func ParseSize(raw string) (int64, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultMaxSize, nil
	}
	size, err := humanize.ParseBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid log max size %q: %w", raw, err)
	}
	if size == 0 {
		return 0, fmt.Errorf("log max size must be positive, got %q", raw)
	}
	return int64(size), nil
}
