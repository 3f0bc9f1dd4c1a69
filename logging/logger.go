// Package logging builds the application logger. Every entry is written as a
// human-readable line to the console and as a JSON object to a size-bounded,
// rotating log file:
//
//	2024-07-16 10:00:00 [INFO] SQL Connection Successful
//	{"timestamp":"2024-07-16 10:00:00","level":"INFO","message":"SQL Connection Successful"}
//
// Failures to write the log file are reported on stderr and never reach the
// caller.
package logging

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// timestampLayout is the timestamp format of both console and file entries.
const timestampLayout = "2006-01-02 15:04:05"

// New builds the application logger described by cfg, writing the log file on the OS filesystem.
func New(cfg Config) (*zap.SugaredLogger, error) {
	return NewWithFs(cfg, afero.NewOsFs())
}

// NewWithFs is New with the log file kept on fs.
func NewWithFs(cfg Config, fs afero.Fs) (*zap.SugaredLogger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	maxSize, err := ParseSize(cfg.MaxSize)
	if err != nil {
		return nil, err
	}
	var path = cfg.File
	if path == "" {
		path = DefaultFile
	}

	return NewWithSinks(level, consoleWriter(cfg.Console), NewRotatingFile(fs, path, maxSize)), nil
}

// NewWithSinks builds a logger over explicit sinks. Either sink may be nil.
func NewWithSinks(level zapcore.Level, console io.Writer, file zapcore.WriteSyncer) *zap.SugaredLogger {
	var enabler = zap.NewAtomicLevelAt(level)
	var cores []zapcore.Core

	if console != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewConsoleEncoder(consoleEncoderConfig()),
			zapcore.AddSync(console),
			enabler,
		))
	}
	if file != nil {
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(fileEncoderConfig()),
			file,
			enabler,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.ErrorOutput(zapcore.Lock(os.Stderr))).Sugar()
}

func consoleWriter(dest string) io.Writer {
	switch strings.ToLower(dest) {
	case "none":
		return nil
	case "stderr":
		return zapcore.Lock(os.Stderr)
	default:
		return zapcore.Lock(os.Stdout)
	}
}

// fileEncoderConfig produces {"timestamp":...,"level":...,"message":...} objects.
func fileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		MessageKey:     "message",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    levelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timestampLayout),
		EncodeDuration: zapcore.StringDurationEncoder,
	}
}

// consoleEncoderConfig produces "timestamp [LEVEL] message" lines.
func consoleEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "timestamp",
		LevelKey:         "level",
		MessageKey:       "message",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeLevel:      bracketLevelEncoder,
		EncodeTime:       zapcore.TimeEncoderOfLayout(timestampLayout),
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: " ",
	}
}

// LevelName renders a level the way it appears in log entries.
func LevelName(l zapcore.Level) string {
	if l == zapcore.WarnLevel {
		return "WARNING"
	}
	return l.CapitalString()
}

func levelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString(LevelName(l))
}

func bracketLevelEncoder(l zapcore.Level, enc zapcore.PrimitiveArrayEncoder) {
	enc.AppendString("[" + LevelName(l) + "]")
}
