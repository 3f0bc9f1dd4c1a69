package logging

import (
	log "github.com/public-forge/go-logger"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// sugared implements log.Logger over a zap sugared logger, so code written
// against the go-logger interface writes through the tee built by New.
type sugared struct {
	*zap.SugaredLogger
}

// Wrap returns l as a log.Logger.
func Wrap(l *zap.SugaredLogger) log.Logger {
	return sugared{SugaredLogger: l}
}

// With adds key-value pairs to every subsequent entry.
func (s sugared) With(f ...interface{}) log.Logger {
	return sugared{s.SugaredLogger.With(f...)}
}

// WithField adds a single key-value pair to every subsequent entry.
func (s sugared) WithField(key string, value interface{}) log.Logger {
	return sugared{s.SugaredLogger.With(key, value)}
}

// WithError attaches err to every subsequent entry.
func (s sugared) WithError(err error) log.Logger {
	return sugared{s.SugaredLogger.With(zap.Error(err))}
}

// SkipCallers skips count additional stack frames when reporting the caller.
func (s sugared) SkipCallers(count int) log.Logger {
	return sugared{s.SugaredLogger.WithOptions(zap.AddCallerSkip(count))}
}

// Check reports whether entries at level would be written.
func (s sugared) Check(level log.LogLevel) bool {
	return s.Desugar().Core().Enabled(zapLevel(level))
}

// Print writes an entry at debug level.
func (s sugared) Print(v ...interface{}) {
	s.Debug(v...)
}

func zapLevel(level log.LogLevel) zapcore.Level {
	switch level {
	case log.PanicLevel:
		return zapcore.PanicLevel
	case log.FatalLevel:
		return zapcore.FatalLevel
	case log.ErrorLevel:
		return zapcore.ErrorLevel
	case log.WarnLevel:
		return zapcore.WarnLevel
	case log.InfoLevel:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}
