package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// GormLogger adapts a sugared logger to gorm's Print-style logger.
// gorm calls Print with ("sql", source, duration, query, values, rowsAffected)
// for statements and ("log", source, message...) for everything else.
type GormLogger struct {
	log *zap.SugaredLogger
}

// NewGormLogger wraps l for use with (*gorm.DB).SetLogger.
func NewGormLogger(l *zap.SugaredLogger) GormLogger {
	return GormLogger{log: l}
}

// Print writes a gorm log record: statements at debug level, errors and
// other messages at error level.
func (g GormLogger) Print(values ...interface{}) {
	if len(values) < 2 {
		g.log.Debug(values...)
		return
	}

	switch values[0] {
	case "sql":
		if len(values) >= 6 {
			g.log.Debugw("sql",
				"source", values[1],
				"duration", values[2],
				"query", values[3],
				"values", values[4],
				"rows_affected", values[5],
			)
			return
		}
	case "log", "error":
		var message = fmt.Sprint(values[2:]...)
		if len(values) == 2 {
			message = fmt.Sprintf("gorm %s", values[0])
		}
		g.log.Errorw(message, "source", values[1])
		return
	}
	g.log.Debug(values...)
}
