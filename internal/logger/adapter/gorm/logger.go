// Package gorm forwards gorm log output to zerolog.
package gorm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowThreshold marks queries logged at warn level.
const DefaultSlowThreshold = 200 * time.Millisecond

// Logger implements gorm's logger.Interface on top of a zerolog.Logger.
type Logger struct {
	zl            zerolog.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
	traceSQL      bool
}

// New returns a Logger using the global zerolog logger.
// With traceSQL every statement is logged at debug level, otherwise only
// failed and slow statements show up.
func New(traceSQL bool) *Logger {
	return &Logger{
		zl:            log.Logger.With().Str("component", "gorm").Logger(),
		level:         gormlogger.Warn,
		slowThreshold: DefaultSlowThreshold,
		traceSQL:      traceSQL,
	}
}

// WithLogger replaces the target logger, mostly for tests.
func (l *Logger) WithLogger(zl zerolog.Logger) *Logger {
	c := *l
	c.zl = zl

	return &c
}

// LogMode implements logger.Interface.
func (l *Logger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	c := *l
	c.level = level

	return &c
}

// Info implements logger.Interface.
func (l *Logger) Info(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.zl.Info().Msg(fmt.Sprintf(msg, data...))
	}
}

// Warn implements logger.Interface.
func (l *Logger) Warn(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.zl.Warn().Msg(fmt.Sprintf(msg, data...))
	}
}

// Error implements logger.Interface.
func (l *Logger) Error(_ context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.zl.Error().Msg(fmt.Sprintf(msg, data...))
	}
}

// Trace implements logger.Interface.
// Record not found is expected by the settings store and never logged as an error.
func (l *Logger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)

	var ev *zerolog.Event

	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		ev = l.zl.Error().Err(err)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		ev = l.zl.Warn().Dur("threshold", l.slowThreshold)
	case l.traceSQL:
		ev = l.zl.Debug()
	default:
		return
	}

	sql, rows := fc()

	ev.Str("sql", sql).
		Int64("rows", rows).
		Dur("elapsed", elapsed).
		Msg("sql")
}
