package logger

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// maxSQLRunes bounds the statement text written per query.
const maxSQLRunes = 1000

// GormLogger routes GORM statements to zap. Bound parameters, which carry
// user names and emails, are only rendered into the logged SQL at debug level.
type GormLogger struct {
	log        *zap.Logger
	slow       time.Duration
	level      gormlogger.LogLevel
	withParams bool
}

// NewGormLoggerWithConfig maps the service log level onto GORM's levels.
// Queries slower than slowQuerySeconds are logged as warnings.
func NewGormLoggerWithConfig(log *zap.Logger, slowQuerySeconds float64, logLevel string) *GormLogger {
	l := &GormLogger{
		log:        log,
		slow:       time.Duration(slowQuerySeconds * float64(time.Second)),
		level:      gormlogger.Warn,
		withParams: logLevel == "debug",
	}

	switch logLevel {
	case "silent":
		l.level = gormlogger.Silent
	case "error":
		l.level = gormlogger.Error
	case "info", "debug":
		l.level = gormlogger.Info
	}
	return l
}

// LogMode implements gormlogger.Interface
func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *l
	clone.level = level
	return &clone
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		WithContext(ctx, l.log).Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		WithContext(ctx, l.log).Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		WithContext(ctx, l.log).Sugar().Errorf(msg, data...)
	}
}

// ParamsFilter implements gorm.ParamsFilter. Dropping the values leaves the
// placeholders in the statement GORM hands to Trace.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, params ...any) (string, []any) {
	if l.withParams {
		return sql, params
	}
	return sql, nil
}

// Trace implements gormlogger.Interface
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)
	slow := l.slow > 0 && elapsed > l.slow && l.level >= gormlogger.Warn
	if !failed && !slow && l.level < gormlogger.Info {
		return
	}

	sql, rows := fc()
	sql, truncated := truncateRunes(sql, maxSQLRunes)

	log := WithContext(ctx, l.log).With(
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	)
	if truncated {
		log = log.With(zap.Bool("sql_truncated", true))
	}

	switch {
	case failed:
		log.Error("gorm query error", zap.Error(err))
	case slow:
		log.Warn("gorm slow query", zap.Duration("threshold", l.slow))
	default:
		log.Debug("gorm query")
	}
}

// truncateRunes cuts s to at most n runes without splitting a UTF-8 sequence.
func truncateRunes(s string, n int) (string, bool) {
	if len(s) <= n || utf8.RuneCountInString(s) <= n {
		return s, false
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "...", true
		}
		i++
	}
	return s, false
}
