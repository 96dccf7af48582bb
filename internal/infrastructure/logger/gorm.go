package logger

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// DefaultSlowQueryThreshold applies when GormConfig.SlowThreshold is zero
const DefaultSlowQueryThreshold = 200 * time.Millisecond

// GormConfig configures the SQL logger
type GormConfig struct {
	Level         string // silent, error, warn, info, debug
	SlowThreshold time.Duration
	// LogParams inlines bound values into logged statements. Leave it off
	// outside development: values include addresses and password hashes.
	LogParams bool
}

// GormLogger writes gorm statements to zap under the "gorm" name
type GormLogger struct {
	log       *zap.Logger
	level     gormlogger.LogLevel
	slow      time.Duration
	logParams bool
}

// NewGormLogger creates a gorm logger backed by zap
func NewGormLogger(zapLogger *zap.Logger, cfg GormConfig) *GormLogger {
	slow := cfg.SlowThreshold
	if slow <= 0 {
		slow = DefaultSlowQueryThreshold
	}
	return &GormLogger{
		log:       zapLogger.Named("gorm"),
		level:     gormLevel(cfg.Level),
		slow:      slow,
		logParams: cfg.LogParams,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	copied := *l
	copied.level = level
	return &copied
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Info {
		l.log.Sugar().Infof(msg, data...)
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Warn {
		l.log.Sugar().Warnf(msg, data...)
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...any) {
	if l.level >= gormlogger.Error {
		l.log.Sugar().Errorf(msg, data...)
	}
}

// ParamsFilter drops bound values before gorm renders the statement, so
// logged SQL keeps its placeholders unless LogParams is set.
func (l *GormLogger) ParamsFilter(ctx context.Context, sql string, params ...any) (string, []any) {
	if l.logParams {
		return sql, params
	}
	return sql, nil
}

// Trace logs failed statements as errors, slow ones as warnings and the
// rest at debug. A missing row is not a failure: repositories report it as
// not found.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (sql string, rowsAffected int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	failed := err != nil && !errors.Is(err, gorm.ErrRecordNotFound)

	switch {
	case failed && l.level >= gormlogger.Error:
		l.log.Error("query failed", append(l.fields(ctx, elapsed, fc), zap.Error(err))...)
	case elapsed > l.slow && l.level >= gormlogger.Warn:
		l.log.Warn("slow query", append(l.fields(ctx, elapsed, fc), zap.Duration("threshold", l.slow))...)
	case l.level >= gormlogger.Info:
		l.log.Debug("query", l.fields(ctx, elapsed, fc)...)
	}
}

func (l *GormLogger) fields(ctx context.Context, elapsed time.Duration, fc func() (string, int64)) []zap.Field {
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("sql", sql),
		zap.Int64("rows", rows),
		zap.Duration("elapsed", elapsed),
	}
	if requestID := GetRequestID(ctx); requestID != "" {
		fields = append(fields, zap.String("request_id", requestID))
	}
	if span := trace.SpanContextFromContext(ctx); span.IsValid() {
		fields = append(fields, zap.String("trace_id", span.TraceID().String()))
	}
	return fields
}

func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info", "debug":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}
