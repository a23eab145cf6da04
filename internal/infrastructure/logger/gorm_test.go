package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func newObservedGormLogger(level gormlogger.LogLevel, opts ...GormLoggerOption) (*GormLogger, *observer.ObservedLogs) {
	core, recorded := observer.New(zapcore.DebugLevel)
	return NewGormLogger(zap.New(core), level, opts...), recorded
}

func traceStatement(sql string, rows int64) func() (string, int64) {
	return func() (string, int64) {
		return sql, rows
	}
}

func TestNewGormLogger(t *testing.T) {
	gormLog, _ := newObservedGormLogger(gormlogger.Info)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel)
	assert.Equal(t, defaultSlowThreshold, gormLog.slowThreshold)
	assert.True(t, gormLog.ignoreRecordNotFoundError)
}

func TestGormLoggerOptions(t *testing.T) {
	gormLog, _ := newObservedGormLogger(
		gormlogger.Info,
		WithSlowThreshold(500*time.Millisecond),
		WithIgnoreRecordNotFoundError(false),
	)

	assert.Equal(t, 500*time.Millisecond, gormLog.slowThreshold)
	assert.False(t, gormLog.ignoreRecordNotFoundError)
}

func TestGormLogger_LogMode(t *testing.T) {
	gormLog, _ := newObservedGormLogger(gormlogger.Info)

	clone := gormLog.LogMode(gormlogger.Warn)

	assert.Equal(t, gormlogger.Info, gormLog.logLevel, "original logger is not mutated")
	cloned, ok := clone.(*GormLogger)
	require.True(t, ok)
	assert.Equal(t, gormlogger.Warn, cloned.logLevel)
}

func TestGormLogger_Levels(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(gormlogger.Info)
	ctx := context.Background()

	gormLog.Info(ctx, "migrated %d tables", 6)
	gormLog.Warn(ctx, "connection pool near limit")
	gormLog.Error(ctx, "statement failed")

	logs := recorded.All()
	require.Len(t, logs, 3)
	assert.Contains(t, logs[0].Message, "migrated 6 tables")
	assert.Equal(t, zapcore.WarnLevel, logs[1].Level)
	assert.Equal(t, zapcore.ErrorLevel, logs[2].Level)
}

func TestGormLogger_SilentSuppressesAll(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(gormlogger.Silent)
	ctx := context.Background()

	gormLog.Info(ctx, "ignored")
	gormLog.Trace(ctx, time.Now(), traceStatement("SELECT * FROM orders", 1), nil)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_Error(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(gormlogger.Error)

	gormLog.Trace(context.Background(), time.Now(),
		traceStatement(`UPDATE inventory_records SET quantity = quantity - 3`, 0),
		errors.New("deadlock detected"),
	)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SQL Error")
}

func TestGormLogger_Trace_RecordNotFoundIgnored(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(gormlogger.Error)

	gormLog.Trace(context.Background(), time.Now(),
		traceStatement(`SELECT * FROM carts WHERE customer_id = ?`, 0),
		gormlogger.ErrRecordNotFound,
	)

	assert.Empty(t, recorded.All())
}

func TestGormLogger_Trace_SlowQuery(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(gormlogger.Warn, WithSlowThreshold(time.Nanosecond))

	begin := time.Now().Add(-time.Second)
	gormLog.Trace(context.Background(), begin, traceStatement(`SELECT * FROM orders`, 20), nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SLOW SQL")
	assert.Equal(t, zapcore.WarnLevel, logs[0].Level)
}

func TestGormLogger_Trace_NormalQuery(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(gormlogger.Info)

	gormLog.Trace(context.Background(), time.Now(), traceStatement(`SELECT * FROM products`, 12), nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	assert.Contains(t, logs[0].Message, "SQL Query")
	assert.Equal(t, zapcore.DebugLevel, logs[0].Level)
}

func TestGormLogger_Trace_CarriesRequestID(t *testing.T) {
	gormLog, recorded := newObservedGormLogger(gormlogger.Info)
	ctx := context.WithValue(context.Background(), RequestIDKey, "req-42")

	gormLog.Trace(ctx, time.Now(), traceStatement(`SELECT * FROM orders WHERE id = ?`, 1), nil)

	logs := recorded.All()
	require.Len(t, logs, 1)
	found := false
	for _, field := range logs[0].Context {
		if field.Key == "request_id" {
			found = true
			assert.Equal(t, "req-42", field.String)
		}
	}
	assert.True(t, found, "trace entries carry the request id")
}

func TestMapGormLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected gormlogger.LogLevel
	}{
		{"silent", gormlogger.Silent},
		{"error", gormlogger.Error},
		{"warn", gormlogger.Warn},
		{"info", gormlogger.Info},
		{"debug", gormlogger.Info},
		{"unknown", gormlogger.Warn},
		{"", gormlogger.Warn},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapGormLogLevel(tt.level))
		})
	}
}

func TestGormLoggerImplementsInterface(t *testing.T) {
	gormLog, _ := newObservedGormLogger(gormlogger.Info)
	var _ gormlogger.Interface = gormLog
}
