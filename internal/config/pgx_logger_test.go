package config

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/tracelog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// TestNewPgxZapLogger 测试创建PGX Zap日志适配器
func TestNewPgxZapLogger(t *testing.T) {
	testCases := []struct {
		level         string
		expectedLevel tracelog.LogLevel
	}{
		{"trace", tracelog.LogLevelTrace},
		{"debug", tracelog.LogLevelDebug},
		{"info", tracelog.LogLevelInfo},
		{"warn", tracelog.LogLevelWarn},
		{"error", tracelog.LogLevelError},
		{"none", tracelog.LogLevelNone},
		{"unknown", tracelog.LogLevelWarn},
		{"", tracelog.LogLevelWarn},
	}

	for _, tc := range testCases {
		t.Run("level_"+tc.level, func(t *testing.T) {
			l := NewPgxZapLogger(nil, tc.level)
			assert.Equal(t, tc.expectedLevel, l.GetLogLevel())
		})
	}
}

func TestPgxZapLogger_Log(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewPgxZapLogger(zap.New(core), "info")

	ctx := context.Background()
	l.Log(ctx, tracelog.LogLevelInfo, "Query", map[string]any{
		"sql":  "SELECT 1",
		"rows": int64(1),
		"err":  errors.New("boom"),
	})
	l.Log(ctx, tracelog.LogLevelDebug, "too verbose", nil)
	l.Log(ctx, tracelog.LogLevelError, "failed", nil)

	entries := logs.All()
	assert.Len(t, entries, 2, "debug级别的日志应被过滤")

	assert.Equal(t, "Query", entries[0].Message)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "pgx", entries[0].LoggerName)
	fields := entries[0].ContextMap()
	assert.Equal(t, "SELECT 1", fields["sql"])
	assert.Equal(t, int64(1), fields["rows"])
	assert.Equal(t, "boom", fields["err"], "错误字段保留原键名")

	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
}

func TestPgxZapLogger_None(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewPgxZapLogger(zap.New(core), "none")

	l.Log(context.Background(), tracelog.LogLevelError, "ignored", nil)
	assert.Zero(t, logs.Len())
}
