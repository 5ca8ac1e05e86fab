package config

import (
	"context"

	"github.com/jackc/pgx/v5/tracelog"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// PgxZapLogger 把 pgx tracelog 输出接到 zap，logger 名为 "pgx"
type PgxZapLogger struct {
	logger *zap.Logger
	level  tracelog.LogLevel
}

// NewPgxZapLogger level 取 trace/debug/info/warn/error/none，无法识别时为 warn
func NewPgxZapLogger(logger *zap.Logger, level string) *PgxZapLogger {
	if logger == nil {
		logger = zap.NewNop()
	}

	parsed, err := tracelog.LogLevelFromString(level)
	if err != nil {
		parsed = tracelog.LogLevelWarn
	}

	return &PgxZapLogger{
		logger: logger.Named("pgx"),
		level:  parsed,
	}
}

// Log 实现 tracelog.Logger
func (l *PgxZapLogger) Log(_ context.Context, level tracelog.LogLevel, msg string, data map[string]any) {
	// tracelog 数值越大越详细
	if l.level == tracelog.LogLevelNone || level > l.level {
		return
	}

	ce := l.logger.Check(zapLevel(level), msg)
	if ce == nil {
		return
	}

	fields := make([]zap.Field, 0, len(data))
	for key, value := range data {
		if err, ok := value.(error); ok {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, value))
	}
	ce.Write(fields...)
}

// GetLogLevel 当前 pgx 日志级别
func (l *PgxZapLogger) GetLogLevel() tracelog.LogLevel {
	return l.level
}

func zapLevel(level tracelog.LogLevel) zapcore.Level {
	switch level {
	case tracelog.LogLevelTrace, tracelog.LogLevelDebug:
		return zapcore.DebugLevel
	case tracelog.LogLevelWarn:
		return zapcore.WarnLevel
	case tracelog.LogLevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
