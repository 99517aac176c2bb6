package contextutil

import (
	"context"

	"go.uber.org/zap"
)

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	employeeKey  contextKey = "employee_id"
	loggerKey    contextKey = "logger"
)

func WithRequestID(ctx context.Context, rid string) context.Context {
	return context.WithValue(ctx, requestIDKey, rid)
}

func GetRequestID(ctx context.Context) string {
	if rid, ok := ctx.Value(requestIDKey).(string); ok {
		return rid
	}
	return ""
}

func WithEmployeeID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, employeeKey, id)
}

func GetEmployeeID(ctx context.Context) string {
	if id, ok := ctx.Value(employeeKey).(string); ok {
		return id
	}
	return ""
}

// WithLogger stores a request scoped logger.
func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// GetLogger returns the request scoped logger, then defaultLogger, then a no-op
// logger. It never returns nil.
func GetLogger(ctx context.Context, defaultLogger *zap.Logger) *zap.Logger {
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok && l != nil {
			return l
		}
	}
	if defaultLogger != nil {
		return defaultLogger
	}
	return zap.NewNop()
}

type Metadata struct {
	RequestID  string
	EmployeeID string
}

func ExtractMetadata(ctx context.Context) Metadata {
	return Metadata{
		RequestID:  GetRequestID(ctx),
		EmployeeID: GetEmployeeID(ctx),
	}
}
