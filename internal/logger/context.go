package logger

import (
	"context"

	"go.uber.org/zap"
)

type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey{}).(string); ok {
		return v
	}
	return ""
}

// FromCtx returns the global logger with the request id field attached.
func FromCtx(ctx context.Context) *zap.Logger {
	if reqID := RequestIDFrom(ctx); reqID != "" {
		return L().With(zap.String("request_id", reqID))
	}
	return L()
}
