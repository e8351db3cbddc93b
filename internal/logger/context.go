package logger

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey struct{}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from the context, or zap.NewNop() when none is stored.
func FromContext(ctx context.Context) *zap.Logger {
	return FromContextOr(ctx, zap.NewNop())
}

// FromContextOr extracts a logger from the context, falling back to def.
func FromContextOr(ctx context.Context, def *zap.Logger) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok && l != nil {
		return l
	}
	return def
}

// WithFields derives a child of the context logger (or def) carrying fields and
// stores it in the returned context. Work started from that context, such as hook
// tasks fired by a store mutation, logs with the same fields.
func WithFields(ctx context.Context, def *zap.Logger, fields ...zap.Field) (context.Context, *zap.Logger) {
	l := FromContextOr(ctx, def).With(fields...)
	return ContextWithLogger(ctx, l), l
}
