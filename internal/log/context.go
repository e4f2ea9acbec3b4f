package log

import (
	"context"

	"github.com/anchore/go-logger"
)

type ctxKey struct{}

// WithLogger returns a new context with the provided logger attached.
func WithLogger(ctx context.Context, lgr logger.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, lgr)
}

// FromContext retrieves the logger from context. Falls back to global logger.
func FromContext(ctx context.Context) logger.Logger {
	if lgr, ok := ctx.Value(ctxKey{}).(logger.Logger); ok && lgr != nil {
		return lgr
	}
	return Get()
}

// WithPart nests the context logger under the given build part name.
func WithPart(ctx context.Context, part string) (context.Context, logger.Logger) {
	lgr := FromContext(ctx).Nested("part", part)
	return WithLogger(ctx, lgr), lgr
}
