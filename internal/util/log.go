package util

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const contextKeyLogger contextKey = "logger"

// WithLogger attaches a request-scoped logger to the context.
func WithLogger(ctx context.Context, logger zerolog.Logger) context.Context {
	return context.WithValue(ctx, contextKeyLogger, &logger)
}

// LogFromContext returns the request-scoped logger attached by WithLogger,
// falling back to the global logger.
func LogFromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(contextKeyLogger).(*zerolog.Logger); ok {
		return logger
	}

	return &log.Logger
}
