package http

import (
	"context"
	"log/slog"

	"github.com/example/clinic-scheduler/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// handlerLogger tags the request logger with the handler and operation.
func handlerLogger(ctx context.Context, fallback *slog.Logger, handlerName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, fallback, "handler", handlerName, operation, attrs...)
}
