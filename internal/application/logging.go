package application

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/clinic-scheduler/internal/logging"
)

func defaultLogger(logger *slog.Logger) *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

func serviceLogger(ctx context.Context, base *slog.Logger, serviceName, operation string, attrs ...any) *slog.Logger {
	return logging.Scoped(ctx, base, "service", serviceName, operation, attrs...)
}

// ErrorKind maps sentinel and validation errors to a stable logging label.
func ErrorKind(err error) string {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrEmptySnapshot):
		return "empty_snapshot"
	case errors.Is(err, ErrRemote):
		return "remote"
	case errors.Is(err, ErrBadInput):
		return "bad_input"
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return "validation"
	}

	return "unexpected"
}
