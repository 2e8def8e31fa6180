package http

import (
	"context"
	"log/slog"

	"github.com/example/clinic-scheduler/internal/clinic"
	"github.com/example/clinic-scheduler/internal/logging"
)

type contextKey string

const (
	appointmentIDContextKey contextKey = "appointment_id"
	dateContextKey          contextKey = "date"
)

// ContextWithLogger returns a derived context carrying a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return logging.ContextWithLogger(ctx, logger)
}

// LoggerFromContext extracts the request scoped logger, if any.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx)
}

// ContextWithAppointmentID injects the appointment identifier resolved from the request path.
func ContextWithAppointmentID(ctx context.Context, id clinic.ID) context.Context {
	return context.WithValue(ctx, appointmentIDContextKey, id)
}

// AppointmentIDFromContext extracts an appointment identifier previously associated with the context.
func AppointmentIDFromContext(ctx context.Context) (clinic.ID, bool) {
	id, ok := ctx.Value(appointmentIDContextKey).(clinic.ID)
	return id, ok
}

// ContextWithDate injects the calendar date resolved from the request path.
func ContextWithDate(ctx context.Context, date clinic.Date) context.Context {
	return context.WithValue(ctx, dateContextKey, date)
}

// DateFromContext extracts a date previously associated with the context.
func DateFromContext(ctx context.Context) (clinic.Date, bool) {
	date, ok := ctx.Value(dateContextKey).(clinic.Date)
	return date, ok
}
