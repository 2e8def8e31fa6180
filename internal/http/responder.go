package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/clinic-scheduler/internal/application"
)

var (
	errBadRequestBody     = errors.New("request body is malformed")
	errInvalidAppointment = errors.New("invalid appointment id")
	errInvalidDate        = errors.New("date must use YYYY-MM-DD")
	errInvalidMonth       = errors.New("month must use YYYY-MM")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: statusMessage(http.StatusNotFound)})
	case errors.Is(err, application.ErrBadInput):
		r.writeJSON(ctx, w, http.StatusBadRequest, errorResponse{ErrorCode: "BAD_INPUT", Message: err.Error()})
	case errors.Is(err, application.ErrEmptySnapshot):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "EMPTY_SNAPSHOT",
			Message:   "Data looks empty. Send force=true to overwrite the cloud backup with an empty snapshot.",
		})
	case errors.Is(err, application.ErrRemote):
		r.loggerFor(ctx).WarnContext(ctx, "remote backup unavailable", "error", err)
		r.writeJSON(ctx, w, http.StatusBadGateway, errorResponse{ErrorCode: "REMOTE_UNAVAILABLE", Message: err.Error()})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: statusMessage(http.StatusUnprocessableEntity),
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.loggerFor(ctx).ErrorContext(ctx, "unexpected service error", "error", err)
		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: statusMessage(http.StatusInternalServerError)})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "The request is invalid."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusConflict:
		return "The request conflicts with the current state."
	case http.StatusUnprocessableEntity:
		return "The submitted data is invalid."
	case http.StatusBadGateway:
		return "The backup service could not be reached."
	default:
		return "An internal error occurred."
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}

// decodeOptional decodes a JSON body into dst, treating an empty body as
// zero values.
func decodeOptional(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
