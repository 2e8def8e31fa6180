package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/transfer"
)

const maxImportBytes = 10 << 20

type transferService interface {
	ExportJSON(ctx context.Context, w io.Writer) (string, error)
	ExportCSV(ctx context.Context, w io.Writer, scope application.Scope) (string, error)
	Import(ctx context.Context, raw []byte) (transfer.Report, error)
}

type TransferHandler struct {
	service   transferService
	responder responder
	logger    *slog.Logger
}

func NewTransferHandler(service transferService, logger *slog.Logger) *TransferHandler {
	return &TransferHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

func (h *TransferHandler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	filename, err := h.service.ExportJSON(r.Context(), &buf)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeAttachment(r.Context(), w, "application/json", filename, buf.Bytes())
}

func (h *TransferHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	scope, err := application.ParseScope(r.URL.Query().Get("scope"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	var buf bytes.Buffer
	filename, err := h.service.ExportCSV(r.Context(), &buf, scope)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.writeAttachment(r.Context(), w, "text/csv; charset=utf-8", filename, buf.Bytes())
}

func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportBytes))
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	report, err := h.service.Import(r.Context(), raw)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, report)
}

func (h *TransferHandler) writeAttachment(ctx context.Context, w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		handlerLogger(ctx, h.logger, "TransferHandler", "writeAttachment").ErrorContext(ctx, "failed to write export", "error", err)
	}
}
