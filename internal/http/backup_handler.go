package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/persistence"
)

type backupService interface {
	BackupNow(ctx context.Context, force bool) (application.BackupResult, error)
	Restore(ctx context.Context) (application.RestoreResult, error)
	Status(ctx context.Context) application.BackupStatus
	History(ctx context.Context, limit int) ([]persistence.BackupEntry, error)
}

type BackupHandler struct {
	service   backupService
	responder responder
}

func NewBackupHandler(service backupService, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{service: service, responder: newResponder(logger)}
}

func (h *BackupHandler) BackupNow(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req backupRequest
	if err := decodeOptional(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	result, err := h.service.BackupNow(r.Context(), req.Force)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, backupResultDTO{
		At:     result.At.UTC().Format(time.RFC3339Nano),
		BlobID: result.BlobID,
		Digest: result.Digest,
	})
}

func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	result, err := h.service.Restore(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, restoreResultDTO{
		Site:                 result.Site,
		When:                 result.When,
		Appointments:         result.Appointments,
		ArchivedAppointments: result.ArchivedAppointments,
		RosterReplaced:       result.RosterReplaced,
	})
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	status := h.service.Status(r.Context())
	dto := backupStatusDTO{
		LastBackupAt: status.LastBackupAt,
		LastError:    status.LastError,
		AutoEnabled:  status.AutoEnabled,
		Pending:      status.Pending,
	}
	if !status.LastErrorAt.IsZero() {
		dto.LastErrorAt = status.LastErrorAt.UTC().Format(time.RFC3339Nano)
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, dto)
}

func (h *BackupHandler) History(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	limit := 20
	if value := r.URL.Query().Get("limit"); value != "" {
		n, err := strconv.Atoi(value)
		if err != nil || n < 0 {
			h.responder.handleServiceError(r.Context(), w, fieldError("limit", "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	entries, err := h.service.History(r.Context(), limit)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]backupEntryDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, backupEntryDTO{
			PushedAt: entry.PushedAt.UTC().Format(time.RFC3339Nano),
			Digest:   entry.Digest,
			BlobID:   entry.BlobID,
		})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, backupHistoryResponse{Backups: out})
}

type backupRequest struct {
	Force bool `json:"force"`
}

type backupResultDTO struct {
	At     string `json:"at"`
	BlobID string `json:"blob_id,omitempty"`
	Digest string `json:"digest"`
}

type restoreResultDTO struct {
	Site                 string `json:"site"`
	When                 string `json:"when"`
	Appointments         int    `json:"appointments"`
	ArchivedAppointments int    `json:"archived_appointments"`
	RosterReplaced       bool   `json:"roster_replaced"`
}

type backupStatusDTO struct {
	LastBackupAt string `json:"last_backup_at,omitempty"`
	LastError    string `json:"last_error,omitempty"`
	LastErrorAt  string `json:"last_error_at,omitempty"`
	AutoEnabled  bool   `json:"auto_enabled"`
	Pending      bool   `json:"pending"`
}

type backupEntryDTO struct {
	PushedAt string `json:"pushed_at"`
	Digest   string `json:"digest"`
	BlobID   string `json:"blob_id,omitempty"`
}

type backupHistoryResponse struct {
	Backups []backupEntryDTO `json:"backups"`
}
