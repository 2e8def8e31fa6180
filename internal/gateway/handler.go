package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
)

// Handler exposes POST /backup and GET /restore. Error bodies are plain
// text.
type Handler struct {
	gateway *Gateway
	logger  *slog.Logger
}

// NewHandler constructs the gateway HTTP handler.
func NewHandler(gateway *Gateway, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{gateway: gateway, logger: logger}
}

// Routes registers the endpoints on a new mux.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/backup", h.Backup)
	mux.HandleFunc("/restore", h.Restore)
	return mux
}

type pushResponse struct {
	OK     bool   `json:"ok"`
	GistID string `json:"gistId,omitempty"`
}

// Backup handles POST /backup.
func (h *Handler) Backup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}
	if h.gateway.token == "" {
		http.Error(w, "Missing GITHUB_TOKEN", http.StatusInternalServerError)
		return
	}

	var req PushRequest
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Backup failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	if len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			http.Error(w, "Backup failed: "+err.Error(), http.StatusInternalServerError)
			return
		}
	}

	result, err := h.gateway.Push(r.Context(), req)
	if err != nil {
		if errors.Is(err, ErrMissingCredential) {
			http.Error(w, "Missing GITHUB_TOKEN", http.StatusInternalServerError)
			return
		}
		http.Error(w, "Backup failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	resp := pushResponse{OK: true}
	if result.Created {
		resp.GistID = result.BlobID
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to encode response", "error", err)
	}
}

// Restore handles GET /restore.
func (h *Handler) Restore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", http.MethodGet)
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	content, err := h.gateway.Pull(r.Context())
	switch {
	case errors.Is(err, ErrMissingCredential):
		http.Error(w, "Missing GITHUB_TOKEN or GIST_ID", http.StatusInternalServerError)
		return
	case errors.Is(err, ErrNoBackup):
		http.Error(w, "No backup file", http.StatusNotFound)
		return
	case err != nil:
		http.Error(w, "Restore failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(content)
}
