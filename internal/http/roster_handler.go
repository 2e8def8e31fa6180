package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/clinic-scheduler/internal/clinic"
)

type rosterService interface {
	ListDoctors(ctx context.Context) []clinic.DoctorEntry
	AddDoctor(ctx context.Context, name, color string) (clinic.DoctorEntry, error)
	RemoveDoctor(ctx context.Context, id string) (int, error)
	AssignDoctor(ctx context.Context, date clinic.Date, id string) error
	ClearDoctor(ctx context.Context, date clinic.Date) (bool, error)
	ListWorkers(ctx context.Context) []string
	AddWorker(ctx context.Context, name string) (bool, error)
	RemoveWorker(ctx context.Context, name string) error
	AssignWorker(ctx context.Context, date clinic.Date, name string) (bool, error)
	UnassignWorker(ctx context.Context, date clinic.Date, name string) (bool, error)
	Staff(ctx context.Context, date clinic.Date) []string
}

type RosterHandler struct {
	service   rosterService
	responder responder
}

func NewRosterHandler(service rosterService, logger *slog.Logger) *RosterHandler {
	return &RosterHandler{service: service, responder: newResponder(logger)}
}

func (h *RosterHandler) ListDoctors(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	entries := h.service.ListDoctors(r.Context())
	out := make([]doctorDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, doctorDTO{ID: entry.ID, Name: entry.Name, Color: entry.Color})
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listDoctorsResponse{Doctors: out})
}

func (h *RosterHandler) AddDoctor(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req doctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	entry, err := h.service.AddDoctor(r.Context(), req.Name, req.Color)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, doctorDTO{ID: entry.ID, Name: entry.Name, Color: entry.Color})
}

func (h *RosterHandler) RemoveDoctor(w http.ResponseWriter, r *http.Request, id string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	cleared, err := h.service.RemoveDoctor(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, countResponse{Count: cleared})
}

func (h *RosterHandler) AssignDoctor(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, ok := DateFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	var req assignDoctorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if err := h.service.AssignDoctor(r.Context(), date, strings.TrimSpace(req.DoctorID)); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RosterHandler) ClearDoctor(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, ok := DateFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	if _, err := h.service.ClearDoctor(r.Context(), date); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RosterHandler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, workersResponse{Workers: h.service.ListWorkers(r.Context())})
}

func (h *RosterHandler) AddWorker(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req workerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	added, err := h.service.AddWorker(r.Context(), req.Name)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	h.responder.writeJSON(r.Context(), w, status, workersResponse{Workers: h.service.ListWorkers(r.Context())})
}

func (h *RosterHandler) RemoveWorker(w http.ResponseWriter, r *http.Request, name string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if err := h.service.RemoveWorker(r.Context(), name); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RosterHandler) Staff(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, ok := DateFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, staffResponse{Date: date.String(), Workers: h.staff(r.Context(), date)})
}

func (h *RosterHandler) AssignWorker(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, ok := DateFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	var req workerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	if _, err := h.service.AssignWorker(r.Context(), date, req.Name); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, staffResponse{Date: date.String(), Workers: h.staff(r.Context(), date)})
}

func (h *RosterHandler) UnassignWorker(w http.ResponseWriter, r *http.Request, name string) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, ok := DateFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	if _, err := h.service.UnassignWorker(r.Context(), date, name); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *RosterHandler) staff(ctx context.Context, date clinic.Date) []string {
	return append([]string{}, h.service.Staff(ctx, date)...)
}

type doctorRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

type assignDoctorRequest struct {
	DoctorID string `json:"doctor_id"`
}

type workerRequest struct {
	Name string `json:"name"`
}

type listDoctorsResponse struct {
	Doctors []doctorDTO `json:"doctors"`
}

type workersResponse struct {
	Workers []string `json:"workers"`
}

type staffResponse struct {
	Date    string   `json:"date"`
	Workers []string `json:"workers"`
}
