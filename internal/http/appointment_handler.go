package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/calendar"
	"github.com/example/clinic-scheduler/internal/clinic"
)

type appointmentService interface {
	Create(ctx context.Context, input application.AppointmentInput) (clinic.Appointment, error)
	Update(ctx context.Context, id clinic.ID, input application.AppointmentInput) (clinic.Appointment, error)
	Delete(ctx context.Context, id clinic.ID) (bool, error)
	Get(ctx context.Context, id clinic.ID) (application.ListedAppointment, error)
	List(ctx context.Context, params application.ListParams) ([]application.ListedAppointment, error)
	Day(ctx context.Context, date clinic.Date) (application.DaySheet, error)
	Archive(ctx context.Context, cutoff clinic.Date) (int, error)
	ArchivePast(ctx context.Context) (int, error)
	RestoreAll(ctx context.Context) (int, error)
	RestoreOne(ctx context.Context, id clinic.ID) (clinic.Appointment, error)
	DeletePermanently(ctx context.Context, id clinic.ID) error
}

type AppointmentHandler struct {
	service   appointmentService
	responder responder
	logger    *slog.Logger
}

func NewAppointmentHandler(service appointmentService, logger *slog.Logger) *AppointmentHandler {
	return &AppointmentHandler{service: service, responder: newResponder(logger), logger: defaultLogger(logger)}
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, vErr := req.toInput()
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	appt, err := h.service.Create(r.Context(), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusCreated, toAppointmentDTO(appt, false))
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointment)
		return
	}

	var req appointmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}
	input, vErr := req.toInput()
	if vErr != nil {
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	appt, err := h.service.Update(r.Context(), id, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAppointmentDTO(appt, false))
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointment)
		return
	}

	removed, err := h.service.Delete(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	if !removed {
		handlerLogger(r.Context(), h.logger, "AppointmentHandler", "Delete", "appointment_id", id).
			DebugContext(r.Context(), "appointment already absent")
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

func (h *AppointmentHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointment)
		return
	}

	listed, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAppointmentDTO(listed.Appointment, listed.Archived))
}

func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	scope, err := application.ParseScope(query.Get("scope"))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	items, err := h.service.List(r.Context(), application.ListParams{Scope: scope, Query: query.Get("q")})
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	out := make([]appointmentDTO, 0, len(items))
	for _, item := range items {
		out = append(out, toAppointmentDTO(item.Appointment, item.Archived))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listAppointmentsResponse{Appointments: out})
}

func (h *AppointmentHandler) Day(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	date, ok := DateFromContext(r.Context())
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidDate)
		return
	}

	sheet, err := h.service.Day(r.Context(), date)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toDaySheetDTO(sheet))
}

func (h *AppointmentHandler) Archive(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req archiveRequest
	if err := decodeOptional(r, &req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	var (
		moved int
		err   error
	)
	if cutoff := strings.TrimSpace(req.Cutoff); cutoff != "" {
		date, parseErr := clinic.ParseDate(cutoff)
		if parseErr != nil {
			h.responder.handleServiceError(r.Context(), w, fieldError("cutoff", errInvalidDate.Error()))
			return
		}
		moved, err = h.service.Archive(r.Context(), date)
	} else {
		moved, err = h.service.ArchivePast(r.Context())
	}
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, countResponse{Count: moved})
}

func (h *AppointmentHandler) RestoreAll(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	restored, err := h.service.RestoreAll(r.Context())
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, countResponse{Count: restored})
}

func (h *AppointmentHandler) RestoreOne(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointment)
		return
	}

	appt, err := h.service.RestoreOne(r.Context(), id)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toAppointmentDTO(appt, false))
}

func (h *AppointmentHandler) DeletePermanently(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := AppointmentIDFromContext(r.Context())
	if !ok || id == "" {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidAppointment)
		return
	}

	if err := h.service.DeletePermanently(r.Context(), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// appointmentRequest mirrors the exported appointment document so exported
// records can be posted back unchanged. The id field is ignored.
type appointmentRequest struct {
	ClientName       string       `json:"clientName"`
	Address          string       `json:"address"`
	Phone            string       `json:"phone"`
	Email            string       `json:"email"`
	Date             string       `json:"date"`
	Cats             []clinic.Cat `json:"cats"`
	ServicesSelected []string     `json:"servicesSelected"`
	ServicesNotes    string       `json:"servicesNotes"`
}

func (r appointmentRequest) toInput() (application.AppointmentInput, error) {
	input := application.AppointmentInput{
		ClientName:       r.ClientName,
		Address:          r.Address,
		Phone:            r.Phone,
		Email:            r.Email,
		Cats:             append([]clinic.Cat(nil), r.Cats...),
		ServicesSelected: append([]string(nil), r.ServicesSelected...),
		ServicesNotes:    r.ServicesNotes,
	}
	if value := strings.TrimSpace(r.Date); value != "" {
		date, err := clinic.ParseDate(value)
		if err != nil {
			return application.AppointmentInput{}, fieldError("date", errInvalidDate.Error())
		}
		input.Date = date
	}
	return input, nil
}

type archiveRequest struct {
	Cutoff string `json:"cutoff"`
}

type countResponse struct {
	Count int `json:"count"`
}

type appointmentDTO struct {
	clinic.Appointment
	Archived bool `json:"archived"`
}

func toAppointmentDTO(appt clinic.Appointment, archived bool) appointmentDTO {
	if appt.Cats == nil {
		appt.Cats = []clinic.Cat{}
	}
	if appt.ServicesSelected == nil {
		appt.ServicesSelected = []string{}
	}
	return appointmentDTO{Appointment: appt, Archived: archived}
}

type listAppointmentsResponse struct {
	Appointments []appointmentDTO `json:"appointments"`
}

type doctorDTO struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

type daySheetDTO struct {
	Date         string           `json:"date"`
	Appointments []appointmentDTO `json:"appointments"`
	Counts       calendar.Counts  `json:"counts"`
	TotalCats    int              `json:"total_cats"`
	Doctor       *doctorDTO       `json:"doctor,omitempty"`
	Staff        []string         `json:"staff"`
}

func toDaySheetDTO(sheet application.DaySheet) daySheetDTO {
	out := daySheetDTO{
		Date:         sheet.Date.String(),
		Appointments: make([]appointmentDTO, 0, len(sheet.Appointments)),
		Counts:       sheet.Counts,
		TotalCats:    sheet.Counts.Total(),
		Staff:        append([]string{}, sheet.Staff...),
	}
	for _, a := range sheet.Appointments {
		out.Appointments = append(out.Appointments, toAppointmentDTO(a, false))
	}
	if sheet.Doctor != nil {
		out.Doctor = &doctorDTO{ID: sheet.DoctorID, Name: sheet.Doctor.Name, Color: sheet.Doctor.Color}
	}
	return out
}

func fieldError(field, message string) *application.ValidationError {
	return &application.ValidationError{FieldErrors: map[string]string{field: message}}
}
