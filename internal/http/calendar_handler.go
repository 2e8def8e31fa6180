package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/clinic-scheduler/internal/calendar"
)

type calendarService interface {
	Month(ctx context.Context, year int, month time.Month) (calendar.Grid, error)
	CurrentMonth(ctx context.Context) (calendar.Grid, error)
}

type CalendarHandler struct {
	service   calendarService
	responder responder
}

func NewCalendarHandler(service calendarService, logger *slog.Logger) *CalendarHandler {
	return &CalendarHandler{service: service, responder: newResponder(logger)}
}

// Month handles GET /calendar?month=YYYY-MM. Without a month the current one
// is projected.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var (
		grid calendar.Grid
		err  error
	)
	if value := strings.TrimSpace(r.URL.Query().Get("month")); value != "" {
		year, month, parseErr := calendar.ParseMonth(value)
		if parseErr != nil {
			h.responder.handleServiceError(r.Context(), w, fieldError("month", errInvalidMonth.Error()))
			return
		}
		grid, err = h.service.Month(r.Context(), year, month)
	} else {
		grid, err = h.service.CurrentMonth(r.Context())
	}
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toGridDTO(grid))
}

type gridDTO struct {
	Month        string    `json:"month"`
	StartWeekday int       `json:"start_weekday"`
	DaysInMonth  int       `json:"days_in_month"`
	Previous     string    `json:"previous"`
	Next         string    `json:"next"`
	Cells        []cellDTO `json:"cells"`
}

type cellDTO struct {
	Date         string          `json:"date,omitempty"`
	Blank        bool            `json:"blank,omitempty"`
	Counts       calendar.Counts `json:"counts"`
	TotalCats    int             `json:"total_cats"`
	Appointments int             `json:"appointments"`
	Doctor       *doctorDTO      `json:"doctor,omitempty"`
	Workers      int             `json:"workers"`
}

func toGridDTO(grid calendar.Grid) gridDTO {
	prevYear, prevMonth := calendar.Shift(grid.Year, grid.Month, -1)
	nextYear, nextMonth := calendar.Shift(grid.Year, grid.Month, 1)

	out := gridDTO{
		Month:        monthKey(grid.Year, grid.Month),
		StartWeekday: grid.StartWeekday,
		DaysInMonth:  grid.DaysInMonth,
		Previous:     monthKey(prevYear, prevMonth),
		Next:         monthKey(nextYear, nextMonth),
		Cells:        make([]cellDTO, 0, len(grid.Cells)),
	}
	for _, cell := range grid.Cells {
		if cell.Blank() {
			out.Cells = append(out.Cells, cellDTO{Blank: true})
			continue
		}
		dto := cellDTO{
			Date:         cell.Date.String(),
			Counts:       cell.Counts,
			TotalCats:    cell.TotalCats,
			Appointments: cell.Appointments,
			Workers:      cell.Workers,
		}
		if cell.Doctor != nil {
			dto.Doctor = &doctorDTO{ID: cell.DoctorID, Name: cell.Doctor.Name, Color: cell.Doctor.Color}
		}
		out.Cells = append(out.Cells, dto)
	}
	return out
}

func monthKey(year int, month time.Month) string {
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}
