package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/clinic-scheduler/internal/calendar"
	"github.com/example/clinic-scheduler/internal/clinic"
)

// CalendarService projects month grids annotated with the practice state.
type CalendarService struct {
	workspace *Workspace
	now       func() time.Time
	logger    *slog.Logger
}

// NewCalendarService constructs a calendar service.
func NewCalendarService(workspace *Workspace, now func() time.Time, logger *slog.Logger) *CalendarService {
	if now == nil {
		now = time.Now
	}
	return &CalendarService{workspace: workspace, now: now, logger: defaultLogger(logger)}
}

// Month returns the annotated grid for year and month. Counts include
// archived appointments.
func (s *CalendarService) Month(ctx context.Context, year int, month time.Month) (calendar.Grid, error) {
	if s == nil || s.workspace == nil {
		return calendar.Grid{}, fmt.Errorf("CalendarService is not configured")
	}
	if month < time.January || month > time.December {
		return calendar.Grid{}, &ValidationError{FieldErrors: map[string]string{"month": "month must be between 1 and 12"}}
	}

	var ann calendar.Annotations
	s.workspace.read(func(book *clinic.Book, roster *clinic.Roster) {
		ann = calendar.Annotations{
			Appointments: append(book.Active(), book.Archived()...),
			Doctors:      roster.DoctorMap(),
			DoctorByDate: roster.DoctorByDate(),
			StaffByDate:  roster.StaffByDate(),
		}
	})

	grid := calendar.Annotate(calendar.Project(year, month), ann)
	serviceLogger(ctx, s.logger, "CalendarService", "Month").DebugContext(ctx, "month projected",
		"year", year, "month", int(month), "appointments", len(ann.Appointments))
	return grid, nil
}

// CurrentMonth returns the grid of the month containing now.
func (s *CalendarService) CurrentMonth(ctx context.Context) (calendar.Grid, error) {
	today := clinic.Today(s.now())
	return s.Month(ctx, today.Year, today.Month)
}
