package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/clinic-scheduler/internal/calendar"
	"github.com/example/clinic-scheduler/internal/clinic"
)

// AppointmentService orchestrates validation and persistence for appointments.
type AppointmentService struct {
	workspace   *Workspace
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewAppointmentService constructs an appointment service with the provided dependencies.
func NewAppointmentService(workspace *Workspace, idGenerator func() string, now func() time.Time) *AppointmentService {
	return NewAppointmentServiceWithLogger(workspace, idGenerator, now, nil)
}

// NewAppointmentServiceWithLogger constructs an appointment service with a specified logger.
func NewAppointmentServiceWithLogger(workspace *Workspace, idGenerator func() string, now func() time.Time, logger *slog.Logger) *AppointmentService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &AppointmentService{workspace: workspace, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *AppointmentService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AppointmentService", operation, attrs...)
}

// Create validates input and appends a new appointment to the active list.
func (s *AppointmentService) Create(ctx context.Context, input AppointmentInput) (appt clinic.Appointment, err error) {
	if s == nil || s.workspace == nil {
		err = fmt.Errorf("AppointmentService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "Create")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("appointment_id", appt.ID, "date", appt.Date).InfoContext(ctx, "appointment created")
	}()

	candidate := input.appointment(clinic.ID(s.idGenerator()))
	if vErr := validateAppointment(candidate); vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.workspace.commit(ctx, "appointment.create", true, func(book *clinic.Book, _ *clinic.Roster) (bool, error) {
		book.Insert(candidate)
		return true, nil
	})
	if err != nil {
		return
	}
	appt = candidate
	return
}

// Update replaces an appointment in whichever partition holds it.
func (s *AppointmentService) Update(ctx context.Context, id clinic.ID, input AppointmentInput) (appt clinic.Appointment, err error) {
	if s == nil || s.workspace == nil {
		err = fmt.Errorf("AppointmentService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "Update", "appointment_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment updated")
	}()

	candidate := input.appointment(id)
	if vErr := validateAppointment(candidate); vErr.HasErrors() {
		err = vErr
		return
	}

	err = s.workspace.commit(ctx, "appointment.update", true, func(book *clinic.Book, _ *clinic.Roster) (bool, error) {
		if _, ok := book.Replace(candidate); !ok {
			return false, ErrNotFound
		}
		return true, nil
	})
	if err != nil {
		return
	}
	appt = candidate
	return
}

// Delete removes an appointment from either partition and reports whether
// one was removed. Deleting an unknown id is not an error.
func (s *AppointmentService) Delete(ctx context.Context, id clinic.ID) (removed bool, err error) {
	if s == nil || s.workspace == nil {
		return false, fmt.Errorf("AppointmentService is not configured")
	}

	logger := s.loggerWith(ctx, "Delete", "appointment_id", id)
	err = s.workspace.commit(ctx, "appointment.delete", true, func(book *clinic.Book, _ *clinic.Roster) (bool, error) {
		removed = book.Remove(id)
		return removed, nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete appointment", "error", err, "error_kind", ErrorKind(err))
		return false, err
	}

	logger.InfoContext(ctx, "appointment deleted", "removed", removed)
	return removed, nil
}

// Get returns an appointment from either partition.
func (s *AppointmentService) Get(ctx context.Context, id clinic.ID) (ListedAppointment, error) {
	if s == nil || s.workspace == nil {
		return ListedAppointment{}, fmt.Errorf("AppointmentService is not configured")
	}

	var (
		appt      clinic.Appointment
		partition clinic.Partition
		ok        bool
	)
	s.workspace.read(func(book *clinic.Book, _ *clinic.Roster) {
		appt, partition, ok = book.Find(id)
	})
	if !ok {
		return ListedAppointment{}, ErrNotFound
	}
	return ListedAppointment{Appointment: appt, Archived: partition == clinic.PartitionArchived}, nil
}

// List returns the appointments in scope whose client name matches the
// query, sorted by date.
func (s *AppointmentService) List(ctx context.Context, params ListParams) ([]ListedAppointment, error) {
	if s == nil || s.workspace == nil {
		return nil, fmt.Errorf("AppointmentService is not configured")
	}
	scope := params.Scope
	if scope == "" {
		scope = ScopeActive
	}

	var active, archived []clinic.Appointment
	s.workspace.read(func(book *clinic.Book, _ *clinic.Roster) {
		if scope == ScopeActive || scope == ScopeAll {
			active = book.Active()
		}
		if scope == ScopeArchived || scope == ScopeAll {
			archived = book.Archived()
		}
	})

	out := make([]ListedAppointment, 0, len(active)+len(archived))
	for _, a := range calendar.Sorted(calendar.FilterByClient(active, params.Query)) {
		out = append(out, ListedAppointment{Appointment: a})
	}
	for _, a := range calendar.Sorted(calendar.FilterByClient(archived, params.Query)) {
		out = append(out, ListedAppointment{Appointment: a, Archived: true})
	}
	if scope == ScopeAll {
		sortListed(out)
	}

	s.loggerWith(ctx, "List", "scope", scope).DebugContext(ctx, "appointments listed", "count", len(out))
	return out, nil
}

// Day returns the active appointments on date along with who is working.
func (s *AppointmentService) Day(ctx context.Context, date clinic.Date) (DaySheet, error) {
	if s == nil || s.workspace == nil {
		return DaySheet{}, fmt.Errorf("AppointmentService is not configured")
	}
	if date.IsZero() {
		return DaySheet{}, &ValidationError{FieldErrors: map[string]string{"date": "date is required"}}
	}

	sheet := DaySheet{Date: date}
	s.workspace.read(func(book *clinic.Book, roster *clinic.Roster) {
		sheet.Appointments = calendar.OnDate(book.Active(), date)
		if id, ok := roster.DoctorOn(date); ok {
			sheet.DoctorID = id
			if d, ok := roster.Doctor(id); ok {
				sheet.Doctor = &d
			}
		}
		sheet.Staff = roster.StaffOn(date)
	})
	sheet.Counts = calendar.SexCounts(sheet.Appointments)[date]
	return sheet, nil
}

// Archive moves active appointments dated before cutoff into the archive.
func (s *AppointmentService) Archive(ctx context.Context, cutoff clinic.Date) (moved int, err error) {
	if s == nil || s.workspace == nil {
		return 0, fmt.Errorf("AppointmentService is not configured")
	}
	if cutoff.IsZero() {
		return 0, &ValidationError{FieldErrors: map[string]string{"cutoff": "cutoff date is required"}}
	}

	logger := s.loggerWith(ctx, "Archive", "cutoff", cutoff)
	err = s.workspace.commit(ctx, "archive", true, func(book *clinic.Book, _ *clinic.Roster) (bool, error) {
		moved = book.Archive(cutoff)
		return moved > 0, nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to archive appointments", "error", err, "error_kind", ErrorKind(err))
		return 0, err
	}
	logger.InfoContext(ctx, "appointments archived", "moved", moved)
	return moved, nil
}

// ArchivePast archives everything dated before today.
func (s *AppointmentService) ArchivePast(ctx context.Context) (int, error) {
	if s == nil {
		return 0, fmt.Errorf("AppointmentService is not configured")
	}
	return s.Archive(ctx, clinic.Today(s.now()))
}

// RestoreAll moves the whole archive back into the active list.
func (s *AppointmentService) RestoreAll(ctx context.Context) (restored int, err error) {
	if s == nil || s.workspace == nil {
		return 0, fmt.Errorf("AppointmentService is not configured")
	}

	logger := s.loggerWith(ctx, "RestoreAll")
	err = s.workspace.commit(ctx, "archive.restore_all", true, func(book *clinic.Book, _ *clinic.Roster) (bool, error) {
		restored = book.RestoreAll()
		return restored > 0, nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to restore archive", "error", err, "error_kind", ErrorKind(err))
		return 0, err
	}
	logger.InfoContext(ctx, "archive restored", "restored", restored)
	return restored, nil
}

// RestoreOne moves one archived appointment back into the active list.
func (s *AppointmentService) RestoreOne(ctx context.Context, id clinic.ID) (appt clinic.Appointment, err error) {
	if s == nil || s.workspace == nil {
		err = fmt.Errorf("AppointmentService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "RestoreOne", "appointment_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to restore appointment", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "appointment restored")
	}()

	err = s.workspace.commit(ctx, "archive.restore_one", true, func(book *clinic.Book, _ *clinic.Roster) (bool, error) {
		restored, rErr := book.RestoreOne(id)
		if rErr != nil {
			return false, mapClinicError(rErr)
		}
		appt = restored
		return true, nil
	})
	return
}

// DeletePermanently removes one appointment from the archive.
func (s *AppointmentService) DeletePermanently(ctx context.Context, id clinic.ID) error {
	if s == nil || s.workspace == nil {
		return fmt.Errorf("AppointmentService is not configured")
	}

	logger := s.loggerWith(ctx, "DeletePermanently", "appointment_id", id)
	err := s.workspace.commit(ctx, "archive.delete", true, func(book *clinic.Book, _ *clinic.Roster) (bool, error) {
		if err := book.DeletePermanently(id); err != nil {
			return false, mapClinicError(err)
		}
		return true, nil
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete archived appointment", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "archived appointment deleted")
	return nil
}

func validateAppointment(appt clinic.Appointment) *ValidationError {
	vErr := &ValidationError{}
	for field, msg := range appt.Problems() {
		vErr.add(field, msg)
	}
	return vErr
}

func sortListed(items []ListedAppointment) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Date.Before(items[j].Date)
	})
}

// mapClinicError converts domain errors into service errors.
func mapClinicError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, clinic.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, clinic.ErrUnknownDoctor):
		return &ValidationError{FieldErrors: map[string]string{"doctor": "doctor does not exist"}}
	case errors.Is(err, clinic.ErrUnknownWorker):
		return &ValidationError{FieldErrors: map[string]string{"worker": "worker does not exist"}}
	case errors.Is(err, clinic.ErrBlankName):
		return &ValidationError{FieldErrors: map[string]string{"name": "name is required"}}
	case errors.Is(err, clinic.ErrInvalidColor):
		return &ValidationError{FieldErrors: map[string]string{"color": "color must be #rrggbb"}}
	}
	return err
}
