package application

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/example/clinic-scheduler/internal/clinic"
)

// RosterService manages doctors, workers and their date assignments.
type RosterService struct {
	workspace *Workspace
	logger    *slog.Logger
}

// NewRosterService constructs a roster service.
func NewRosterService(workspace *Workspace) *RosterService {
	return NewRosterServiceWithLogger(workspace, nil)
}

// NewRosterServiceWithLogger constructs a roster service with a specified logger.
func NewRosterServiceWithLogger(workspace *Workspace, logger *slog.Logger) *RosterService {
	return &RosterService{workspace: workspace, logger: defaultLogger(logger)}
}

func (s *RosterService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "RosterService", operation, attrs...)
}

// mutate commits fn and logs the outcome.
func (s *RosterService) mutate(ctx context.Context, operation string, fn mutation, attrs ...any) error {
	if s == nil || s.workspace == nil {
		return fmt.Errorf("RosterService is not configured")
	}
	logger := s.loggerWith(ctx, operation, attrs...)
	err := s.workspace.commit(ctx, "roster."+operation, true, func(book *clinic.Book, roster *clinic.Roster) (bool, error) {
		changed, err := fn(book, roster)
		return changed, mapClinicError(err)
	})
	if err != nil {
		logger.ErrorContext(ctx, "roster update failed", "error", err, "error_kind", ErrorKind(err))
		return err
	}
	logger.InfoContext(ctx, "roster updated")
	return nil
}

// ListDoctors returns registered doctors ordered by id.
func (s *RosterService) ListDoctors(ctx context.Context) []clinic.DoctorEntry {
	var out []clinic.DoctorEntry
	s.workspace.read(func(_ *clinic.Book, roster *clinic.Roster) {
		out = roster.Doctors()
	})
	return out
}

// AddDoctor registers a doctor.
func (s *RosterService) AddDoctor(ctx context.Context, name, color string) (entry clinic.DoctorEntry, err error) {
	err = s.mutate(ctx, "AddDoctor", func(_ *clinic.Book, roster *clinic.Roster) (bool, error) {
		added, err := roster.AddDoctor(name, color)
		if err != nil {
			return false, err
		}
		entry = added
		return true, nil
	}, "name", name)
	return
}

// RemoveDoctor deletes a doctor and clears the dates assigned to it.
func (s *RosterService) RemoveDoctor(ctx context.Context, id string) (cleared int, err error) {
	err = s.mutate(ctx, "RemoveDoctor", func(_ *clinic.Book, roster *clinic.Roster) (bool, error) {
		n, err := roster.RemoveDoctor(id)
		if err != nil {
			return false, err
		}
		cleared = n
		return true, nil
	}, "doctor_id", id)
	return
}

// AssignDoctor sets the doctor working on date.
func (s *RosterService) AssignDoctor(ctx context.Context, date clinic.Date, id string) error {
	if date.IsZero() {
		return &ValidationError{FieldErrors: map[string]string{"date": "date is required"}}
	}
	return s.mutate(ctx, "AssignDoctor", func(_ *clinic.Book, roster *clinic.Roster) (bool, error) {
		if current, ok := roster.DoctorOn(date); ok && current == id {
			return false, nil
		}
		return true, roster.AssignDoctor(date, id)
	}, "date", date, "doctor_id", id)
}

// ClearDoctor removes the doctor assignment of date.
func (s *RosterService) ClearDoctor(ctx context.Context, date clinic.Date) (cleared bool, err error) {
	err = s.mutate(ctx, "ClearDoctor", func(_ *clinic.Book, roster *clinic.Roster) (bool, error) {
		cleared = roster.ClearDoctor(date)
		return cleared, nil
	}, "date", date)
	return
}

// ListWorkers returns registered workers in registration order.
func (s *RosterService) ListWorkers(ctx context.Context) []string {
	var out []string
	s.workspace.read(func(_ *clinic.Book, roster *clinic.Roster) {
		out = roster.Workers()
	})
	return out
}

// AddWorker registers a worker; an existing name reports false.
func (s *RosterService) AddWorker(ctx context.Context, name string) (added bool, err error) {
	err = s.mutate(ctx, "AddWorker", func(_ *clinic.Book, roster *clinic.Roster) (bool, error) {
		ok, err := roster.AddWorker(name)
		added = ok
		return ok, err
	}, "worker", name)
	return
}

// RemoveWorker deletes a worker and removes it from every date.
func (s *RosterService) RemoveWorker(ctx context.Context, name string) error {
	return s.mutate(ctx, "RemoveWorker", func(_ *clinic.Book, roster *clinic.Roster) (bool, error) {
		return true, roster.RemoveWorker(name)
	}, "worker", name)
}

// AssignWorker adds a worker to the staff of date.
func (s *RosterService) AssignWorker(ctx context.Context, date clinic.Date, name string) (added bool, err error) {
	if date.IsZero() {
		return false, &ValidationError{FieldErrors: map[string]string{"date": "date is required"}}
	}
	err = s.mutate(ctx, "AssignWorker", func(_ *clinic.Book, roster *clinic.Roster) (bool, error) {
		ok, err := roster.AssignWorker(date, name)
		added = ok
		return ok, err
	}, "date", date, "worker", name)
	return
}

// UnassignWorker removes a worker from the staff of date.
func (s *RosterService) UnassignWorker(ctx context.Context, date clinic.Date, name string) (removed bool, err error) {
	err = s.mutate(ctx, "UnassignWorker", func(_ *clinic.Book, roster *clinic.Roster) (bool, error) {
		removed = roster.UnassignWorker(date, name)
		return removed, nil
	}, "date", date, "worker", name)
	return
}

// Staff lists the workers assigned to date.
func (s *RosterService) Staff(ctx context.Context, date clinic.Date) []string {
	var out []string
	s.workspace.read(func(_ *clinic.Book, roster *clinic.Roster) {
		out = roster.StaffOn(date)
	})
	return out
}
