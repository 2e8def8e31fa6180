package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/example/clinic-scheduler/internal/clinic"
	"github.com/example/clinic-scheduler/internal/transfer"
)

// TransferService exports and imports appointments.
type TransferService struct {
	workspace   *Workspace
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewTransferService constructs a transfer service.
func NewTransferService(workspace *Workspace, idGenerator func() string, now func() time.Time, logger *slog.Logger) *TransferService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &TransferService{workspace: workspace, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *TransferService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TransferService", operation, attrs...)
}

// ExportJSON writes the active appointments as a JSON array.
func (s *TransferService) ExportJSON(ctx context.Context, w io.Writer) (filename string, err error) {
	if s == nil || s.workspace == nil {
		return "", fmt.Errorf("TransferService is not configured")
	}
	var active []clinic.Appointment
	s.workspace.read(func(book *clinic.Book, _ *clinic.Roster) {
		active = book.Active()
	})
	if err := transfer.ExportJSON(w, active); err != nil {
		return "", err
	}
	s.loggerWith(ctx, "ExportJSON").InfoContext(ctx, "appointments exported", "count", len(active))
	return transfer.Filename("active", "json", s.now()), nil
}

// ExportCSV writes the appointments in scope as CSV. The all scope adds the
// Archived column.
func (s *TransferService) ExportCSV(ctx context.Context, w io.Writer, scope Scope) (filename string, err error) {
	if s == nil || s.workspace == nil {
		return "", fmt.Errorf("TransferService is not configured")
	}
	if scope == "" {
		scope = ScopeActive
	}

	var rows []transfer.Row
	s.workspace.read(func(book *clinic.Book, _ *clinic.Roster) {
		if scope == ScopeActive || scope == ScopeAll {
			for _, a := range book.Active() {
				rows = append(rows, transfer.Row{Appointment: a})
			}
		}
		if scope == ScopeArchived || scope == ScopeAll {
			for _, a := range book.Archived() {
				rows = append(rows, transfer.Row{Appointment: a, Archived: true})
			}
		}
	})

	if err := transfer.ExportCSV(w, rows, scope == ScopeAll); err != nil {
		return "", err
	}
	s.loggerWith(ctx, "ExportCSV", "scope", scope).InfoContext(ctx, "appointments exported", "count", len(rows))

	return transfer.Filename(string(scope), "csv", s.now()), nil
}

// Import merges a JSON array of appointments into the book. IDs already in
// the archive are replaced there; everything else lands in the active list.
// The import is all or nothing.
func (s *TransferService) Import(ctx context.Context, raw []byte) (report transfer.Report, err error) {
	if s == nil || s.workspace == nil {
		err = fmt.Errorf("TransferService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "Import", "bytes", len(raw))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "import failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "import completed", "added", report.Added, "replaced", report.Replaced, "total", report.Total)
	}()

	err = s.workspace.commit(ctx, "import", true, func(book *clinic.Book, _ *clinic.Roster) (bool, error) {
		current := transfer.Partitions{Active: book.Active(), Archived: book.Archived()}
		merged, r, rErr := transfer.ReconcilePartitions(current, raw, s.idGenerator)
		if rErr != nil {
			return false, mapTransferError(rErr)
		}
		report = r
		if r.Added == 0 && r.Replaced == 0 {
			return false, nil
		}
		*book = *clinic.NewBook(merged.Active, merged.Archived)
		return true, nil
	})
	return
}

func mapTransferError(err error) error {
	var recErr *transfer.RecordError
	if errors.As(err, &recErr) {
		vErr := &ValidationError{}
		vErr.mergePrefixed(fmt.Sprintf("%d.", recErr.Index), recErr.Fields)
		return vErr
	}
	var synErr *transfer.SyntaxError
	if errors.Is(err, transfer.ErrNotAnArray) || errors.As(err, &synErr) {
		return fmt.Errorf("%w: %v", ErrBadInput, err)
	}
	return err
}
