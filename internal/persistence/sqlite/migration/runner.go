package migration

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// Runner applies pending migrations from a Source through an Executor.
type Runner struct {
	executor Executor
	source   Source
	logger   *slog.Logger
	now      func() time.Time
}

// NewRunner creates a runner. A nil logger falls back to slog.Default.
func NewRunner(executor Executor, source Source, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{executor: executor, source: source, logger: logger.With("component", "migration"), now: time.Now}
}

// Status reports applied and pending migrations without changing anything.
func (r *Runner) Status(ctx context.Context) (Status, error) {
	if err := r.executor.InitializeVersionTable(ctx); err != nil {
		return Status{}, fmt.Errorf("failed to initialize version table: %w", err)
	}
	available, err := r.source.Migrations()
	if err != nil {
		return Status{}, fmt.Errorf("failed to scan migrations: %w", err)
	}
	applied, err := r.executor.GetAppliedVersions(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to get applied versions: %w", err)
	}

	known := make(map[string]bool, len(available))
	for _, m := range available {
		known[m.Version] = true
	}
	done := make(map[string]bool, len(applied))
	for _, a := range applied {
		if !known[a.Version] {
			return Status{}, NewMigrationError(a.Version, "", "validate sequence", ErrUnknownVersion)
		}
		done[a.Version] = true
	}

	status := Status{Applied: applied}
	if len(applied) > 0 {
		status.CurrentVersion = applied[len(applied)-1].Version
	}
	for _, m := range available {
		if !done[m.Version] {
			status.Pending = append(status.Pending, m)
		}
	}
	return status, nil
}

// Run applies every pending migration in version order and stops at the
// first failure.
func (r *Runner) Run(ctx context.Context) error {
	status, err := r.Status(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "migration status failed", "error", err)
		return err
	}
	r.logger.InfoContext(ctx, "database schema version",
		"current_version", status.CurrentVersion,
		"pending_count", len(status.Pending),
	)
	if len(status.Pending) == 0 {
		return nil
	}

	start := time.Now()
	for i, m := range status.Pending {
		logger := r.logger.With("version", m.Version, "description", m.Description)
		logger.InfoContext(ctx, "executing migration", "position", i+1, "total", len(status.Pending))
		if err := r.executor.ExecuteMigration(ctx, m, r.now()); err != nil {
			logger.ErrorContext(ctx, "migration failed", "error", err)
			return NewMigrationError(m.Version, m.FilePath, "execute migration", fmt.Errorf("%w: %v", ErrMigrationFailed, err))
		}
	}
	r.logger.InfoContext(ctx, "migrations completed",
		"applied_count", len(status.Pending),
		"duration", time.Since(start),
	)
	return nil
}
