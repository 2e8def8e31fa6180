package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/clinic-scheduler/internal/persistence/sqlite"
	"github.com/example/clinic-scheduler/internal/persistence/sqlite/migration"
)

// SQLiteHarness provides a migrated storage in a temporary file.
type SQLiteHarness struct {
	Storage   *sqlite.Storage
	Snapshots *sqlite.SnapshotRepository
	BackupLog *sqlite.BackupLogRepository
	Path      string

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness opens and migrates a temporary database. Close is also
// registered with tb.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "scheduler.db")
	storage, err := sqlite.OpenWithConfig(migration.TempFileTestSQLiteConfig(path), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := storage.Migrate(context.Background()); err != nil {
		_ = storage.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Storage:   storage,
		Snapshots: storage.Snapshots(),
		BackupLog: storage.BackupLog(),
		Path:      path,
		cleanup: func() {
			_ = storage.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
