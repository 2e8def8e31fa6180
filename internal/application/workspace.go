package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/clinic-scheduler/internal/clinic"
	"github.com/example/clinic-scheduler/internal/persistence"
)

// Change is delivered to observers after a mutation has been persisted.
type Change struct {
	Operation string
	Snapshot  clinic.Snapshot
}

// Workspace owns the practice state. Every mutation runs under one lock,
// works on a copy and is persisted before it becomes visible.
type Workspace struct {
	snapshots persistence.SnapshotRepository
	now       func() time.Time
	logger    *slog.Logger

	mu           sync.Mutex
	book         *clinic.Book
	roster       *clinic.Roster
	lastBackupAt string
	observers    []func(Change)
}

// OpenWorkspace loads the stored snapshot. An empty store starts with no
// appointments and the default roster.
func OpenWorkspace(ctx context.Context, snapshots persistence.SnapshotRepository, now func() time.Time, logger *slog.Logger) (*Workspace, error) {
	if snapshots == nil {
		return nil, fmt.Errorf("snapshot repository not configured")
	}
	if now == nil {
		now = time.Now
	}
	w := &Workspace{snapshots: snapshots, now: now, logger: defaultLogger(logger)}

	record, err := snapshots.LoadSnapshot(ctx)
	switch {
	case errors.Is(err, persistence.ErrNotFound):
		w.book = clinic.NewBook(nil, nil)
		w.roster = clinic.DefaultRoster()
		return w, nil
	case err != nil:
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	var snap clinic.Snapshot
	if err := json.Unmarshal(record.Payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	book, roster, err := snap.Restore()
	if err != nil {
		return nil, err
	}
	w.book, w.roster, w.lastBackupAt = book, roster, snap.LastBackupAt

	active, archived := book.Len()
	serviceLogger(ctx, w.logger, "Workspace", "Open").InfoContext(ctx, "snapshot loaded",
		"active", active, "archived", archived, "saved_at", record.SavedAt)
	return w, nil
}

// Subscribe registers fn to run after every persisted mutation.
func (w *Workspace) Subscribe(fn func(Change)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observers = append(w.observers, fn)
}

// Snapshot captures the current state.
func (w *Workspace) Snapshot() clinic.Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return clinic.Capture(w.book, w.roster, w.lastBackupAt)
}

// LastBackupAt returns the time of the last successful push.
func (w *Workspace) LastBackupAt() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.lastBackupAt
}

// read runs fn with the live state under the lock. fn must not retain or
// mutate what it receives.
func (w *Workspace) read(fn func(book *clinic.Book, roster *clinic.Roster)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	fn(w.book, w.roster)
}

// mutation reports whether it changed anything.
type mutation func(book *clinic.Book, roster *clinic.Roster) (bool, error)

// commit applies fn to a copy of the state, persists the result and swaps
// it in. Observers are notified when notify is set.
func (w *Workspace) commit(ctx context.Context, operation string, notify bool, fn mutation) error {
	w.mu.Lock()

	book, roster, err := clinic.Capture(w.book, w.roster, w.lastBackupAt).Restore()
	if err != nil {
		w.mu.Unlock()
		return err
	}

	changed, err := fn(book, roster)
	if err != nil || !changed {
		w.mu.Unlock()
		return err
	}

	snap := clinic.Capture(book, roster, w.lastBackupAt)
	if err := w.persist(ctx, snap); err != nil {
		w.mu.Unlock()
		return err
	}
	w.book, w.roster = book, roster

	var observers []func(Change)
	if notify {
		observers = append(observers, w.observers...)
	}
	w.mu.Unlock()

	for _, observer := range observers {
		observer(Change{Operation: operation, Snapshot: snap})
	}
	return nil
}

// markBackedUp records a successful push without notifying observers.
func (w *Workspace) markBackedUp(ctx context.Context, at string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := clinic.Capture(w.book, w.roster, at)
	if err := w.persist(ctx, snap); err != nil {
		return err
	}
	w.lastBackupAt = at
	return nil
}

func (w *Workspace) persist(ctx context.Context, snap clinic.Snapshot) error {
	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := w.snapshots.SaveSnapshot(ctx, persistence.NewSnapshotRecord(snap.Version, payload, w.now())); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	return nil
}
