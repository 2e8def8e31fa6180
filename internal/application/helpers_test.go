package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/example/clinic-scheduler/internal/clinic"
	"github.com/example/clinic-scheduler/internal/persistence"
	"github.com/example/clinic-scheduler/internal/testfixtures"
)

var errSaveFailed = errors.New("disk full")

// snapshotRepoStub wraps the in-memory repository and can fail saves.
type snapshotRepoStub struct {
	*persistence.MemorySnapshotRepository

	mu      sync.Mutex
	saveErr error
}

func newSnapshotRepoStub() *snapshotRepoStub {
	return &snapshotRepoStub{MemorySnapshotRepository: persistence.NewMemorySnapshotRepository()}
}

func (r *snapshotRepoStub) failSaves(err error) {
	r.mu.Lock()
	r.saveErr = err
	r.mu.Unlock()
}

func (r *snapshotRepoStub) SaveSnapshot(ctx context.Context, record persistence.SnapshotRecord) error {
	r.mu.Lock()
	err := r.saveErr
	r.mu.Unlock()
	if err != nil {
		return err
	}
	return r.MemorySnapshotRepository.SaveSnapshot(ctx, record)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type testEnv struct {
	repo      *snapshotRepoStub
	workspace *Workspace
	clock     *testfixtures.Clock
	ids       *testfixtures.IDGenerator
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	repo := newSnapshotRepoStub()
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ws, err := OpenWorkspace(context.Background(), repo, clock.NowFunc(), quietLogger())
	if err != nil {
		t.Fatalf("OpenWorkspace failed: %v", err)
	}
	return &testEnv{repo: repo, workspace: ws, clock: clock, ids: testfixtures.NewIDGenerator("")}
}

func (e *testEnv) appointments() *AppointmentService {
	return NewAppointmentServiceWithLogger(e.workspace, e.ids.NextFunc(), e.clock.NowFunc(), quietLogger())
}

func (e *testEnv) roster() *RosterService {
	return NewRosterServiceWithLogger(e.workspace, quietLogger())
}

// seed replaces the book without going through the services.
func (e *testEnv) seed(t *testing.T, active, archived []clinic.Appointment) {
	t.Helper()
	err := e.workspace.commit(context.Background(), "seed", false, func(book *clinic.Book, _ *clinic.Roster) (bool, error) {
		*book = *clinic.NewBook(active, archived)
		return true, nil
	})
	if err != nil {
		t.Fatalf("seed failed: %v", err)
	}
}

func inputOf(a clinic.Appointment) AppointmentInput {
	return AppointmentInput{
		ClientName:       a.ClientName,
		Address:          a.Address,
		Phone:            a.Phone,
		Email:            a.Email,
		Date:             a.Date,
		Cats:             a.Cats,
		ServicesSelected: a.ServicesSelected,
		ServicesNotes:    a.ServicesNotes,
	}
}

func idsOf(items []ListedAppointment) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = string(item.ID)
	}
	return out
}

func appointmentIDs(appts []clinic.Appointment) []string {
	out := make([]string, len(appts))
	for i, a := range appts {
		out[i] = string(a.ID)
	}
	return out
}
