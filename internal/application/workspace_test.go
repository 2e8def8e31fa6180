package application

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"

	"github.com/example/clinic-scheduler/internal/clinic"
	"github.com/example/clinic-scheduler/internal/persistence"
	"github.com/example/clinic-scheduler/internal/testfixtures"
)

func TestOpenWorkspace(t *testing.T) {
	ctx := context.Background()

	t.Run("starts with the default roster", func(t *testing.T) {
		ws, err := OpenWorkspace(ctx, persistence.NewMemorySnapshotRepository(), nil, quietLogger())
		if err != nil {
			t.Fatalf("OpenWorkspace failed: %v", err)
		}
		snap := ws.Snapshot()
		if len(snap.Appointments) != 0 || len(snap.Doctors) != 3 || len(snap.Workers) != 3 {
			t.Fatalf("unexpected initial state %+v", snap.Data)
		}
	})

	t.Run("loads a stored snapshot", func(t *testing.T) {
		repo := persistence.NewMemorySnapshotRepository()
		stored := clinic.Snapshot{
			Version: clinic.SnapshotVersion,
			Data: clinic.Data{
				Appointments: []clinic.Appointment{testfixtures.NewAppointment(testfixtures.WithID("a1"))},
				Workers:      []string{"Zed"},
			},
			LastBackupAt: "2024-01-01T00:00:00Z",
		}
		payload, _ := json.Marshal(stored)
		repo.SaveSnapshot(ctx, persistence.NewSnapshotRecord(1, payload, testfixtures.ReferenceTime()))

		ws, err := OpenWorkspace(ctx, repo, nil, quietLogger())
		if err != nil {
			t.Fatalf("OpenWorkspace failed: %v", err)
		}
		snap := ws.Snapshot()
		if len(snap.Appointments) != 1 || snap.Appointments[0].ID != "a1" {
			t.Fatalf("unexpected appointments %+v", snap.Appointments)
		}
		if !reflect.DeepEqual(snap.Workers, []string{"Zed"}) || len(snap.Doctors) != 0 {
			t.Fatalf("unexpected roster %+v", snap.Data)
		}
		if ws.LastBackupAt() != "2024-01-01T00:00:00Z" {
			t.Fatalf("unexpected last backup %q", ws.LastBackupAt())
		}
	})

	t.Run("refuses snapshots from a newer schema", func(t *testing.T) {
		repo := persistence.NewMemorySnapshotRepository()
		payload := []byte(`{"version":99}`)
		repo.SaveSnapshot(ctx, persistence.NewSnapshotRecord(99, payload, testfixtures.ReferenceTime()))
		if _, err := OpenWorkspace(ctx, repo, nil, quietLogger()); !errors.Is(err, clinic.ErrUnsupportedVersion) {
			t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
		}
	})
}

func TestWorkspaceCommit(t *testing.T) {
	ctx := context.Background()

	t.Run("persists before notifying", func(t *testing.T) {
		env := newTestEnv(t)
		var seen []Change
		env.workspace.Subscribe(func(c Change) {
			if _, err := env.repo.LoadSnapshot(ctx); err != nil {
				t.Errorf("observer ran before the snapshot was saved: %v", err)
			}
			seen = append(seen, c)
		})

		if _, err := env.appointments().Create(ctx, inputOf(testfixtures.NewAppointment())); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		if len(seen) != 1 || seen[0].Operation != "appointment.create" || len(seen[0].Snapshot.Appointments) != 1 {
			t.Fatalf("unexpected notifications %+v", seen)
		}
	})

	t.Run("keeps state when saving fails", func(t *testing.T) {
		env := newTestEnv(t)
		notified := false
		env.workspace.Subscribe(func(Change) { notified = true })
		env.repo.failSaves(errSaveFailed)

		_, err := env.appointments().Create(ctx, inputOf(testfixtures.NewAppointment()))
		if !errors.Is(err, errSaveFailed) {
			t.Fatalf("expected save error, got %v", err)
		}
		if n := len(env.workspace.Snapshot().Appointments); n != 0 {
			t.Fatalf("expected no appointments after failed save, got %d", n)
		}
		if notified {
			t.Fatalf("observers must not run when saving fails")
		}
	})

	t.Run("unchanged mutations are not saved", func(t *testing.T) {
		env := newTestEnv(t)
		if _, err := env.appointments().Delete(ctx, "missing"); err != nil {
			t.Fatalf("Delete failed: %v", err)
		}
		if env.repo.Saves() != 0 {
			t.Fatalf("expected no save, got %d", env.repo.Saves())
		}
	})

	t.Run("recording a backup does not notify", func(t *testing.T) {
		env := newTestEnv(t)
		notified := false
		env.workspace.Subscribe(func(Change) { notified = true })

		if err := env.workspace.markBackedUp(ctx, "2024-01-02T15:04:05Z"); err != nil {
			t.Fatalf("markBackedUp failed: %v", err)
		}
		if notified {
			t.Fatalf("observers must not run for backup bookkeeping")
		}
		record, err := env.repo.LoadSnapshot(ctx)
		if err != nil {
			t.Fatalf("LoadSnapshot failed: %v", err)
		}
		var snap clinic.Snapshot
		json.Unmarshal(record.Payload, &snap)
		if snap.LastBackupAt != "2024-01-02T15:04:05Z" {
			t.Fatalf("expected persisted backup time, got %q", snap.LastBackupAt)
		}
	})
}

func TestWorkspaceOnSQLite(t *testing.T) {
	ctx := context.Background()
	db := testfixtures.NewSQLiteHarness(t)
	clock := testfixtures.NewClock(testfixtures.ReferenceTime())
	ids := testfixtures.NewIDGenerator("appt")

	ws, err := OpenWorkspace(ctx, db.Snapshots, clock.NowFunc(), quietLogger())
	if err != nil {
		t.Fatalf("OpenWorkspace failed: %v", err)
	}
	appointments := NewAppointmentServiceWithLogger(ws, ids.NextFunc(), clock.NowFunc(), quietLogger())
	created, err := appointments.Create(ctx, AppointmentInput{
		ClientName: "Jane Doe",
		Date:       testfixtures.ReferenceDate(),
		Cats:       []clinic.Cat{testfixtures.Cat("Tom", clinic.SexMale)},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := NewRosterServiceWithLogger(ws, quietLogger()).AssignWorker(ctx, testfixtures.ReferenceDate(), "Alex"); err != nil {
		t.Fatalf("AssignWorker failed: %v", err)
	}

	reopened, err := OpenWorkspace(ctx, db.Snapshots, clock.NowFunc(), quietLogger())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	snap := reopened.Snapshot()
	if len(snap.Appointments) != 1 || snap.Appointments[0].ID != created.ID {
		t.Fatalf("unexpected appointments after reopen %+v", snap.Appointments)
	}
	if staff := snap.StaffByDate[testfixtures.ReferenceDate()]; !reflect.DeepEqual(staff, []string{"Alex"}) {
		t.Fatalf("unexpected staff after reopen %v", staff)
	}
}
