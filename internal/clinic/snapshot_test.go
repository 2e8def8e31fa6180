package clinic

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestSnapshotCaptureRestore(t *testing.T) {
	book := NewBook([]Appointment{appt("a", "2024-01-01")}, []Appointment{appt("z", "2023-01-01")})
	roster := DefaultRoster()
	day := MustParseDate("2024-01-01")
	roster.AssignDoctor(day, "ly")
	roster.AssignWorker(day, "Casey")

	snap := Capture(book, roster, "2024-01-02T00:00:00Z")
	raw, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var decoded Snapshot
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.Version != SnapshotVersion || decoded.LastBackupAt != "2024-01-02T00:00:00Z" {
		t.Fatalf("unexpected header %+v", decoded)
	}

	gotBook, gotRoster, err := decoded.Restore()
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if a, p := gotBook.Len(); a != 1 || p != 1 {
		t.Fatalf("unexpected partition sizes %d/%d", a, p)
	}
	if id, _ := gotRoster.DoctorOn(day); id != "ly" {
		t.Fatalf("expected doctor assignment to survive, got %q", id)
	}
	if staff := gotRoster.StaffOn(day); len(staff) != 1 || staff[0] != "Casey" {
		t.Fatalf("expected staff to survive, got %v", staff)
	}
}

func TestSnapshotRejectsNewerVersion(t *testing.T) {
	_, _, err := Snapshot{Version: SnapshotVersion + 1}.Restore()
	if !errors.Is(err, ErrUnsupportedVersion) {
		t.Fatalf("expected ErrUnsupportedVersion, got %v", err)
	}
}

func TestRosterApplyKeepsAbsentParts(t *testing.T) {
	r := DefaultRoster()
	r.Apply(Data{Workers: []string{"Zed"}})
	if w := r.Workers(); len(w) != 1 || w[0] != "Zed" {
		t.Fatalf("expected workers replaced, got %v", w)
	}
	if len(r.Doctors()) != 3 {
		t.Fatalf("expected doctors untouched when absent")
	}
}

func TestRosterApplyDeduplicatesWorkers(t *testing.T) {
	r := NewRoster()
	r.Apply(Data{Workers: []string{"Alex", "Bailey", "Alex", "alex", "Bailey"}})
	if w := r.Workers(); len(w) != 3 || w[0] != "Alex" || w[1] != "Bailey" || w[2] != "alex" {
		t.Fatalf("expected exact duplicates dropped in order, got %v", w)
	}
}

func TestDataIsEmpty(t *testing.T) {
	if !(Data{}).IsEmpty() {
		t.Fatalf("expected zero data to be empty")
	}
	if (Data{Workers: []string{"Alex"}}).IsEmpty() {
		t.Fatalf("expected workers to count as content")
	}
}
