package clinic

import (
	"errors"
	"testing"
)

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Dr. Smith":       "dr-smith",
		"  Dr.  O'Brien ": "dr-o-brien",
		"ÉLISE":           "lise",
		"---":             "",
		"Lee 2":           "lee-2",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRosterAddDoctor(t *testing.T) {
	r := NewRoster()

	first, err := r.AddDoctor("Dr. Smith", "#10B981")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.ID != "dr-smith" || first.Color != "#10b981" {
		t.Fatalf("unexpected entry %+v", first)
	}

	second, _ := r.AddDoctor("dr smith", "#000000")
	third, _ := r.AddDoctor("Dr Smith!", "#000000")
	if second.ID != "dr-smith-2" || third.ID != "dr-smith-3" {
		t.Fatalf("expected numeric suffixes, got %s and %s", second.ID, third.ID)
	}

	blank, _ := r.AddDoctor("???", "#000000")
	if blank.ID != "doctor" {
		t.Fatalf("expected fallback id, got %s", blank.ID)
	}

	if _, err := r.AddDoctor(" ", "#000000"); !errors.Is(err, ErrBlankName) {
		t.Fatalf("expected ErrBlankName, got %v", err)
	}
	if _, err := r.AddDoctor("Dr. Who", "blue"); !errors.Is(err, ErrInvalidColor) {
		t.Fatalf("expected ErrInvalidColor, got %v", err)
	}
}

func TestRosterRemoveDoctorCascades(t *testing.T) {
	r := DefaultRoster()
	d1 := MustParseDate("2024-01-01")
	d2 := MustParseDate("2024-01-02")
	d3 := MustParseDate("2024-01-03")
	for _, d := range []Date{d1, d2} {
		if err := r.AssignDoctor(d, "sm"); err != nil {
			t.Fatalf("assign: %v", err)
		}
	}
	if err := r.AssignDoctor(d3, "jn"); err != nil {
		t.Fatalf("assign: %v", err)
	}

	cleared, err := r.RemoveDoctor("sm")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cleared != 2 {
		t.Fatalf("expected 2 cleared dates, got %d", cleared)
	}
	if _, ok := r.DoctorOn(d1); ok {
		t.Fatalf("expected stale assignment to be purged")
	}
	if id, _ := r.DoctorOn(d3); id != "jn" {
		t.Fatalf("expected unrelated assignment to survive, got %q", id)
	}
	if _, err := r.RemoveDoctor("sm"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := r.AssignDoctor(d1, "sm"); !errors.Is(err, ErrUnknownDoctor) {
		t.Fatalf("expected ErrUnknownDoctor, got %v", err)
	}
}

func TestRosterWorkers(t *testing.T) {
	r := DefaultRoster()
	day := MustParseDate("2024-04-01")
	other := MustParseDate("2024-04-02")

	if added, _ := r.AddWorker("Alex"); added {
		t.Fatalf("expected duplicate worker to be ignored")
	}
	if added, err := r.AddWorker("Dana"); err != nil || !added {
		t.Fatalf("expected Dana to be added, got %v %v", added, err)
	}

	if _, err := r.AssignWorker(day, "Nobody"); !errors.Is(err, ErrUnknownWorker) {
		t.Fatalf("expected ErrUnknownWorker, got %v", err)
	}
	r.AssignWorker(day, "Alex")
	r.AssignWorker(day, "Dana")
	if again, _ := r.AssignWorker(day, "Alex"); again {
		t.Fatalf("expected duplicate assignment to be ignored")
	}
	r.AssignWorker(other, "Alex")

	if err := r.RemoveWorker("Alex"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if staff := r.StaffOn(day); len(staff) != 1 || staff[0] != "Dana" {
		t.Fatalf("expected Alex purged from staff, got %v", staff)
	}
	if _, ok := r.StaffByDate()[other]; ok {
		t.Fatalf("expected empty staff list to be dropped")
	}
	if err := r.RemoveWorker("Alex"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if !r.UnassignWorker(day, "Dana") {
		t.Fatalf("expected unassign to succeed")
	}
	if r.UnassignWorker(day, "Dana") {
		t.Fatalf("expected second unassign to be a no-op")
	}
}
