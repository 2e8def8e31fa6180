package clinic

import (
	"errors"
	"sort"
	"testing"
)

func appt(id, date string) Appointment {
	return Appointment{ID: ID(id), ClientName: "Client " + id, Date: MustParseDate(date)}
}

func ids(appts []Appointment) []string {
	out := make([]string, len(appts))
	for i, a := range appts {
		out[i] = string(a.ID)
	}
	return out
}

func TestBookArchive(t *testing.T) {
	t.Run("moves strictly earlier dates", func(t *testing.T) {
		b := NewBook([]Appointment{
			appt("a", "2024-05-01"),
			appt("b", "2024-06-01"),
			appt("c", "2024-07-01"),
		}, nil)

		moved := b.Archive(MustParseDate("2024-06-01"))

		if moved != 1 {
			t.Fatalf("expected 1 moved, got %d", moved)
		}
		if got := ids(b.Archived()); len(got) != 1 || got[0] != "a" {
			t.Fatalf("unexpected archive %v", got)
		}
		if got := ids(b.Active()); len(got) != 2 || got[0] != "b" || got[1] != "c" {
			t.Fatalf("unexpected active %v", got)
		}
	})

	t.Run("reports zero when nothing qualifies", func(t *testing.T) {
		b := NewBook([]Appointment{appt("a", "2024-05-01")}, nil)
		if moved := b.Archive(MustParseDate("2024-01-01")); moved != 0 {
			t.Fatalf("expected 0 moved, got %d", moved)
		}
	})

	t.Run("keeps archive sorted", func(t *testing.T) {
		b := NewBook([]Appointment{appt("late", "2024-03-01")}, []Appointment{appt("early", "2024-01-01"), appt("mid", "2024-04-01")})
		b.Archive(MustParseDate("2024-12-31"))
		if got := ids(b.Archived()); got[0] != "early" || got[1] != "late" || got[2] != "mid" {
			t.Fatalf("expected archive sorted by date, got %v", got)
		}
	})
}

func TestBookArchiveRestoreRoundTrip(t *testing.T) {
	active := []Appointment{
		appt("1", "2024-01-10"),
		appt("2", "2024-02-10"),
		appt("3", "2024-03-10"),
		appt("4", "2024-03-10"),
	}
	cutoffs := []string{"2023-01-01", "2024-02-10", "2024-03-11", "2030-01-01"}
	for _, cutoff := range cutoffs {
		t.Run(cutoff, func(t *testing.T) {
			b := NewBook(active, nil)
			b.Archive(MustParseDate(cutoff))
			b.RestoreAll()

			got := ids(b.Active())
			want := ids(active)
			sort.Strings(got)
			sort.Strings(want)
			if len(got) != len(want) {
				t.Fatalf("expected %v, got %v", want, got)
			}
			for i := range got {
				if got[i] != want[i] {
					t.Fatalf("expected %v, got %v", want, got)
				}
			}
			if _, archived := b.Len(); archived != 0 {
				t.Fatalf("expected empty archive, got %d", archived)
			}
		})
	}
}

func TestBookRestoreOneAndDeletePermanently(t *testing.T) {
	b := NewBook([]Appointment{appt("b", "2024-02-01")}, []Appointment{appt("a", "2024-01-01"), appt("c", "2024-03-01")})

	restored, err := b.RestoreOne("c")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if restored.ID != "c" {
		t.Fatalf("expected c restored, got %s", restored.ID)
	}
	if got := ids(b.Active()); got[0] != "b" || got[1] != "c" {
		t.Fatalf("expected active sorted after restore, got %v", got)
	}

	if _, err := b.RestoreOne("b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for active record, got %v", err)
	}

	if err := b.DeletePermanently("a"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := b.DeletePermanently("a"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestBookReplaceAndRemove(t *testing.T) {
	b := NewBook([]Appointment{appt("a", "2024-01-01")}, []Appointment{appt("z", "2023-01-01")})

	updated := appt("z", "2023-01-02")
	updated.ClientName = "Renamed"
	partition, ok := b.Replace(updated)
	if !ok || partition != PartitionArchived {
		t.Fatalf("expected archived record to be replaced, got %v %v", partition, ok)
	}
	got, _, _ := b.Find("z")
	if got.ClientName != "Renamed" {
		t.Fatalf("expected replacement to stick, got %+v", got)
	}

	if _, ok := b.Replace(appt("missing", "2024-01-01")); ok {
		t.Fatalf("expected replace of unknown id to fail")
	}

	if !b.Remove("z") || !b.Remove("a") {
		t.Fatalf("expected removals to succeed")
	}
	if b.Remove("a") {
		t.Fatalf("expected second removal to be a no-op")
	}
}

func TestBookReturnsCopies(t *testing.T) {
	b := NewBook([]Appointment{{ID: "a", ClientName: "A", Date: MustParseDate("2024-01-01"), Cats: []Cat{{Name: "Tom"}}}}, nil)
	active := b.Active()
	active[0].Cats[0].Name = "changed"
	if got, _, _ := b.Find("a"); got.Cats[0].Name != "Tom" {
		t.Fatalf("expected book to be isolated from caller mutation")
	}
}
