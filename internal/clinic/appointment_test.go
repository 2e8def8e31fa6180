package clinic

import (
	"encoding/json"
	"testing"
)

func TestNormalizeSex(t *testing.T) {
	cases := map[string]Sex{
		"":          SexNone,
		"   ":       SexNone,
		"m":         SexMale,
		"MALE":      SexMale,
		" male cat": SexMale,
		"f":         SexFemale,
		"Female":    SexFemale,
		"x":         SexUnknown,
		"neutered":  SexUnknown,
		"Unknown":   SexUnknown,
	}
	for in, want := range cases {
		if got := NormalizeSex(in); got != want {
			t.Fatalf("NormalizeSex(%q) = %q, want %q", in, got, want)
		}
		if again := NormalizeSex(string(NormalizeSex(in))); again != want {
			t.Fatalf("NormalizeSex is not idempotent for %q: %q", in, again)
		}
	}
}

func TestAppointmentNormalize(t *testing.T) {
	in := Appointment{
		ClientName: "  Jane Doe ",
		Date:       MustParseDate("2024-03-05"),
		Cats: []Cat{
			{Name: "Tom", Sex: "m"},
			{},
			{Name: " ", Sex: " "},
			{Sex: "??"},
		},
		ServicesSelected: []string{"Microchip", "Microchip", " ", "Ear Tip"},
	}

	out := in.Normalize()

	if out.ClientName != "Jane Doe" {
		t.Fatalf("expected trimmed client name, got %q", out.ClientName)
	}
	if len(out.Cats) != 2 {
		t.Fatalf("expected blank cats to be dropped, got %+v", out.Cats)
	}
	if out.Cats[0].Sex != SexMale || out.Cats[1].Sex != SexUnknown {
		t.Fatalf("unexpected sexes %+v", out.Cats)
	}
	if len(out.ServicesSelected) != 2 || out.ServicesSelected[0] != "Microchip" || out.ServicesSelected[1] != "Ear Tip" {
		t.Fatalf("unexpected services %v", out.ServicesSelected)
	}
	if in.Cats[0].Sex != "m" {
		t.Fatalf("normalize must not mutate the receiver")
	}
}

func TestAppointmentProblems(t *testing.T) {
	if p := (Appointment{ClientName: "A", Date: MustParseDate("2024-01-01")}).Problems(); p != nil {
		t.Fatalf("expected valid appointment, got %v", p)
	}
	p := (Appointment{ClientName: "  "}).Problems()
	if _, ok := p["clientName"]; !ok {
		t.Fatalf("expected clientName problem, got %v", p)
	}
	if _, ok := p["date"]; !ok {
		t.Fatalf("expected date problem, got %v", p)
	}
}

func TestIDUnmarshal(t *testing.T) {
	var rec struct {
		ID ID `json:"id"`
	}
	if err := json.Unmarshal([]byte(`{"id":1718000000000}`), &rec); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.ID != "1718000000000" {
		t.Fatalf("expected numeric id as text, got %q", rec.ID)
	}
	if err := json.Unmarshal([]byte(`{"id":"abc"}`), &rec); err != nil || rec.ID != "abc" {
		t.Fatalf("expected string id, got %q (%v)", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(`{"id":null}`), &rec); err != nil || rec.ID != "" {
		t.Fatalf("expected empty id for null, got %q (%v)", rec.ID, err)
	}
	if err := json.Unmarshal([]byte(`{"id":true}`), &rec); err == nil {
		t.Fatalf("expected error for boolean id")
	}
}
