package clinic

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	cases := []struct {
		in      string
		want    Date
		wantErr bool
	}{
		{in: "2024-03-05", want: Date{2024, time.March, 5}},
		{in: " 2024-02-29 ", want: Date{2024, time.February, 29}},
		{in: "2023-02-29", wantErr: true},
		{in: "2024-3-5", wantErr: true},
		{in: "03/05/2024", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseDate(tc.in)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q, got %v", tc.in, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestDateOrdering(t *testing.T) {
	a := MustParseDate("2024-05-31")
	b := MustParseDate("2024-06-01")
	if !a.Before(b) || b.Before(a) {
		t.Fatalf("expected %s before %s", a, b)
	}
	if a.Compare(a) != 0 {
		t.Fatalf("expected date to equal itself")
	}
	if MustParseDate("2023-12-31").Compare(MustParseDate("2024-01-01")) != -1 {
		t.Fatalf("expected year boundary ordering")
	}
}

func TestDateJSON(t *testing.T) {
	t.Run("round trips as map key", func(t *testing.T) {
		in := map[Date]string{MustParseDate("2024-01-02"): "sm"}
		raw, err := json.Marshal(in)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		if string(raw) != `{"2024-01-02":"sm"}` {
			t.Fatalf("unexpected encoding %s", raw)
		}
		var out map[Date]string
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if out[MustParseDate("2024-01-02")] != "sm" {
			t.Fatalf("expected key to survive round trip, got %v", out)
		}
	})

	t.Run("empty string decodes to zero", func(t *testing.T) {
		var d Date
		if err := json.Unmarshal([]byte(`""`), &d); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !d.IsZero() {
			t.Fatalf("expected zero date, got %v", d)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		var d Date
		if err := json.Unmarshal([]byte(`"2024-13-01"`), &d); err == nil {
			t.Fatalf("expected error for invalid month")
		}
	})
}

func TestDateAddDaysAndWeekday(t *testing.T) {
	d := MustParseDate("2024-02-28").AddDays(2)
	if d.String() != "2024-03-01" {
		t.Fatalf("expected leap year rollover, got %s", d)
	}
	if wd := MustParseDate("2024-09-01").Weekday(); wd != time.Sunday {
		t.Fatalf("expected Sunday, got %s", wd)
	}
}
