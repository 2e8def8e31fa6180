package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/clinic-scheduler/internal/calendar"
	"github.com/example/clinic-scheduler/internal/clinic"
)

const importDocument = `[
  {"id":"a-1","clientName":"Jane Doe","date":"2024-01-10","cats":[{"name":"Tom","sex":"m"},{"name":"Kit","sex":"f"}]},
  {"id":"a-2","clientName":"Sam Roe","date":"2024-01-12","cats":[{"name":"Mia","sex":"f"}]}
]`

// runCLI executes the root command against the database at dbPath.
func runCLI(t *testing.T, dbPath string, stdin string, args ...string) (string, error) {
	t.Helper()

	t.Setenv("SCHEDULER_SQLITE_PATH", dbPath)
	t.Setenv("SCHEDULER_TIMEZONE", "UTC")
	t.Setenv("SCHEDULER_CONFIG_FILE", "")
	t.Setenv("SCHEDULER_GATEWAY_URL", "")

	var out, logs bytes.Buffer
	root := newRootCmd(&out, &logs)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := root.ExecuteContext(ctx)
	return out.String(), err
}

func TestCommands(t *testing.T) {
	t.Run("import then export round trips through the database", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "scheduler.db")

		out, err := runCLI(t, dbPath, importDocument, "import", "-")
		if err != nil {
			t.Fatalf("import: %v", err)
		}
		if !strings.Contains(out, "Imported 2 appointments (2 added, 0 updated).") {
			t.Fatalf("import output = %q", out)
		}

		out, err = runCLI(t, dbPath, "", "export", "--format", "json", "-o", "-")
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		var exported []clinic.Appointment
		if err := json.Unmarshal([]byte(out), &exported); err != nil {
			t.Fatalf("decode export: %v\n%s", err, out)
		}
		if len(exported) != 2 || exported[0].ID != "a-1" || exported[1].ClientName != "Sam Roe" {
			t.Fatalf("unexpected export: %+v", exported)
		}
	})

	t.Run("export writes the default filename into a directory", func(t *testing.T) {
		dir := t.TempDir()
		dbPath := filepath.Join(dir, "scheduler.db")
		if _, err := runCLI(t, dbPath, importDocument, "import", "-"); err != nil {
			t.Fatalf("import: %v", err)
		}

		outDir := filepath.Join(dir, "exports")
		if err := os.Mkdir(outDir, 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
		out, err := runCLI(t, dbPath, "", "export", "--format", "csv", "--scope", "active", "-o", outDir)
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		matches, _ := filepath.Glob(filepath.Join(outDir, "appointments-active-*.csv"))
		if len(matches) != 1 {
			t.Fatalf("expected one csv export, got %v (output %q)", matches, out)
		}
		raw, err := os.ReadFile(matches[0])
		if err != nil {
			t.Fatalf("read export: %v", err)
		}
		if lines := strings.Split(strings.TrimSpace(string(raw)), "\n"); len(lines) != 3 {
			t.Fatalf("csv lines = %d, want header plus 2 rows:\n%s", len(lines), raw)
		}
	})

	t.Run("archive moves records before the cutoff", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "scheduler.db")
		if _, err := runCLI(t, dbPath, importDocument, "import", "-"); err != nil {
			t.Fatalf("import: %v", err)
		}

		out, err := runCLI(t, dbPath, "", "archive", "--cutoff", "2024-01-11")
		if err != nil {
			t.Fatalf("archive: %v", err)
		}
		if !strings.Contains(out, "Archived 1 appointments.") {
			t.Fatalf("archive output = %q", out)
		}

		out, err = runCLI(t, dbPath, "", "export", "--format", "csv", "--scope", "all", "-o", "-")
		if err != nil {
			t.Fatalf("export: %v", err)
		}
		if !strings.Contains(out, "Archived") || !strings.Contains(out, ",Yes") {
			t.Fatalf("archived row missing from csv:\n%s", out)
		}

		out, err = runCLI(t, dbPath, "", "archive", "--restore-all")
		if err != nil {
			t.Fatalf("restore-all: %v", err)
		}
		if !strings.Contains(out, "Restored 1 appointments") {
			t.Fatalf("restore-all output = %q", out)
		}
	})

	t.Run("calendar counts cats across the month", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "scheduler.db")
		if _, err := runCLI(t, dbPath, importDocument, "import", "-"); err != nil {
			t.Fatalf("import: %v", err)
		}

		out, err := runCLI(t, dbPath, "", "calendar", "--month", "2024-01")
		if err != nil {
			t.Fatalf("calendar: %v", err)
		}
		for _, want := range []string{"January 2024", "Sun", "10 (2)", "12 (1)"} {
			if !strings.Contains(out, want) {
				t.Fatalf("calendar output missing %q:\n%s", want, out)
			}
		}
	})

	t.Run("invalid input is reported", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "scheduler.db")

		if _, err := runCLI(t, dbPath, `{"not":"an array"}`, "import", "-"); err == nil {
			t.Fatal("expected import of a non-array to fail")
		}
		if _, err := runCLI(t, dbPath, "", "calendar", "--month", "2024-13"); err == nil {
			t.Fatal("expected invalid month to fail")
		}
		if _, err := runCLI(t, dbPath, "", "export", "--format", "xml", "-o", "-"); err == nil {
			t.Fatal("expected unknown format to fail")
		}
	})
}

func TestRenderGrid(t *testing.T) {
	grid := calendar.Grid{
		Year:         2024,
		Month:        time.January,
		StartWeekday: 1,
		DaysInMonth:  2,
		Cells: []calendar.Cell{
			{},
			{Date: clinic.Date{Year: 2024, Month: time.January, Day: 1}, TotalCats: 2, Doctor: &clinic.Doctor{Name: "Dr. Smith"}},
			{Date: clinic.Date{Year: 2024, Month: time.January, Day: 2}},
		},
	}

	var buf bytes.Buffer
	if err := renderGrid(&buf, grid); err != nil {
		t.Fatalf("renderGrid: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected title, header and one week, got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "January 2024" {
		t.Fatalf("title = %q", lines[0])
	}
	if !strings.Contains(lines[2], " 1 (2) S") || !strings.Contains(lines[2], " 2") {
		t.Fatalf("week row = %q", lines[2])
	}
}

func TestInitials(t *testing.T) {
	cases := map[string]string{
		"Dr. Smith":     "S",
		"Dr Ana Lopez":  "AL",
		"Casey":         "C",
		"":              "",
		"dr. mary  ann": "MA",
	}
	for name, want := range cases {
		if got := initials(name); got != want {
			t.Errorf("initials(%q) = %q, want %q", name, got, want)
		}
	}
}
