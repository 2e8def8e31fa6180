// Package transfer converts appointments to and from the files users download
// and upload: an indented JSON array and a flat CSV sheet.
package transfer

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/clinic-scheduler/internal/clinic"
)

// ExportJSON writes appts as a JSON array indented with two spaces. The same
// input always produces the same bytes.
func ExportJSON(w io.Writer, appts []clinic.Appointment) error {
	if appts == nil {
		appts = []clinic.Appointment{}
	}
	out := make([]clinic.Appointment, len(appts))
	for i, a := range appts {
		out[i] = a
		if out[i].Cats == nil {
			out[i].Cats = []clinic.Cat{}
		}
		if out[i].ServicesSelected == nil {
			out[i].ServicesSelected = []string{}
		}
	}
	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("transfer: encode json: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		return fmt.Errorf("transfer: write json: %w", err)
	}
	return nil
}

var csvHeader = []string{
	"Date", "Client Name", "Address", "Phone", "Email",
	"Cat Name", "Cat Age", "Cat Color", "Cat Breed", "Cat Sex",
	"Selected Services", "Services Notes", "Appointment ID",
}

// Row is one appointment in a CSV export. Archived is only written when the
// export includes the archived column.
type Row struct {
	Appointment clinic.Appointment
	Archived    bool
}

// ExportCSV writes one line per cat, or a single line with empty cat columns
// for an appointment without cats. withArchived adds a trailing Yes/No column.
// Lines are separated by "\n" with no trailing newline.
func ExportCSV(w io.Writer, rows []Row, withArchived bool) error {
	header := csvHeader
	if withArchived {
		header = append(append([]string(nil), csvHeader...), "Archived")
	}
	lines := []string{joinCSV(header)}

	for _, r := range rows {
		a := r.Appointment
		base := []string{a.Date.String(), a.ClientName, a.Address, a.Phone, a.Email}
		tail := []string{strings.Join(a.ServicesSelected, "; "), a.ServicesNotes, string(a.ID)}
		if withArchived {
			tail = append(tail, yesNo(r.Archived))
		}

		cats := a.Cats
		if len(cats) == 0 {
			cats = []clinic.Cat{{}}
		}
		for _, c := range cats {
			fields := make([]string, 0, len(header))
			fields = append(fields, base...)
			fields = append(fields, c.Name, c.Age, c.Color, c.Breed, string(clinic.NormalizeSex(string(c.Sex))))
			fields = append(fields, tail...)
			lines = append(lines, joinCSV(fields))
		}
	}

	if _, err := io.WriteString(w, strings.Join(lines, "\n")); err != nil {
		return fmt.Errorf("transfer: write csv: %w", err)
	}
	return nil
}

func joinCSV(fields []string) string {
	escaped := make([]string, len(fields))
	for i, f := range fields {
		escaped[i] = escapeCSV(f)
	}
	return strings.Join(escaped, ",")
}

// escapeCSV quotes a field only when it contains a comma, a double quote or a
// newline.
func escapeCSV(field string) string {
	if !strings.ContainsAny(field, ",\"\n") {
		return field
	}
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Filename builds a download name such as
// appointments-active-2024-03-05-14-30-00.json from the UTC time of now.
func Filename(kind, ext string, now time.Time) string {
	stamp := now.UTC().Format("2006-01-02T15:04:05")
	stamp = strings.NewReplacer(":", "-", "T", "-").Replace(stamp)
	return fmt.Sprintf("appointments-%s-%s.%s", kind, stamp, ext)
}
