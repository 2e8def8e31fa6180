package clinic

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Sex is the normalized sex of a cat.
type Sex string

const (
	SexNone    Sex = ""
	SexMale    Sex = "Male"
	SexFemale  Sex = "Female"
	SexUnknown Sex = "Unknown"
)

// NormalizeSex maps free text onto a Sex by its first letter, ignoring case
// and surrounding whitespace. Blank input stays blank.
func NormalizeSex(value string) Sex {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case v == "":
		return SexNone
	case strings.HasPrefix(v, "m"):
		return SexMale
	case strings.HasPrefix(v, "f"):
		return SexFemale
	default:
		return SexUnknown
	}
}

// ID identifies an appointment. Older exports used millisecond timestamps, so
// JSON numbers are accepted and kept as their decimal text.
type ID string

// UnmarshalJSON accepts a JSON string, number or null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(strings.TrimSpace(s))
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("clinic: id must be a string or number: %w", err)
		}
		*id = ID(n.String())
		return nil
	}
}

// Cat is one animal attached to an appointment.
type Cat struct {
	Name  string `json:"name"`
	Age   string `json:"age"`
	Color string `json:"color"`
	Breed string `json:"breed"`
	Sex   Sex    `json:"sex"`
}

// IsBlank reports whether the cat carries no information at all.
func (c Cat) IsBlank() bool {
	return strings.TrimSpace(c.Name) == "" &&
		strings.TrimSpace(c.Age) == "" &&
		strings.TrimSpace(c.Color) == "" &&
		strings.TrimSpace(c.Breed) == "" &&
		c.Sex == SexNone
}

// Appointment is one scheduled visit.
type Appointment struct {
	ID               ID       `json:"id"`
	ClientName       string   `json:"clientName"`
	Address          string   `json:"address"`
	Phone            string   `json:"phone"`
	Email            string   `json:"email"`
	Date             Date     `json:"date"`
	Cats             []Cat    `json:"cats"`
	ServicesSelected []string `json:"servicesSelected"`
	ServicesNotes    string   `json:"servicesNotes"`
}

// Normalize returns a copy with every cat's sex normalized, blank cats
// dropped, the client name trimmed and duplicate services removed. Slices are
// never nil so that exports stay stable.
func (a Appointment) Normalize() Appointment {
	out := a
	out.ClientName = strings.TrimSpace(a.ClientName)

	out.Cats = make([]Cat, 0, len(a.Cats))
	for _, c := range a.Cats {
		c.Sex = NormalizeSex(string(c.Sex))
		if c.IsBlank() {
			continue
		}
		out.Cats = append(out.Cats, c)
	}

	out.ServicesSelected = make([]string, 0, len(a.ServicesSelected))
	seen := make(map[string]struct{}, len(a.ServicesSelected))
	for _, s := range a.ServicesSelected {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out.ServicesSelected = append(out.ServicesSelected, s)
	}
	return out
}

// Problems lists missing required fields keyed by their JSON name. A nil map
// means the appointment is valid.
func (a Appointment) Problems() map[string]string {
	var problems map[string]string
	add := func(field, msg string) {
		if problems == nil {
			problems = make(map[string]string)
		}
		problems[field] = msg
	}
	if strings.TrimSpace(a.ClientName) == "" {
		add("clientName", "client name is required")
	}
	if a.Date.IsZero() {
		add("date", "date is required")
	}
	return problems
}

// Clone returns a deep copy.
func (a Appointment) Clone() Appointment {
	out := a
	if a.Cats != nil {
		out.Cats = append([]Cat(nil), a.Cats...)
	}
	if a.ServicesSelected != nil {
		out.ServicesSelected = append([]string(nil), a.ServicesSelected...)
	}
	return out
}

// CommonServices are the services offered as checkboxes on the entry form.
var CommonServices = []string{
	"Revolution",
	"Ear Tip",
	"Snap Test",
	"Pain Meds To Go 1x",
	"Pain Meds To Go 2x",
	"Pain Meds To Go 3x",
	"Microchip",
	"E-Collar",
	"Proof Of Vax",
}
