// Package calendar derives per-date statistics from appointments and projects
// them onto a month grid. Everything here is pure and works on copies.
package calendar

import (
	"strings"

	"github.com/example/clinic-scheduler/internal/clinic"
)

// Counts tallies cats by normalized sex.
type Counts struct {
	Male    int `json:"male"`
	Female  int `json:"female"`
	Unknown int `json:"unknown"`
}

// Total returns the number of cats counted.
func (c Counts) Total() int {
	return c.Male + c.Female + c.Unknown
}

func (c *Counts) add(sex clinic.Sex) {
	switch clinic.NormalizeSex(string(sex)) {
	case clinic.SexMale:
		c.Male++
	case clinic.SexFemale:
		c.Female++
	default:
		c.Unknown++
	}
}

// SexCounts counts cats per date. A cat without a sex counts as unknown.
// Appointments without cats add no entry.
func SexCounts(appts []clinic.Appointment) map[clinic.Date]Counts {
	out := make(map[clinic.Date]Counts)
	for _, a := range appts {
		if len(a.Cats) == 0 {
			continue
		}
		c := out[a.Date]
		for _, cat := range a.Cats {
			c.add(cat.Sex)
		}
		out[a.Date] = c
	}
	return out
}

// TotalCats collapses sex counts to one number per date.
func TotalCats(counts map[clinic.Date]Counts) map[clinic.Date]int {
	out := make(map[clinic.Date]int, len(counts))
	for d, c := range counts {
		out[d] = c.Total()
	}
	return out
}

// DayGroup is every appointment on one date.
type DayGroup struct {
	Date         clinic.Date
	Appointments []clinic.Appointment
}

// GroupByDate groups appointments by date. Groups appear in the order their
// date is first seen and keep the input order within a date, so callers that
// want chronological groups sort the input first.
func GroupByDate(appts []clinic.Appointment) []DayGroup {
	index := make(map[clinic.Date]int)
	var groups []DayGroup
	for _, a := range appts {
		i, ok := index[a.Date]
		if !ok {
			i = len(groups)
			index[a.Date] = i
			groups = append(groups, DayGroup{Date: a.Date})
		}
		groups[i].Appointments = append(groups[i].Appointments, a)
	}
	return groups
}

// FilterByClient keeps appointments whose client name contains query,
// ignoring case. A blank query returns the input unchanged.
func FilterByClient(appts []clinic.Appointment, query string) []clinic.Appointment {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return appts
	}
	var out []clinic.Appointment
	for _, a := range appts {
		if strings.Contains(strings.ToLower(a.ClientName), q) {
			out = append(out, a)
		}
	}
	return out
}

// OnDate returns the appointments scheduled for one date in input order.
func OnDate(appts []clinic.Appointment, date clinic.Date) []clinic.Appointment {
	var out []clinic.Appointment
	for _, a := range appts {
		if a.Date == date {
			out = append(out, a)
		}
	}
	return out
}

// Sorted returns a date-sorted copy of appts.
func Sorted(appts []clinic.Appointment) []clinic.Appointment {
	out := append([]clinic.Appointment(nil), appts...)
	clinic.SortByDate(out)
	return out
}
