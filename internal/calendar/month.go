package calendar

import (
	"fmt"
	"time"

	"github.com/example/clinic-scheduler/internal/clinic"
)

// Cell is one square of the month grid. Leading cells before the 1st are
// blank and have a zero Date.
type Cell struct {
	Date         clinic.Date
	Counts       Counts
	TotalCats    int
	Appointments int
	DoctorID     string
	Doctor       *clinic.Doctor
	Workers      int
}

// Blank reports whether the cell is a leading placeholder.
func (c Cell) Blank() bool {
	return c.Date.IsZero()
}

// Grid is the projection of one month.
type Grid struct {
	Year         int
	Month        time.Month
	StartWeekday int
	DaysInMonth  int
	Cells        []Cell
}

// DaysIn returns the number of days in a month, using day zero of the next
// month.
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Project lays a month out as StartWeekday blank cells followed by one cell
// per day, Sunday being weekday 0.
func Project(year int, month time.Month) Grid {
	start := int(time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).Weekday())
	days := DaysIn(year, month)
	cells := make([]Cell, start+days)
	for d := 1; d <= days; d++ {
		cells[start+d-1].Date = clinic.Date{Year: year, Month: month, Day: d}
	}
	return Grid{Year: year, Month: month, StartWeekday: start, DaysInMonth: days, Cells: cells}
}

// Shift moves a reference month by delta months.
func Shift(year int, month time.Month, delta int) (int, time.Month) {
	t := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, delta, 0)
	return t.Year(), t.Month()
}

// ParseMonth parses a YYYY-MM reference month.
func ParseMonth(value string) (int, time.Month, error) {
	t, err := time.Parse("2006-01", value)
	if err != nil {
		return 0, 0, fmt.Errorf("calendar: month %q must use YYYY-MM", value)
	}
	return t.Year(), t.Month(), nil
}

// Annotations carries everything attached to dated cells.
type Annotations struct {
	Appointments []clinic.Appointment
	Doctors      map[string]clinic.Doctor
	DoctorByDate map[clinic.Date]string
	StaffByDate  map[clinic.Date][]string
}

// Annotate fills every dated cell of g with counts, the assigned doctor and
// the number of workers. The grid is modified in place and returned.
func Annotate(g Grid, ann Annotations) Grid {
	counts := SexCounts(ann.Appointments)
	perDay := make(map[clinic.Date]int)
	for _, a := range ann.Appointments {
		perDay[a.Date]++
	}

	for i := range g.Cells {
		c := &g.Cells[i]
		if c.Blank() {
			continue
		}
		c.Counts = counts[c.Date]
		c.TotalCats = c.Counts.Total()
		c.Appointments = perDay[c.Date]
		c.Workers = len(ann.StaffByDate[c.Date])
		if id, ok := ann.DoctorByDate[c.Date]; ok {
			c.DoctorID = id
			if d, ok := ann.Doctors[id]; ok {
				doc := d
				c.Doctor = &doc
			}
		}
	}
	return g
}
