package clinic

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the only accepted textual form of a Date.
const DateLayout = "2006-01-02"

// Date is a calendar day without a time component. The zero value means
// "unset". Dates order chronologically through Compare and serialize as
// YYYY-MM-DD, which keeps them usable as JSON object keys.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a strict YYYY-MM-DD value. Calendar-invalid dates such as
// 2023-02-29 are rejected.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if len(value) != len(DateLayout) {
		return Date{}, fmt.Errorf("clinic: date %q must use YYYY-MM-DD", value)
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return Date{}, fmt.Errorf("clinic: date %q must use YYYY-MM-DD", value)
	}
	return DateOf(t), nil
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(value string) Date {
	d, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the calendar day of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the calendar day of now in the local time zone of now.
func Today(now time.Time) Date {
	return DateOf(now)
}

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of the date.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Weekday returns the day of the week, 0 for Sunday.
func (d Date) Weekday() time.Weekday {
	return d.Time().Weekday()
}

// AddDays shifts the date by n days.
func (d Date) AddDays(n int) Date {
	return DateOf(d.Time().AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or
// after other.
func (d Date) Compare(other Date) int {
	switch {
	case d.Year != other.Year:
		return cmpInt(d.Year, other.Year)
	case d.Month != other.Month:
		return cmpInt(int(d.Month), int(other.Month))
	default:
		return cmpInt(d.Day, other.Day)
	}
}

// Before reports whether d is strictly earlier than other.
func (d Date) Before(other Date) bool {
	return d.Compare(other) < 0
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. An empty value decodes
// to the zero Date so that required-field checks can report it.
func (d *Date) UnmarshalText(text []byte) error {
	if strings.TrimSpace(string(text)) == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
