package clinic

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	slugPattern  = regexp.MustCompile(`[^a-z0-9]+`)
)

// Doctor is a registered doctor. Its key in the roster is derived from the name.
type Doctor struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// DoctorEntry pairs a doctor with its roster key.
type DoctorEntry struct {
	ID string
	Doctor
}

// Roster tracks doctors and workers and which of them cover each date.
type Roster struct {
	doctors      map[string]Doctor
	doctorByDate map[Date]string
	workers      []string
	staffByDate  map[Date][]string
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{
		doctors:      make(map[string]Doctor),
		doctorByDate: make(map[Date]string),
		staffByDate:  make(map[Date][]string),
	}
}

// DefaultRoster returns the roster a new practice starts with.
func DefaultRoster() *Roster {
	r := NewRoster()
	r.doctors["sm"] = Doctor{Name: "Dr. Smith", Color: "#10b981"}
	r.doctors["jn"] = Doctor{Name: "Dr. Jones", Color: "#f59e0b"}
	r.doctors["ly"] = Doctor{Name: "Dr. Lee", Color: "#3b82f6"}
	r.workers = []string{"Alex", "Bailey", "Casey"}
	return r
}

// Slug lowercases value and collapses every run of characters outside
// [a-z0-9] into a single dash, trimming dashes at either end.
func Slug(value string) string {
	s := slugPattern.ReplaceAllString(strings.ToLower(value), "-")
	return strings.Trim(s, "-")
}

// Doctors lists registered doctors ordered by key.
func (r *Roster) Doctors() []DoctorEntry {
	out := make([]DoctorEntry, 0, len(r.doctors))
	for id, d := range r.doctors {
		out = append(out, DoctorEntry{ID: id, Doctor: d})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Doctor looks a doctor up by key.
func (r *Roster) Doctor(id string) (Doctor, bool) {
	d, ok := r.doctors[id]
	return d, ok
}

// AddDoctor registers a doctor under a key derived from the name. A taken key
// gets a numeric suffix starting at 2.
func (r *Roster) AddDoctor(name, color string) (DoctorEntry, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return DoctorEntry{}, ErrBlankName
	}
	color = strings.TrimSpace(color)
	if !colorPattern.MatchString(color) {
		return DoctorEntry{}, ErrInvalidColor
	}

	base := Slug(name)
	if base == "" {
		base = "doctor"
	}
	id := base
	for n := 2; ; n++ {
		if _, taken := r.doctors[id]; !taken {
			break
		}
		id = base + "-" + strconv.Itoa(n)
	}

	d := Doctor{Name: name, Color: strings.ToLower(color)}
	r.doctors[id] = d
	return DoctorEntry{ID: id, Doctor: d}, nil
}

// RemoveDoctor deletes the doctor and every date assignment pointing at it.
// It returns the number of dates that lost their doctor.
func (r *Roster) RemoveDoctor(id string) (int, error) {
	if _, ok := r.doctors[id]; !ok {
		return 0, ErrNotFound
	}
	delete(r.doctors, id)
	cleared := 0
	for date, assigned := range r.doctorByDate {
		if assigned == id {
			delete(r.doctorByDate, date)
			cleared++
		}
	}
	return cleared, nil
}

// AssignDoctor sets the doctor for a date, replacing any previous one.
func (r *Roster) AssignDoctor(date Date, id string) error {
	if _, ok := r.doctors[id]; !ok {
		return ErrUnknownDoctor
	}
	r.doctorByDate[date] = id
	return nil
}

// ClearDoctor removes the doctor assignment for a date and reports whether
// one existed.
func (r *Roster) ClearDoctor(date Date) bool {
	if _, ok := r.doctorByDate[date]; !ok {
		return false
	}
	delete(r.doctorByDate, date)
	return true
}

// DoctorOn returns the key of the doctor assigned to a date.
func (r *Roster) DoctorOn(date Date) (string, bool) {
	id, ok := r.doctorByDate[date]
	return id, ok
}

// Workers lists registered workers in registration order.
func (r *Roster) Workers() []string {
	out := make([]string, len(r.workers))
	copy(out, r.workers)
	return out
}

// AddWorker registers a worker. Registering an existing name is a no-op that
// reports false.
func (r *Roster) AddWorker(name string) (bool, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return false, ErrBlankName
	}
	if r.hasWorker(name) {
		return false, nil
	}
	r.workers = append(r.workers, name)
	return true, nil
}

// RemoveWorker deletes a worker and purges it from every date's staff list.
// Dates left without staff are dropped.
func (r *Roster) RemoveWorker(name string) error {
	i := indexString(r.workers, name)
	if i < 0 {
		return ErrNotFound
	}
	r.workers = append(r.workers[:i], r.workers[i+1:]...)
	for date, staff := range r.staffByDate {
		if j := indexString(staff, name); j >= 0 {
			staff = append(staff[:j], staff[j+1:]...)
		}
		if len(staff) == 0 {
			delete(r.staffByDate, date)
			continue
		}
		r.staffByDate[date] = staff
	}
	return nil
}

// AssignWorker adds a registered worker to a date's staff. Adding a worker
// already on the list is a no-op that reports false.
func (r *Roster) AssignWorker(date Date, name string) (bool, error) {
	if !r.hasWorker(name) {
		return false, ErrUnknownWorker
	}
	staff := r.staffByDate[date]
	if indexString(staff, name) >= 0 {
		return false, nil
	}
	r.staffByDate[date] = append(staff, name)
	return true, nil
}

// UnassignWorker removes a worker from a date's staff.
func (r *Roster) UnassignWorker(date Date, name string) bool {
	staff := r.staffByDate[date]
	i := indexString(staff, name)
	if i < 0 {
		return false
	}
	staff = append(staff[:i], staff[i+1:]...)
	if len(staff) == 0 {
		delete(r.staffByDate, date)
	} else {
		r.staffByDate[date] = staff
	}
	return true
}

// StaffOn lists the workers assigned to a date.
func (r *Roster) StaffOn(date Date) []string {
	return append([]string(nil), r.staffByDate[date]...)
}

// DoctorByDate returns a copy of the doctor assignments.
func (r *Roster) DoctorByDate() map[Date]string {
	out := make(map[Date]string, len(r.doctorByDate))
	for k, v := range r.doctorByDate {
		out[k] = v
	}
	return out
}

// StaffByDate returns a copy of the staff assignments.
func (r *Roster) StaffByDate() map[Date][]string {
	out := make(map[Date][]string, len(r.staffByDate))
	for k, v := range r.staffByDate {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// DoctorMap returns a copy of the registered doctors keyed by ID.
func (r *Roster) DoctorMap() map[string]Doctor {
	out := make(map[string]Doctor, len(r.doctors))
	for k, v := range r.doctors {
		out[k] = v
	}
	return out
}

func (r *Roster) hasWorker(name string) bool {
	return indexString(r.workers, name) >= 0
}

func indexString(values []string, target string) int {
	for i, v := range values {
		if v == target {
			return i
		}
	}
	return -1
}
