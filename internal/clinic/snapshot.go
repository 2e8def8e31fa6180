package clinic

import "fmt"

// SnapshotVersion is the schema version written by this release.
const SnapshotVersion = 1

// Data is the practice state that is exported and backed up remotely. Nil
// maps and slices mean "absent", which matters when restoring.
type Data struct {
	Appointments         []Appointment     `json:"appointments"`
	ArchivedAppointments []Appointment     `json:"archivedAppointments"`
	Doctors              map[string]Doctor `json:"doctors"`
	DoctorByDate         map[Date]string   `json:"doctorByDate"`
	Workers              []string          `json:"workers"`
	StaffByDate          map[Date][]string `json:"staffByDate"`
}

// IsEmpty reports whether the data carries nothing worth backing up.
func (d Data) IsEmpty() bool {
	return len(d.Appointments) == 0 &&
		len(d.ArchivedAppointments) == 0 &&
		len(d.Doctors) == 0 &&
		len(d.DoctorByDate) == 0 &&
		len(d.Workers) == 0 &&
		len(d.StaffByDate) == 0
}

// Snapshot is the whole local state saved as one versioned record.
type Snapshot struct {
	Version int `json:"version"`
	Data
	LastBackupAt string `json:"lastBackupAt,omitempty"`
}

// Capture builds a snapshot from a book and a roster.
func Capture(book *Book, roster *Roster, lastBackupAt string) Snapshot {
	return Snapshot{
		Version: SnapshotVersion,
		Data: Data{
			Appointments:         book.Active(),
			ArchivedAppointments: book.Archived(),
			Doctors:              roster.DoctorMap(),
			DoctorByDate:         roster.DoctorByDate(),
			Workers:              roster.Workers(),
			StaffByDate:          roster.StaffByDate(),
		},
		LastBackupAt: lastBackupAt,
	}
}

// Restore rebuilds a book and roster from a snapshot. Snapshots written by a
// newer schema are refused.
func (s Snapshot) Restore() (*Book, *Roster, error) {
	if s.Version > SnapshotVersion {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, s.Version)
	}
	book := NewBook(s.Appointments, s.ArchivedAppointments)
	roster := NewRoster()
	roster.Apply(s.Data)
	return book, roster, nil
}

// Apply overwrites the roster parts that are present in d.
func (r *Roster) Apply(d Data) {
	if d.Doctors != nil {
		r.doctors = make(map[string]Doctor, len(d.Doctors))
		for k, v := range d.Doctors {
			r.doctors[k] = v
		}
	}
	if d.DoctorByDate != nil {
		r.doctorByDate = make(map[Date]string, len(d.DoctorByDate))
		for k, v := range d.DoctorByDate {
			r.doctorByDate[k] = v
		}
	}
	if d.Workers != nil {
		r.workers = make([]string, 0, len(d.Workers))
		for _, w := range d.Workers {
			if !r.hasWorker(w) {
				r.workers = append(r.workers, w)
			}
		}
	}
	if d.StaffByDate != nil {
		r.staffByDate = make(map[Date][]string, len(d.StaffByDate))
		for k, v := range d.StaffByDate {
			if len(v) == 0 {
				continue
			}
			r.staffByDate[k] = append([]string(nil), v...)
		}
	}
}
