package application

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/clinic-scheduler/internal/calendar"
	"github.com/example/clinic-scheduler/internal/clinic"
)

// AppointmentInput captures caller provided appointment fields.
type AppointmentInput struct {
	ClientName       string
	Address          string
	Phone            string
	Email            string
	Date             clinic.Date
	Cats             []clinic.Cat
	ServicesSelected []string
	ServicesNotes    string
}

func (in AppointmentInput) appointment(id clinic.ID) clinic.Appointment {
	return clinic.Appointment{
		ID:               id,
		ClientName:       in.ClientName,
		Address:          strings.TrimSpace(in.Address),
		Phone:            strings.TrimSpace(in.Phone),
		Email:            strings.TrimSpace(in.Email),
		Date:             in.Date,
		Cats:             in.Cats,
		ServicesSelected: in.ServicesSelected,
		ServicesNotes:    in.ServicesNotes,
	}.Normalize()
}

// Scope selects which partition a listing reads.
type Scope string

const (
	// ScopeActive lists upcoming and current appointments.
	ScopeActive Scope = "active"
	// ScopeArchived lists the archive.
	ScopeArchived Scope = "archived"
	// ScopeAll lists both partitions.
	ScopeAll Scope = "all"
)

// ParseScope accepts active, archived or all. Empty means active.
func ParseScope(value string) (Scope, error) {
	switch Scope(strings.ToLower(strings.TrimSpace(value))) {
	case "", ScopeActive:
		return ScopeActive, nil
	case ScopeArchived:
		return ScopeArchived, nil
	case ScopeAll:
		return ScopeAll, nil
	}
	return "", &ValidationError{FieldErrors: map[string]string{"scope": fmt.Sprintf("unknown scope %q", value)}}
}

// ListParams filters an appointment listing.
type ListParams struct {
	Scope Scope
	Query string
}

// ListedAppointment is an appointment together with the partition holding it.
type ListedAppointment struct {
	clinic.Appointment
	Archived bool
}

// DaySheet is everything scheduled for one date.
type DaySheet struct {
	Date         clinic.Date
	Appointments []clinic.Appointment
	Counts       calendar.Counts
	DoctorID     string
	Doctor       *clinic.Doctor
	Staff        []string
}

// BackupResult describes a completed push.
type BackupResult struct {
	At     time.Time
	BlobID string
	Digest string
}

// RestoreResult describes what a restore replaced.
type RestoreResult struct {
	Site                 string
	When                 string
	Appointments         int
	ArchivedAppointments int
	RosterReplaced       bool
}

// BackupStatus reports the state of remote backups.
type BackupStatus struct {
	LastBackupAt string
	LastError    string
	LastErrorAt  time.Time
	AutoEnabled  bool
	Pending      bool
}
