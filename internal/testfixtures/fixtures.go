package testfixtures

import (
	"time"

	"github.com/example/clinic-scheduler/internal/clinic"
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate is the calendar date of ReferenceTime.
func ReferenceDate() clinic.Date {
	return clinic.DateOf(referenceTime)
}

// AppointmentFixture builds deterministic appointments.
type AppointmentFixture struct {
	appt clinic.Appointment
}

// AppointmentOption configures an appointment fixture.
type AppointmentOption func(*AppointmentFixture)

// NewAppointment returns a one-cat appointment for ReferenceDate with
// optional overrides.
func NewAppointment(opts ...AppointmentOption) clinic.Appointment {
	f := AppointmentFixture{appt: clinic.Appointment{
		ID:               "appt-fixture",
		ClientName:       "Jane Doe",
		Address:          "1 Main St",
		Phone:            "555-0100",
		Email:            "jane@example.com",
		Date:             ReferenceDate(),
		Cats:             []clinic.Cat{{Name: "Tom", Age: "3", Color: "Grey", Breed: "DSH", Sex: clinic.SexMale}},
		ServicesSelected: []string{"Revolution"},
		ServicesNotes:    "",
	}}
	for _, opt := range opts {
		opt(&f)
	}
	return f.appt
}

// WithID overrides the appointment id.
func WithID(id string) AppointmentOption {
	return func(f *AppointmentFixture) { f.appt.ID = clinic.ID(id) }
}

// WithClient overrides the client name.
func WithClient(name string) AppointmentOption {
	return func(f *AppointmentFixture) { f.appt.ClientName = name }
}

// WithDate overrides the appointment date (YYYY-MM-DD).
func WithDate(date string) AppointmentOption {
	return func(f *AppointmentFixture) { f.appt.Date = clinic.MustParseDate(date) }
}

// WithCats replaces the cats.
func WithCats(cats ...clinic.Cat) AppointmentOption {
	return func(f *AppointmentFixture) { f.appt.Cats = cats }
}

// WithoutCats removes every cat.
func WithoutCats() AppointmentOption {
	return func(f *AppointmentFixture) { f.appt.Cats = []clinic.Cat{} }
}

// WithServices replaces the selected services.
func WithServices(services ...string) AppointmentOption {
	return func(f *AppointmentFixture) { f.appt.ServicesSelected = services }
}

// WithNotes sets the services notes.
func WithNotes(notes string) AppointmentOption {
	return func(f *AppointmentFixture) { f.appt.ServicesNotes = notes }
}

// Cat returns a named cat of the given sex.
func Cat(name string, sex clinic.Sex) clinic.Cat {
	return clinic.Cat{Name: name, Sex: sex}
}
