package clinic

import "errors"

var (
	// ErrNotFound is returned when an appointment, doctor or worker is absent.
	ErrNotFound = errors.New("clinic: not found")
	// ErrUnknownDoctor is returned when assigning a doctor that is not registered.
	ErrUnknownDoctor = errors.New("clinic: unknown doctor")
	// ErrUnknownWorker is returned when assigning a worker that is not registered.
	ErrUnknownWorker = errors.New("clinic: unknown worker")
	// ErrBlankName is returned when a doctor or worker name is empty.
	ErrBlankName = errors.New("clinic: name is required")
	// ErrInvalidColor is returned when a doctor swatch is not #rrggbb.
	ErrInvalidColor = errors.New("clinic: color must be #rrggbb")
	// ErrUnsupportedVersion is returned when a snapshot was written by a newer release.
	ErrUnsupportedVersion = errors.New("clinic: unsupported snapshot version")
)
