package application

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrEmptySnapshot is returned when a manual backup would push nothing
	// and the caller did not force it.
	ErrEmptySnapshot = errors.New("application: refusing to back up an empty snapshot")
	// ErrRemote wraps failures of the backup gateway.
	ErrRemote = errors.New("application: remote backup failed")
	// ErrBadInput is returned when an uploaded document cannot be read at all.
	ErrBadInput = errors.New("application: unreadable input")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	if len(v.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(v.FieldErrors))
	for field := range v.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fmt.Sprintf("validation failed: %s", strings.Join(fields, ", "))
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}

// mergePrefixed copies fields under prefix.
func (v *ValidationError) mergePrefixed(prefix string, fields map[string]string) {
	for field, msg := range fields {
		v.add(prefix+field, msg)
	}
}
