package migration

import (
	"errors"
	"fmt"
)

var (
	// ErrMigrationFailed indicates that a migration execution failed.
	ErrMigrationFailed = errors.New("migration execution failed")
	// ErrInvalidMigrationFile indicates that a migration file is malformed.
	ErrInvalidMigrationFile = errors.New("invalid migration file format")
	// ErrDuplicateVersion indicates that two migration files share a version.
	ErrDuplicateVersion = errors.New("duplicate migration version")
	// ErrUnknownVersion indicates that the database has a version no file provides.
	ErrUnknownVersion = errors.New("applied migration has no matching file")
)

// MigrationError wraps a failure with the migration it happened in.
type MigrationError struct {
	Version   string
	FilePath  string
	Operation string
	Err       error
}

func (e *MigrationError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("migration %s (%s): %s: %v", e.Version, e.FilePath, e.Operation, e.Err)
	}
	return fmt.Sprintf("migration error (%s): %s: %v", e.FilePath, e.Operation, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }

// NewMigrationError creates a MigrationError.
func NewMigrationError(version, filePath, operation string, err error) *MigrationError {
	return &MigrationError{Version: version, FilePath: filePath, Operation: operation, Err: err}
}

// DatabaseError wraps a failing statement.
type DatabaseError struct {
	Version   string
	Query     string
	Operation string
	Err       error
}

func (e *DatabaseError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("database error in migration %s during %s: %v", e.Version, e.Operation, e.Err)
	}
	return fmt.Sprintf("database error during %s: %v", e.Operation, e.Err)
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// NewDatabaseError creates a DatabaseError.
func NewDatabaseError(version, query, operation string, err error) *DatabaseError {
	return &DatabaseError{Version: version, Query: query, Operation: operation, Err: err}
}
