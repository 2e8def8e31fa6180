package migration

import (
	"context"
	"time"
)

// Migration is one versioned schema change.
type Migration struct {
	Version     string // numeric prefix of the file name, e.g. "001"
	Description string
	SQL         string
	FilePath    string
	Checksum    string
}

// AppliedMigration is a row of schema_migrations.
type AppliedMigration struct {
	Version       string
	AppliedAt     time.Time
	ExecutionTime time.Duration
	Checksum      string
}

// Executor runs migrations against a database and tracks which ran.
type Executor interface {
	// InitializeVersionTable creates schema_migrations if it does not exist.
	InitializeVersionTable(ctx context.Context) error
	// ExecuteMigration runs a migration and records it in one transaction.
	ExecuteMigration(ctx context.Context, migration Migration, now time.Time) error
	// GetAppliedVersions lists applied migrations ordered by version.
	GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error)
}

// Status summarizes applied and pending migrations.
type Status struct {
	CurrentVersion string
	Applied        []AppliedMigration
	Pending        []Migration
}
