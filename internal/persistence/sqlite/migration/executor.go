package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SQLiteExecutor implements Executor for SQLite databases.
type SQLiteExecutor struct {
	db *sql.DB
}

// NewSQLiteExecutor creates a new SQLite migration executor.
func NewSQLiteExecutor(db *sql.DB) *SQLiteExecutor {
	return &SQLiteExecutor{db: db}
}

// InitializeVersionTable creates the schema_migrations table if it doesn't exist.
func (e *SQLiteExecutor) InitializeVersionTable(ctx context.Context) error {
	const createTableSQL = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL,
			checksum TEXT,
			execution_time_ms INTEGER
		)`
	if _, err := e.db.ExecContext(ctx, createTableSQL); err != nil {
		return NewDatabaseError("", createTableSQL, "create schema_migrations table", err)
	}
	return nil
}

// ExecuteMigration runs every statement of the migration and records it in
// schema_migrations inside a single transaction.
func (e *SQLiteExecutor) ExecuteMigration(ctx context.Context, migration Migration, now time.Time) (err error) {
	statements := splitStatements(migration.SQL)
	if len(statements) == 0 {
		return NewMigrationError(migration.Version, migration.FilePath, "parse SQL",
			fmt.Errorf("%w: no SQL statements found", ErrInvalidMigrationFile))
	}

	start := time.Now()
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return NewDatabaseError(migration.Version, "", "begin transaction", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for i, stmt := range statements {
		if _, execErr := tx.ExecContext(ctx, stmt); execErr != nil {
			err = NewDatabaseError(migration.Version, stmt, fmt.Sprintf("execute statement %d", i+1), execErr)
			return err
		}
	}

	const insertSQL = `
		INSERT INTO schema_migrations (version, applied_at, checksum, execution_time_ms)
		VALUES (?, ?, ?, ?)`
	if _, execErr := tx.ExecContext(ctx, insertSQL,
		migration.Version,
		now.UTC().Format(time.RFC3339),
		migration.Checksum,
		time.Since(start).Milliseconds(),
	); execErr != nil {
		err = NewDatabaseError(migration.Version, insertSQL, "record migration", execErr)
		return err
	}

	if err = tx.Commit(); err != nil {
		err = NewDatabaseError(migration.Version, "", "commit transaction", err)
		return err
	}
	return nil
}

// GetAppliedVersions returns all applied migration versions with timestamps.
func (e *SQLiteExecutor) GetAppliedVersions(ctx context.Context) ([]AppliedMigration, error) {
	const querySQL = `
		SELECT version, applied_at, COALESCE(execution_time_ms, 0), COALESCE(checksum, '')
		FROM schema_migrations
		ORDER BY CAST(version AS INTEGER) ASC`

	rows, err := e.db.QueryContext(ctx, querySQL)
	if err != nil {
		return nil, NewDatabaseError("", querySQL, "get applied versions", err)
	}
	defer rows.Close()

	var applied []AppliedMigration
	for rows.Next() {
		var (
			version, appliedAt, checksum string
			execMs                       int64
		)
		if err := rows.Scan(&version, &appliedAt, &execMs, &checksum); err != nil {
			return nil, NewDatabaseError("", querySQL, "scan applied migration", err)
		}
		at, parseErr := time.Parse(time.RFC3339, appliedAt)
		if parseErr != nil {
			return nil, NewDatabaseError(version, querySQL, "parse applied_at", parseErr)
		}
		applied = append(applied, AppliedMigration{
			Version:       version,
			AppliedAt:     at,
			ExecutionTime: time.Duration(execMs) * time.Millisecond,
			Checksum:      checksum,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, NewDatabaseError("", querySQL, "iterate applied migrations", err)
	}
	return applied, nil
}
