// Package migration applies versioned schema changes to the SQLite database.
//
// Migrations are embedded SQL files named {version}_{description}.sql. They run
// in ascending version order, each inside its own transaction, and every
// applied version is recorded in the schema_migrations table so that a file
// never runs twice.
//
// Example usage:
//
//	runner := NewRunner(NewSQLiteExecutor(db), Embedded(), logger)
//	if err := runner.Run(ctx); err != nil {
//		return err
//	}
package migration
