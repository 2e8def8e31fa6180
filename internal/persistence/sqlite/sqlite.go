// Package sqlite stores the practice snapshot and the backup history in a
// SQLite database file.
package sqlite

import (
	"context"
	"log/slog"

	"github.com/example/clinic-scheduler/internal/persistence/sqlite/migration"
)

// Storage owns the connection pool and hands out repositories.
type Storage struct {
	pool   *ConnectionPool
	logger *slog.Logger
}

// Open opens (and creates if needed) the database at path.
func Open(path string, logger *slog.Logger) (*Storage, error) {
	return OpenWithConfig(migration.DefaultSQLiteConfig(path), logger)
}

// OpenWithConfig opens the database with explicit connection settings.
func OpenWithConfig(cfg migration.SQLiteConfig, logger *slog.Logger) (*Storage, error) {
	if logger == nil {
		logger = slog.Default()
	}
	pool, err := NewConnectionPool(cfg)
	if err != nil {
		return nil, err
	}
	return &Storage{pool: pool, logger: logger}, nil
}

// Migrate applies the embedded schema migrations.
func (s *Storage) Migrate(ctx context.Context) error {
	runner := migration.NewRunner(migration.NewSQLiteExecutor(s.pool.DB()), migration.Embedded(), s.logger)
	return runner.Run(ctx)
}

// MigrationStatus reports applied and pending migrations.
func (s *Storage) MigrationStatus(ctx context.Context) (migration.Status, error) {
	runner := migration.NewRunner(migration.NewSQLiteExecutor(s.pool.DB()), migration.Embedded(), s.logger)
	return runner.Status(ctx)
}

// Snapshots returns the snapshot repository.
func (s *Storage) Snapshots() *SnapshotRepository {
	return NewSnapshotRepository(s.pool)
}

// BackupLog returns the backup history repository.
func (s *Storage) BackupLog() *BackupLogRepository {
	return NewBackupLogRepository(s.pool)
}

// Ping checks that the database answers.
func (s *Storage) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close releases the connection pool.
func (s *Storage) Close() error {
	return s.pool.Close()
}
