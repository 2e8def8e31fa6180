package migration

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteConfig holds SQLite connection settings.
type SQLiteConfig struct {
	// DSN is the database file path, or ":memory:".
	DSN string
	// BusyTimeout sets how long to wait for database locks.
	BusyTimeout time.Duration
	// JournalMode sets the SQLite journal mode (WAL, DELETE, MEMORY, ...).
	JournalMode string
	// Synchronous sets the synchronous mode (FULL, NORMAL, OFF).
	Synchronous string
	// MaxOpenConns bounds the pool; one writer is all the store needs.
	MaxOpenConns int
}

var (
	validJournalModes = map[string]bool{"DELETE": true, "TRUNCATE": true, "PERSIST": true, "MEMORY": true, "WAL": true, "OFF": true}
	validSyncModes    = map[string]bool{"OFF": true, "NORMAL": true, "FULL": true, "EXTRA": true}
)

// Validate checks the configuration.
func (c SQLiteConfig) Validate() error {
	if strings.TrimSpace(c.DSN) == "" {
		return fmt.Errorf("DSN cannot be empty")
	}
	if c.BusyTimeout < 0 {
		return fmt.Errorf("BusyTimeout cannot be negative")
	}
	if c.JournalMode != "" && !validJournalModes[c.JournalMode] {
		return fmt.Errorf("invalid journal mode: %s", c.JournalMode)
	}
	if c.Synchronous != "" && !validSyncModes[c.Synchronous] {
		return fmt.Errorf("invalid synchronous mode: %s", c.Synchronous)
	}
	if c.MaxOpenConns < 0 {
		return fmt.Errorf("MaxOpenConns cannot be negative")
	}
	return nil
}

// OpenDatabase validates the configuration, creates the parent directory of
// a file database, opens it and applies the PRAGMA settings.
func OpenDatabase(cfg SQLiteConfig) (*sql.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid SQLite configuration: %w", err)
	}
	if cfg.DSN != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.DSN), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns)
	}

	pragmas := []string{fmt.Sprintf("PRAGMA busy_timeout = %d", cfg.BusyTimeout.Milliseconds())}
	if cfg.JournalMode != "" {
		pragmas = append(pragmas, "PRAGMA journal_mode = "+cfg.JournalMode)
	}
	if cfg.Synchronous != "" {
		pragmas = append(pragmas, "PRAGMA synchronous = "+cfg.Synchronous)
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}
	return db, nil
}

// DefaultSQLiteConfig returns the production settings for a database file.
func DefaultSQLiteConfig(databasePath string) SQLiteConfig {
	return SQLiteConfig{
		DSN:          databasePath,
		BusyTimeout:  30 * time.Second,
		JournalMode:  "WAL",
		Synchronous:  "NORMAL",
		MaxOpenConns: 1,
	}
}

// TempFileTestSQLiteConfig returns settings for a throwaway test database.
func TempFileTestSQLiteConfig(tempFilePath string) SQLiteConfig {
	return SQLiteConfig{
		DSN:          tempFilePath,
		BusyTimeout:  5 * time.Second,
		JournalMode:  "MEMORY",
		Synchronous:  "OFF",
		MaxOpenConns: 1,
	}
}
