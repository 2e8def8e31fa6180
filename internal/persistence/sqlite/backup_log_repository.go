package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/clinic-scheduler/internal/persistence"
)

// BackupLogRepository implements persistence.BackupLogRepository.
type BackupLogRepository struct {
	pool   *ConnectionPool
	mapper ErrorMapper
}

// NewBackupLogRepository creates a new SQLite backup log repository.
func NewBackupLogRepository(pool *ConnectionPool) *BackupLogRepository {
	return &BackupLogRepository{pool: pool}
}

// RecordBackup appends an entry.
func (r *BackupLogRepository) RecordBackup(ctx context.Context, entry persistence.BackupEntry) error {
	if entry.Digest == "" || entry.PushedAt.IsZero() {
		return persistence.ErrConstraintViolation
	}
	const insert = `INSERT INTO backup_log (pushed_at, digest, blob_id) VALUES (?, ?, ?)`
	var blobID sql.NullString
	if entry.BlobID != "" {
		blobID = sql.NullString{String: entry.BlobID, Valid: true}
	}
	_, err := r.pool.DB().ExecContext(ctx, insert, entry.PushedAt.UTC().Format(time.RFC3339Nano), entry.Digest, blobID)
	return r.mapper.MapError(err)
}

// RecentBackups lists up to limit entries, newest first. A limit of zero or
// less returns every entry.
func (r *BackupLogRepository) RecentBackups(ctx context.Context, limit int) ([]persistence.BackupEntry, error) {
	query := `SELECT pushed_at, digest, COALESCE(blob_id, '') FROM backup_log ORDER BY pushed_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.pool.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.BackupEntry
	for rows.Next() {
		var (
			entry    persistence.BackupEntry
			pushedAt string
		)
		if err := rows.Scan(&pushedAt, &entry.Digest, &entry.BlobID); err != nil {
			return nil, r.mapper.MapError(err)
		}
		if entry.PushedAt, err = time.Parse(time.RFC3339Nano, pushedAt); err != nil {
			return nil, fmt.Errorf("sqlite: parse pushed_at: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}
	return entries, nil
}
