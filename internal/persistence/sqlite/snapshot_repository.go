package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/clinic-scheduler/internal/persistence"
)

// SnapshotRepository implements persistence.SnapshotRepository. The table
// holds at most one row, id 1.
type SnapshotRepository struct {
	pool   *ConnectionPool
	mapper ErrorMapper
	retry  *RetryHelper
}

// NewSnapshotRepository creates a new SQLite snapshot repository.
func NewSnapshotRepository(pool *ConnectionPool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool, retry: NewRetryHelper(DefaultRetryConfig())}
}

// SaveSnapshot replaces the stored snapshot in one transaction.
func (r *SnapshotRepository) SaveSnapshot(ctx context.Context, record persistence.SnapshotRecord) error {
	if len(record.Payload) == 0 || record.Version <= 0 || !record.Verify() {
		return persistence.ErrConstraintViolation
	}

	const upsert = `
		INSERT INTO snapshots (id, version, payload, digest, saved_at)
		VALUES (1, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			version = excluded.version,
			payload = excluded.payload,
			digest = excluded.digest,
			saved_at = excluded.saved_at`

	return r.retry.WithRetry(ctx, func() error {
		return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			_, err := tx.ExecContext(ctx, upsert,
				record.Version,
				record.Payload,
				record.Digest,
				record.SavedAt.UTC().Format(time.RFC3339Nano),
			)
			return err
		})
	})
}

// LoadSnapshot returns the stored snapshot or persistence.ErrNotFound.
func (r *SnapshotRepository) LoadSnapshot(ctx context.Context) (persistence.SnapshotRecord, error) {
	const query = `SELECT version, payload, digest, saved_at FROM snapshots WHERE id = 1`

	var (
		record  persistence.SnapshotRecord
		savedAt string
	)
	err := r.pool.DB().QueryRowContext(ctx, query).Scan(&record.Version, &record.Payload, &record.Digest, &savedAt)
	if err != nil {
		return persistence.SnapshotRecord{}, r.mapper.MapError(err)
	}

	record.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt)
	if err != nil {
		return persistence.SnapshotRecord{}, fmt.Errorf("sqlite: parse saved_at: %w", err)
	}
	if !record.Verify() {
		return persistence.SnapshotRecord{}, fmt.Errorf("sqlite: snapshot digest mismatch: %w", persistence.ErrConstraintViolation)
	}
	return record, nil
}
