package persistence

import (
	"context"
	"sync"
)

// SnapshotRepository stores the one snapshot record. Saves replace the
// previous record atomically.
type SnapshotRepository interface {
	SaveSnapshot(ctx context.Context, record SnapshotRecord) error
	LoadSnapshot(ctx context.Context) (SnapshotRecord, error)
}

// BackupLogRepository keeps the history of remote pushes.
type BackupLogRepository interface {
	RecordBackup(ctx context.Context, entry BackupEntry) error
	RecentBackups(ctx context.Context, limit int) ([]BackupEntry, error)
}

// MemorySnapshotRepository keeps the snapshot in process memory.
type MemorySnapshotRepository struct {
	mu     sync.RWMutex
	record *SnapshotRecord
	saves  int
}

// NewMemorySnapshotRepository returns an empty in-memory repository.
func NewMemorySnapshotRepository() *MemorySnapshotRepository {
	return &MemorySnapshotRepository{}
}

// SaveSnapshot implements SnapshotRepository.
func (m *MemorySnapshotRepository) SaveSnapshot(ctx context.Context, record SnapshotRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(record.Payload) == 0 || !record.Verify() {
		return ErrConstraintViolation
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := record
	cp.Payload = append([]byte(nil), record.Payload...)
	m.record = &cp
	m.saves++
	return nil
}

// LoadSnapshot implements SnapshotRepository.
func (m *MemorySnapshotRepository) LoadSnapshot(ctx context.Context) (SnapshotRecord, error) {
	if err := ctx.Err(); err != nil {
		return SnapshotRecord{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.record == nil {
		return SnapshotRecord{}, ErrNotFound
	}
	cp := *m.record
	cp.Payload = append([]byte(nil), m.record.Payload...)
	return cp, nil
}

// Saves reports how many snapshots were written.
func (m *MemorySnapshotRepository) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

// MemoryBackupLog keeps the push history in process memory.
type MemoryBackupLog struct {
	mu      sync.Mutex
	entries []BackupEntry
}

// RecordBackup implements BackupLogRepository.
func (m *MemoryBackupLog) RecordBackup(ctx context.Context, entry BackupEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = append(m.entries, entry)
	return nil
}

// RecentBackups implements BackupLogRepository, newest first.
func (m *MemoryBackupLog) RecentBackups(ctx context.Context, limit int) ([]BackupEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BackupEntry, 0, len(m.entries))
	for i := len(m.entries) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, m.entries[i])
	}
	return out, nil
}
