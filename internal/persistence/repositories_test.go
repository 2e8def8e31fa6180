package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/clinic-scheduler/internal/persistence"
)

func TestDigest(t *testing.T) {
	a := persistence.Digest([]byte(`{"version":1}`))
	b := persistence.Digest([]byte(`{"version":1}`))
	c := persistence.Digest([]byte(`{"version":2}`))
	if a != b {
		t.Fatalf("expected stable digest")
	}
	if a == c {
		t.Fatalf("expected different payloads to differ")
	}
	if len(a) != 64 {
		t.Fatalf("expected 32 byte hex digest, got %d chars", len(a))
	}
}

func TestMemorySnapshotRepository(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	repo := persistence.NewMemorySnapshotRepository()

	if _, err := repo.LoadSnapshot(ctx); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	record := persistence.NewSnapshotRecord(1, []byte(`{"version":1}`), time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC))
	if err := repo.SaveSnapshot(ctx, record); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := repo.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if string(loaded.Payload) != `{"version":1}` || loaded.Digest != record.Digest {
		t.Fatalf("unexpected record %+v", loaded)
	}

	loaded.Payload[0] = 'x'
	again, _ := repo.LoadSnapshot(ctx)
	if again.Payload[0] != '{' {
		t.Fatalf("expected repository to return copies")
	}

	tampered := record
	tampered.Digest = "nope"
	if err := repo.SaveSnapshot(ctx, tampered); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
	if repo.Saves() != 1 {
		t.Fatalf("expected 1 save, got %d", repo.Saves())
	}
}

func TestMemoryBackupLog(t *testing.T) {
	ctx := context.Background()
	log := &persistence.MemoryBackupLog{}
	base := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	for i := 0; i < 3; i++ {
		log.RecordBackup(ctx, persistence.BackupEntry{PushedAt: base.Add(time.Duration(i) * time.Hour), Digest: "d"})
	}
	recent, err := log.RecentBackups(ctx, 2)
	if err != nil {
		t.Fatalf("RecentBackups failed: %v", err)
	}
	if len(recent) != 2 || !recent[0].PushedAt.Equal(base.Add(2*time.Hour)) {
		t.Fatalf("expected newest first, got %+v", recent)
	}
}
