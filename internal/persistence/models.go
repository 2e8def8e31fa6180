package persistence

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/blake2b"
)

// SnapshotRecord is the single stored copy of the practice state. Payload is
// the JSON encoding of the snapshot and Digest its BLAKE2b-256 hex digest.
type SnapshotRecord struct {
	Version int
	Payload []byte
	Digest  string
	SavedAt time.Time
}

// Digest returns the hex BLAKE2b-256 digest of payload.
func Digest(payload []byte) string {
	sum := blake2b.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

// NewSnapshotRecord builds a record and computes its digest.
func NewSnapshotRecord(version int, payload []byte, savedAt time.Time) SnapshotRecord {
	return SnapshotRecord{
		Version: version,
		Payload: append([]byte(nil), payload...),
		Digest:  Digest(payload),
		SavedAt: savedAt,
	}
}

// Verify reports whether the payload still matches its digest.
func (r SnapshotRecord) Verify() bool {
	return r.Digest == Digest(r.Payload)
}

// BackupEntry records one successful remote push.
type BackupEntry struct {
	PushedAt time.Time
	Digest   string
	BlobID   string
}
