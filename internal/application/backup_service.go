package application

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/clinic-scheduler/internal/backup"
	"github.com/example/clinic-scheduler/internal/clinic"
	"github.com/example/clinic-scheduler/internal/persistence"
)

// RemoteBackup pushes and pulls the backup document.
type RemoteBackup interface {
	Push(ctx context.Context, site string, data json.RawMessage, when time.Time) (string, error)
	Pull(ctx context.Context) (backup.Envelope, error)
}

// BackupServiceConfig wires a backup service.
type BackupServiceConfig struct {
	Workspace *Workspace
	Remote    RemoteBackup
	History   persistence.BackupLogRepository
	Site      string
	Timeout   time.Duration
	Now       func() time.Time
	Logger    *slog.Logger
}

// BackupService pushes snapshots to the gateway and restores from it.
type BackupService struct {
	workspace *Workspace
	remote    RemoteBackup
	history   persistence.BackupLogRepository
	site      string
	timeout   time.Duration
	now       func() time.Time
	logger    *slog.Logger

	pushMu sync.Mutex

	mu          sync.Mutex
	debouncer   *backup.Debouncer
	lastDigest  string
	lastError   string
	lastErrorAt time.Time
}

// NewBackupService constructs a backup service.
func NewBackupService(cfg BackupServiceConfig) *BackupService {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Site == "" {
		cfg.Site = "scheduler-app"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &BackupService{
		workspace: cfg.Workspace,
		remote:    cfg.Remote,
		history:   cfg.History,
		site:      cfg.Site,
		timeout:   cfg.Timeout,
		now:       cfg.Now,
		logger:    defaultLogger(cfg.Logger),
	}
}

func (s *BackupService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "BackupService", operation, attrs...)
}

// EnableAuto schedules a push through d after every workspace change.
func (s *BackupService) EnableAuto(d *backup.Debouncer) {
	if s == nil || d == nil || s.workspace == nil {
		return
	}
	s.mu.Lock()
	s.debouncer = d
	s.mu.Unlock()

	s.workspace.Subscribe(func(change Change) {
		d.Schedule(func() {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			defer cancel()
			s.autoPush(ctx, change.Operation)
		})
	})
}

// Flush runs a pending automatic push immediately.
func (s *BackupService) Flush(ctx context.Context) {
	s.mu.Lock()
	d := s.debouncer
	s.mu.Unlock()
	if d != nil && d.Cancel() {
		s.autoPush(ctx, "flush")
	}
}

// BackupNow pushes the current state. An empty state is refused unless
// force is set.
func (s *BackupService) BackupNow(ctx context.Context, force bool) (result BackupResult, err error) {
	if s == nil || s.workspace == nil || s.remote == nil {
		err = fmt.Errorf("BackupService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "BackupNow", "force", force)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "backup failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "backup pushed", "digest", result.Digest, "blob_id", result.BlobID)
	}()

	snap := s.workspace.Snapshot()
	if snap.Data.IsEmpty() && !force {
		err = ErrEmptySnapshot
		return
	}
	result, err = s.push(ctx, snap.Data)
	return
}

func (s *BackupService) autoPush(ctx context.Context, reason string) {
	logger := s.loggerWith(ctx, "AutoBackup", "reason", reason)

	snap := s.workspace.Snapshot()
	if snap.Data.IsEmpty() {
		logger.InfoContext(ctx, "skipping automatic backup of empty state")
		return
	}
	payload, err := encodeData(snap.Data)
	if err != nil {
		logger.ErrorContext(ctx, "automatic backup failed", "error", err)
		return
	}

	s.mu.Lock()
	unchanged := persistence.Digest(payload) == s.lastDigest
	s.mu.Unlock()
	if unchanged {
		logger.DebugContext(ctx, "state unchanged since last push")
		return
	}

	result, err := s.push(ctx, snap.Data)
	if err != nil {
		logger.ErrorContext(ctx, "automatic backup failed", "error", err, "error_kind", ErrorKind(err))
		return
	}
	logger.InfoContext(ctx, "automatic backup pushed", "digest", result.Digest)
}

func (s *BackupService) push(ctx context.Context, data clinic.Data) (BackupResult, error) {
	s.pushMu.Lock()
	defer s.pushMu.Unlock()

	payload, err := encodeData(data)
	if err != nil {
		return BackupResult{}, err
	}
	digest := persistence.Digest(payload)
	at := s.now()

	blobID, err := s.remote.Push(ctx, s.site, payload, at)
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrRemote, err)
		s.recordFailure(err, at)
		return BackupResult{}, err
	}

	s.mu.Lock()
	s.lastDigest = digest
	s.lastError = ""
	s.lastErrorAt = time.Time{}
	s.mu.Unlock()

	stamp := at.UTC().Format(time.RFC3339Nano)
	if err := s.workspace.markBackedUp(ctx, stamp); err != nil {
		s.loggerWith(ctx, "push").WarnContext(ctx, "failed to record backup time", "error", err)
	}
	if s.history != nil {
		entry := persistence.BackupEntry{PushedAt: at, Digest: digest, BlobID: blobID}
		if err := s.history.RecordBackup(ctx, entry); err != nil {
			s.loggerWith(ctx, "push").WarnContext(ctx, "failed to record backup history", "error", err)
		}
	}
	return BackupResult{At: at, BlobID: blobID, Digest: digest}, nil
}

func (s *BackupService) recordFailure(err error, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = err.Error()
	s.lastErrorAt = at
}

// Restore replaces the local state with the remote document. Appointments
// and the archive are always replaced; roster parts only when present. A
// document without data leaves the local state alone.
// Restoring does not schedule a backup.
func (s *BackupService) Restore(ctx context.Context) (result RestoreResult, err error) {
	if s == nil || s.workspace == nil || s.remote == nil {
		err = fmt.Errorf("BackupService is not configured")
		return
	}

	logger := s.loggerWith(ctx, "Restore")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "restore failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "restore completed",
			"appointments", result.Appointments, "archived", result.ArchivedAppointments, "when", result.When)
	}()

	env, err := s.remote.Pull(ctx)
	if err != nil {
		if errors.Is(err, backup.ErrNoBackup) {
			err = ErrNotFound
			return
		}
		err = fmt.Errorf("%w: %v", ErrRemote, err)
		return
	}

	if raw := bytes.TrimSpace(env.Data); len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		err = fmt.Errorf("%w: backup file is empty", ErrNotFound)
		return
	}
	var data clinic.Data
	if uErr := json.Unmarshal(env.Data, &data); uErr != nil {
		err = fmt.Errorf("%w: backup document: %v", ErrBadInput, uErr)
		return
	}
	for i, a := range data.Appointments {
		data.Appointments[i] = a.Normalize()
	}
	for i, a := range data.ArchivedAppointments {
		data.ArchivedAppointments[i] = a.Normalize()
	}

	err = s.workspace.commit(ctx, "restore", false, func(book *clinic.Book, roster *clinic.Roster) (bool, error) {
		*book = *clinic.NewBook(data.Appointments, data.ArchivedAppointments)
		roster.Apply(data)
		return true, nil
	})
	if err != nil {
		return
	}

	if payload, encErr := encodeData(s.workspace.Snapshot().Data); encErr == nil {
		s.mu.Lock()
		s.lastDigest = persistence.Digest(payload)
		s.mu.Unlock()
	}

	result = RestoreResult{
		Site:                 env.Site,
		When:                 env.When,
		Appointments:         len(data.Appointments),
		ArchivedAppointments: len(data.ArchivedAppointments),
		RosterReplaced:       data.Doctors != nil || data.DoctorByDate != nil || data.Workers != nil || data.StaffByDate != nil,
	}
	return
}

// Status reports the last push and any pending automatic push.
func (s *BackupService) Status(ctx context.Context) BackupStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	status := BackupStatus{
		LastError:   s.lastError,
		LastErrorAt: s.lastErrorAt,
		AutoEnabled: s.debouncer != nil,
	}
	if s.debouncer != nil {
		status.Pending = s.debouncer.Pending()
	}
	if s.workspace != nil {
		status.LastBackupAt = s.workspace.LastBackupAt()
	}
	return status
}

// History lists recent pushes, newest first.
func (s *BackupService) History(ctx context.Context, limit int) ([]persistence.BackupEntry, error) {
	if s == nil || s.history == nil {
		return nil, nil
	}
	return s.history.RecentBackups(ctx, limit)
}

func encodeData(data clinic.Data) (json.RawMessage, error) {
	payload, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode backup data: %w", err)
	}
	return payload, nil
}
