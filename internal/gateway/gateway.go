package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/example/clinic-scheduler/internal/logging"
)

const (
	// DefaultSite names the document when a push omits it.
	DefaultSite = "scheduler-app"
	// BackupSuffix marks the backup file inside a blob.
	BackupSuffix = "-backup.json"
)

var (
	// ErrMissingCredential is returned when the token (or, for Pull, the
	// blob id) is not configured.
	ErrMissingCredential = errors.New("gateway: missing credential")
	// ErrNoBackup is returned when the blob holds no backup file.
	ErrNoBackup = errors.New("gateway: no backup file")
)

// Config holds the remote credentials.
type Config struct {
	Token  string
	BlobID string
}

// PushRequest is the body accepted by Push. Zero fields take defaults.
type PushRequest struct {
	Site string          `json:"site"`
	Data json.RawMessage `json:"data"`
	When string          `json:"when"`
}

// PushResult reports where the document went.
type PushResult struct {
	BlobID  string
	Created bool
}

type document struct {
	Site string          `json:"site"`
	When string          `json:"when"`
	Data json.RawMessage `json:"data"`
}

// Gateway writes and reads the single backup document.
type Gateway struct {
	store  BlobStore
	token  string
	now    func() time.Time
	logger *slog.Logger

	mu     sync.Mutex
	blobID string
}

// New constructs a gateway over store.
func New(store BlobStore, cfg Config, now func() time.Time, logger *slog.Logger) *Gateway {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		store:  store,
		token:  strings.TrimSpace(cfg.Token),
		blobID: strings.TrimSpace(cfg.BlobID),
		now:    now,
		logger: logger,
	}
}

// BlobID returns the configured or most recently created blob id.
func (g *Gateway) BlobID() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.blobID
}

// Push stores req, creating the blob on first use.
func (g *Gateway) Push(ctx context.Context, req PushRequest) (result PushResult, err error) {
	logger := g.loggerFor(ctx, "Push")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "push failed", "error", err)
			return
		}
		logger.InfoContext(ctx, "push succeeded", "blob_id", result.BlobID, "created", result.Created)
	}()

	if g.token == "" {
		return PushResult{}, ErrMissingCredential
	}

	site := req.Site
	if site == "" {
		site = DefaultSite
	}
	data := req.Data
	if len(data) == 0 || string(data) == "null" {
		data = json.RawMessage("{}")
	}
	when := req.When
	if when == "" {
		when = g.now().UTC().Format("2006-01-02T15:04:05.000Z")
	}

	content, err := json.MarshalIndent(document{Site: site, When: when, Data: data}, "", "  ")
	if err != nil {
		return PushResult{}, fmt.Errorf("encode document: %w", err)
	}
	file := File{Name: site + BackupSuffix, Content: string(content)}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.blobID == "" {
		id, err := g.store.Create(ctx, "Auto backups for "+site, file)
		if err != nil {
			return PushResult{}, err
		}
		g.blobID = id
		return PushResult{BlobID: id, Created: true}, nil
	}

	if err := g.store.Update(ctx, g.blobID, file); err != nil {
		return PushResult{}, err
	}
	return PushResult{BlobID: g.blobID}, nil
}

// Pull returns the raw backup document.
func (g *Gateway) Pull(ctx context.Context) (content []byte, err error) {
	logger := g.loggerFor(ctx, "Pull")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "pull failed", "error", err)
			return
		}
		logger.InfoContext(ctx, "pull succeeded", "bytes", len(content))
	}()

	id := g.BlobID()
	if g.token == "" || id == "" {
		return nil, ErrMissingCredential
	}

	files, err := g.store.Files(ctx, id)
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if strings.HasSuffix(f.Name, BackupSuffix) {
			return []byte(f.Content), nil
		}
	}
	return nil, ErrNoBackup
}

func (g *Gateway) loggerFor(ctx context.Context, operation string) *slog.Logger {
	logger := logging.FromContext(ctx)
	if logger == nil {
		logger = g.logger
	}
	return logger.With("service", "Gateway", "operation", operation)
}
