package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

var referenceTime = time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func fixedNow() time.Time { return referenceTime }

type failingStore struct{ err error }

func (f failingStore) Create(context.Context, string, File) (string, error) { return "", f.err }
func (f failingStore) Update(context.Context, string, File) error            { return f.err }
func (f failingStore) Files(context.Context, string) ([]File, error)         { return nil, f.err }

func TestGatewayPush(t *testing.T) {
	ctx := context.Background()

	t.Run("creates then updates the same blob", func(t *testing.T) {
		store := NewMemoryBlobStore()
		gw := New(store, Config{Token: "t"}, fixedNow, quietLogger())

		first, err := gw.Push(ctx, PushRequest{Data: json.RawMessage(`{"workers":["Alex"]}`)})
		if err != nil {
			t.Fatalf("Push failed: %v", err)
		}
		if !first.Created || first.BlobID == "" {
			t.Fatalf("expected a created blob, got %+v", first)
		}
		if desc, _ := store.Description(first.BlobID); desc != "Auto backups for scheduler-app" {
			t.Fatalf("unexpected description %q", desc)
		}

		second, err := gw.Push(ctx, PushRequest{Site: "scheduler-app", Data: json.RawMessage(`{}`), When: "w2"})
		if err != nil {
			t.Fatalf("second Push failed: %v", err)
		}
		if second.Created || second.BlobID != first.BlobID {
			t.Fatalf("expected update of %s, got %+v", first.BlobID, second)
		}

		files, _ := store.Files(ctx, first.BlobID)
		if len(files) != 1 || files[0].Name != "scheduler-app-backup.json" {
			t.Fatalf("unexpected files %+v", files)
		}
		if !strings.Contains(files[0].Content, `"when": "w2"`) {
			t.Fatalf("expected updated content, got %s", files[0].Content)
		}
	})

	t.Run("fills defaults and indents the document", func(t *testing.T) {
		store := NewMemoryBlobStore()
		gw := New(store, Config{Token: "t"}, fixedNow, quietLogger())
		res, err := gw.Push(ctx, PushRequest{})
		if err != nil {
			t.Fatalf("Push failed: %v", err)
		}
		files, _ := store.Files(ctx, res.BlobID)
		want := "{\n  \"site\": \"scheduler-app\",\n  \"when\": \"2024-01-02T15:04:05.000Z\",\n  \"data\": {}\n}"
		if files[0].Content != want {
			t.Fatalf("unexpected document:\n%s", files[0].Content)
		}
	})

	t.Run("requires a token", func(t *testing.T) {
		gw := New(NewMemoryBlobStore(), Config{}, fixedNow, quietLogger())
		if _, err := gw.Push(ctx, PushRequest{}); !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("expected ErrMissingCredential, got %v", err)
		}
	})

	t.Run("keeps the id unset when create fails", func(t *testing.T) {
		gw := New(failingStore{err: errors.New("boom")}, Config{Token: "t"}, fixedNow, quietLogger())
		if _, err := gw.Push(ctx, PushRequest{}); err == nil {
			t.Fatalf("expected error")
		}
		if gw.BlobID() != "" {
			t.Fatalf("expected no blob id, got %q", gw.BlobID())
		}
	})
}

func TestGatewayPull(t *testing.T) {
	ctx := context.Background()

	t.Run("requires token and blob id", func(t *testing.T) {
		gw := New(NewMemoryBlobStore(), Config{Token: "t"}, fixedNow, quietLogger())
		if _, err := gw.Pull(ctx); !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("expected ErrMissingCredential, got %v", err)
		}
		gw = New(NewMemoryBlobStore(), Config{BlobID: "x"}, fixedNow, quietLogger())
		if _, err := gw.Pull(ctx); !errors.Is(err, ErrMissingCredential) {
			t.Fatalf("expected ErrMissingCredential, got %v", err)
		}
	})

	t.Run("reports a blob without backup file", func(t *testing.T) {
		store := NewMemoryBlobStore()
		id, _ := store.Create(ctx, "other", File{Name: "notes.txt", Content: "hi"})
		gw := New(store, Config{Token: "t", BlobID: id}, fixedNow, quietLogger())
		if _, err := gw.Pull(ctx); !errors.Is(err, ErrNoBackup) {
			t.Fatalf("expected ErrNoBackup, got %v", err)
		}
	})

	t.Run("returns what push stored", func(t *testing.T) {
		gw := New(NewMemoryBlobStore(), Config{Token: "t"}, fixedNow, quietLogger())
		if _, err := gw.Push(ctx, PushRequest{Data: json.RawMessage(`{"a":1}`)}); err != nil {
			t.Fatalf("Push failed: %v", err)
		}
		content, err := gw.Pull(ctx)
		if err != nil {
			t.Fatalf("Pull failed: %v", err)
		}
		var doc document
		if err := json.Unmarshal(content, &doc); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if doc.Site != DefaultSite || string(doc.Data) != "{\n    \"a\": 1\n  }" {
			t.Fatalf("unexpected document %+v", doc)
		}
	})
}

func TestHandler(t *testing.T) {
	t.Run("backup rejects other methods", func(t *testing.T) {
		h := NewHandler(New(NewMemoryBlobStore(), Config{Token: "t"}, fixedNow, quietLogger()), quietLogger())
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/backup", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Fatalf("expected 405, got %d", rec.Code)
		}
	})

	t.Run("backup without token", func(t *testing.T) {
		h := NewHandler(New(NewMemoryBlobStore(), Config{}, fixedNow, quietLogger()), quietLogger())
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/backup", strings.NewReader(`{}`)))
		if rec.Code != http.StatusInternalServerError || strings.TrimSpace(rec.Body.String()) != "Missing GITHUB_TOKEN" {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("backup reports the created id once", func(t *testing.T) {
		h := NewHandler(New(NewMemoryBlobStore(), Config{Token: "t"}, fixedNow, quietLogger()), quietLogger())
		routes := h.Routes()

		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/backup", strings.NewReader(`{"site":"clinic","data":{}}`)))
		if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"ok":true,"gistId":"blob-1"}` {
			t.Fatalf("unexpected create response %d %s", rec.Code, rec.Body.String())
		}

		rec = httptest.NewRecorder()
		routes.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/backup", strings.NewReader(`{"site":"clinic"}`)))
		if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != `{"ok":true}` {
			t.Fatalf("unexpected update response %d %s", rec.Code, rec.Body.String())
		}
	})

	t.Run("backup surfaces upstream failures", func(t *testing.T) {
		h := NewHandler(New(failingStore{err: errors.New("rate limited")}, Config{Token: "t"}, fixedNow, quietLogger()), quietLogger())
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/backup", nil))
		if rec.Code != http.StatusInternalServerError || strings.TrimSpace(rec.Body.String()) != "Backup failed: rate limited" {
			t.Fatalf("unexpected response %d %q", rec.Code, rec.Body.String())
		}
	})

	t.Run("restore error mapping", func(t *testing.T) {
		store := NewMemoryBlobStore()
		empty, _ := store.Create(context.Background(), "d", File{Name: "x.txt"})

		cases := []struct {
			name   string
			gw     *Gateway
			status int
			body   string
		}{
			{"missing credentials", New(store, Config{Token: "t"}, fixedNow, quietLogger()), http.StatusInternalServerError, "Missing GITHUB_TOKEN or GIST_ID"},
			{"no backup file", New(store, Config{Token: "t", BlobID: empty}, fixedNow, quietLogger()), http.StatusNotFound, "No backup file"},
			{"upstream failure", New(failingStore{err: errors.New("down")}, Config{Token: "t", BlobID: "g"}, fixedNow, quietLogger()), http.StatusInternalServerError, "Restore failed: down"},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				rec := httptest.NewRecorder()
				NewHandler(tc.gw, quietLogger()).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restore", nil))
				if rec.Code != tc.status || strings.TrimSpace(rec.Body.String()) != tc.body {
					t.Fatalf("expected %d %q, got %d %q", tc.status, tc.body, rec.Code, rec.Body.String())
				}
			})
		}
	})

	t.Run("restore returns the raw document", func(t *testing.T) {
		gw := New(NewMemoryBlobStore(), Config{Token: "t"}, fixedNow, quietLogger())
		gw.Push(context.Background(), PushRequest{})
		rec := httptest.NewRecorder()
		NewHandler(gw, quietLogger()).Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/restore", nil))
		if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != "application/json" {
			t.Fatalf("unexpected response %d %s", rec.Code, rec.Header().Get("Content-Type"))
		}
		if !strings.HasPrefix(rec.Body.String(), "{\n  \"site\": \"scheduler-app\"") {
			t.Fatalf("unexpected body %s", rec.Body.String())
		}
	})
}
