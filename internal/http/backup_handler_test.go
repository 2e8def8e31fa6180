package http

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/example/clinic-scheduler/internal/application"
	"github.com/example/clinic-scheduler/internal/persistence"
	"github.com/example/clinic-scheduler/internal/testfixtures"
)

type backupServiceStub struct {
	force      bool
	backupErr  error
	restoreErr error
	history    []persistence.BackupEntry
	limit      int
}

func (s *backupServiceStub) BackupNow(ctx context.Context, force bool) (application.BackupResult, error) {
	s.force = force
	if s.backupErr != nil {
		return application.BackupResult{}, s.backupErr
	}
	return application.BackupResult{At: testfixtures.ReferenceTime(), BlobID: "blob-1", Digest: "abc"}, nil
}

func (s *backupServiceStub) Restore(ctx context.Context) (application.RestoreResult, error) {
	if s.restoreErr != nil {
		return application.RestoreResult{}, s.restoreErr
	}
	return application.RestoreResult{Site: "clinic", Appointments: 2}, nil
}

func (s *backupServiceStub) Status(ctx context.Context) application.BackupStatus {
	return application.BackupStatus{LastBackupAt: "2024-01-02T15:04:05Z", AutoEnabled: true}
}

func (s *backupServiceStub) History(ctx context.Context, limit int) ([]persistence.BackupEntry, error) {
	s.limit = limit
	return s.history, nil
}

func TestBackupHandlers(t *testing.T) {
	t.Parallel()

	t.Run("maps service errors to status codes", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name   string
			err    error
			status int
			code   string
		}{
			{name: "empty snapshot", err: application.ErrEmptySnapshot, status: http.StatusConflict, code: "EMPTY_SNAPSHOT"},
			{name: "remote failure", err: fmt.Errorf("%w: 500", application.ErrRemote), status: http.StatusBadGateway, code: "REMOTE_UNAVAILABLE"},
			{name: "unexpected", err: fmt.Errorf("disk on fire"), status: http.StatusInternalServerError},
		}

		for _, tc := range tests {
			tc := tc
			t.Run(tc.name, func(t *testing.T) {
				t.Parallel()
				api := newAPIHarness(t)
				api.backups.backupErr = tc.err

				rec := api.do(t, http.MethodPost, "/backup", "")
				if rec.Code != tc.status {
					t.Fatalf("status = %d, want %d", rec.Code, tc.status)
				}
				var resp errorResponse
				decodeBody(t, rec, &resp)
				if resp.ErrorCode != tc.code {
					t.Fatalf("error_code = %q, want %q", resp.ErrorCode, tc.code)
				}
			})
		}
	})

	t.Run("passes force through", func(t *testing.T) {
		t.Parallel()
		api := newAPIHarness(t)

		rec := api.do(t, http.MethodPost, "/backup", `{"force":true}`)
		var result backupResultDTO
		decodeBody(t, rec, &result)
		if rec.Code != http.StatusOK || !api.backups.force || result.BlobID != "blob-1" {
			t.Fatalf("backup = %d %+v", rec.Code, result)
		}
	})

	t.Run("restore and status", func(t *testing.T) {
		t.Parallel()
		api := newAPIHarness(t)

		rec := api.do(t, http.MethodPost, "/restore", "")
		var restored restoreResultDTO
		decodeBody(t, rec, &restored)
		if restored.Appointments != 2 {
			t.Fatalf("unexpected restore %+v", restored)
		}

		api.backups.restoreErr = application.ErrNotFound
		if rec = api.do(t, http.MethodPost, "/restore", ""); rec.Code != http.StatusNotFound {
			t.Fatalf("missing backup status = %d", rec.Code)
		}

		rec = api.do(t, http.MethodGet, "/backup/status", "")
		var status backupStatusDTO
		decodeBody(t, rec, &status)
		if !status.AutoEnabled || status.LastBackupAt == "" || status.LastErrorAt != "" {
			t.Fatalf("unexpected status %+v", status)
		}
	})

	t.Run("history", func(t *testing.T) {
		t.Parallel()
		api := newAPIHarness(t)
		api.backups.history = []persistence.BackupEntry{{PushedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Digest: "d1"}}

		rec := api.do(t, http.MethodGet, "/backup/history?limit=5", "")
		var resp backupHistoryResponse
		decodeBody(t, rec, &resp)
		if api.backups.limit != 5 || len(resp.Backups) != 1 || resp.Backups[0].PushedAt != "2024-01-02T00:00:00Z" {
			t.Fatalf("unexpected history %+v (limit %d)", resp, api.backups.limit)
		}
		if rec = api.do(t, http.MethodGet, "/backup/history?limit=x", ""); rec.Code != http.StatusUnprocessableEntity {
			t.Fatalf("bad limit status = %d", rec.Code)
		}
	})
}
