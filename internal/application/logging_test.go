package application

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
)

func TestDefaultLogger(t *testing.T) {
	t.Parallel()

	custom := slog.New(slog.NewTextHandler(io.Discard, nil))
	if got := defaultLogger(custom); got != custom {
		t.Fatalf("expected custom logger to be returned")
	}

	if got := defaultLogger(nil); got != slog.Default() {
		t.Fatalf("expected default logger when none provided")
	}
}

func TestErrorKind(t *testing.T) {
	t.Parallel()

	cases := map[string]error{
		"":               nil,
		"not_found":      fmt.Errorf("wrap: %w", ErrNotFound),
		"empty_snapshot": ErrEmptySnapshot,
		"remote":         fmt.Errorf("%w: timeout", ErrRemote),
		"bad_input":      ErrBadInput,
		"validation":     &ValidationError{FieldErrors: map[string]string{"date": "date is required"}},
		"unexpected":     errors.New("boom"),
	}
	for want, err := range cases {
		if got := ErrorKind(err); got != want {
			t.Errorf("ErrorKind(%v) = %q, want %q", err, got, want)
		}
	}
}
