package errors_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/summitpulse/ventiscore/internal/errors"
	"github.com/summitpulse/ventiscore/internal/testhelpers"
)

func TestAnnotatedError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "simple error",
			err:  errors.NewSentinel("simple error"),
			want: "simple error",
		},
		{
			name: "annotated error",
			err:  errors.Wrap(errors.NewSentinel("root cause"), "context", slog.String("key", "value")),
			want: "context: root cause",
		},
		{
			name: "nested annotated error",
			err: errors.Wrap(
				errors.Wrap(errors.NewSentinel("root cause"), "inner context"),
				"outer context",
			),
			want: "outer context: inner context: root cause",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnwrap(t *testing.T) {
	rootErr := errors.NewSentinel("root error")
	wrappedErr := fmt.Errorf("context: %w", rootErr)

	if unwrapped := errors.Unwrap(wrappedErr); !errors.Is(unwrapped, rootErr) {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, rootErr)
	}

	if unwrapped := errors.Unwrap(rootErr); unwrapped != nil {
		t.Errorf("Unwrap() = %v, want nil", unwrapped)
	}
}

func TestIs(t *testing.T) {
	rootErr := errors.NewSentinel("root error")
	wrappedErr := errors.Wrap(rootErr, "context")

	if !errors.Is(wrappedErr, rootErr) {
		t.Errorf("Is() = false, want true for wrapped error")
	}

	if errors.Is(wrappedErr, errors.NewSentinel("different error")) {
		t.Errorf("Is() = true, want false for different error")
	}
}

func TestSlogError(t *testing.T) {
	err := errors.Wrap(errors.NewSentinel("root cause"), "context",
		slog.String("key", "value"), slog.Duration("duration", time.Second))
	var buf bytes.Buffer
	l := testhelpers.NewLogger(&buf)
	l.Info("test", errors.SlogError(err))
	logLine := buf.String()
	expectedContent := []string{
		"error.annotations.key=value",
		"error.annotations.duration=1s",
	}
	for _, content := range expectedContent {
		if !strings.Contains(logLine, content) {
			t.Errorf("expected log line %s to contain %s", logLine, content)
		}
	}

	if strings.Contains(logLine, "annotatederror.go") {
		t.Fatal("expected annotatederror.go NOT to be in log line")
	}

	// Wonky inputs must not panic.
	errors.SlogError(nil)
	errors.SlogError(errors.Join(nil, nil, errors.NewSentinel("sentinel"), errors.New("test")))
	errors.SlogError(fmt.Errorf("test: %w", errors.NewSentinel("sentinel")))
	errors.SlogError(errors.Wrap(nil, "wrap error"))
}

func TestDecoratePanic(t *testing.T) {
	defer func() {
		excp := recover()
		err := errors.DecoratePanic(excp)
		if err == nil {
			t.Fatal("expected error")
		}
		if got, want := err.Error(), "panic: test"; got != want {
			t.Errorf("err.Error(): got %q, want %q", got, want)
		}
	}()
	panic("test")
}
