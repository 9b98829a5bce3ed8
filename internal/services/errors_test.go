package services_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"borgtool/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrConfiguration, "config", "load", "invalid toml", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"config", "load", "invalid toml"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrOperationFailed) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "borg-tool failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestOperationErrorFormatsAndUnwraps(t *testing.T) {
	opErr := services.NewOperationError("create", 2, []byte("  open /etc/shadow: Permission denied \n"), true)
	if opErr.Stderr != "open /etc/shadow: Permission denied" {
		t.Fatalf("expected trimmed stderr, got %q", opErr.Stderr)
	}
	if opErr.Hint == "" {
		t.Fatal("expected permission hint")
	}
	wrapped := fmt.Errorf("backup home: %w", opErr)
	if !errors.Is(wrapped, services.ErrOperationFailed) {
		t.Fatal("expected OperationError to match ErrOperationFailed")
	}
	var target *services.OperationError
	if !errors.As(wrapped, &target) || target.Status != 2 {
		t.Fatalf("expected OperationError with status 2, got %#v", target)
	}
	msg := opErr.Error()
	if !strings.HasPrefix(msg, "borg create failed with status 2: ") {
		t.Fatalf("unexpected message %q", msg)
	}
	if !strings.Contains(msg, "sudo") {
		t.Fatalf("expected hint in message %q", msg)
	}
}

func TestOperationErrorOmitsHintWhenNotRequested(t *testing.T) {
	opErr := services.NewOperationError("list", 2, []byte("Permission denied"), false)
	if opErr.Hint != "" {
		t.Fatalf("expected no hint, got %q", opErr.Hint)
	}
}

func TestRecoverableClassification(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"operation", services.NewOperationError("create", 1, nil, false), true},
		{"mount", services.Wrap(services.ErrMountState, "mount", "prepare", "not empty", nil), true},
		{"malformed", services.Wrap(services.ErrMalformedOutput, "borg", "list", "bad json", nil), false},
		{"invocation", services.Wrap(services.ErrEngineInvocation, "borg", "spawn", "missing", nil), false},
		{"config", services.Wrap(services.ErrConfiguration, "config", "", "", nil), false},
		{"plain", errors.New("other"), false},
	}
	for _, tc := range cases {
		if got := services.Recoverable(tc.err); got != tc.want {
			t.Fatalf("%s: Recoverable=%v, want %v", tc.name, got, tc.want)
		}
	}
}
