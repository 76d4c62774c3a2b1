package apperrors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"
)

func TestConfiguration(t *testing.T) {
	t.Parallel()
	err := Configuration("template", "template is required")

	if !errors.Is(err, ErrConfiguration) {
		t.Error("expected error to match ErrConfiguration")
	}
	if err.Error() != "template is required" {
		t.Errorf("expected message 'template is required', got %q", err.Error())
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected error to be *Error")
	}
	if appErr.Field != "template" {
		t.Errorf("expected field 'template', got %q", appErr.Field)
	}
}

func TestDiscovery(t *testing.T) {
	t.Parallel()
	cause := fmt.Errorf("invalid URL escape")
	err := Discovery("resource.locate", cause)

	if !errors.Is(err, ErrDiscovery) {
		t.Error("expected error to match ErrDiscovery")
	}
	if err.Error() != "resource.locate: invalid URL escape" {
		t.Errorf("unexpected message: %q", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause to be reachable through errors.Is")
	}
}

func TestState(t *testing.T) {
	t.Parallel()
	err := State("no changelog resources to aggregate")

	if !errors.Is(err, ErrState) {
		t.Error("expected error to match ErrState")
	}
	if errors.Is(err, ErrIO) {
		t.Error("state error must not match ErrIO")
	}
	if err.Error() != "no changelog resources to aggregate" {
		t.Errorf("unexpected message: %q", err.Error())
	}
}

func TestIO(t *testing.T) {
	t.Parallel()
	err := IO("output.write", fs.ErrPermission)

	if !errors.Is(err, ErrIO) {
		t.Error("expected error to match ErrIO")
	}
	if !errors.Is(err, fs.ErrPermission) {
		t.Error("expected fs.ErrPermission to be reachable")
	}

	var appErr *Error
	if !errors.As(err, &appErr) {
		t.Fatal("expected error to be *Error")
	}
	if appErr.Op != "output.write" {
		t.Errorf("expected op 'output.write', got %q", appErr.Op)
	}
	if appErr.Cause != fs.ErrPermission {
		t.Error("expected cause to be preserved")
	}
}

func TestExitCode(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, ExitOK},
		{"configuration", Configuration("f", "m"), ExitConfiguration},
		{"state", State("m"), ExitState},
		{"discovery", Discovery("op", fmt.Errorf("bad")), ExitDiscovery},
		{"io", IO("op", fmt.Errorf("disk full")), ExitIO},
		{"sentinel state", ErrState, ExitState},
		{"wrapped io", fmt.Errorf("generate: %w", IO("op", fmt.Errorf("x"))), ExitIO},
		{"unknown error", fmt.Errorf("unknown"), ExitFailure},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.expected {
				t.Errorf("ExitCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestErrorsIsWithWrapping(t *testing.T) {
	t.Parallel()
	original := Configuration("output", "output path is required")
	wrapped := fmt.Errorf("materializer: %w", original)
	doubleWrapped := fmt.Errorf("generator: %w", wrapped)

	if !errors.Is(doubleWrapped, ErrConfiguration) {
		t.Error("expected errors.Is to find ErrConfiguration through multiple wraps")
	}
}
