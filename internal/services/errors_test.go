package services_test

import (
	"errors"
	"strings"
	"testing"

	"chunkmux/internal/services"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrExternalTool, "muxing", "ffmpeg", "failed", base)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"muxing", "ffmpeg", "failed"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapDefaultsMarker(t *testing.T) {
	err := services.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "service failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestIsEnvironment(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{services.Wrap(services.ErrExternalTool, "preflight", "ffmpeg", "missing", nil), true},
		{services.Wrap(services.ErrNotFound, "preflight", "video chunks", "missing", nil), true},
		{services.Wrap(services.ErrBusy, "lock", "", "", nil), true},
		{services.Wrap(services.ErrTransient, "muxing", "", "", nil), false},
		{errors.New("plain"), false},
		{nil, false},
	}
	for _, tt := range tests {
		if got := services.IsEnvironment(tt.err); got != tt.want {
			t.Errorf("IsEnvironment(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestWrapExposesStage(t *testing.T) {
	err := services.Wrap(services.ErrConfiguration, " preflight ", "", "video chunks missing", nil)

	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		t.Fatalf("expected *services.Error, got %T", err)
	}
	if svcErr.Stage != "preflight" {
		t.Fatalf("expected trimmed stage, got %q", svcErr.Stage)
	}
	if got, want := err.Error(), "configuration error: preflight: video chunks missing"; got != want {
		t.Fatalf("unexpected message %q, want %q", got, want)
	}
}
