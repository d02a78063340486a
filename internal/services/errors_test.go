package services_test

import (
	"errors"
	"testing"

	"quill/internal/articles"
	"quill/internal/services"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := services.Wrap(services.ErrValidation, "publish", "compose tweet", "text too long", base)
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected marker to survive wrapping: %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected cause to survive wrapping: %v", err)
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := services.Wrap(nil, "fetch", "", "", nil)
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
}

func TestFailureStatusRouting(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		expected articles.Status
	}{
		{"validation", services.Wrap(services.ErrValidation, "publish", "", "", nil), articles.StatusRejected},
		{"generation", services.Wrap(services.ErrGeneration, "generate", "", "", nil), articles.StatusRejected},
		{"duplicate", services.Wrap(services.ErrDuplicate, "fetch", "", "", nil), articles.StatusRejected},
		{"external", services.Wrap(services.ErrExternalService, "publish", "", "", nil), articles.StatusFailed},
		{"rate limited", services.Wrap(services.ErrRateLimited, "publish", "", "", nil), articles.StatusFailed},
		{"plain", errors.New("unknown"), articles.StatusFailed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := services.FailureStatus(tc.err); got != tc.expected {
				t.Fatalf("expected %s, got %s", tc.expected, got)
			}
		})
	}
}
