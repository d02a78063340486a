package quality_test

import (
	"strings"
	"testing"

	"quill/internal/quality"
)

func TestValidatePasses(t *testing.T) {
	gate := quality.NewGate()
	result := gate.Validate(quality.Candidate{
		Text:         "Go 1.25 ships with a faster garbage collector and flat binaries.",
		Hashtags:     "#golang",
		URLSuffix:    "https://go.dev/blog",
		ImpactScore:  7,
		QualityScore: 8,
	}, 5)
	if !result.IsValid {
		t.Fatalf("expected valid, got issues: %v", result.Issues)
	}
	if result.Reason() != "" {
		t.Fatalf("expected empty reason, got %q", result.Reason())
	}
}

func TestValidateEmptyText(t *testing.T) {
	gate := quality.NewGate()
	result := gate.Validate(quality.Candidate{Text: "   ", ImpactScore: 9, QualityScore: 9}, 5)
	if result.IsValid {
		t.Fatal("expected invalid for empty text")
	}
	if !strings.Contains(result.Reason(), "empty") {
		t.Fatalf("unexpected reason: %q", result.Reason())
	}
}

func TestValidateComposedLength(t *testing.T) {
	gate := quality.NewGate()
	body := strings.Repeat("a", 270)
	result := gate.Validate(quality.Candidate{
		Text:         body,
		Hashtags:     "#news #ai",
		URLSuffix:    "https://example.com/article",
		ImpactScore:  9,
		QualityScore: 9,
	}, 5)
	if result.IsValid {
		t.Fatal("expected invalid: body alone fits but composed text does not")
	}
	if !strings.Contains(result.Reason(), "character limit") {
		t.Fatalf("unexpected reason: %q", result.Reason())
	}

	short := gate.Validate(quality.Candidate{Text: body, ImpactScore: 9, QualityScore: 9}, 5)
	if !short.IsValid {
		t.Fatalf("expected bare 270-char body to pass, got %v", short.Issues)
	}
}

func TestValidateImpactThresholdIsCallerSupplied(t *testing.T) {
	gate := quality.NewGate()
	candidate := quality.Candidate{Text: "fine text", ImpactScore: 4, QualityScore: 9}
	if result := gate.Validate(candidate, 5); result.IsValid {
		t.Fatal("expected invalid below caller threshold")
	}
	if result := gate.Validate(candidate, 3); !result.IsValid {
		t.Fatalf("expected valid with lower caller threshold, got %v", result.Issues)
	}
}

func TestValidateQualityFloorIsHard(t *testing.T) {
	gate := quality.NewGate()
	// Caller threshold of zero must not bypass the quality floor.
	result := gate.Validate(quality.Candidate{Text: "fine text", ImpactScore: 9, QualityScore: 4}, 0)
	if result.IsValid {
		t.Fatal("expected invalid below hard quality floor")
	}
	if !strings.Contains(result.Reason(), "quality score") {
		t.Fatalf("unexpected reason: %q", result.Reason())
	}
}

func TestValidateCollectsAllIssues(t *testing.T) {
	gate := quality.NewGate()
	result := gate.Validate(quality.Candidate{Text: "", ImpactScore: 0, QualityScore: 0}, 5)
	if len(result.Issues) != 3 {
		t.Fatalf("expected 3 issues, got %v", result.Issues)
	}
}
