package quality

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// PlatformLengthLimit is the maximum composed tweet length the platform accepts.
const PlatformLengthLimit = 280

// MinQualityScore is the hard floor for generated text quality, independent
// of the caller-supplied impact threshold.
const MinQualityScore = 5

// Candidate is the generated tweet under validation.
type Candidate struct {
	Text         string
	Hashtags     string
	URLSuffix    string
	ImpactScore  int
	QualityScore int
}

// Result reports validation outcome. Issues lists every failed check in
// evaluation order; the first one becomes the rejection reason.
type Result struct {
	IsValid bool
	Issues  []string
}

// Reason returns the first failing issue, or an empty string when valid.
func (r Result) Reason() string {
	if len(r.Issues) == 0 {
		return ""
	}
	return r.Issues[0]
}

// Validator is the pluggable interface the lifecycle consults before any
// pending or posted transition.
type Validator interface {
	Validate(candidate Candidate, minScore int) Result
}

// Gate applies the structural tweet checks.
type Gate struct{}

// NewGate returns the default validator.
func NewGate() Gate {
	return Gate{}
}

// Validate runs all structural checks. Every check must pass for the
// candidate to be valid.
func (Gate) Validate(candidate Candidate, minScore int) Result {
	var issues []string

	trimmed := strings.TrimSpace(candidate.Text)
	if trimmed == "" {
		issues = append(issues, "tweet text is empty")
	}

	if composed := composedLength(candidate); composed > PlatformLengthLimit {
		issues = append(issues, fmt.Sprintf("tweet length %d exceeds %d character limit", composed, PlatformLengthLimit))
	}

	if candidate.ImpactScore < minScore {
		issues = append(issues, fmt.Sprintf("impact score %d below threshold %d", candidate.ImpactScore, minScore))
	}

	if candidate.QualityScore < MinQualityScore {
		issues = append(issues, fmt.Sprintf("quality score %d below minimum %d", candidate.QualityScore, MinQualityScore))
	}

	return Result{IsValid: len(issues) == 0, Issues: issues}
}

// composedLength counts the tweet as posted: body plus hashtags plus URL
// suffix, space-separated when present.
func composedLength(candidate Candidate) int {
	parts := []string{strings.TrimSpace(candidate.Text)}
	if tags := strings.TrimSpace(candidate.Hashtags); tags != "" {
		parts = append(parts, tags)
	}
	if suffix := strings.TrimSpace(candidate.URLSuffix); suffix != "" {
		parts = append(parts, suffix)
	}
	return utf8.RuneCountInString(strings.Join(parts, " "))
}
