package dedup

import (
	"quill/internal/articles"
	"quill/internal/textutil"
)

// Decision classifies a candidate against the posted and pending corpora.
type Decision string

const (
	New              Decision = "new"
	DuplicatePosted  Decision = "duplicate_posted"
	DuplicatePending Decision = "duplicate_pending"
)

// Scorer computes similarity between two texts in [0, 1]. It is pluggable so
// thresholds and algorithms can change without touching classification.
type Scorer interface {
	TitleSimilarity(a, b string) float64
	ContentSimilarity(a, b string) float64
}

// Options tunes the fuzzy secondary check. Exact hash/URL matching is always on.
type Options struct {
	FuzzyEnabled               bool
	TitleSimilarityThreshold   float64
	ContentSimilarityThreshold float64
}

// Detector classifies candidate items. Classification is pure: callers
// persist the outcome.
type Detector struct {
	opts   Options
	scorer Scorer
}

// NewDetector builds a detector with the default similarity scorer.
func NewDetector(opts Options) *Detector {
	return NewWithScorer(opts, defaultScorer{})
}

// NewWithScorer builds a detector with a custom similarity scorer.
func NewWithScorer(opts Options, scorer Scorer) *Detector {
	if scorer == nil {
		scorer = defaultScorer{}
	}
	return &Detector{opts: opts, scorer: scorer}
}

// Classify decides whether a candidate is new or duplicates an existing
// item. Exact checks run in order, first match wins: posted hash, posted
// URL, pending hash, pending URL. Deleted posted entries never count.
// An empty candidate hash means unknown identity; only URLs are compared.
func (d *Detector) Classify(candidate *articles.Item, posted, pending []*articles.Item) Decision {
	if candidate == nil {
		return New
	}

	for _, item := range posted {
		if item == nil || item.Status == articles.StatusDeleted {
			continue
		}
		if candidate.Hash != "" && candidate.Hash == item.Hash {
			return DuplicatePosted
		}
		if candidate.URL != "" && candidate.URL == item.URL {
			return DuplicatePosted
		}
	}

	for _, item := range pending {
		if item == nil {
			continue
		}
		if candidate.Hash != "" && candidate.Hash == item.Hash {
			return DuplicatePending
		}
		if candidate.URL != "" && candidate.URL == item.URL {
			return DuplicatePending
		}
	}

	if d.opts.FuzzyEnabled {
		if d.fuzzyMatch(candidate, posted) {
			return DuplicatePosted
		}
		if d.fuzzyMatch(candidate, pending) {
			return DuplicatePending
		}
	}

	return New
}

// fuzzyMatch prefers false positives over false negatives: under-posting is
// cheaper than double-posting.
func (d *Detector) fuzzyMatch(candidate *articles.Item, corpus []*articles.Item) bool {
	for _, item := range corpus {
		if item == nil || item.Status == articles.StatusDeleted {
			continue
		}
		if d.opts.TitleSimilarityThreshold > 0 && candidate.Title != "" && item.Title != "" {
			if d.scorer.TitleSimilarity(candidate.Title, item.Title) >= d.opts.TitleSimilarityThreshold {
				return true
			}
		}
		if d.opts.ContentSimilarityThreshold > 0 && candidate.Content != "" && item.Content != "" {
			if d.scorer.ContentSimilarity(candidate.Content, item.Content) >= d.opts.ContentSimilarityThreshold {
				return true
			}
		}
	}
	return false
}

// defaultScorer combines edit-distance ratio for titles with token-vector
// cosine similarity for content bodies.
type defaultScorer struct{}

func (defaultScorer) TitleSimilarity(a, b string) float64 {
	return textutil.LevenshteinRatio(a, b)
}

func (defaultScorer) ContentSimilarity(a, b string) float64 {
	return textutil.CosineSimilarity(textutil.NewFingerprint(a), textutil.NewFingerprint(b))
}
