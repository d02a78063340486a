package dedup_test

import (
	"testing"

	"quill/internal/articles"
	"quill/internal/dedup"
)

func item(title, url string, status articles.Status) *articles.Item {
	return &articles.Item{
		Title:  title,
		URL:    url,
		Hash:   articles.Hash(title),
		Status: status,
	}
}

func TestClassifyEmptyCorpora(t *testing.T) {
	d := dedup.NewDetector(dedup.Options{})
	candidate := &articles.Item{Title: "GPT-5 launches", URL: "https://x.com/a"}
	if got := d.Classify(candidate, nil, nil); got != dedup.New {
		t.Fatalf("expected New, got %s", got)
	}
}

func TestClassifyHashMatchBeatsURL(t *testing.T) {
	d := dedup.NewDetector(dedup.Options{})
	posted := []*articles.Item{item("GPT-5 launches", "https://x.com/a", articles.StatusPosted)}
	// Same title, different URL: hash identity wins regardless of URL.
	candidate := item("GPT-5 launches", "https://mirror.example/b", articles.StatusDiscovered)
	if got := d.Classify(candidate, posted, nil); got != dedup.DuplicatePosted {
		t.Fatalf("expected DuplicatePosted, got %s", got)
	}
}

func TestClassifyURLFallbackForEmptyHash(t *testing.T) {
	d := dedup.NewDetector(dedup.Options{})
	posted := []*articles.Item{item("Original title", "https://x.com/a", articles.StatusPosted)}
	candidate := &articles.Item{URL: "https://x.com/a"}
	if got := d.Classify(candidate, posted, nil); got != dedup.DuplicatePosted {
		t.Fatalf("expected DuplicatePosted via URL, got %s", got)
	}

	unrelated := &articles.Item{URL: "https://x.com/other"}
	if got := d.Classify(unrelated, posted, nil); got != dedup.New {
		t.Fatalf("expected New for unknown identity with different URL, got %s", got)
	}
}

func TestClassifyPostedChecksPrecedePending(t *testing.T) {
	d := dedup.NewDetector(dedup.Options{})
	posted := []*articles.Item{item("Shared title", "https://x.com/posted", articles.StatusPosted)}
	pending := []*articles.Item{item("Shared title", "https://x.com/pending", articles.StatusPending)}
	candidate := item("Shared title", "", articles.StatusDiscovered)
	if got := d.Classify(candidate, posted, pending); got != dedup.DuplicatePosted {
		t.Fatalf("expected DuplicatePosted to win, got %s", got)
	}
}

func TestClassifyPendingDuplicate(t *testing.T) {
	d := dedup.NewDetector(dedup.Options{})
	pending := []*articles.Item{item("Queued story", "https://x.com/q", articles.StatusPending)}
	candidate := item("Queued story", "", articles.StatusDiscovered)
	if got := d.Classify(candidate, nil, pending); got != dedup.DuplicatePending {
		t.Fatalf("expected DuplicatePending, got %s", got)
	}
}

func TestClassifyIgnoresDeletedPosted(t *testing.T) {
	d := dedup.NewDetector(dedup.Options{})
	posted := []*articles.Item{item("Removed story", "https://x.com/r", articles.StatusDeleted)}
	candidate := item("Removed story", "https://x.com/r", articles.StatusDiscovered)
	if got := d.Classify(candidate, posted, nil); got != dedup.New {
		t.Fatalf("expected New when only a deleted entry matches, got %s", got)
	}
}

func TestClassifyFuzzyTitleMatch(t *testing.T) {
	d := dedup.NewDetector(dedup.Options{
		FuzzyEnabled:             true,
		TitleSimilarityThreshold: 0.85,
	})
	posted := []*articles.Item{item("OpenAI launches GPT-5 model today", "https://x.com/a", articles.StatusPosted)}
	candidate := item("OpenAI launches GPT-5 models today", "https://other.example/b", articles.StatusDiscovered)
	if got := d.Classify(candidate, posted, nil); got != dedup.DuplicatePosted {
		t.Fatalf("expected fuzzy DuplicatePosted, got %s", got)
	}
}

func TestClassifyFuzzyDisabledByDefault(t *testing.T) {
	d := dedup.NewDetector(dedup.Options{})
	posted := []*articles.Item{item("OpenAI launches GPT-5 model today", "https://x.com/a", articles.StatusPosted)}
	candidate := item("OpenAI launches GPT-5 models today", "https://other.example/b", articles.StatusDiscovered)
	if got := d.Classify(candidate, posted, nil); got != dedup.New {
		t.Fatalf("expected New with fuzzy disabled, got %s", got)
	}
}

type alwaysMatch struct{}

func (alwaysMatch) TitleSimilarity(a, b string) float64   { return 1 }
func (alwaysMatch) ContentSimilarity(a, b string) float64 { return 1 }

func TestClassifyCustomScorer(t *testing.T) {
	d := dedup.NewWithScorer(dedup.Options{
		FuzzyEnabled:             true,
		TitleSimilarityThreshold: 0.99,
	}, alwaysMatch{})
	pending := []*articles.Item{item("completely different", "https://x.com/p", articles.StatusPending)}
	candidate := item("nothing alike", "", articles.StatusDiscovered)
	if got := d.Classify(candidate, nil, pending); got != dedup.DuplicatePending {
		t.Fatalf("expected DuplicatePending from custom scorer, got %s", got)
	}
}
