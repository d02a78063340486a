package articles_test

import (
	"testing"

	"quill/internal/articles"
)

func TestHashDeterministic(t *testing.T) {
	a := articles.Hash("GPT-5 launches")
	b := articles.Hash("GPT-5 launches")
	if a == "" || a != b {
		t.Fatalf("expected stable non-empty hash, got %q and %q", a, b)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
}

func TestHashEmptyTitle(t *testing.T) {
	if got := articles.Hash(""); got != "" {
		t.Fatalf("expected empty hash for empty title, got %q", got)
	}
}

func TestHashDiffersByTitle(t *testing.T) {
	if articles.Hash("a") == articles.Hash("b") {
		t.Fatal("expected different hashes for different titles")
	}
}

func TestParseStatus(t *testing.T) {
	status, ok := articles.ParseStatus("  Pending ")
	if !ok || status != articles.StatusPending {
		t.Fatalf("unexpected parse result: %q %v", status, ok)
	}
	if _, ok := articles.ParseStatus("bogus"); ok {
		t.Fatal("expected unknown status to fail")
	}
	if _, ok := articles.ParseStatus(""); ok {
		t.Fatal("expected empty status to fail")
	}
}

func TestTransitionContract(t *testing.T) {
	allowed := []struct{ from, to articles.Status }{
		{articles.StatusDiscovered, articles.StatusRejected},
		{articles.StatusDiscovered, articles.StatusPending},
		{articles.StatusPending, articles.StatusPosted},
		{articles.StatusPending, articles.StatusDeleted},
		{articles.StatusRejected, articles.StatusDiscovered},
		{articles.StatusRejected, articles.StatusArchived},
		{articles.StatusRejected, articles.StatusDeleted},
	}
	for _, tc := range allowed {
		if !articles.CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be legal", tc.from, tc.to)
		}
	}

	forbidden := []struct{ from, to articles.Status }{
		{articles.StatusPosted, articles.StatusPending},
		{articles.StatusPosted, articles.StatusDiscovered},
		{articles.StatusDeleted, articles.StatusPending},
		{articles.StatusArchived, articles.StatusDiscovered},
	}
	for _, tc := range forbidden {
		if articles.CanTransition(tc.from, tc.to) {
			t.Fatalf("expected %s -> %s to be illegal", tc.from, tc.to)
		}
	}

	for _, status := range []articles.Status{articles.StatusPosted, articles.StatusDeleted, articles.StatusArchived} {
		if !articles.IsTerminal(status) {
			t.Fatalf("expected %s to be terminal", status)
		}
	}
	if articles.IsTerminal(articles.StatusPending) {
		t.Fatal("pending must not be terminal")
	}
}
