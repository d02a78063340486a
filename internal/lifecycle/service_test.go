package lifecycle_test

import (
	"context"
	"testing"

	"quill/internal/articles"
	"quill/internal/lifecycle"
	"quill/internal/testsupport"
)

func TestDiscoverAddsNewAndSkipsDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := lifecycle.New(st, nil, nil, nil, nil)

	testsupport.NewArticle(t, st, "Go 1.24 released with faster maps", "https://example.com/go124")

	summary, err := svc.Discover(context.Background(), []*articles.Item{
		{Title: "Go 1.24 released with faster maps", URL: "https://example.com/go124"},
		{Title: "Kubernetes drops dockershim for good", URL: "https://example.com/k8s"},
		{Title: "Kubernetes drops dockershim for good", URL: "https://example.com/k8s-mirror"},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if summary.Added != 1 {
		t.Fatalf("Added = %d, want 1", summary.Added)
	}
	if summary.DuplicatePending != 2 {
		t.Fatalf("DuplicatePending = %d, want 2", summary.DuplicatePending)
	}

	items, err := st.List(context.Background(), articles.StatusDiscovered)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("discovered count = %d, want 2", len(items))
	}
}

func TestDiscoverClassifiesAgainstPostedCorpus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := lifecycle.New(st, nil, nil, nil, nil)

	item := testsupport.NewArticle(t, st, "Rust ships a new borrow checker", "https://example.com/rust")
	item.Status = articles.StatusPending
	item.TweetText = "Rust just rebuilt its borrow checker."
	if err := st.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if _, err := st.MarkPosted(context.Background(), item.ID, "100", "https://x.com/i/status/100"); err != nil {
		t.Fatalf("MarkPosted: %v", err)
	}

	summary, err := svc.Discover(context.Background(), []*articles.Item{
		{Title: "Rust ships a new borrow checker", URL: "https://example.com/rust-syndicated"},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if summary.DuplicatePosted != 1 || summary.Added != 0 {
		t.Fatalf("summary = %+v, want one posted duplicate", summary)
	}
}

func TestDiscoverCapsArticlesPerRun(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Automation.MaxArticlesPerRun = 2
	st := testsupport.MustOpenStore(t, cfg)
	svc := lifecycle.New(st, nil, nil, nil, nil)

	summary, err := svc.Discover(context.Background(), []*articles.Item{
		{Title: "PostgreSQL 18 beta lands", URL: "https://example.com/pg"},
		{Title: "Linux kernel adopts new scheduler", URL: "https://example.com/kernel"},
		{Title: "WebAssembly components hit stable", URL: "https://example.com/wasm"},
	})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if summary.Added != 2 {
		t.Fatalf("Added = %d, want 2", summary.Added)
	}
	if summary.Skipped != 1 {
		t.Fatalf("Skipped = %d, want 1", summary.Skipped)
	}
}

func TestEnqueueRoutesByQualityGate(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := lifecycle.New(st, nil, nil, nil, nil)

	good := testsupport.NewArticle(t, st, "Zig reaches 1.0", "https://example.com/zig")
	outcome, item, err := svc.Enqueue(context.Background(), good, "Zig 1.0 is out after a decade of work.", 8, 8)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if outcome != lifecycle.EnqueuedPending {
		t.Fatalf("outcome = %q, want pending", outcome)
	}
	if item.Status != articles.StatusPending {
		t.Fatalf("status = %q, want pending", item.Status)
	}

	bad := testsupport.NewArticle(t, st, "Minor docs typo fixed upstream", "https://example.com/typo")
	outcome, item, err = svc.Enqueue(context.Background(), bad, "A typo was fixed.", 8, 2)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if outcome != lifecycle.EnqueuedRejected {
		t.Fatalf("outcome = %q, want rejected", outcome)
	}
	if item.Status != articles.StatusRejected {
		t.Fatalf("status = %q, want rejected", item.Status)
	}
	if item.RejectionReason == "" {
		t.Fatal("expected a rejection reason")
	}
}

func TestEnqueueRejectsBelowImpactThreshold(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Automation.MinScoreThreshold = 7
	st := testsupport.MustOpenStore(t, cfg)
	svc := lifecycle.New(st, nil, nil, nil, nil)

	item := testsupport.NewArticle(t, st, "Redis forks again", "https://example.com/redis")
	outcome, rejected, err := svc.Enqueue(context.Background(), item, "Redis has forked once more.", 6, 9)
	if err != nil {
		t.Fatalf("Enqueue: %v", err)
	}
	if outcome != lifecycle.EnqueuedRejected {
		t.Fatalf("outcome = %q, want rejected", outcome)
	}
	if rejected.ImpactScore != 6 || rejected.QualityScore != 9 {
		t.Fatalf("scores not persisted: %+v", rejected)
	}
}
