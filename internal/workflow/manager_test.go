package workflow_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quill/internal/articles"
	"quill/internal/config"
	"quill/internal/lifecycle"
	"quill/internal/logging"
	"quill/internal/services"
	"quill/internal/services/generator"
	"quill/internal/services/poster"
	"quill/internal/stage"
	"quill/internal/store"
	"quill/internal/testsupport"
	"quill/internal/workflow"
)

type stubStage struct {
	name        string
	prepareErr  error
	executeErr  error
	executeHook func(*articles.Item)
	health      stage.Health
}

func newStubStage(name string) *stubStage {
	return &stubStage{name: name, health: stage.Healthy(name)}
}

func (s *stubStage) Prepare(_ context.Context, _ *articles.Item) error {
	return s.prepareErr
}

func (s *stubStage) Execute(_ context.Context, item *articles.Item) error {
	if s.executeHook != nil {
		s.executeHook(item)
	}
	return s.executeErr
}

func (s *stubStage) HealthCheck(context.Context) stage.Health {
	return s.health
}

type stubGenerator struct {
	candidate generator.Candidate
	err       error
}

func (s *stubGenerator) Generate(context.Context, *articles.Item) (generator.Candidate, error) {
	if s.err != nil {
		return generator.Candidate{}, s.err
	}
	return s.candidate, nil
}

func (s *stubGenerator) HealthCheck(context.Context) error { return nil }

type stubPoster struct {
	err    error
	result poster.Result
}

func (s *stubPoster) Post(context.Context, string) (poster.Result, error) {
	if s.err != nil {
		return poster.Result{}, s.err
	}
	return s.result, nil
}

func (s *stubPoster) HealthCheck(context.Context) error { return nil }

type stubFetcher struct {
	name  string
	items []*articles.Item
	err   error
	calls int
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch(context.Context) ([]*articles.Item, error) {
	s.calls++
	return s.items, s.err
}

func testConfig(t *testing.T, autoPost bool) *config.Config {
	t.Helper()
	cfg := testsupport.NewConfig(t, testsupport.WithAutoPost(autoPost))
	cfg.Automation.ManualApprovalRequired = !autoPost
	cfg.Workflow.QueuePollInterval = 0
	cfg.Workflow.FetchInterval = 3600
	return cfg
}

func waitForStatus(t *testing.T, st *store.Store, id int64, want articles.Status) *articles.Item {
	t.Helper()
	deadline := time.After(30 * time.Second)
	for {
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for status %q", want)
		default:
		}
		item, err := st.GetByID(context.Background(), id)
		if err != nil {
			t.Fatalf("GetByID: %v", err)
		}
		if item != nil && item.Status == want {
			return item
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func startManager(t *testing.T, mgr *workflow.Manager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	if err := mgr.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(mgr.Stop)
}

func TestManagerProcessesDiscoveredThroughPosted(t *testing.T) {
	cfg := testConfig(t, true)
	st := testsupport.MustOpenStore(t, cfg)

	post := &stubPoster{result: poster.Result{TweetID: "88", PostedURL: "https://x.com/i/status/88"}}
	moderate := lifecycle.New(st, post, nil, nil, nil)
	gen := &stubGenerator{candidate: generator.Candidate{Tweet: "Go 1.25 lands with a greener GC.", ImpactScore: 8, QualityScore: 9}}

	mgr := workflow.NewManager(cfg, st, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{
		Generate: workflow.NewGenerateStage(gen, moderate, st, logging.NewNop()),
		Publish:  workflow.NewPublishStage(post, moderate, logging.NewNop()),
	})
	startManager(t, mgr)

	item := testsupport.NewArticle(t, st, "Go 1.25 released", "https://example.com/go125")
	posted := waitForStatus(t, st, item.ID, articles.StatusPosted)
	if posted.PostedTweetID != "88" {
		t.Fatalf("PostedTweetID = %q, want 88", posted.PostedTweetID)
	}
	if posted.TweetText == "" {
		t.Fatal("expected generated tweet text persisted")
	}
}

func TestManagerHoldsPendingWhenApprovalRequired(t *testing.T) {
	cfg := testConfig(t, false)
	st := testsupport.MustOpenStore(t, cfg)

	moderate := lifecycle.New(st, nil, nil, nil, nil)
	gen := &stubGenerator{candidate: generator.Candidate{Tweet: "Kernel 7.0 ships.", ImpactScore: 9, QualityScore: 9}}

	mgr := workflow.NewManager(cfg, st, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{
		Generate: workflow.NewGenerateStage(gen, moderate, st, logging.NewNop()),
		Publish:  workflow.NewPublishStage(&stubPoster{}, moderate, logging.NewNop()),
	})
	startManager(t, mgr)

	item := testsupport.NewArticle(t, st, "Linux 7.0 released", "https://example.com/kernel7")
	waitForStatus(t, st, item.ID, articles.StatusPending)

	time.Sleep(150 * time.Millisecond)
	held, err := st.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if held.Status != articles.StatusPending {
		t.Fatalf("status = %q, pending items must wait for approval", held.Status)
	}
}

func TestManagerRejectsWhenGenerationFails(t *testing.T) {
	cfg := testConfig(t, false)
	st := testsupport.MustOpenStore(t, cfg)

	moderate := lifecycle.New(st, nil, nil, nil, nil)
	gen := &stubGenerator{err: errors.New("model unavailable")}

	mgr := workflow.NewManager(cfg, st, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{
		Generate: workflow.NewGenerateStage(gen, moderate, st, logging.NewNop()),
	})
	startManager(t, mgr)

	item := testsupport.NewArticle(t, st, "Obscure library update", "https://example.com/lib")
	rejected := waitForStatus(t, st, item.ID, articles.StatusRejected)
	if rejected.RejectionReason != "no candidate produced" {
		t.Fatalf("RejectionReason = %q", rejected.RejectionReason)
	}
}

func TestManagerRateLimitLeavesItemPending(t *testing.T) {
	cfg := testConfig(t, true)
	st := testsupport.MustOpenStore(t, cfg)

	post := &stubPoster{err: &poster.RateLimitError{Wait: 5 * time.Minute}}
	moderate := lifecycle.New(st, post, nil, nil, nil)
	gen := &stubGenerator{candidate: generator.Candidate{Tweet: "Big outage writeup.", ImpactScore: 9, QualityScore: 9}}

	mgr := workflow.NewManager(cfg, st, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{
		Generate: workflow.NewGenerateStage(gen, moderate, st, logging.NewNop()),
		Publish:  workflow.NewPublishStage(post, moderate, logging.NewNop()),
	})
	startManager(t, mgr)

	item := testsupport.NewArticle(t, st, "Cloud outage report", "https://example.com/outage")
	pending := waitForStatus(t, st, item.ID, articles.StatusPending)

	// The rate limit flips auto posting off, so the item settles in pending.
	deadline := time.After(10 * time.Second)
	for {
		settings, err := st.GetSettings(context.Background())
		if err != nil {
			t.Fatalf("GetSettings: %v", err)
		}
		if !settings.AutoPostEnabled {
			if !settings.AutoMode {
				t.Fatal("auto mode must survive a rate limit")
			}
			break
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for auto post to be disabled")
		default:
			time.Sleep(10 * time.Millisecond)
		}
	}

	pending = waitForStatus(t, st, item.ID, articles.StatusPending)
	if pending.ErrorReason == "" {
		t.Fatal("expected the rate limit recorded on the item")
	}
}

func TestManagerStageFailureRoutesToFailed(t *testing.T) {
	cfg := testConfig(t, false)
	st := testsupport.MustOpenStore(t, cfg)

	boom := newStubStage("generate")
	boom.executeErr = services.Wrap(services.ErrExternalService, "generate", "execute", "upstream exploded", nil)

	mgr := workflow.NewManager(cfg, st, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{Generate: boom})
	startManager(t, mgr)

	item := testsupport.NewArticle(t, st, "Doomed item", "https://example.com/doomed")
	failed := waitForStatus(t, st, item.ID, articles.StatusFailed)
	if failed.ErrorReason == "" {
		t.Fatal("expected error reason on failed item")
	}
}

func TestManagerStatusIncludesStageHealth(t *testing.T) {
	cfg := testConfig(t, false)
	st := testsupport.MustOpenStore(t, cfg)

	healthy := newStubStage("generate")
	sick := newStubStage("publish")
	sick.health = stage.Unhealthy("publish", "endpoint unreachable")

	mgr := workflow.NewManager(cfg, st, logging.NewNop())
	mgr.ConfigureStages(workflow.StageSet{Generate: healthy, Publish: sick})

	summary := mgr.Status(context.Background())
	if summary.Running {
		t.Fatal("manager not started, Running should be false")
	}
	if h, ok := summary.StageHealth["publish"]; !ok || h.Ready {
		t.Fatalf("publish health = %+v, want unhealthy", h)
	}
	if h, ok := summary.StageHealth["generate"]; !ok || !h.Ready {
		t.Fatalf("generate health = %+v, want healthy", h)
	}
}

func TestRunFetchOnceDiscoversAndRespectsAutoMode(t *testing.T) {
	cfg := testConfig(t, false)
	st := testsupport.MustOpenStore(t, cfg)

	fetcher := &stubFetcher{name: "newsfeed", items: []*articles.Item{
		{Title: "Fresh headline about databases", URL: "https://example.com/db"},
	}}

	mgr := workflow.NewManager(cfg, st, logging.NewNop())
	mgr.ConfigureFetchers(fetcher)

	mgr.RunFetchOnce(context.Background())
	items, err := st.List(context.Background(), articles.StatusDiscovered)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("discovered = %d, want 1", len(items))
	}

	settings, err := st.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	settings.AutoMode = false
	if err := st.SaveSettings(context.Background(), settings); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	before := fetcher.calls
	mgr.RunFetchOnce(context.Background())
	if fetcher.calls != before {
		t.Fatal("fetcher must not run while auto mode is off")
	}
}
