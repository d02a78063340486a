package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"quill/internal/articles"
	"quill/internal/lifecycle"
	"quill/internal/services"
	"quill/internal/services/poster"
	"quill/internal/store"
	"quill/internal/testsupport"
)

var _ poster.Poster = (*fakePoster)(nil)

type fakePoster struct {
	err    error
	result poster.Result
	posts  []string
}

func (f *fakePoster) Post(ctx context.Context, text string) (poster.Result, error) {
	f.posts = append(f.posts, text)
	if f.err != nil {
		return poster.Result{}, f.err
	}
	return f.result, nil
}

func (f *fakePoster) HealthCheck(context.Context) error { return nil }

func newPendingArticle(t *testing.T, st *store.Store, title, url, tweet string) *articles.Item {
	t.Helper()
	item := testsupport.NewArticle(t, st, title, url)
	item.Status = articles.StatusPending
	item.TweetText = tweet
	item.ImpactScore = 8
	item.QualityScore = 8
	if err := st.Update(context.Background(), item); err != nil {
		t.Fatalf("Update: %v", err)
	}
	return item
}

func TestApprovePostsPendingItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	fake := &fakePoster{result: poster.Result{TweetID: "42", PostedURL: "https://x.com/i/status/42"}}
	svc := lifecycle.New(st, fake, nil, nil, nil)

	item := newPendingArticle(t, st, "Go adds green threads", "https://example.com/threads", "Go experiments with green threads.")

	posted, err := svc.Approve(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if posted.Status != articles.StatusPosted {
		t.Fatalf("status = %q, want posted", posted.Status)
	}
	if posted.PostedTweetID != "42" {
		t.Fatalf("PostedTweetID = %q, want 42", posted.PostedTweetID)
	}
	if len(fake.posts) != 1 || fake.posts[0] != item.TweetText {
		t.Fatalf("posted text = %v, want the pending tweet", fake.posts)
	}
}

func TestApproveRejectsNonPendingItem(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	fake := &fakePoster{}
	svc := lifecycle.New(st, fake, nil, nil, nil)

	item := testsupport.NewArticle(t, st, "Discovered only", "https://example.com/raw")
	if _, err := svc.Approve(context.Background(), item.ID); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("Approve on discovered item err = %v, want validation error", err)
	}
	if len(fake.posts) != 0 {
		t.Fatal("poster must not be called for non-pending items")
	}
}

func TestApproveDetectsDuplicateAtPostTime(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	fake := &fakePoster{}
	svc := lifecycle.New(st, fake, nil, nil, nil)

	first := newPendingArticle(t, st, "CVE in popular build tool", "https://example.com/cve", "Patch your build tool.")
	if _, err := st.MarkPosted(context.Background(), first.ID, "7", "https://x.com/i/status/7"); err != nil {
		t.Fatalf("MarkPosted: %v", err)
	}

	second := newPendingArticle(t, st, "CVE in popular build tool", "https://example.com/cve-copy", "Patch your build tool.")

	_, err := svc.Approve(context.Background(), second.ID)
	if !errors.Is(err, services.ErrDuplicate) {
		t.Fatalf("Approve err = %v, want duplicate error", err)
	}
	if len(fake.posts) != 0 {
		t.Fatal("poster must not run when the duplicate re-check fires")
	}

	reloaded, err := st.GetByID(context.Background(), second.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != articles.StatusDeleted {
		t.Fatalf("status = %q, want deleted", reloaded.Status)
	}
}

func TestApproveRateLimitDisablesAutoPostOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithAutoPost(true))
	st := testsupport.MustOpenStore(t, cfg)
	fake := &fakePoster{err: &poster.RateLimitError{Wait: 10 * time.Minute}}
	svc := lifecycle.New(st, fake, nil, nil, nil)

	item := newPendingArticle(t, st, "Big cloud outage postmortem", "https://example.com/outage", "The postmortem is out.")

	_, err := svc.Approve(context.Background(), item.ID)
	if !errors.Is(err, services.ErrRateLimited) {
		t.Fatalf("Approve err = %v, want rate limited", err)
	}

	reloaded, err := st.GetByID(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if reloaded.Status != articles.StatusPending {
		t.Fatalf("status = %q, rate limited items stay pending", reloaded.Status)
	}
	if reloaded.ErrorReason == "" {
		t.Fatal("expected the rate limit recorded on the item")
	}

	settings, err := st.GetSettings(context.Background())
	if err != nil {
		t.Fatalf("GetSettings: %v", err)
	}
	if settings.AutoPostEnabled {
		t.Fatal("auto posting should be disabled after a rate limit")
	}
	if !settings.AutoMode {
		t.Fatal("auto mode must stay on so fetching continues")
	}
}

func TestRetryRejectedReturnsToDiscovered(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	svc := lifecycle.New(st, nil, nil, nil, nil)

	item := testsupport.NewArticle(t, st, "Vector databases reconsidered", "https://example.com/vectors")
	if _, err := svc.Reject(context.Background(), item.ID, "low impact"); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	retried, err := svc.RetryRejected(context.Background(), item.ID)
	if err != nil {
		t.Fatalf("RetryRejected: %v", err)
	}
	if retried.Status != articles.StatusDiscovered {
		t.Fatalf("status = %q, want discovered", retried.Status)
	}
	if retried.RetryCount != 1 {
		t.Fatalf("RetryCount = %d, want 1", retried.RetryCount)
	}
	if retried.RejectionReason != "" || retried.RejectedAt != nil {
		t.Fatalf("rejection state not cleared: %+v", retried)
	}

	if _, err := svc.RetryRejected(context.Background(), item.ID); !errors.Is(err, store.ErrIllegalTransition) {
		t.Fatalf("second retry err = %v, want illegal transition", err)
	}
}

func TestApproveAllRecordsIndependentOutcomes(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	fake := &fakePoster{result: poster.Result{TweetID: "9", PostedURL: "https://x.com/i/status/9"}}
	svc := lifecycle.New(st, fake, nil, nil, nil)

	good := newPendingArticle(t, st, "Distributed tracing in practice", "https://example.com/tracing", "Tracing tips worth reading.")
	stuck := testsupport.NewArticle(t, st, "Still discovered", "https://example.com/stuck")

	outcomes := svc.ApproveAll(context.Background(), []int64{good.ID, stuck.ID})
	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outcomes))
	}
	if outcomes[0].Err != nil {
		t.Fatalf("first outcome err = %v, want nil", outcomes[0].Err)
	}
	if outcomes[0].Item == nil || outcomes[0].Item.Status != articles.StatusPosted {
		t.Fatalf("first outcome item = %+v, want posted", outcomes[0].Item)
	}
	if outcomes[1].Err == nil {
		t.Fatal("second outcome should fail, item is not pending")
	}
}
