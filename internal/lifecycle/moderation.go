package lifecycle

import (
	"context"
	"errors"
	"fmt"

	"quill/internal/articles"
	"quill/internal/dedup"
	"quill/internal/logging"
	"quill/internal/services"
	"quill/internal/services/poster"
	"quill/internal/store"
)

// Approve posts a pending item on operator request.
func (s *Service) Approve(ctx context.Context, id int64) (*articles.Item, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, store.ErrNotFound
	}
	if item.Status != articles.StatusPending {
		return nil, services.Wrap(services.ErrValidation, "approve", "status",
			fmt.Sprintf("item %d is %s, only pending items can be approved", id, item.Status), nil)
	}
	return s.Publish(ctx, item)
}

// Publish posts a pending or posting item. Duplicate status is re-checked
// against the posted corpus immediately before the external call: an item
// that was unique at discovery may have been posted through another path
// since. A rate-limited post leaves the item pending with the reason
// recorded and flips auto-posting off; auto mode keeps fetching.
func (s *Service) Publish(ctx context.Context, item *articles.Item) (*articles.Item, error) {
	if s.poster == nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "poster", "no poster configured", nil)
	}
	if item == nil {
		return nil, store.ErrNotFound
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "publish", "settings", "load automation settings", err)
	}
	posted, _, err := s.store.DedupCorpora(ctx)
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, "publish", "corpora", "load posted corpus", err)
	}
	if detectorFromSettings(settings).Classify(item, posted, nil) == dedup.DuplicatePosted {
		if item.Status == articles.StatusPosting {
			item.Status = articles.StatusPending
			if uerr := s.store.Update(ctx, item); uerr != nil {
				return nil, uerr
			}
		}
		deleted, derr := s.store.MarkDeleted(ctx, item.ID, "duplicate of already posted content")
		if derr != nil {
			return nil, derr
		}
		s.logger.Info("publish withdrawn, duplicate detected at post time",
			logging.Int64("item_id", item.ID),
			logging.String("title", deleted.Title),
		)
		return nil, services.Wrap(services.ErrDuplicate, "publish", "dedup", "content already posted", nil)
	}

	result, err := s.poster.Post(ctx, item.TweetText)
	if err != nil {
		return nil, s.handlePostFailure(ctx, item, err)
	}

	postedItem, err := s.store.MarkPosted(ctx, item.ID, result.TweetID, result.PostedURL)
	if err != nil {
		// The external post succeeded but the record could not be
		// finalized. This needs operator attention either way.
		s.logger.Error("post succeeded but item could not be marked posted",
			logging.Error(err),
			logging.Int64("item_id", item.ID),
			logging.String("tweet_id", result.TweetID),
		)
		return nil, err
	}
	if nerr := s.notifier.NotifyTweetPosted(ctx, postedItem.Title, postedItem.PostedURL); nerr != nil {
		s.logger.Warn("posted notification failed", logging.Error(nerr))
	}
	return postedItem, nil
}

func (s *Service) handlePostFailure(ctx context.Context, item *articles.Item, postErr error) error {
	var rateLimited *poster.RateLimitError
	if errors.As(postErr, &rateLimited) {
		item.Status = articles.StatusPending
		item.ErrorReason = postErr.Error()
		if uerr := s.store.Update(ctx, item); uerr != nil {
			s.logger.Error("failed to record rate limit on item", logging.Error(uerr), logging.Int64("item_id", item.ID))
		}
		if derr := s.store.DisableAutoPost(ctx); derr != nil {
			s.logger.Error("failed to disable auto posting", logging.Error(derr))
		}
		if nerr := s.notifier.NotifyRateLimited(ctx, rateLimited.WaitMinutes()); nerr != nil {
			s.logger.Warn("rate limit notification failed", logging.Error(nerr))
		}
		s.logger.Warn("post rate limited, auto posting disabled",
			logging.Int64("item_id", item.ID),
			logging.Int("wait_minutes", rateLimited.WaitMinutes()),
		)
		return postErr
	}

	item.ErrorReason = postErr.Error()
	if uerr := s.store.Update(ctx, item); uerr != nil {
		s.logger.Error("failed to record post failure on item", logging.Error(uerr), logging.Int64("item_id", item.ID))
	}
	return services.Wrap(services.ErrExternalService, "approve", "post", "post tweet", postErr)
}

// Reject moves a discovered or failed item to rejected with a reason.
func (s *Service) Reject(ctx context.Context, id int64, reason string) (*articles.Item, error) {
	item, err := s.store.MarkRejected(ctx, id, reason)
	if err != nil {
		return nil, err
	}
	if nerr := s.notifier.NotifyTweetRejected(ctx, item.Title, reason); nerr != nil {
		s.logger.Warn("rejection notification failed", logging.Error(nerr))
	}
	return item, nil
}

// Delete moves a pending or rejected item to the deleted terminal state.
// The row stays behind so the content keeps counting as seen for duplicate
// detection.
func (s *Service) Delete(ctx context.Context, id int64, reason string) (*articles.Item, error) {
	return s.store.MarkDeleted(ctx, id, reason)
}

// Archive moves a rejected item to the archived terminal state.
func (s *Service) Archive(ctx context.Context, id int64) (*articles.Item, error) {
	return s.store.Archive(ctx, id)
}

// RetryRejected returns a rejected item to discovered so the generator
// produces a fresh candidate. Rejection state is cleared and the retry
// count incremented; the old tweet text is dropped.
func (s *Service) RetryRejected(ctx context.Context, id int64) (*articles.Item, error) {
	item, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, store.ErrNotFound
	}
	if item.Status != articles.StatusRejected {
		return nil, store.ErrIllegalTransition
	}

	item.Status = articles.StatusDiscovered
	item.TweetText = ""
	item.ImpactScore = 0
	item.QualityScore = 0
	item.RejectionReason = ""
	item.ErrorReason = ""
	item.RejectedAt = nil
	item.RetryCount++
	if err := s.store.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Outcome records the per-item result of a bulk operation.
type Outcome struct {
	ID   int64
	Item *articles.Item
	Err  error
}

// ApproveAll approves each id independently. A failure is recorded in that
// id's outcome and never stops or rolls back the rest of the batch.
func (s *Service) ApproveAll(ctx context.Context, ids []int64) []Outcome {
	outcomes := make([]Outcome, 0, len(ids))
	for _, id := range ids {
		item, err := s.Approve(ctx, id)
		outcomes = append(outcomes, Outcome{ID: id, Item: item, Err: err})
	}
	return outcomes
}

// RejectAll rejects each id independently with a shared reason.
func (s *Service) RejectAll(ctx context.Context, ids []int64, reason string) []Outcome {
	outcomes := make([]Outcome, 0, len(ids))
	for _, id := range ids {
		item, err := s.Reject(ctx, id, reason)
		outcomes = append(outcomes, Outcome{ID: id, Item: item, Err: err})
	}
	return outcomes
}
