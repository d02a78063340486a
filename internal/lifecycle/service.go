package lifecycle

import (
	"context"
	"log/slog"
	"strings"

	"quill/internal/articles"
	"quill/internal/dedup"
	"quill/internal/logging"
	"quill/internal/notifications"
	"quill/internal/quality"
	"quill/internal/services"
	"quill/internal/services/poster"
	"quill/internal/store"
)

// Service coordinates lifecycle operations against the store.
type Service struct {
	store    *store.Store
	poster   poster.Poster
	gate     quality.Validator
	notifier notifications.Service
	logger   *slog.Logger
}

// New constructs a lifecycle service. The poster may be nil for deployments
// that only moderate; Approve then fails with a configuration error.
func New(st *store.Store, p poster.Poster, gate quality.Validator, notifier notifications.Service, logger *slog.Logger) *Service {
	if gate == nil {
		gate = quality.NewGate()
	}
	if notifier == nil {
		notifier = notifications.NewService(nil)
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Service{store: st, poster: p, gate: gate, notifier: notifier, logger: logger}
}

// DiscoverSummary reports the outcome of a discovery batch.
type DiscoverSummary struct {
	Added            int
	DuplicatePosted  int
	DuplicatePending int
	Skipped          int
}

// Discover classifies fetched candidates against the posted and in-flight
// corpora and persists the new ones as discovered. At most
// MaxArticlesPerRun items are added per call; the rest are skipped and will
// reappear on the next fetch cycle.
func (s *Service) Discover(ctx context.Context, candidates []*articles.Item) (DiscoverSummary, error) {
	var summary DiscoverSummary

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return summary, services.Wrap(services.ErrConfiguration, "discover", "settings", "load automation settings", err)
	}
	posted, pending, err := s.store.DedupCorpora(ctx)
	if err != nil {
		return summary, services.Wrap(services.ErrTransient, "discover", "corpora", "load dedup corpora", err)
	}
	detector := detectorFromSettings(settings)

	for _, candidate := range candidates {
		if candidate == nil || strings.TrimSpace(candidate.Title) == "" {
			continue
		}
		if candidate.Hash == "" {
			candidate.Hash = articles.Hash(candidate.Title)
		}
		switch detector.Classify(candidate, posted, pending) {
		case dedup.DuplicatePosted:
			summary.DuplicatePosted++
			continue
		case dedup.DuplicatePending:
			summary.DuplicatePending++
			continue
		}
		if settings.MaxArticlesPerRun > 0 && summary.Added >= settings.MaxArticlesPerRun {
			summary.Skipped++
			continue
		}
		candidate.Status = articles.StatusDiscovered
		stored, err := s.store.NewItem(ctx, candidate)
		if err != nil {
			s.logger.Warn("failed to persist discovered item",
				logging.Error(err),
				logging.String("title", candidate.Title),
			)
			continue
		}
		// Later candidates in the same batch dedup against this one.
		pending = append(pending, stored)
		summary.Added++
	}

	return summary, nil
}

// EnqueueOutcome distinguishes the two legal destinations for a generated
// candidate.
type EnqueueOutcome string

const (
	// EnqueuedPending means the candidate passed validation and waits for
	// posting or approval.
	EnqueuedPending EnqueueOutcome = "pending"
	// EnqueuedRejected means validation failed; the rejection reason is on
	// the item.
	EnqueuedRejected EnqueueOutcome = "rejected"
)

// Enqueue applies the quality gate to a generated tweet and routes the item
// to pending or rejected. The candidate scores and text are persisted either
// way so a rejected item keeps the evidence for its rejection.
func (s *Service) Enqueue(ctx context.Context, item *articles.Item, tweetText string, impactScore, qualityScore int) (EnqueueOutcome, *articles.Item, error) {
	if item == nil {
		return "", nil, services.Wrap(services.ErrValidation, "enqueue", "input", "item is nil", nil)
	}

	settings, err := s.store.GetSettings(ctx)
	if err != nil {
		return "", nil, services.Wrap(services.ErrConfiguration, "enqueue", "settings", "load automation settings", err)
	}

	item.TweetText = strings.TrimSpace(tweetText)
	item.ImpactScore = impactScore
	item.QualityScore = qualityScore

	result := s.gate.Validate(quality.Candidate{
		Text:         item.TweetText,
		ImpactScore:  impactScore,
		QualityScore: qualityScore,
	}, settings.MinScoreThreshold)
	if !result.IsValid {
		if err := s.store.Update(ctx, item); err != nil {
			return "", nil, services.Wrap(services.ErrTransient, "enqueue", "persist", "persist candidate before rejection", err)
		}
		rejected, err := s.store.MarkRejected(ctx, item.ID, result.Reason())
		if err != nil {
			return "", nil, services.Wrap(services.ErrTransient, "enqueue", "reject", "mark rejected", err)
		}
		if nerr := s.notifier.NotifyTweetRejected(ctx, rejected.Title, result.Reason()); nerr != nil {
			s.logger.Warn("rejection notification failed", logging.Error(nerr))
		}
		return EnqueuedRejected, rejected, nil
	}

	item.Status = articles.StatusPending
	item.RejectionReason = ""
	item.ErrorReason = ""
	if err := s.store.Update(ctx, item); err != nil {
		return "", nil, services.Wrap(services.ErrTransient, "enqueue", "persist", "persist pending candidate", err)
	}
	if nerr := s.notifier.NotifyTweetPending(ctx, item.Title, impactScore); nerr != nil {
		s.logger.Warn("pending notification failed", logging.Error(nerr))
	}
	return EnqueuedPending, item, nil
}

func detectorFromSettings(settings store.Settings) *dedup.Detector {
	return dedup.NewDetector(dedup.Options{
		FuzzyEnabled:               settings.EnableDuplicateDetection,
		TitleSimilarityThreshold:   settings.TitleSimilarityThreshold,
		ContentSimilarityThreshold: settings.ContentSimilarityThreshold,
	})
}
