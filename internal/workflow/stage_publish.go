package workflow

import (
	"context"
	"log/slog"

	"quill/internal/articles"
	"quill/internal/lifecycle"
	"quill/internal/logging"
	"quill/internal/services"
	"quill/internal/services/poster"
	"quill/internal/stage"
)

// PublishStage posts pending items through the lifecycle service so the
// approval-time duplicate re-check and rate-limit policy apply to automatic
// posting exactly as they do to CLI approval.
type PublishStage struct {
	poster   poster.Poster
	moderate *lifecycle.Service
	logger   *slog.Logger
}

// NewPublishStage builds the publishing stage handler.
func NewPublishStage(p poster.Poster, moderate *lifecycle.Service, logger *slog.Logger) *PublishStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PublishStage{poster: p, moderate: moderate, logger: logger}
}

func (p *PublishStage) Prepare(ctx context.Context, item *articles.Item) error {
	if p.poster == nil {
		return services.Wrap(services.ErrConfiguration, "publish", "prepare", "no poster configured", nil)
	}
	return nil
}

func (p *PublishStage) Execute(ctx context.Context, item *articles.Item) error {
	published, err := p.moderate.Publish(ctx, item)
	if err != nil {
		return err
	}
	*item = *published
	p.logger.Info("tweet posted",
		logging.Int64("item_id", item.ID),
		logging.String("tweet_id", item.PostedTweetID),
		logging.String("posted_url", item.PostedURL),
	)
	return nil
}

func (p *PublishStage) HealthCheck(ctx context.Context) stage.Health {
	if p.poster == nil {
		return stage.Unhealthy("publish", "no poster configured")
	}
	if err := p.poster.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("publish", err.Error())
	}
	return stage.Healthy("publish")
}
