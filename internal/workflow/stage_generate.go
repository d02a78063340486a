package workflow

import (
	"context"
	"log/slog"

	"quill/internal/articles"
	"quill/internal/lifecycle"
	"quill/internal/logging"
	"quill/internal/services"
	"quill/internal/services/generator"
	"quill/internal/stage"
	"quill/internal/store"
)

// Generator produces a tweet candidate for a content item.
type Generator interface {
	Generate(ctx context.Context, item *articles.Item) (generator.Candidate, error)
	HealthCheck(ctx context.Context) error
}

// GenerateStage turns discovered items into scored tweet candidates and
// routes them through the quality gate.
type GenerateStage struct {
	gen      Generator
	moderate *lifecycle.Service
	store    *store.Store
	logger   *slog.Logger
}

// NewGenerateStage builds the generation stage handler.
func NewGenerateStage(gen Generator, moderate *lifecycle.Service, st *store.Store, logger *slog.Logger) *GenerateStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &GenerateStage{gen: gen, moderate: moderate, store: st, logger: logger}
}

func (g *GenerateStage) Prepare(ctx context.Context, item *articles.Item) error {
	if g.gen == nil {
		return services.Wrap(services.ErrConfiguration, "generate", "prepare", "no generator configured", nil)
	}
	return nil
}

// Execute asks the generator for a candidate and enqueues it. A generator
// failure is a content outcome, not a crash: the item is rejected and the
// workflow moves on.
func (g *GenerateStage) Execute(ctx context.Context, item *articles.Item) error {
	candidate, err := g.gen.Generate(ctx, item)
	if err != nil {
		g.logger.Warn("tweet generation failed",
			logging.Int64("item_id", item.ID),
			logging.String("title", item.Title),
			logging.Error(err),
		)
		rejected, rerr := g.store.MarkRejected(ctx, item.ID, "no candidate produced")
		if rerr != nil {
			return rerr
		}
		*item = *rejected
		return nil
	}

	outcome, updated, err := g.moderate.Enqueue(ctx, item, candidate.Tweet, candidate.ImpactScore, candidate.QualityScore)
	if err != nil {
		return err
	}
	*item = *updated
	g.logger.Info("candidate evaluated",
		logging.Int64("item_id", item.ID),
		logging.String("outcome", string(outcome)),
		logging.Int("impact_score", candidate.ImpactScore),
		logging.Int("quality_score", candidate.QualityScore),
	)
	return nil
}

func (g *GenerateStage) HealthCheck(ctx context.Context) stage.Health {
	if g.gen == nil {
		return stage.Unhealthy("generate", "no generator configured")
	}
	if err := g.gen.HealthCheck(ctx); err != nil {
		return stage.Unhealthy("generate", err.Error())
	}
	return stage.Healthy("generate")
}
