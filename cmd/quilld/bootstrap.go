package main

import (
	"log/slog"

	"quill/internal/config"
	"quill/internal/lifecycle"
	"quill/internal/notifications"
	"quill/internal/quality"
	"quill/internal/services/generator"
	"quill/internal/services/githubtrending"
	"quill/internal/services/newsfeed"
	"quill/internal/services/poster"
	"quill/internal/store"
	"quill/internal/workflow"
)

func wireWorkflow(manager *workflow.Manager, cfg *config.Config, st *store.Store, logger *slog.Logger) {
	notifier := notifications.NewService(cfg)

	var post poster.Poster
	if cfg.Poster.Enabled {
		post = poster.NewClient(poster.Config{
			BaseURL:        cfg.Poster.BaseURL,
			BearerToken:    cfg.Poster.BearerToken,
			TimeoutSeconds: cfg.Poster.TimeoutSeconds,
		})
	}
	moderate := lifecycle.New(st, post, quality.NewGate(), notifier, logger)

	gen := generator.NewClient(generator.Config{
		APIKey:         cfg.Generator.APIKey,
		BaseURL:        cfg.Generator.BaseURL,
		Model:          cfg.Generator.Model,
		Theme:          cfg.Generator.Theme,
		TimeoutSeconds: cfg.Generator.TimeoutSeconds,
	})

	stages := workflow.StageSet{
		Generate: workflow.NewGenerateStage(gen, moderate, st, logger),
	}
	if post != nil {
		stages.Publish = workflow.NewPublishStage(post, moderate, logger)
	}
	manager.ConfigureStages(stages)

	var fetchers []lifecycle.Fetcher
	if len(cfg.Feeds.NewsFeeds) > 0 {
		fetchers = append(fetchers, newsfeed.New(cfg.Feeds.NewsFeeds, nil, cfg.Feeds.RequestTimeout))
	}
	if cfg.Feeds.GitHubEnabled {
		fetchers = append(fetchers, githubtrending.New(cfg.Feeds.GitHubLanguage, cfg.Feeds.GitHubMinStars, nil, cfg.Feeds.RequestTimeout))
	}
	manager.ConfigureFetchers(fetchers...)
}
