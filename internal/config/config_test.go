package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"quill/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("QUILL_GENERATOR_API_KEY", "env-key")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantData := filepath.Join(tempHome, ".local", "share", "quill")
	if cfg.Paths.DataDir != wantData {
		t.Fatalf("unexpected data dir: got %q want %q", cfg.Paths.DataDir, wantData)
	}
	if cfg.Automation.AutoPostEnabled {
		t.Fatal("expected auto posting disabled by default")
	}
	if !cfg.Automation.ManualApprovalRequired {
		t.Fatal("expected manual approval required by default")
	}
	if cfg.Automation.MinScoreThreshold != 5 {
		t.Fatalf("unexpected min score threshold: %d", cfg.Automation.MinScoreThreshold)
	}
	if cfg.Automation.TitleSimilarityThreshold != 0.85 {
		t.Fatalf("unexpected title similarity threshold: %v", cfg.Automation.TitleSimilarityThreshold)
	}
	if cfg.Generator.APIKey != "env-key" {
		t.Fatalf("expected generator key from env, got %q", cfg.Generator.APIKey)
	}
	if cfg.Generator.BaseURL != config.Default().Generator.BaseURL {
		t.Fatalf("unexpected generator base url: %q", cfg.Generator.BaseURL)
	}
}

func TestLoadParsesFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "quill.toml")
	content := strings.Join([]string{
		"[automation]",
		"auto_post_enabled = true",
		"max_articles_per_run = 3",
		"",
		"[feeds]",
		`news_feeds = ["https://hnrss.org/frontpage"]`,
		"",
		"[logging]",
		`format = "json"`,
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if !cfg.Automation.AutoPostEnabled {
		t.Fatal("expected auto_post_enabled override")
	}
	if cfg.Automation.MaxArticlesPerRun != 3 {
		t.Fatalf("unexpected max_articles_per_run: %d", cfg.Automation.MaxArticlesPerRun)
	}
	if len(cfg.Feeds.NewsFeeds) != 1 {
		t.Fatalf("unexpected feeds: %#v", cfg.Feeds.NewsFeeds)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"negative score", func(c *config.Config) { c.Automation.MinScoreThreshold = -1 }},
		{"zero batch", func(c *config.Config) { c.Automation.MaxArticlesPerRun = 0 }},
		{"similarity above one", func(c *config.Config) { c.Automation.TitleSimilarityThreshold = 1.5 }},
		{"bad feed url", func(c *config.Config) { c.Feeds.NewsFeeds = []string{"not a url"} }},
		{"poster without token", func(c *config.Config) { c.Poster.Enabled = true; c.Poster.BearerToken = "" }},
		{"zero poll interval", func(c *config.Config) { c.Workflow.QueuePollInterval = 0 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestWriteSampleRefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	if err := config.WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	if err := config.WriteSample(path); err == nil {
		t.Fatal("expected error on second WriteSample")
	}
}
