package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateAutomation(); err != nil {
		return err
	}
	if err := c.validateGenerator(); err != nil {
		return err
	}
	if err := c.validatePoster(); err != nil {
		return err
	}
	if err := c.validateFeeds(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return errors.New("paths.data_dir must be set")
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateAutomation() error {
	if c.Automation.MinScoreThreshold < 0 || c.Automation.MinScoreThreshold > 10 {
		return errors.New("automation.min_score_threshold must be between 0 and 10")
	}
	if c.Automation.MaxArticlesPerRun <= 0 {
		return errors.New("automation.max_articles_per_run must be positive")
	}
	if c.Automation.TitleSimilarityThreshold < 0 || c.Automation.TitleSimilarityThreshold > 1 {
		return errors.New("automation.title_similarity_threshold must be between 0 and 1")
	}
	if c.Automation.ContentSimilarityThreshold < 0 || c.Automation.ContentSimilarityThreshold > 1 {
		return errors.New("automation.content_similarity_threshold must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateGenerator() error {
	if c.Generator.BaseURL == "" {
		return errors.New("generator.base_url must be set")
	}
	if _, err := url.Parse(c.Generator.BaseURL); err != nil {
		return fmt.Errorf("generator.base_url is invalid: %w", err)
	}
	if c.Generator.TimeoutSeconds <= 0 {
		return errors.New("generator.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validatePoster() error {
	if !c.Poster.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Poster.BearerToken) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/quill/config.toml"
		}
		return fmt.Errorf("poster.bearer_token is required when the poster is enabled. Set QUILL_POSTER_BEARER_TOKEN or edit %s", defaultPath)
	}
	if c.Poster.TimeoutSeconds <= 0 {
		return errors.New("poster.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateFeeds() error {
	for _, feed := range c.Feeds.NewsFeeds {
		parsed, err := url.Parse(feed)
		if err != nil || parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("feeds.news_feeds entry %q is not a valid URL", feed)
		}
	}
	if c.Feeds.RequestTimeout <= 0 {
		return errors.New("feeds.request_timeout must be positive")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	if c.Workflow.QueuePollInterval <= 0 {
		return errors.New("workflow.queue_poll_interval must be positive")
	}
	if c.Workflow.FetchInterval <= 0 {
		return errors.New("workflow.fetch_interval must be positive")
	}
	if c.Workflow.ErrorRetryInterval <= 0 {
		return errors.New("workflow.error_retry_interval must be positive")
	}
	return nil
}
