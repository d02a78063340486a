package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quill/internal/config"
)

// Settings are the runtime automation switches. They live in the store, not
// the config file, because the workflow mutates them: a rate-limited post
// flips AutoPostEnabled off while AutoMode keeps content discovery running.
type Settings struct {
	AutoMode                   bool
	AutoPostEnabled            bool
	ManualApprovalRequired     bool
	MinScoreThreshold          int
	MaxArticlesPerRun          int
	EnableDuplicateDetection   bool
	TitleSimilarityThreshold   float64
	ContentSimilarityThreshold float64
	UpdatedAt                  time.Time
}

// SettingsFromConfig converts the config seed into runtime settings.
func SettingsFromConfig(automation config.Automation) Settings {
	return Settings{
		AutoMode:                   automation.AutoMode,
		AutoPostEnabled:            automation.AutoPostEnabled,
		ManualApprovalRequired:     automation.ManualApprovalRequired,
		MinScoreThreshold:          automation.MinScoreThreshold,
		MaxArticlesPerRun:          automation.MaxArticlesPerRun,
		EnableDuplicateDetection:   automation.EnableDuplicateDetection,
		TitleSimilarityThreshold:   automation.TitleSimilarityThreshold,
		ContentSimilarityThreshold: automation.ContentSimilarityThreshold,
	}
}

// EnsureSettings seeds the settings row on first run. Existing settings are
// left untouched so runtime mutations survive restarts.
func (s *Store) EnsureSettings(ctx context.Context, seed Settings) error {
	_, err := s.execWithRetry(
		ctx,
		`INSERT OR IGNORE INTO automation_settings (
            id, auto_mode, auto_post_enabled, manual_approval_required,
            min_score_threshold, max_articles_per_run, enable_duplicate_detection,
            title_similarity_threshold, content_similarity_threshold, updated_at
        ) VALUES (1, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		boolToInt(seed.AutoMode),
		boolToInt(seed.AutoPostEnabled),
		boolToInt(seed.ManualApprovalRequired),
		seed.MinScoreThreshold,
		seed.MaxArticlesPerRun,
		boolToInt(seed.EnableDuplicateDetection),
		seed.TitleSimilarityThreshold,
		seed.ContentSimilarityThreshold,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("ensure settings: %w", err)
	}
	return nil
}

// GetSettings returns the current runtime settings.
func (s *Store) GetSettings(ctx context.Context) (Settings, error) {
	row := s.db.QueryRowContext(ctx, `SELECT auto_mode, auto_post_enabled, manual_approval_required,
        min_score_threshold, max_articles_per_run, enable_duplicate_detection,
        title_similarity_threshold, content_similarity_threshold, updated_at
        FROM automation_settings WHERE id = 1`)

	var (
		autoMode     int
		autoPost     int
		manualOnly   int
		minScore     int
		maxPerRun    int
		dedupEnabled int
		titleSim     float64
		contentSim   float64
		updatedRaw   string
	)
	if err := row.Scan(&autoMode, &autoPost, &manualOnly, &minScore, &maxPerRun, &dedupEnabled, &titleSim, &contentSim, &updatedRaw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Settings{}, errors.New("settings not initialized")
		}
		return Settings{}, fmt.Errorf("get settings: %w", err)
	}

	settings := Settings{
		AutoMode:                   autoMode != 0,
		AutoPostEnabled:            autoPost != 0,
		ManualApprovalRequired:     manualOnly != 0,
		MinScoreThreshold:          minScore,
		MaxArticlesPerRun:          maxPerRun,
		EnableDuplicateDetection:   dedupEnabled != 0,
		TitleSimilarityThreshold:   titleSim,
		ContentSimilarityThreshold: contentSim,
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		settings.UpdatedAt = updated
	}
	return settings, nil
}

// SaveSettings overwrites the runtime settings.
func (s *Store) SaveSettings(ctx context.Context, settings Settings) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE automation_settings
         SET auto_mode = ?, auto_post_enabled = ?, manual_approval_required = ?,
             min_score_threshold = ?, max_articles_per_run = ?, enable_duplicate_detection = ?,
             title_similarity_threshold = ?, content_similarity_threshold = ?, updated_at = ?
         WHERE id = 1`,
		boolToInt(settings.AutoMode),
		boolToInt(settings.AutoPostEnabled),
		boolToInt(settings.ManualApprovalRequired),
		settings.MinScoreThreshold,
		settings.MaxArticlesPerRun,
		boolToInt(settings.EnableDuplicateDetection),
		settings.TitleSimilarityThreshold,
		settings.ContentSimilarityThreshold,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return errors.New("settings not initialized")
	}
	return nil
}

// DisableAutoPost flips only the auto-post switch, leaving auto mode (keep
// fetching) untouched. Called when the poster reports a rate limit.
func (s *Store) DisableAutoPost(ctx context.Context) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE automation_settings SET auto_post_enabled = 0, updated_at = ? WHERE id = 1`,
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("disable auto post: %w", err)
	}
	return nil
}
