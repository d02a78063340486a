package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"quill/internal/articles"
	"quill/internal/fileutil"
)

// exportedArticle is the human-readable corpus entry written by Export.
type exportedArticle struct {
	ID             int64  `json:"id"`
	Title          string `json:"title"`
	URL            string `json:"url,omitempty"`
	Hash           string `json:"hash,omitempty"`
	Source         string `json:"source,omitempty"`
	SourceType     string `json:"source_type"`
	IsPosted       bool   `json:"is_posted"`
	Deleted        bool   `json:"deleted"`
	Archived       bool   `json:"archived"`
	DeletionReason string `json:"deletion_reason,omitempty"`
	PostedTweetID  string `json:"posted_tweet_id,omitempty"`
	PostedURL      string `json:"posted_url,omitempty"`
	FetchDate      string `json:"fetch_date,omitempty"`
	PostedDate     string `json:"posted_date,omitempty"`
	DeletedDate    string `json:"deleted_date,omitempty"`
	ArchivedDate   string `json:"archived_at,omitempty"`
}

type exportedPending struct {
	ID           int64  `json:"id"`
	Title        string `json:"title"`
	URL          string `json:"url,omitempty"`
	Hash         string `json:"hash,omitempty"`
	Tweet        string `json:"tweet"`
	ImpactScore  int    `json:"impact_score"`
	QualityScore int    `json:"quality_score"`
	Status       string `json:"status"`
	RetryCount   int    `json:"retry_count"`
	ErrorReason  string `json:"error_reason,omitempty"`
	CreatedDate  string `json:"created_date"`
}

type exportedRejected struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`
	Hash       string `json:"hash,omitempty"`
	Reason     string `json:"reason"`
	RetryCount int    `json:"retry_count"`
	RejectedAt string `json:"rejected_at,omitempty"`
}

type exportedSettings struct {
	AutoMode                   bool    `json:"auto_mode"`
	AutoPostEnabled            bool    `json:"auto_post_enabled"`
	ManualApprovalRequired     bool    `json:"manual_approval_required"`
	MinScoreThreshold          int     `json:"min_score_threshold"`
	MaxArticlesPerRun          int     `json:"max_articles_per_run"`
	EnableDuplicateDetection   bool    `json:"enable_duplicate_detection"`
	TitleSimilarityThreshold   float64 `json:"title_similarity_threshold"`
	ContentSimilarityThreshold float64 `json:"content_similarity_threshold"`
}

// Export writes the human-readable JSON corpus files (posted_articles.json,
// pending_tweets.json, rejected_articles.json, automation_settings.json)
// into dir. An advisory file lock serializes concurrent exporters and each
// file is written atomically, so readers never see truncated JSON.
func (s *Store) Export(ctx context.Context, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	lock := flock.New(filepath.Join(dir, ".export.lock"))
	locked, err := lock.TryLockContext(ctx, 100*time.Millisecond)
	if err != nil {
		return fmt.Errorf("acquire export lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("export already in progress in %s", dir)
	}
	defer func() { _ = lock.Unlock() }()

	resolved, err := s.List(ctx, articles.StatusPosted, articles.StatusDeleted, articles.StatusArchived)
	if err != nil {
		return err
	}
	pending, err := s.List(ctx, articles.StatusPending, articles.StatusPosting)
	if err != nil {
		return err
	}
	rejected, err := s.List(ctx, articles.StatusRejected)
	if err != nil {
		return err
	}
	settings, err := s.GetSettings(ctx)
	if err != nil {
		return err
	}

	posted := make([]exportedArticle, 0, len(resolved))
	for _, item := range resolved {
		posted = append(posted, exportArticle(item))
	}
	pendingOut := make([]exportedPending, 0, len(pending))
	for _, item := range pending {
		pendingOut = append(pendingOut, exportedPending{
			ID:           item.ID,
			Title:        item.Title,
			URL:          item.URL,
			Hash:         item.Hash,
			Tweet:        item.TweetText,
			ImpactScore:  item.ImpactScore,
			QualityScore: item.QualityScore,
			Status:       string(item.Status),
			RetryCount:   item.RetryCount,
			ErrorReason:  item.ErrorReason,
			CreatedDate:  formatExportTime(item.CreatedAt),
		})
	}
	rejectedOut := make([]exportedRejected, 0, len(rejected))
	for _, item := range rejected {
		entry := exportedRejected{
			ID:         item.ID,
			Title:      item.Title,
			URL:        item.URL,
			Hash:       item.Hash,
			Reason:     item.RejectionReason,
			RetryCount: item.RetryCount,
		}
		if item.RejectedAt != nil {
			entry.RejectedAt = formatExportTime(*item.RejectedAt)
		}
		rejectedOut = append(rejectedOut, entry)
	}
	settingsOut := exportedSettings{
		AutoMode:                   settings.AutoMode,
		AutoPostEnabled:            settings.AutoPostEnabled,
		ManualApprovalRequired:     settings.ManualApprovalRequired,
		MinScoreThreshold:          settings.MinScoreThreshold,
		MaxArticlesPerRun:          settings.MaxArticlesPerRun,
		EnableDuplicateDetection:   settings.EnableDuplicateDetection,
		TitleSimilarityThreshold:   settings.TitleSimilarityThreshold,
		ContentSimilarityThreshold: settings.ContentSimilarityThreshold,
	}

	files := []struct {
		name    string
		payload any
	}{
		{"posted_articles.json", posted},
		{"pending_tweets.json", pendingOut},
		{"rejected_articles.json", rejectedOut},
		{"automation_settings.json", settingsOut},
	}
	for _, file := range files {
		data, err := json.MarshalIndent(file.payload, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal %s: %w", file.name, err)
		}
		data = append(data, '\n')
		if err := fileutil.WriteFileAtomic(filepath.Join(dir, file.name), data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file.name, err)
		}
	}
	return nil
}

func exportArticle(item *articles.Item) exportedArticle {
	out := exportedArticle{
		ID:             item.ID,
		Title:          item.Title,
		URL:            item.URL,
		Hash:           item.Hash,
		Source:         item.Source,
		SourceType:     string(item.SourceType),
		IsPosted:       item.Status == articles.StatusPosted,
		Deleted:        item.Status == articles.StatusDeleted,
		Archived:       item.Status == articles.StatusArchived,
		DeletionReason: item.DeletionReason,
		PostedTweetID:  item.PostedTweetID,
		PostedURL:      item.PostedURL,
		FetchDate:      formatExportTime(item.FetchedAt),
	}
	if item.PostedAt != nil {
		out.PostedDate = formatExportTime(*item.PostedAt)
	}
	if item.DeletedAt != nil {
		out.DeletedDate = formatExportTime(*item.DeletedAt)
	}
	if item.ArchivedAt != nil {
		out.ArchivedDate = formatExportTime(*item.ArchivedAt)
	}
	return out
}

func formatExportTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
