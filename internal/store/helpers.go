package store

import (
	"database/sql"
	"errors"
	"time"

	"quill/internal/articles"
)

const itemColumns = "id, title, url, content, hash, source, source_type, status, tweet_text, impact_score, quality_score, retry_count, error_reason, rejection_reason, deletion_reason, posted_tweet_id, posted_url, fetched_at, created_at, updated_at, posted_at, deleted_at, rejected_at, archived_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*articles.Item, error) {
	var (
		id              int64
		title           string
		url             sql.NullString
		content         sql.NullString
		hash            sql.NullString
		source          sql.NullString
		sourceType      sql.NullString
		statusStr       string
		tweetText       sql.NullString
		impactScore     sql.NullInt64
		qualityScore    sql.NullInt64
		retryCount      sql.NullInt64
		errorReason     sql.NullString
		rejectionReason sql.NullString
		deletionReason  sql.NullString
		postedTweetID   sql.NullString
		postedURL       sql.NullString
		fetchedRaw      sql.NullString
		createdRaw      sql.NullString
		updatedRaw      sql.NullString
		postedRaw       sql.NullString
		deletedRaw      sql.NullString
		rejectedRaw     sql.NullString
		archivedRaw     sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&title,
		&url,
		&content,
		&hash,
		&source,
		&sourceType,
		&statusStr,
		&tweetText,
		&impactScore,
		&qualityScore,
		&retryCount,
		&errorReason,
		&rejectionReason,
		&deletionReason,
		&postedTweetID,
		&postedURL,
		&fetchedRaw,
		&createdRaw,
		&updatedRaw,
		&postedRaw,
		&deletedRaw,
		&rejectedRaw,
		&archivedRaw,
	); err != nil {
		return nil, err
	}

	item := &articles.Item{
		ID:              id,
		Title:           title,
		URL:             url.String,
		Content:         content.String,
		Hash:            hash.String,
		Source:          source.String,
		SourceType:      articles.SourceType(sourceType.String),
		Status:          articles.Status(statusStr),
		TweetText:       tweetText.String,
		ImpactScore:     int(impactScore.Int64),
		QualityScore:    int(qualityScore.Int64),
		RetryCount:      int(retryCount.Int64),
		ErrorReason:     errorReason.String,
		RejectionReason: rejectionReason.String,
		DeletionReason:  deletionReason.String,
		PostedTweetID:   postedTweetID.String,
		PostedURL:       postedURL.String,
	}

	if fetched, err := parseTimeString(fetchedRaw.String); err == nil {
		item.FetchedAt = fetched
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	item.PostedAt = parseOptionalTime(postedRaw)
	item.DeletedAt = parseOptionalTime(deletedRaw)
	item.RejectedAt = parseOptionalTime(rejectedRaw)
	item.ArchivedAt = parseOptionalTime(archivedRaw)
	return item, nil
}

func parseOptionalTime(value sql.NullString) *time.Time {
	if !value.Valid {
		return nil
	}
	t, err := parseTimeString(value.String)
	if err != nil {
		return nil
	}
	return &t
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
