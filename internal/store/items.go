package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"quill/internal/articles"
)

// NewItem inserts a discovered content item and returns it with its
// store-assigned id. The id is a monotonically increasing rowid, stable
// across deletions and restarts.
func (s *Store) NewItem(ctx context.Context, item *articles.Item) (*articles.Item, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	if item.Title == "" {
		return nil, errors.New("item title must not be empty")
	}
	now := time.Now().UTC()
	timestamp := now.Format(time.RFC3339Nano)
	status := item.Status
	if status == "" {
		status = articles.StatusDiscovered
	}
	sourceType := item.SourceType
	if sourceType == "" {
		sourceType = articles.SourceManual
	}
	fetched := item.FetchedAt
	if fetched.IsZero() {
		fetched = now
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO content_items (
            title, url, content, hash, source, source_type, status,
            tweet_text, impact_score, quality_score, retry_count,
            fetched_at, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.Title,
		nullableString(item.URL),
		nullableString(item.Content),
		nullableString(item.Hash),
		nullableString(item.Source),
		string(sourceType),
		string(status),
		nullableString(item.TweetText),
		item.ImpactScore,
		item.QualityScore,
		item.RetryCount,
		fetched.Format(time.RFC3339Nano),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a content item by identifier. Returns nil when absent.
func (s *Store) GetByID(ctx context.Context, id int64) (*articles.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM content_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// FindByHash returns the first non-deleted item matching a hash.
func (s *Store) FindByHash(ctx context.Context, hash string) (*articles.Item, error) {
	if hash == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+itemColumns+` FROM content_items WHERE hash = ? AND status != ? ORDER BY id LIMIT 1`,
		hash,
		articles.StatusDeleted,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	return item, nil
}

// Update persists changes to an existing content item.
func (s *Store) Update(ctx context.Context, item *articles.Item) error {
	if item == nil {
		return errors.New("item is nil")
	}
	item.UpdatedAt = time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET title = ?, url = ?, content = ?, hash = ?, source = ?, source_type = ?,
             status = ?, tweet_text = ?, impact_score = ?, quality_score = ?,
             retry_count = ?, error_reason = ?, rejection_reason = ?, deletion_reason = ?,
             posted_tweet_id = ?, posted_url = ?, updated_at = ?,
             posted_at = ?, deleted_at = ?, rejected_at = ?, archived_at = ?
         WHERE id = ?`,
		item.Title,
		nullableString(item.URL),
		nullableString(item.Content),
		nullableString(item.Hash),
		nullableString(item.Source),
		string(item.SourceType),
		string(item.Status),
		nullableString(item.TweetText),
		item.ImpactScore,
		item.QualityScore,
		item.RetryCount,
		nullableString(item.ErrorReason),
		nullableString(item.RejectionReason),
		nullableString(item.DeletionReason),
		nullableString(item.PostedTweetID),
		nullableString(item.PostedURL),
		item.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(item.PostedAt),
		nullableTime(item.DeletedAt),
		nullableTime(item.RejectedAt),
		nullableTime(item.ArchivedAt),
		item.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePosted
		}
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns content items filtered by status set (or all items when no
// status is provided), oldest first.
func (s *Store) List(ctx context.Context, statuses ...articles.Status) ([]*articles.Item, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + itemColumns + ` FROM content_items`
	orderClause := ` ORDER BY created_at, id`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = string(status)
		}
		query := baseQuery + ` WHERE status IN (` + placeholders + `)` + orderClause
		rows, err = s.db.QueryContext(ctx, query, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list content items: %w", err)
	}
	defer rows.Close()

	var items []*articles.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// NextForStatuses returns the oldest item matching any of the provided statuses.
func (s *Store) NextForStatuses(ctx context.Context, statuses ...articles.Status) (*articles.Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		args[i] = string(status)
	}

	query := `SELECT ` + itemColumns + ` FROM content_items WHERE status IN (` + placeholders + `) ORDER BY created_at, id LIMIT 1`
	row := s.db.QueryRowContext(ctx, query, args...)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// DedupCorpora loads the two corpora duplicate classification runs against:
// resolved items (posted, deleted, archived) and in-flight items.
func (s *Store) DedupCorpora(ctx context.Context) (posted []*articles.Item, pending []*articles.Item, err error) {
	posted, err = s.List(ctx, articles.StatusPosted, articles.StatusDeleted, articles.StatusArchived)
	if err != nil {
		return nil, nil, err
	}
	pending, err = s.List(ctx, articles.StatusDiscovered, articles.StatusGenerating, articles.StatusPending, articles.StatusPosting)
	if err != nil {
		return nil, nil, err
	}
	return posted, pending, nil
}

// MarkPosted transitions a pending or posting item to posted, recording the
// external tweet id and URL. The partial unique index on (hash, posted)
// turns a double-post race into ErrDuplicatePosted instead of a second post.
func (s *Store) MarkPosted(ctx context.Context, id int64, tweetID, postedURL string) (*articles.Item, error) {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET status = ?, posted_tweet_id = ?, posted_url = ?, error_reason = NULL,
             posted_at = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		articles.StatusPosted,
		nullableString(tweetID),
		nullableString(postedURL),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
		articles.StatusPending,
		articles.StatusPosting,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicatePosted
		}
		return nil, fmt.Errorf("mark posted: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrIllegalTransition
	}
	return s.GetByID(ctx, id)
}

// MarkRejected transitions an item to rejected with a reason.
func (s *Store) MarkRejected(ctx context.Context, id int64, reason string) (*articles.Item, error) {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET status = ?, rejection_reason = ?, rejected_at = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?, ?)`,
		articles.StatusRejected,
		nullableString(reason),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
		articles.StatusDiscovered,
		articles.StatusGenerating,
		articles.StatusFailed,
	)
	if err != nil {
		return nil, fmt.Errorf("mark rejected: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrIllegalTransition
	}
	return s.GetByID(ctx, id)
}

// MarkDeleted transitions a pending or rejected item to the deleted terminal
// state, keeping the record for dedup history.
func (s *Store) MarkDeleted(ctx context.Context, id int64, reason string) (*articles.Item, error) {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET status = ?, deletion_reason = ?, deleted_at = ?, updated_at = ?
         WHERE id = ? AND status IN (?, ?)`,
		articles.StatusDeleted,
		nullableString(reason),
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
		articles.StatusPending,
		articles.StatusRejected,
	)
	if err != nil {
		return nil, fmt.Errorf("mark deleted: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrIllegalTransition
	}
	return s.GetByID(ctx, id)
}

// Archive transitions a rejected item to the archived terminal state.
func (s *Store) Archive(ctx context.Context, id int64) (*articles.Item, error) {
	now := time.Now().UTC()
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET status = ?, archived_at = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		articles.StatusArchived,
		now.Format(time.RFC3339Nano),
		now.Format(time.RFC3339Nano),
		id,
		articles.StatusRejected,
	)
	if err != nil {
		return nil, fmt.Errorf("archive item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrIllegalTransition
	}
	return s.GetByID(ctx, id)
}

// ResetStuckProcessing resets items left in processing states (after a crash
// or hard stop) back to the start of their stage.
func (s *Store) ResetStuckProcessing(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE content_items
         SET status = CASE status
             WHEN ? THEN ?
             WHEN ? THEN ?
             ELSE status
         END,
             updated_at = ?
         WHERE status IN (?, ?)`,
		articles.StatusGenerating, articles.StatusDiscovered,
		articles.StatusPosting, articles.StatusPending,
		time.Now().UTC().Format(time.RFC3339Nano),
		articles.StatusGenerating,
		articles.StatusPosting,
	)
	if err != nil {
		return 0, fmt.Errorf("reset stuck items: %w", err)
	}
	return res.RowsAffected()
}

// Stats returns a count of items grouped by status.
func (s *Store) Stats(ctx context.Context) (map[articles.Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM content_items GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("content stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[articles.Status]int)
	for rows.Next() {
		var status articles.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats[status] = count
	}
	return stats, rows.Err()
}

// Remove deletes an item row entirely. Prefer MarkDeleted: removed rows no
// longer participate in duplicate detection.
func (s *Store) Remove(ctx context.Context, id int64) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM content_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
