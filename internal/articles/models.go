package articles

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a content item.
type Status string

const (
	StatusDiscovered Status = "discovered"
	StatusGenerating Status = "generating"
	StatusPending    Status = "pending"
	StatusPosting    Status = "posting"
	StatusPosted     Status = "posted"
	StatusRejected   Status = "rejected"
	StatusDeleted    Status = "deleted"
	StatusArchived   Status = "archived"
	StatusFailed     Status = "failed"
)

// SourceType identifies where a content item came from.
type SourceType string

const (
	SourceNews   SourceType = "news"
	SourceGitHub SourceType = "github"
	SourceManual SourceType = "manual"
)

var allStatuses = []Status{
	StatusDiscovered,
	StatusGenerating,
	StatusPending,
	StatusPosting,
	StatusPosted,
	StatusRejected,
	StatusDeleted,
	StatusArchived,
	StatusFailed,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

var processingStatuses = map[Status]struct{}{
	StatusGenerating: {},
	StatusPosting:    {},
}

// legalTransitions captures the lifecycle contract. posted, deleted, and
// archived are terminal; an item never moves back from posted to pending.
var legalTransitions = map[Status][]Status{
	StatusDiscovered: {StatusGenerating, StatusRejected, StatusPending},
	StatusGenerating: {StatusPending, StatusRejected, StatusFailed, StatusDiscovered},
	StatusPending:    {StatusPosting, StatusPosted, StatusDeleted},
	StatusPosting:    {StatusPosted, StatusPending, StatusFailed},
	StatusRejected:   {StatusDiscovered, StatusArchived, StatusDeleted},
	StatusFailed:     {StatusDiscovered},
}

// Item represents a content item persisted in SQLite.
type Item struct {
	ID              int64
	Title           string
	URL             string
	Content         string
	Hash            string
	Source          string
	SourceType      SourceType
	Status          Status
	TweetText       string
	ImpactScore     int
	QualityScore    int
	RetryCount      int
	ErrorReason     string
	RejectionReason string
	DeletionReason  string
	PostedTweetID   string
	PostedURL       string
	FetchedAt       time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	PostedAt        *time.Time
	DeletedAt       *time.Time
	RejectedAt      *time.Time
	ArchivedAt      *time.Time
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsProcessing reports whether the status reflects an in-flight operation.
func (i Item) IsProcessing() bool {
	_, ok := processingStatuses[i.Status]
	return ok
}

// IsTerminal reports whether a status admits no further transitions.
func IsTerminal(status Status) bool {
	switch status {
	case StatusPosted, StatusDeleted, StatusArchived:
		return true
	default:
		return false
	}
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// SetFailed marks the item as failed with the given error reason.
func (i *Item) SetFailed(reason string) {
	i.Status = StatusFailed
	i.ErrorReason = reason
}
