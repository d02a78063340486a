package poster

import (
	"context"
	"fmt"
	"time"

	"quill/internal/services"
)

// Result describes a successful post.
type Result struct {
	TweetID   string
	PostedURL string
}

// Poster publishes tweet text to the outside world.
type Poster interface {
	Post(ctx context.Context, text string) (Result, error)
	HealthCheck(ctx context.Context) error
}

// RateLimitError reports that the posting endpoint refused the request and
// when it is worth trying again. It matches services.ErrRateLimited so stage
// error classification treats it as a system failure, not a content one.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("poster rate limited, retry after %s", e.Wait)
}

func (e *RateLimitError) Is(target error) bool {
	return target == services.ErrRateLimited
}

// WaitMinutes returns the suggested pause rounded up to whole minutes.
func (e *RateLimitError) WaitMinutes() int {
	if e.Wait <= 0 {
		return 1
	}
	minutes := int((e.Wait + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}
