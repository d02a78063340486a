package lifecycle

import (
	"context"

	"quill/internal/articles"
)

// Fetcher produces candidate content items from an external source. A
// partial failure may return both items and an error; callers process the
// items and log the error.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context) ([]*articles.Item, error)
}
