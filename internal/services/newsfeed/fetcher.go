// Package newsfeed discovers article candidates from configured RSS feeds.
package newsfeed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"quill/internal/articles"
	"quill/internal/textutil"
)

const (
	defaultTimeout   = 30 * time.Second
	maxFeedBodyBytes = 5 * 1024 * 1024
	maxContentRunes  = 4000
	userAgent        = "quill/1.0"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher downloads and parses the configured RSS feeds.
type Fetcher struct {
	client HTTPClient
	urls   []string
}

// New creates a Fetcher for the given feed URLs. A nil client falls back to
// a default with a 30 second timeout.
func New(urls []string, client HTTPClient, timeoutSeconds int) *Fetcher {
	if client == nil {
		timeout := defaultTimeout
		if timeoutSeconds > 0 {
			timeout = time.Duration(timeoutSeconds) * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Fetcher{client: client, urls: urls}
}

// Name identifies this source in logs and stage health reports.
func (f *Fetcher) Name() string { return "newsfeed" }

// Fetch downloads every configured feed and maps its entries to discovered
// article candidates. A failing feed does not abort the others; collected
// errors come back joined alongside whatever items were produced.
func (f *Fetcher) Fetch(ctx context.Context) ([]*articles.Item, error) {
	var (
		items []*articles.Item
		errs  []error
	)
	for _, url := range f.urls {
		feed, err := f.fetchFeed(ctx, url)
		if err != nil {
			errs = append(errs, fmt.Errorf("feed %s: %w", url, err))
			continue
		}
		for _, entry := range feed.Items {
			item := mapEntry(feed, entry)
			if item != nil {
				items = append(items, item)
			}
		}
	}
	return items, errors.Join(errs...)
}

func (f *Fetcher) fetchFeed(ctx context.Context, url string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func mapEntry(feed *gofeed.Feed, entry *gofeed.Item) *articles.Item {
	title := textutil.Normalize(entry.Title)
	if title == "" {
		return nil
	}
	content := entry.Content
	if content == "" {
		content = entry.Description
	}
	item := &articles.Item{
		Title:      title,
		URL:        entry.Link,
		Content:    textutil.Truncate(textutil.Normalize(content), maxContentRunes),
		Source:     feed.Title,
		SourceType: articles.SourceNews,
	}
	if entry.PublishedParsed != nil {
		item.FetchedAt = entry.PublishedParsed.UTC()
	}
	return item
}
