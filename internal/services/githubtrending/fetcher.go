// Package githubtrending discovers recently popular repositories through the
// GitHub search API and maps them to article candidates.
package githubtrending

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"quill/internal/articles"
	"quill/internal/textutil"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultBaseURL   = "https://api.github.com"
	searchWindowDays = 7
	maxResults       = 10
	userAgent        = "quill/1.0"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Fetcher queries the GitHub repository search API.
type Fetcher struct {
	client   HTTPClient
	baseURL  string
	language string
	minStars int
	now      func() time.Time
}

// Option customizes the fetcher.
type Option func(*Fetcher)

// WithBaseURL points the fetcher at a different API host (useful for tests).
func WithBaseURL(baseURL string) Option {
	return func(f *Fetcher) {
		f.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithClock overrides the time source used to build the search window.
func WithClock(now func() time.Time) Option {
	return func(f *Fetcher) {
		if now != nil {
			f.now = now
		}
	}
}

// New creates a Fetcher for trending repositories in the given language with
// at least minStars stars.
func New(language string, minStars int, client HTTPClient, timeoutSeconds int, opts ...Option) *Fetcher {
	if client == nil {
		timeout := defaultTimeout
		if timeoutSeconds > 0 {
			timeout = time.Duration(timeoutSeconds) * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	fetcher := &Fetcher{
		client:   client,
		baseURL:  defaultBaseURL,
		language: strings.TrimSpace(language),
		minStars: minStars,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(fetcher)
	}
	return fetcher
}

// Name identifies this source in logs and stage health reports.
func (f *Fetcher) Name() string { return "github" }

type searchResponse struct {
	Items []struct {
		FullName    string `json:"full_name"`
		HTMLURL     string `json:"html_url"`
		Description string `json:"description"`
		Language    string `json:"language"`
		Stars       int    `json:"stargazers_count"`
	} `json:"items"`
	Message string `json:"message"`
}

// Fetch returns up to ten repositories created within the last week, ordered
// by stars.
func (f *Fetcher) Fetch(ctx context.Context) ([]*articles.Item, error) {
	query := fmt.Sprintf("created:>%s", f.now().UTC().AddDate(0, 0, -searchWindowDays).Format("2006-01-02"))
	if f.language != "" {
		query += " language:" + f.language
	}
	if f.minStars > 0 {
		query += fmt.Sprintf(" stars:>=%d", f.minStars)
	}

	endpoint := fmt.Sprintf("%s/search/repositories?q=%s&sort=stars&order=desc&per_page=%d",
		f.baseURL, url.QueryEscape(query), maxResults)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		detail := parsed.Message
		if detail == "" {
			detail = strings.TrimSpace(string(body))
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, detail)
	}

	items := make([]*articles.Item, 0, len(parsed.Items))
	for _, repo := range parsed.Items {
		if repo.FullName == "" {
			continue
		}
		title := repo.FullName
		if desc := textutil.Normalize(repo.Description); desc != "" {
			title = fmt.Sprintf("%s: %s", repo.FullName, desc)
		}
		items = append(items, &articles.Item{
			Title:      title,
			URL:        repo.HTMLURL,
			Content:    fmt.Sprintf("%s (%s, %d stars)", textutil.Normalize(repo.Description), repo.Language, repo.Stars),
			Source:     "github-trending",
			SourceType: articles.SourceGitHub,
		})
	}
	return items, nil
}
