package githubtrending

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"quill/internal/articles"
)

func TestFetchBuildsSearchQuery(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/repositories" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		gotQuery = r.URL.Query().Get("q")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"items": []any{
				map[string]any{
					"full_name":        "example/fast-tool",
					"html_url":         "https://github.com/example/fast-tool",
					"description":      "A fast tool",
					"language":         "Go",
					"stargazers_count": 420,
				},
			},
		})
	}))
	defer server.Close()

	fetcher := New("go", 100, nil, 5, WithBaseURL(server.URL), WithClock(func() time.Time { return now }))
	items, err := fetcher.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch returned error: %v", err)
	}

	if !strings.Contains(gotQuery, "created:>2025-06-08") {
		t.Fatalf("expected one-week window in query, got %q", gotQuery)
	}
	if !strings.Contains(gotQuery, "language:go") || !strings.Contains(gotQuery, "stars:>=100") {
		t.Fatalf("expected language and star filters, got %q", gotQuery)
	}

	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	item := items[0]
	if item.Title != "example/fast-tool: A fast tool" {
		t.Fatalf("unexpected title %q", item.Title)
	}
	if item.SourceType != articles.SourceGitHub {
		t.Fatalf("unexpected source type %q", item.SourceType)
	}
}

func TestFetchSurfacesAPIErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "API rate limit exceeded"})
	}))
	defer server.Close()

	fetcher := New("go", 0, nil, 5, WithBaseURL(server.URL))
	if _, err := fetcher.Fetch(context.Background()); err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Fatalf("expected rate limit error, got %v", err)
	}
}
