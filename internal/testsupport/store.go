package testsupport

import (
	"context"
	"testing"

	"quill/internal/articles"
	"quill/internal/config"
	"quill/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewArticle creates a discovered content item for tests using the provided
// store. The hash is derived from the title the same way discovery does it.
func NewArticle(t testing.TB, st *store.Store, title, url string) *articles.Item {
	t.Helper()

	item, err := st.NewItem(context.Background(), &articles.Item{
		Title:      title,
		URL:        url,
		Hash:       articles.Hash(title),
		SourceType: articles.SourceNews,
	})
	if err != nil {
		t.Fatalf("store.NewItem: %v", err)
	}
	return item
}
