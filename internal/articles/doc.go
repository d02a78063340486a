// Package articles defines the content item model, its lifecycle statuses,
// and the content-addressed hash that identifies logical articles.
package articles
