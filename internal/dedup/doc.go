// Package dedup classifies candidate content items as new or duplicates of
// already posted or pending items, using exact hash/URL matching with an
// optional fuzzy similarity fallback.
package dedup
