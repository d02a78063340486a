// Package poster publishes approved tweets through the X API v2. The Poster
// interface keeps the workflow testable; the concrete Client translates a 429
// into a RateLimitError so the publish stage can pause automation instead of
// burning retries.
package poster
