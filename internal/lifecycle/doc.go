// Package lifecycle implements the content moderation operations that move
// items through the discovered, pending, posted, rejected, deleted, and
// archived states. All transitions go through the store so lifecycle
// invariants survive concurrent callers.
package lifecycle
