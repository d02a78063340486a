// Package notifications delivers workflow events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Queue, post, and error events can be toggled independently so
// stage handlers can emit consistent messages without duplicating HTTP glue.
//
// Notification failures are best-effort: callers log them and never let them
// roll back a lifecycle transition.
package notifications
