// Package logging wires log/slog with Quill's console and JSON output
// conventions plus small attribute helpers shared across components.
package logging
