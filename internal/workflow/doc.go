// Package workflow drives content items through the generation and
// publishing stages over a poll loop, and runs periodic feed discovery.
package workflow
