// Package daemon ties the workflow manager and store into a single lifecycle
// with flock-based locking to prevent multiple daemon instances from sharing
// one database.
package daemon
