// Package quality validates generated tweet text before it may enter the
// pending queue or be posted.
package quality
