package store

import (
	"errors"
	"strings"
)

// ErrNotFound indicates the requested item does not exist.
var ErrNotFound = errors.New("item not found")

// ErrDuplicatePosted indicates a posted transition would create a second
// active posted entry with the same hash.
var ErrDuplicatePosted = errors.New("another posted item already carries this hash")

// ErrIllegalTransition indicates a status change the lifecycle contract forbids.
var ErrIllegalTransition = errors.New("illegal status transition")

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) {
		// SQLITE_CONSTRAINT and SQLITE_CONSTRAINT_UNIQUE.
		if code := coder.Code(); code == 19 || code == 2067 {
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
