package articles

import (
	"crypto/md5"
	"encoding/hex"
)

// Hash returns the content-addressed identity of a title: the hex MD5 digest
// of its UTF-8 bytes. An empty title yields an empty hash, which downstream
// duplicate checks must treat as "unknown identity" and fall back to URL
// comparison. MD5 is fine here; the hash keys deduplication, not security.
func Hash(title string) string {
	if title == "" {
		return ""
	}
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])
}
