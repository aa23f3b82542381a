package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// SessionFingerprint returns a stable fingerprint for an opaque session
// token. Safe to use as a cache key without storing the token itself.
func SessionFingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
