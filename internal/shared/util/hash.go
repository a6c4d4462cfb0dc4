package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashCallerKey returns a filesystem-safe identifier for a caller ID.
func HashCallerKey(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}
