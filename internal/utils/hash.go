package utils

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DigestLength is the length of an encoded password digest.
const DigestLength = sha256.Size * 2

// HashPassword returns the lowercase hex SHA-256 digest of password.
// The digest is unsalted and single-round so that it matches accounts created
// by earlier deployments of the marketplace.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// VerifyPassword reports whether password hashes to digest.
func VerifyPassword(password, digest string) bool {
	if len(digest) != DigestLength {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(HashPassword(password)), []byte(digest)) == 1
}
