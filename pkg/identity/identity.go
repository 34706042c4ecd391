package identity

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash maps a raw sender address to its pseudonymous identity: a salted
// SHA-256 digest as 64 lowercase hex characters. The raw address must never
// be stored or logged; this hash is the only handle the system keeps for an
// anonymous sender. Deterministic for a given salt, so the same sender always
// resolves to the same identity.
func Hash(salt, rawAddress string) string {
	sum := sha256.Sum256([]byte(salt + rawAddress))
	return hex.EncodeToString(sum[:])
}

// HexLength is the length of every identity produced by Hash.
const HexLength = 64

// IsValid reports whether s looks like an identity produced by Hash
// (64 lowercase hex characters). Used to validate client-supplied ip_hash
// values before they reach the block registry.
func IsValid(s string) bool {
	if len(s) != HexLength {
		return false
	}
	for _, c := range s {
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return false
		}
	}
	return true
}
