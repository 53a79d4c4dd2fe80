package domain

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// FingerprintLen is the length of every fingerprint in hex characters.
const FingerprintLen = 16

// Fingerprint returns a short deterministic digest of data.
// It is an identity token for equality checks and offers no security guarantees.
func Fingerprint(data []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}

// FingerprintString is Fingerprint for string input.
func FingerprintString(s string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(s))
}

// CombinedFingerprint returns the fingerprint used for equality checks on an entry.
// With no metadata it is the content fingerprint itself.
func CombinedFingerprint(content []byte, contentHash, metadataHash string) string {
	if metadataHash == "" {
		return contentHash
	}
	h := xxhash.New()
	_, _ = h.Write(content)
	_, _ = h.WriteString(metadataHash)
	return fmt.Sprintf("%016x", h.Sum64())
}
