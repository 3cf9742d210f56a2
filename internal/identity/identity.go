// Package identity derives the content fingerprint and the stable vector-store
// identity for messages. Both functions are pure: identical inputs always
// produce identical outputs across process restarts.
package identity

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// ContentFingerprint returns a lowercase hex sha256 digest over subject,
// sender and body concatenated in that order with no separator. It is used to
// detect byte-identical re-deliveries, never as a storage key.
func ContentFingerprint(subject, sender, body string) string {
	h := sha256.New()
	h.Write([]byte(subject))
	h.Write([]byte(sender))
	h.Write([]byte(body))
	return hex.EncodeToString(h.Sum(nil))
}

// StableVectorID derives the vector-store point id for a message from its
// source-scoped (storeID, entryID) pair: sha256 over storeID||entryID,
// truncated to the first 8 bytes, read little-endian. Deriving from the source
// pair rather than the relational row id means the same logical message always
// overwrites the same vector record, even if its relational row is recreated.
func StableVectorID(storeID, entryID string) uint64 {
	h := sha256.New()
	h.Write([]byte(storeID))
	h.Write([]byte(entryID))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum[:8])
}
