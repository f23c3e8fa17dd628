package trace

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeTraceHash computes the deterministic hash of a canonical trace
// encoding: sha256 over the canonical bytes, hex-encoded. The input must
// already be canonical (e.g. from BuildTrace.CanonicalJSON), so the hash
// covers the sorted event order, not insertion order.
func ComputeTraceHash(canonicalEncoding []byte) string {
	if len(canonicalEncoding) == 0 {
		return ""
	}
	sum := sha256.Sum256(canonicalEncoding)
	return hex.EncodeToString(sum[:])
}

// BuildID derives the deterministic identity of a build configuration from
// the target triple and the ordered input configuration. Identical
// configurations hash identically; any reordering changes the identity.
func BuildID(triple string, asmDirs, binaryFiles []string) string {
	h := sha256.New()
	h.Write([]byte("triple\x00" + triple + "\x00"))
	for _, d := range asmDirs {
		h.Write([]byte("dir\x00" + d + "\x00"))
	}
	for _, f := range binaryFiles {
		h.Write([]byte("bin\x00" + f + "\x00"))
	}
	return hex.EncodeToString(h.Sum(nil))
}
