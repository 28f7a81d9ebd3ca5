package bundlemodel

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// fingerprintDomain domain-separates the commit hash from any other sha256
// use elsewhere in the host, so a collision here never aliases with, say, a
// signature digest computed over the same bytes.
const fingerprintDomain = "mev-negotiator-core/bundle-fingerprint/v1"

// Fingerprint computes a stable, domain-separated commitment over an ordered
// list of opaque transaction payloads. Each payload is length-prefixed before
// hashing so that e.g. [ab, c] and [a, bc] never collide.
func Fingerprint(payloads [][]byte) string {
	h := sha256.New()
	h.Write([]byte(fingerprintDomain))

	var lenBuf [4]byte
	for _, p := range payloads {
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(p)))
		h.Write(lenBuf[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyCommit reports whether payloads fingerprint to the given commit hash.
func VerifyCommit(commitHash string, payloads [][]byte) bool {
	return Fingerprint(payloads) == commitHash
}
