package bundlemodel

import (
	"testing"
	"time"
)

func TestFingerprint_VerifyCommitRoundTrips(t *testing.T) {
	payloads := [][]byte{[]byte("tx1"), []byte("tx2")}
	commit := Fingerprint(payloads)
	if !VerifyCommit(commit, payloads) {
		t.Fatal("expected verify_commit(fingerprint(payloads), payloads) to hold")
	}
}

func TestFingerprint_AnyByteChangeFlipsTheCheck(t *testing.T) {
	payloads := [][]byte{[]byte("tx1"), []byte("tx2")}
	commit := Fingerprint(payloads)

	tampered := [][]byte{[]byte("tx1"), []byte("tx2-tampered")}
	if VerifyCommit(commit, tampered) {
		t.Fatal("expected changing a payload byte to invalidate the commit")
	}
}

func TestFingerprint_LengthPrefixPreventsBoundaryCollision(t *testing.T) {
	a := Fingerprint([][]byte{[]byte("ab"), []byte("c")})
	b := Fingerprint([][]byte{[]byte("a"), []byte("bc")})
	if a == b {
		t.Fatal("expected length-prefixed hashing to distinguish [ab,c] from [a,bc]")
	}
}

func TestSealedBundle_Less_OrdersByCreatedAtThenID(t *testing.T) {
	now := time.Now()
	a := SealedBundle{BundleID: "bnd_a", CreatedAt: now}
	b := SealedBundle{BundleID: "bnd_b", CreatedAt: now}
	if !a.Less(b) {
		t.Fatal("expected equal created_at to fall back to bundle_id ordering")
	}
}
