package negotiator

import "errors"

// Validation errors returned synchronously by reveal (spec §4.C6, §7). They
// never mutate state.
var (
	ErrNotPending         = errors.New("negotiator: bundle is not pending")
	ErrFingerprintMismatch = errors.New("negotiator: revealed payloads do not match commit_hash")
	ErrSignatureInvalid   = errors.New("negotiator: signature verification failed")
)

// Rejection reasons naming why accept_sealed can return false. They are not
// returned as errors (accept_sealed returns a plain bool per spec), and
// AcceptSealed does not record them anywhere: a rejected bundle is dropped
// without a stored reason.
type RejectReason string

const (
	RejectUnknownScout        RejectReason = "unknown-scout"
	RejectInactiveScout       RejectReason = "inactive-scout"
	RejectInsufficientRep     RejectReason = "insufficient-reputation"
	RejectAlreadyExpired      RejectReason = "already-expired"
	RejectDuplicateBundleID   RejectReason = "duplicate-bundle-id"
	RejectInvalidBundle       RejectReason = "invalid-bundle"
)
