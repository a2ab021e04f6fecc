package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors with the codes
// callers actually match on.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: account does not exist at the derived identifier
// - ErrConflict: an account already exists at the derived identifier
// - ErrInvalidState: account exists but is the wrong kind for the operation
// - ErrUnavailable: backing store temporarily unreachable
//
// For validation errors (bad input, missing fields), use pkg/domain-errors.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
