package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// These represent factual states about resources, not validation failures:
// - ErrNotFound: row does not exist in the store
// - ErrExpired: session or grant is past its expiry
// - ErrRevoked: session carries a revocation marker
// - ErrExhausted: grant has no uses remaining
// - ErrConflict: unique constraint violated (token collision)
//
// For validation errors (bad input, missing fields), use pkg/domain-errors
// directly.
var (
	ErrNotFound  = errors.New("not found")
	ErrExpired   = errors.New("expired")
	ErrRevoked   = errors.New("revoked")
	ErrExhausted = errors.New("exhausted")
	ErrConflict  = errors.New("conflict")
)
