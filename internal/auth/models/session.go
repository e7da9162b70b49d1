package models

import (
	"time"

	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
)

// RevocationReason records why a session was revoked.
type RevocationReason string

const (
	RevocationReasonLogout        RevocationReason = "logout"
	RevocationReasonClientDeleted RevocationReason = "client_deleted"
	RevocationReasonStatusChange  RevocationReason = "status_change"
)

func (r RevocationReason) String() string { return string(r) }

// Session binds an opaque token to one god/client principal.
//
// Invariants:
//   - Token is unique across all sessions
//   - RefreshToken and RefreshExpiresAt are set only for KindClient
//   - a session is valid iff RevokedAt is nil and now < ExpiresAt
//   - expired sessions are never resurrected; deletion is storage hygiene,
//     not a correctness concern
type Session struct {
	ID            id.SessionID
	PrincipalID   string
	PrincipalKind PrincipalKind
	Token         string

	RefreshToken     string
	RefreshExpiresAt time.Time

	IssuedAt   time.Time
	ExpiresAt  time.Time
	LastUsedAt time.Time

	RevokedAt     *time.Time
	RevokedReason RevocationReason
}

// IsValid reports whether the session passes the expiry and revocation
// checks at the given instant.
func (s *Session) IsValid(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}

// CanRefresh reports whether the refresh token may still be used.
func (s *Session) CanRefresh(now time.Time) bool {
	if s.PrincipalKind != KindClient || s.RefreshToken == "" {
		return false
	}
	return s.RevokedAt == nil && now.Before(s.RefreshExpiresAt)
}

// ApplyRevocation marks the session revoked. Idempotent: a second call
// leaves the original marker intact.
func (s *Session) ApplyRevocation(now time.Time, reason RevocationReason) {
	if s.RevokedAt != nil {
		return
	}
	revokedAt := now
	s.RevokedAt = &revokedAt
	s.RevokedReason = reason
}

// GuestSession is the lighter record for gallery visitors: keyed by tenant
// rather than principal, no refresh token, no revocation marker. Guests just
// expire.
type GuestSession struct {
	GuestID     string
	TenantID    id.TenantID
	DisplayName string
	AccessType  AccessType
	Token       string
	IssuedAt    time.Time
	ExpiresAt   time.Time
}

// IsValid reports whether the guest session is still live.
func (s *GuestSession) IsValid(now time.Time) bool {
	return now.Before(s.ExpiresAt)
}
