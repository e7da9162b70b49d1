package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/token"
	directory "github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/models"
	dErrors "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain-errors"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/requestcontext"
)

// GuestLogin exchanges a shared access code for an ephemeral guest session.
// Which code slot matched decides the access type: the guest code admits a
// regular visitor, the admin code unlocks moderation on the public site.
// An unknown code is just another invalid credential.
func (s *Service) GuestLogin(ctx context.Context, accessCode, displayName string) (*models.GuestLoginResult, error) {
	ctx, span := startSpan(ctx, "auth.guest_login")
	defer span.End()

	accessCode = strings.TrimSpace(accessCode)
	if accessCode == "" {
		s.observeLogin("guest", "failure")
		s.logAudit(ctx, audit.ActionGuestLoginFailed, audit.ActorGuest, "", "empty access code")
		return nil, errInvalidCredentials
	}

	tenant, err := s.directory.FindTenantByAccessCode(ctx, accessCode)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.observeLogin("guest", "failure")
			s.logAudit(ctx, audit.ActionGuestLoginFailed, audit.ActorGuest, "", "unknown access code")
			return nil, errInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to look up access code")
	}

	accessType, ok := matchCodeSlot(tenant, accessCode)
	if !ok {
		// The store matched the code but neither slot compares equal. Should
		// not happen; fail like any bad credential.
		s.observeLogin("guest", "failure")
		s.logAudit(ctx, audit.ActionGuestLoginFailed, audit.ActorGuest, "", "code slot mismatch")
		return nil, errInvalidCredentials
	}

	now := requestcontext.Now(ctx)
	guestID, err := s.tokens.Generate(token.GuestIdentifierBytes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate guest id")
	}
	guestToken, err := s.tokens.Generate(token.SessionTokenBytes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate guest token")
	}

	guestSession := &models.GuestSession{
		GuestID:     guestID,
		TenantID:    tenant.ID,
		DisplayName: strings.TrimSpace(displayName),
		AccessType:  accessType,
		Token:       guestToken,
		IssuedAt:    now,
		ExpiresAt:   now.Add(guestSessionTTL),
	}
	if err := s.guests.Create(ctx, guestSession); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist guest session")
	}

	s.observeLogin("guest", "success")
	s.logAudit(ctx, audit.ActionGuestLoginSuccess, audit.ActorGuest, guestID,
		"tenant "+tenant.ID.String())
	return &models.GuestLoginResult{
		Principal: &models.GuestPrincipal{
			GuestID:     guestID,
			DisplayName: guestSession.DisplayName,
			TenantID:    tenant.ID,
			AccessType:  accessType,
		},
		Token:      guestToken,
		AccessType: accessType,
	}, nil
}

// matchCodeSlot decides which of the tenant's two code slots the presented
// code matched. Comparisons are constant-time; the store lookup already
// narrowed to one tenant, this pins which slot without an early exit.
func matchCodeSlot(tenant *directory.Tenant, code string) (models.AccessType, bool) {
	adminMatch := tenant.AdminCode != "" &&
		subtle.ConstantTimeCompare([]byte(code), []byte(tenant.AdminCode)) == 1
	guestMatch := tenant.GuestCode != "" &&
		subtle.ConstantTimeCompare([]byte(code), []byte(tenant.GuestCode)) == 1
	switch {
	case adminMatch:
		return models.AccessAdmin, true
	case guestMatch:
		return models.AccessGuest, true
	default:
		return "", false
	}
}
