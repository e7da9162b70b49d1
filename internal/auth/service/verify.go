package service

import (
	"context"
	"errors"
	"time"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	dErrors "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain-errors"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/requestcontext"
)

// VerifySession resolves an opaque token into its principal. Absent, expired,
// and revoked sessions all fail identically with errSessionNotFound; a valid
// token whose principal record has since vanished fails the same way.
func (s *Service) VerifySession(ctx context.Context, tokenValue string, kind models.PrincipalKind) (*models.Principal, error) {
	ctx, span := startSpan(ctx, "auth.verify_session")
	defer span.End()

	startedAt := time.Now()

	if tokenValue == "" || !kind.IsValid() {
		s.observeVerify(string(kind), "failure", startedAt)
		return nil, errSessionNotFound
	}

	session, err := s.sessions.FindByToken(ctx, tokenValue, kind)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.observeVerify(string(kind), "failure", startedAt)
			return nil, errSessionNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}

	now := requestcontext.Now(ctx)
	if !session.IsValid(now) {
		s.observeVerify(string(kind), "failure", startedAt)
		return nil, errSessionNotFound
	}

	// Touch is telemetry, not correctness. A failed touch never fails the
	// verification.
	if err := s.sessions.TouchLastUsed(ctx, session.ID, now); err != nil {
		s.logger.WarnContext(ctx, "failed to touch session", "error", err)
	}

	principal, err := s.resolvePrincipal(ctx, session)
	if err != nil {
		s.observeVerify(string(kind), "failure", startedAt)
		return nil, err
	}

	s.observeVerify(string(kind), "success", startedAt)
	return principal, nil
}

// VerifyGuest resolves a guest token. Guests only expire; there is no
// revocation path, so validity is just the expiry check.
func (s *Service) VerifyGuest(ctx context.Context, tokenValue string) (*models.GuestPrincipal, error) {
	ctx, span := startSpan(ctx, "auth.verify_guest")
	defer span.End()

	startedAt := time.Now()

	if tokenValue == "" {
		s.observeVerify("guest", "failure", startedAt)
		return nil, errSessionNotFound
	}

	guestSession, err := s.guests.FindByToken(ctx, tokenValue)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.observeVerify("guest", "failure", startedAt)
			return nil, errSessionNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load guest session")
	}
	if !guestSession.IsValid(requestcontext.Now(ctx)) {
		s.observeVerify("guest", "failure", startedAt)
		return nil, errSessionNotFound
	}

	s.observeVerify("guest", "success", startedAt)
	return &models.GuestPrincipal{
		GuestID:     guestSession.GuestID,
		DisplayName: guestSession.DisplayName,
		TenantID:    guestSession.TenantID,
		AccessType:  guestSession.AccessType,
	}, nil
}

// resolvePrincipal loads the live directory record behind a session. Sessions
// outlive their principals (client deletion revokes but does not erase), so a
// dangling session resolves to the uniform not-found outcome.
func (s *Service) resolvePrincipal(ctx context.Context, session *models.Session) (*models.Principal, error) {
	switch session.PrincipalKind {
	case models.KindGod:
		superuserID, err := id.ParseSuperuserID(session.PrincipalID)
		if err != nil {
			return nil, errSessionNotFound
		}
		superuser, err := s.directory.FindSuperuserByID(ctx, superuserID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, errSessionNotFound
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load superuser")
		}
		if !superuser.Active {
			return nil, errSessionNotFound
		}
		return &models.Principal{Kind: models.KindGod, Superuser: superuser}, nil

	case models.KindClient:
		tenantID, err := id.ParseTenantID(session.PrincipalID)
		if err != nil {
			return nil, errSessionNotFound
		}
		tenant, err := s.directory.FindTenantByID(ctx, tenantID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, errSessionNotFound
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
		}
		return &models.Principal{Kind: models.KindClient, Owner: models.OwnerFromTenant(tenant)}, nil

	default:
		return nil, errSessionNotFound
	}
}
