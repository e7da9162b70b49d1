package service

import (
	"context"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/requestcontext"
)

// Logout revokes the session holding the given token. It is idempotent and
// never fails observably: an absent or already-revoked token is a no-op
// success, and even a backing-store fault is logged rather than surfaced,
// because the caller discards its token either way.
func (s *Service) Logout(ctx context.Context, tokenValue string) {
	ctx, span := startSpan(ctx, "auth.logout")
	defer span.End()

	if tokenValue == "" {
		return
	}

	now := requestcontext.Now(ctx)
	revoked, err := s.sessions.Revoke(ctx, tokenValue, models.RevocationReasonLogout, now)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to revoke session on logout", "error", err)
		return
	}
	if revoked {
		s.logAudit(ctx, audit.ActionLogout, audit.ActorSystem, "", "")
	}
}
