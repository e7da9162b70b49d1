package service

import (
	"context"
	"errors"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/token"
	dErrors "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain-errors"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/requestcontext"
)

// Refresh exchanges a refresh token for a fresh access token on the same
// session row. The refresh token itself is not rotated; it stays valid until
// its own expiry or the session is revoked. Failures are uniform with every
// other session lookup.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*models.RefreshResult, error) {
	ctx, span := startSpan(ctx, "auth.refresh")
	defer span.End()

	if refreshToken == "" {
		return nil, errSessionNotFound
	}

	session, err := s.sessions.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errSessionNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load session")
	}

	now := requestcontext.Now(ctx)
	if !session.CanRefresh(now) {
		return nil, errSessionNotFound
	}

	newToken, err := s.tokens.Generate(token.SessionTokenBytes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate session token")
	}

	err = s.sessions.AdvanceAccessToken(ctx, session.ID, newToken, now.Add(clientSessionTTL), now)
	if err != nil {
		// Revoked between the read and the swap: the session is gone as far
		// as the caller is concerned.
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, errSessionNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to advance session token")
	}

	s.logAudit(ctx, audit.ActionTokenRefreshed, audit.ActorClient, session.PrincipalID, "")
	return &models.RefreshResult{Token: newToken}, nil
}
