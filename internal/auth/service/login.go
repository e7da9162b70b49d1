package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/secrets"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/token"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	dErrors "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain-errors"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/requestcontext"
)

// Login authenticates a durable principal and mints a session.
//
// Every credential failure, whatever the cause, returns the same
// errInvalidCredentials value. A correct tenant-owner credential with a
// blocking subscription status is the one distinguishable failure
// (CodeNotEligible), and it creates no session.
func (s *Service) Login(ctx context.Context, kind models.PrincipalKind, identifier, secret string) (*models.LoginResult, error) {
	ctx, span := startSpan(ctx, "auth.login")
	defer span.End()

	switch kind {
	case models.KindGod:
		return s.loginGod(ctx, identifier, secret)
	case models.KindClient:
		return s.loginClient(ctx, identifier, secret)
	default:
		return nil, dErrors.New(dErrors.CodeBadRequest, "unknown principal kind")
	}
}

func (s *Service) loginGod(ctx context.Context, username, password string) (*models.LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		s.observeLogin(string(models.KindGod), "failure")
		s.logAudit(ctx, audit.ActionGodLoginFailed, audit.ActorGod, "", "empty credential")
		return nil, errInvalidCredentials
	}

	superuser, err := s.directory.FindSuperuserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.observeLogin(string(models.KindGod), "failure")
			s.logAudit(ctx, audit.ActionGodLoginFailed, audit.ActorGod, "", "unknown username")
			return nil, errInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load superuser")
	}
	if !superuser.Active {
		s.observeLogin(string(models.KindGod), "failure")
		s.logAudit(ctx, audit.ActionGodLoginFailed, audit.ActorGod, superuser.ID.String(), "account inactive")
		return nil, errInvalidCredentials
	}
	if err := secrets.Verify(password, superuser.PasswordHash); err != nil {
		s.observeLogin(string(models.KindGod), "failure")
		s.logAudit(ctx, audit.ActionGodLoginFailed, audit.ActorGod, superuser.ID.String(), "wrong password")
		return nil, errInvalidCredentials
	}

	session, err := s.createSession(ctx, superuser.ID.String(), models.KindGod)
	if err != nil {
		return nil, err
	}

	s.observeLogin(string(models.KindGod), "success")
	s.logAudit(ctx, audit.ActionGodLoginSuccess, audit.ActorGod, superuser.ID.String(), "")
	return &models.LoginResult{
		Principal: &models.Principal{Kind: models.KindGod, Superuser: superuser},
		Token:     session.Token,
	}, nil
}

func (s *Service) loginClient(ctx context.Context, email, password string) (*models.LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		s.observeLogin(string(models.KindClient), "failure")
		s.logAudit(ctx, audit.ActionClientLoginFailed, audit.ActorClient, "", "empty credential")
		return nil, errInvalidCredentials
	}

	owner, err := s.directory.FindOwnerByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			s.observeLogin(string(models.KindClient), "failure")
			s.logAudit(ctx, audit.ActionClientLoginFailed, audit.ActorClient, "", "unknown email")
			return nil, errInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load owner")
	}
	if err := secrets.Verify(password, owner.PasswordHash); err != nil {
		s.observeLogin(string(models.KindClient), "failure")
		s.logAudit(ctx, audit.ActionClientLoginFailed, audit.ActorClient, owner.ID.String(), "wrong password")
		return nil, errInvalidCredentials
	}

	tenant, err := s.directory.FindTenantByID(ctx, owner.ID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Credential row without a tenant row means a half-deleted
			// account. Treat as a bad credential.
			s.observeLogin(string(models.KindClient), "failure")
			s.logAudit(ctx, audit.ActionClientLoginFailed, audit.ActorClient, owner.ID.String(), "orphaned owner record")
			return nil, errInvalidCredentials
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load tenant")
	}
	if !tenant.SubscriptionStatus.AllowsLogin() {
		s.observeLogin(string(models.KindClient), "blocked")
		s.logAudit(ctx, audit.ActionClientLoginBlocked, audit.ActorClient, owner.ID.String(),
			fmt.Sprintf("subscription status %q", tenant.SubscriptionStatus))
		return nil, dErrors.New(dErrors.CodeNotEligible, "subscription does not allow login")
	}

	session, err := s.createSession(ctx, owner.ID.String(), models.KindClient)
	if err != nil {
		return nil, err
	}

	s.observeLogin(string(models.KindClient), "success")
	s.logAudit(ctx, audit.ActionClientLoginSuccess, audit.ActorClient, owner.ID.String(), "")
	return &models.LoginResult{
		Principal:    &models.Principal{Kind: models.KindClient, Owner: models.OwnerFromTenant(tenant)},
		Token:        session.Token,
		RefreshToken: session.RefreshToken,
	}, nil
}

// createSession mints tokens and persists the session row. Client sessions
// also carry a refresh token; god sessions do not.
func (s *Service) createSession(ctx context.Context, principalID string, kind models.PrincipalKind) (*models.Session, error) {
	now := requestcontext.Now(ctx)

	accessToken, err := s.tokens.Generate(token.SessionTokenBytes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate session token")
	}

	session := &models.Session{
		ID:            id.NewSessionID(),
		PrincipalID:   principalID,
		PrincipalKind: kind,
		Token:         accessToken,
		IssuedAt:      now,
		LastUsedAt:    now,
	}
	switch kind {
	case models.KindGod:
		session.ExpiresAt = now.Add(godSessionTTL)
	case models.KindClient:
		session.ExpiresAt = now.Add(clientSessionTTL)
		refreshToken, err := s.tokens.Generate(token.SessionTokenBytes)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate refresh token")
		}
		session.RefreshToken = refreshToken
		session.RefreshExpiresAt = now.Add(refreshTTL)
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist session")
	}
	return session, nil
}
