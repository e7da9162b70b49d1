package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/token"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	dErrors "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain-errors"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/requestcontext"
)

// IssueDelegation mints a short-lived single-use grant letting the issuing
// superuser act as the target tenant's owner. Empty ids are rejected before
// any store round trip; a missing target is the one lookup failure with its
// own code, since the issuer is already authenticated as a superuser.
func (s *Service) IssueDelegation(ctx context.Context, issuerID id.SuperuserID, targetTenantID id.TenantID) (*models.DelegationResult, error) {
	ctx, span := startSpan(ctx, "auth.issue_delegation")
	defer span.End()

	if issuerID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "issuer id cannot be empty")
	}
	if targetTenantID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "target tenant id cannot be empty")
	}

	if _, err := s.directory.FindTenantByID(ctx, targetTenantID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeTargetNotFound, "target tenant not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load target tenant")
	}

	now := requestcontext.Now(ctx)
	grantToken, err := s.tokens.Generate(token.GrantTokenBytes)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to generate grant token")
	}

	grant := &models.DelegationGrant{
		ID:             id.NewGrantID(),
		IssuerID:       issuerID,
		TargetTenantID: targetTenantID,
		Token:          grantToken,
		IssuedAt:       now,
		ExpiresAt:      now.Add(delegationTTL),
		MaxUses:        models.DefaultGrantMaxUses,
	}
	if err := s.delegations.Create(ctx, grant); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist delegation grant")
	}

	if s.metrics != nil {
		s.metrics.DelegationsIssued.Inc()
	}
	s.logAudit(ctx, audit.ActionDelegationIssued, audit.ActorGod, issuerID.String(),
		"target tenant "+targetTenantID.String())
	return &models.DelegationResult{Token: grantToken}, nil
}

// VerifyDelegation consumes a grant and returns the target tenant-owner
// principal. The consume is atomic at the store: two concurrent calls against
// a single-use grant produce at most one success. Absent, expired, and
// exhausted grants all fail with the same errGrantNotUsable value.
func (s *Service) VerifyDelegation(ctx context.Context, tokenValue string) (*models.Principal, error) {
	ctx, span := startSpan(ctx, "auth.verify_delegation")
	defer span.End()

	if tokenValue == "" {
		return nil, errGrantNotUsable
	}

	now := requestcontext.Now(ctx)
	grant, err := s.delegations.Consume(ctx, tokenValue, now)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || errors.Is(err, sentinel.ErrExhausted) {
			return nil, errGrantNotUsable
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to consume delegation grant")
	}

	tenant, err := s.directory.FindTenantByID(ctx, grant.TargetTenantID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			// Target deleted after issue. The use slot is spent, which is the
			// safe direction for a single-use credential.
			s.logger.WarnContext(ctx, "delegation target vanished",
				"grant_id", grant.ID.String(), "tenant_id", grant.TargetTenantID.String())
			return nil, errGrantNotUsable
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load target tenant")
	}

	if s.metrics != nil {
		s.metrics.DelegationsUsed.Inc()
	}
	s.logAudit(ctx, audit.ActionDelegationUsed, audit.ActorGod, grant.IssuerID.String(),
		fmt.Sprintf("grant %s use %d/%d for tenant %s",
			grant.ID, grant.UsedCount, grant.MaxUses, grant.TargetTenantID))
	return &models.Principal{Kind: models.KindClient, Owner: models.OwnerFromTenant(tenant)}, nil
}

// CleanupExpiredDelegations purges grants past expiry and reports the count.
// Safe to run repeatedly and concurrently with issue/verify: every row it
// removes was already failing every consume. A sweep that removed nothing
// writes no audit entry.
func (s *Service) CleanupExpiredDelegations(ctx context.Context) (*models.CleanupResult, error) {
	ctx, span := startSpan(ctx, "auth.cleanup_expired_delegations")
	defer span.End()

	now := requestcontext.Now(ctx)
	deletedCount, err := s.delegations.DeleteExpired(ctx, now)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete expired grants")
	}

	if deletedCount > 0 {
		if s.metrics != nil {
			s.metrics.CleanupDeleted.Add(float64(deletedCount))
		}
		s.logAudit(ctx, audit.ActionDelegationCleanup, audit.ActorSystem, "",
			fmt.Sprintf("removed %d expired grants", deletedCount))
	}
	return &models.CleanupResult{DeletedCount: deletedCount}, nil
}
