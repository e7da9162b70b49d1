package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	directory "github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	dErrors "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain-errors"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/requestcontext"
)

// DeleteClient removes a tenant and its owner record, then revokes every
// session that principal still holds. Sessions are revoked, not erased, so
// the audit trail keeps its references.
func (s *Service) DeleteClient(ctx context.Context, tenantID id.TenantID) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "tenant id cannot be empty")
	}

	if err := s.directory.DeleteTenant(ctx, tenantID); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeTargetNotFound, "tenant not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete tenant")
	}

	now := requestcontext.Now(ctx)
	revoked, err := s.sessions.RevokeAllForPrincipal(ctx, tenantID.String(), models.KindClient,
		models.RevocationReasonClientDeleted, now)
	if err != nil {
		// The tenant is gone; dangling sessions will fail principal
		// resolution anyway. Log and keep going.
		s.logger.ErrorContext(ctx, "failed to revoke sessions for deleted client",
			"tenant_id", tenantID.String(), "error", err)
	}

	s.logAudit(ctx, audit.ActionClientDeleted, audit.ActorGod, "",
		fmt.Sprintf("tenant %s, %d sessions revoked", tenantID, revoked))
	return nil
}

// SetSubscriptionStatus updates a tenant's subscription gate. Moving to a
// status that blocks login also revokes the owner's live sessions, so an
// expired account loses access immediately rather than at next login.
func (s *Service) SetSubscriptionStatus(ctx context.Context, tenantID id.TenantID, status directory.SubscriptionStatus) error {
	if tenantID.IsNil() {
		return dErrors.New(dErrors.CodeInvalidInput, "tenant id cannot be empty")
	}
	if !status.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown subscription status")
	}

	if err := s.directory.UpdateSubscriptionStatus(ctx, tenantID, status); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return dErrors.New(dErrors.CodeTargetNotFound, "tenant not found")
		}
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to update subscription status")
	}

	now := requestcontext.Now(ctx)
	revoked := 0
	if !status.AllowsLogin() {
		var err error
		revoked, err = s.sessions.RevokeAllForPrincipal(ctx, tenantID.String(), models.KindClient,
			models.RevocationReasonStatusChange, now)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to revoke sessions on status change",
				"tenant_id", tenantID.String(), "error", err)
		}
	}

	s.logAudit(ctx, audit.ActionStatusChanged, audit.ActorGod, "",
		fmt.Sprintf("tenant %s now %s, %d sessions revoked", tenantID, status, revoked))
	return nil
}
