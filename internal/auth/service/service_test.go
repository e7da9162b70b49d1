package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/secrets"
	delegationstore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/store/delegation"
	gueststore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/store/guest"
	sessionstore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/store/session"
	directory "github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/models"
	dirstore "github.com/kherembourg/RefletsDeBonheur-sub000/internal/directory/store"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
	auditmem "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit/store/memory"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/requestcontext"
)

const (
	testGodUsername = "admin"
	testGodPassword = "correct-horse-battery"
	testOwnerEmail  = "claire.julien@example.com"
	testOwnerSecret = "wedding-bells-2026"
	testGuestCode   = "CJ2026"
	testAdminCode   = "CJ2026-ADMIN"
)

type fixture struct {
	svc    *Service
	dir    *dirstore.InMemory
	audits *auditmem.Store

	superuser directory.Superuser
	tenant    directory.Tenant
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Now()

	godHash, err := secrets.Hash(testGodPassword)
	require.NoError(t, err)
	ownerHash, err := secrets.Hash(testOwnerSecret)
	require.NoError(t, err)

	dir := dirstore.NewInMemory()
	superuser := directory.Superuser{
		ID:           id.NewSuperuserID(),
		Username:     testGodUsername,
		PasswordHash: godHash,
		Active:       true,
		CreatedAt:    now,
	}
	dir.PutSuperuser(superuser)

	tenantID := id.NewTenantID()
	tenant := directory.Tenant{
		ID:                 tenantID,
		Name:               "Claire & Julien",
		Slug:               "claire-et-julien",
		ContactEmail:       testOwnerEmail,
		SubscriptionStatus: directory.SubscriptionActive,
		GuestCode:          testGuestCode,
		AdminCode:          testAdminCode,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	dir.PutTenant(tenant, directory.Owner{
		ID:           tenantID,
		Email:        testOwnerEmail,
		PasswordHash: ownerHash,
		CreatedAt:    now,
	})

	audits := auditmem.New()
	svc := New(dir,
		sessionstore.NewInMemory(),
		gueststore.NewInMemory(),
		delegationstore.NewInMemory(),
		WithAuditPublisher(audit.NewPublisher(audits)),
	)
	return &fixture{svc: svc, dir: dir, audits: audits, superuser: superuser, tenant: tenant}
}

// ctxAt pins the request clock so expiry arithmetic is deterministic.
func ctxAt(t time.Time) context.Context {
	return requestcontext.WithTime(context.Background(), t)
}
