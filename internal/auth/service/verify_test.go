package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
)

func TestVerifySession_ResolvesPrincipal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, models.KindClient, testOwnerEmail, testOwnerSecret)
	require.NoError(t, err)

	principal, err := f.svc.VerifySession(ctx, login.Token, models.KindClient)
	require.NoError(t, err)
	assert.Equal(t, models.KindClient, principal.Kind)
	require.NotNil(t, principal.Owner)
	assert.Equal(t, f.tenant.ID, principal.Owner.ID)
	assert.Equal(t, f.tenant.Name, principal.Owner.TenantName)
}

func TestVerifySession_KindMustMatch(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, models.KindClient, testOwnerEmail, testOwnerSecret)
	require.NoError(t, err)

	// A client token presented as a god token is just an unknown token.
	_, err = f.svc.VerifySession(ctx, login.Token, models.KindGod)
	assert.Same(t, errSessionNotFound, err)
}

func TestVerifySession_AfterLogout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, models.KindGod, testGodUsername, testGodPassword)
	require.NoError(t, err)

	f.svc.Logout(ctx, login.Token)

	_, err = f.svc.VerifySession(ctx, login.Token, models.KindGod)
	assert.Same(t, errSessionNotFound, err)
	assert.Equal(t, 1, f.audits.CountByAction(audit.ActionLogout))
}

func TestLogout_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, models.KindGod, testGodUsername, testGodPassword)
	require.NoError(t, err)

	f.svc.Logout(ctx, login.Token)
	f.svc.Logout(ctx, login.Token)
	f.svc.Logout(ctx, "never-issued")
	f.svc.Logout(ctx, "")

	// Only the first call revoked anything, so only one audit entry.
	assert.Equal(t, 1, f.audits.CountByAction(audit.ActionLogout))
}

func TestVerifySession_UnknownToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.VerifySession(ctx, "never-issued", models.KindGod)
	assert.Same(t, errSessionNotFound, err)
	_, err = f.svc.VerifySession(ctx, "", models.KindClient)
	assert.Same(t, errSessionNotFound, err)
}

// A session can outlive its principal (deletion revokes sessions, but a store
// fault could leave one behind). Resolution must fail closed.
func TestVerifySession_DanglingPrincipal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	login, err := f.svc.Login(ctx, models.KindClient, testOwnerEmail, testOwnerSecret)
	require.NoError(t, err)
	require.NoError(t, f.dir.DeleteTenant(ctx, f.tenant.ID))

	_, err = f.svc.VerifySession(ctx, login.Token, models.KindClient)
	assert.Same(t, errSessionNotFound, err)
}
