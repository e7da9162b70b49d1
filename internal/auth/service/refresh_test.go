package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/audit"
)

func TestRefresh_IssuesNewAccessToken(t *testing.T) {
	f := newFixture(t)
	issuedAt := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

	login, err := f.svc.Login(ctxAt(issuedAt), models.KindClient, testOwnerEmail, testOwnerSecret)
	require.NoError(t, err)

	// Past access expiry but well inside the refresh window.
	refreshAt := issuedAt.Add(25 * time.Hour)
	result, err := f.svc.Refresh(ctxAt(refreshAt), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, login.Token, result.Token)

	// The old access token is dead, the new one works for a fresh window.
	_, err = f.svc.VerifySession(ctxAt(refreshAt), login.Token, models.KindClient)
	assert.Same(t, errSessionNotFound, err)
	_, err = f.svc.VerifySession(ctxAt(refreshAt.Add(23*time.Hour)), result.Token, models.KindClient)
	assert.NoError(t, err)

	assert.Equal(t, 1, f.audits.CountByAction(audit.ActionTokenRefreshed))
}

// The refresh token is not rotated: the same one keeps working across
// multiple refreshes until its own expiry.
func TestRefresh_TokenNotRotated(t *testing.T) {
	f := newFixture(t)
	issuedAt := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

	login, err := f.svc.Login(ctxAt(issuedAt), models.KindClient, testOwnerEmail, testOwnerSecret)
	require.NoError(t, err)

	first, err := f.svc.Refresh(ctxAt(issuedAt.Add(20*time.Hour)), login.RefreshToken)
	require.NoError(t, err)
	second, err := f.svc.Refresh(ctxAt(issuedAt.Add(40*time.Hour)), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, first.Token, second.Token)
}

func TestRefresh_PastRefreshExpiry(t *testing.T) {
	f := newFixture(t)
	issuedAt := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)

	login, err := f.svc.Login(ctxAt(issuedAt), models.KindClient, testOwnerEmail, testOwnerSecret)
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctxAt(issuedAt.Add(30*24*time.Hour+time.Minute)), login.RefreshToken)
	assert.Same(t, errSessionNotFound, err)
}

func TestRefresh_AfterLogout(t *testing.T) {
	f := newFixture(t)
	issuedAt := time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC)
	ctx := ctxAt(issuedAt)

	login, err := f.svc.Login(ctx, models.KindClient, testOwnerEmail, testOwnerSecret)
	require.NoError(t, err)
	f.svc.Logout(ctx, login.Token)

	_, err = f.svc.Refresh(ctxAt(issuedAt.Add(time.Hour)), login.RefreshToken)
	assert.Same(t, errSessionNotFound, err)
}

func TestRefresh_UnknownToken(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Refresh(ctxAt(time.Now()), "never-issued")
	assert.Same(t, errSessionNotFound, err)
	_, err = f.svc.Refresh(ctxAt(time.Now()), "")
	assert.Same(t, errSessionNotFound, err)
}

// God sessions have no refresh token; presenting a god access token on the
// refresh path finds nothing.
func TestRefresh_GodSessionCannotRefresh(t *testing.T) {
	f := newFixture(t)
	ctx := ctxAt(time.Date(2026, 6, 20, 12, 0, 0, 0, time.UTC))

	login, err := f.svc.Login(ctx, models.KindGod, testGodUsername, testGodPassword)
	require.NoError(t, err)

	_, err = f.svc.Refresh(ctx, login.Token)
	assert.Same(t, errSessionNotFound, err)
}
