package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
)

func makeSession(kind models.PrincipalKind, tokenValue string) *models.Session {
	now := time.Now()
	s := &models.Session{
		ID:            id.NewSessionID(),
		PrincipalID:   id.NewTenantID().String(),
		PrincipalKind: kind,
		Token:         tokenValue,
		IssuedAt:      now,
		ExpiresAt:     now.Add(24 * time.Hour),
		LastUsedAt:    now,
	}
	if kind == models.KindClient {
		s.RefreshToken = "refresh-" + tokenValue
		s.RefreshExpiresAt = now.Add(30 * 24 * time.Hour)
	}
	return s
}

func TestInMemory_FindByToken_KindMustMatch(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	sess := makeSession(models.KindClient, "tok-1")
	require.NoError(t, store.Create(ctx, sess))

	found, err := store.FindByToken(ctx, "tok-1", models.KindClient)
	require.NoError(t, err)
	assert.Equal(t, sess.ID, found.ID)

	// Same token under the wrong kind is not found.
	_, err = store.FindByToken(ctx, "tok-1", models.KindGod)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestInMemory_Create_RejectsDuplicateToken(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	require.NoError(t, store.Create(ctx, makeSession(models.KindGod, "tok-dup")))

	err := store.Create(ctx, makeSession(models.KindGod, "tok-dup"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrConflict))
}

func TestInMemory_Revoke_Idempotent(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	sess := makeSession(models.KindClient, "tok-2")
	require.NoError(t, store.Create(ctx, sess))
	now := time.Now()

	revoked, err := store.Revoke(ctx, "tok-2", models.RevocationReasonLogout, now)
	require.NoError(t, err)
	assert.True(t, revoked)

	// Second revoke is a no-op, not an error.
	revoked, err = store.Revoke(ctx, "tok-2", models.RevocationReasonLogout, now.Add(time.Minute))
	require.NoError(t, err)
	assert.False(t, revoked)

	found, err := store.FindByToken(ctx, "tok-2", models.KindClient)
	require.NoError(t, err)
	require.NotNil(t, found.RevokedAt)
	// Original marker survives the second call.
	assert.Equal(t, now.Unix(), found.RevokedAt.Unix())

	// Unknown token: no-op.
	revoked, err = store.Revoke(ctx, "no-such-token", models.RevocationReasonLogout, now)
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestInMemory_AdvanceAccessToken(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	sess := makeSession(models.KindClient, "tok-3")
	require.NoError(t, store.Create(ctx, sess))

	now := time.Now()
	newExpiry := now.Add(24 * time.Hour)
	require.NoError(t, store.AdvanceAccessToken(ctx, sess.ID, "tok-3-next", newExpiry, now))

	// Old token no longer resolves.
	_, err := store.FindByToken(ctx, "tok-3", models.KindClient)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))

	found, err := store.FindByToken(ctx, "tok-3-next", models.KindClient)
	require.NoError(t, err)
	assert.Equal(t, newExpiry.Unix(), found.ExpiresAt.Unix())

	// Refresh token still resolves to the same session.
	byRefresh, err := store.FindByRefreshToken(ctx, sess.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "tok-3-next", byRefresh.Token)
}

func TestInMemory_AdvanceAccessToken_RefusesRevoked(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	sess := makeSession(models.KindClient, "tok-4")
	require.NoError(t, store.Create(ctx, sess))

	_, err := store.Revoke(ctx, "tok-4", models.RevocationReasonLogout, time.Now())
	require.NoError(t, err)

	err = store.AdvanceAccessToken(ctx, sess.ID, "tok-4-next", time.Now().Add(time.Hour), time.Now())
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

func TestInMemory_RevokeAllForPrincipal(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()

	principal := id.NewTenantID().String()
	for _, tok := range []string{"a", "b", "c"} {
		sess := makeSession(models.KindClient, tok)
		sess.PrincipalID = principal
		require.NoError(t, store.Create(ctx, sess))
	}
	other := makeSession(models.KindClient, "other")
	require.NoError(t, store.Create(ctx, other))

	count, err := store.RevokeAllForPrincipal(ctx, principal, models.KindClient, models.RevocationReasonClientDeleted, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	// The unrelated principal's session is untouched.
	found, err := store.FindByToken(ctx, "other", models.KindClient)
	require.NoError(t, err)
	assert.Nil(t, found.RevokedAt)
}
