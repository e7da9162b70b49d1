package delegation

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kherembourg/RefletsDeBonheur-sub000/internal/auth/models"
	id "github.com/kherembourg/RefletsDeBonheur-sub000/pkg/domain"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
)

func makeGrant(tokenValue string, maxUses int, expiresAt time.Time) *models.DelegationGrant {
	return &models.DelegationGrant{
		ID:             id.NewGrantID(),
		IssuerID:       id.NewSuperuserID(),
		TargetTenantID: id.NewTenantID(),
		Token:          tokenValue,
		IssuedAt:       time.Now(),
		ExpiresAt:      expiresAt,
		MaxUses:        maxUses,
	}
}

func TestConsume_SingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Now()
	require.NoError(t, store.Create(ctx, makeGrant("grant-1", 1, now.Add(15*time.Minute))))

	grant, err := store.Consume(ctx, "grant-1", now)
	require.NoError(t, err)
	assert.Equal(t, 1, grant.UsedCount)
	require.NotNil(t, grant.UsedAt)

	// The non-consuming read observes the spent state.
	read, err := store.FindByToken(ctx, "grant-1")
	require.NoError(t, err)
	assert.Equal(t, 1, read.UsedCount)
	assert.False(t, read.Consumable(now))

	_, err = store.Consume(ctx, "grant-1", now)
	require.Error(t, err)
	assert.True(t, errors.Is(err, sentinel.ErrExhausted))
}

func TestConsume_ExpiredAndMissing(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Now()
	require.NoError(t, store.Create(ctx, makeGrant("grant-old", 1, now.Add(-time.Minute))))

	_, err := store.Consume(ctx, "grant-old", now)
	assert.True(t, errors.Is(err, sentinel.ErrExhausted))

	_, err = store.Consume(ctx, "no-such-grant", now)
	assert.True(t, errors.Is(err, sentinel.ErrNotFound))
}

// Many goroutines racing one single-use grant must produce exactly one
// success.
func TestConsume_ConcurrentSingleUse(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Now()
	require.NoError(t, store.Create(ctx, makeGrant("grant-race", 1, now.Add(15*time.Minute))))

	const goroutines = 50
	var wg sync.WaitGroup
	var successCount atomic.Int32
	var exhaustedCount atomic.Int32
	var otherErrors atomic.Int32

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := store.Consume(ctx, "grant-race", now)
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, sentinel.ErrExhausted):
				exhaustedCount.Add(1)
			default:
				otherErrors.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), successCount.Load(), "exactly one consume should succeed")
	assert.Equal(t, int32(goroutines-1), exhaustedCount.Load())
	assert.Equal(t, int32(0), otherErrors.Load())
}

func TestConsume_MultiUseHonorsMax(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Now()
	require.NoError(t, store.Create(ctx, makeGrant("grant-multi", 3, now.Add(15*time.Minute))))

	for i := 1; i <= 3; i++ {
		grant, err := store.Consume(ctx, "grant-multi", now)
		require.NoError(t, err)
		assert.Equal(t, i, grant.UsedCount)
	}
	_, err := store.Consume(ctx, "grant-multi", now)
	assert.True(t, errors.Is(err, sentinel.ErrExhausted))
}

func TestDeleteExpired_IdempotentAndScoped(t *testing.T) {
	ctx := context.Background()
	store := NewInMemory()
	now := time.Now()

	require.NoError(t, store.Create(ctx, makeGrant("live", 1, now.Add(10*time.Minute))))
	require.NoError(t, store.Create(ctx, makeGrant("dead-1", 1, now.Add(-time.Minute))))
	require.NoError(t, store.Create(ctx, makeGrant("dead-2", 1, now.Add(-time.Hour))))

	deleted, err := store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	// Second sweep finds nothing and touches nothing.
	deleted, err = store.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)

	_, err = store.Consume(ctx, "live", now)
	require.NoError(t, err)
}
