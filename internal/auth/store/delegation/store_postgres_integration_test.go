//go:build integration

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

	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/platform/sentinel"
	"github.com/kherembourg/RefletsDeBonheur-sub000/pkg/testutil/containers"
)

func TestPostgresDelegationStore(t *testing.T) {
	pg := containers.NewPostgresContainer(t)
	store := NewPostgres(pg.DB)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	t.Run("consume distinguishes missing from exhausted", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx))
		require.NoError(t, store.Create(ctx, makeGrant("grant-a", 1, now.Add(15*time.Minute))))

		grant, err := store.Consume(ctx, "grant-a", now)
		require.NoError(t, err)
		assert.Equal(t, 1, grant.UsedCount)
		require.NotNil(t, grant.UsedAt)

		_, err = store.Consume(ctx, "grant-a", now)
		assert.True(t, errors.Is(err, sentinel.ErrExhausted))
		_, err = store.Consume(ctx, "no-such-grant", now)
		assert.True(t, errors.Is(err, sentinel.ErrNotFound))

		read, err := store.FindByToken(ctx, "grant-a")
		require.NoError(t, err)
		assert.Equal(t, 1, read.UsedCount)
		require.NotNil(t, read.UsedAt)
	})

	t.Run("expired grant is inert", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx))
		require.NoError(t, store.Create(ctx, makeGrant("grant-b", 1, now.Add(-time.Minute))))

		_, err := store.Consume(ctx, "grant-b", now)
		assert.True(t, errors.Is(err, sentinel.ErrExhausted))
	})

	// The database serializes the conditional UPDATE: under real concurrency
	// a single-use grant yields exactly one success.
	t.Run("concurrent single use", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx))
		require.NoError(t, store.Create(ctx, makeGrant("grant-race", 1, now.Add(15*time.Minute))))

		const goroutines = 10
		var wg sync.WaitGroup
		var successCount atomic.Int32
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := store.Consume(ctx, "grant-race", now); err == nil {
					successCount.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), successCount.Load())
	})

	t.Run("delete expired is idempotent", func(t *testing.T) {
		require.NoError(t, pg.TruncateAll(ctx))
		require.NoError(t, store.Create(ctx, makeGrant("live", 1, now.Add(10*time.Minute))))
		require.NoError(t, store.Create(ctx, makeGrant("dead", 1, now.Add(-time.Hour))))

		deleted, err := store.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)

		deleted, err = store.DeleteExpired(ctx, now)
		require.NoError(t, err)
		assert.Equal(t, 0, deleted)

		_, err = store.Consume(ctx, "live", now)
		assert.NoError(t, err)
	})
}
