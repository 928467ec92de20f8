package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relichub/backend/domain"
)

func TestCachePutGetEvict(t *testing.T) {
	cache := NewCacheService(time.Minute, 0, time.Second)
	ctx := context.Background()

	cache.Put(ctx, "favorites:owner-1", map[string]string{"relic": "r1"}, 0)

	var got map[string]string
	require.True(t, cache.Get(ctx, "favorites:owner-1", &got))
	assert.Equal(t, "r1", got["relic"])

	cache.Evict(ctx, "favorites:owner-1")
	assert.False(t, cache.Get(ctx, "favorites:owner-1", &got))
}

func TestCacheMiss(t *testing.T) {
	cache := NewCacheService(time.Minute, 0, time.Second)
	var dest string
	assert.False(t, cache.Get(context.Background(), "absent", &dest))
}

func TestCacheEntryExpires(t *testing.T) {
	cache := NewCacheService(time.Minute, 0, time.Second)
	ctx := context.Background()

	cache.Put(ctx, "key", "value", 10*time.Millisecond)
	time.Sleep(25 * time.Millisecond)

	var dest string
	assert.False(t, cache.Get(ctx, "key", &dest))
}

func TestEvictByPrefixScopesToOwner(t *testing.T) {
	cache := NewCacheService(time.Minute, 0, time.Second)
	ctx := context.Background()

	cache.Put(ctx, "favorites:owner-1:flag:r1", true, 0)
	cache.Put(ctx, "favorites:owner-1:count", 3, 0)
	cache.Put(ctx, "favorites:owner-2:flag:r1", true, 0)
	cache.Put(ctx, "favorites:owner-1", "blob", 0)

	cache.EvictByPrefix(ctx, "favorites:owner-1:")

	var b bool
	var n int
	var s string
	assert.False(t, cache.Get(ctx, "favorites:owner-1:flag:r1", &b))
	assert.False(t, cache.Get(ctx, "favorites:owner-1:count", &n))
	assert.True(t, cache.Get(ctx, "favorites:owner-2:flag:r1", &b))
	assert.True(t, cache.Get(ctx, "favorites:owner-1", &s))
}

func TestWithLockMutualExclusion(t *testing.T) {
	cache := NewCacheService(time.Minute, 0, 5*time.Second)
	ctx := context.Background()

	var mu sync.Mutex
	var active, maxActive int

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := cache.WithLock(ctx, "favorites:lock:owner-1:write", func(ctx context.Context) error {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				time.Sleep(2 * time.Millisecond)

				mu.Lock()
				active--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxActive)
}

func TestWithLockBoundedWait(t *testing.T) {
	cache := NewCacheService(time.Minute, 0, 20*time.Millisecond)
	ctx := context.Background()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = cache.WithLock(ctx, "lock", func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held

	err := cache.WithLock(ctx, "lock", func(ctx context.Context) error { return nil })
	require.ErrorIs(t, err, domain.ErrLockNotAcquired)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeLocked))

	close(release)
}

func TestWithLockContextCancelled(t *testing.T) {
	cache := NewCacheService(time.Minute, 0, time.Minute)

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = cache.WithLock(context.Background(), "lock", func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cache.WithLock(ctx, "lock", func(ctx context.Context) error { return nil })
	require.Error(t, err)
	assert.True(t, domain.IsDomainError(err, domain.ErrCodeLocked))
}

func TestWithLockDifferentNamesDoNotBlock(t *testing.T) {
	cache := NewCacheService(time.Minute, 0, 50*time.Millisecond)
	ctx := context.Background()

	held := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = cache.WithLock(ctx, "favorites:lock:owner-1:write", func(ctx context.Context) error {
			close(held)
			<-release
			return nil
		})
	}()
	<-held
	defer close(release)

	err := cache.WithLock(ctx, "favorites:lock:owner-2:write", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}

func TestWithLockReleasesOnError(t *testing.T) {
	cache := NewCacheService(time.Minute, 0, 50*time.Millisecond)
	ctx := context.Background()

	err := cache.WithLock(ctx, "lock", func(ctx context.Context) error {
		return domain.ErrInvalidPayload
	})
	require.ErrorIs(t, err, domain.ErrInvalidPayload)

	// lock must be free again
	err = cache.WithLock(ctx, "lock", func(ctx context.Context) error { return nil })
	assert.NoError(t, err)
}
