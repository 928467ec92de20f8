package memory

import (
	"context"
	"math/rand"
	"strings"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type entry struct {
	payload   []byte
	expiresAt time.Time
}

// CacheService is an in-process implementation of repository.CacheService
// used when no Redis is configured (local development) and in tests. Locks
// are plain in-process mutual exclusion with the same bounded-wait contract
// as the Redis implementation; auto-expiring holds are unnecessary because a
// holder cannot exit without running its release.
type CacheService struct {
	baseTTL    time.Duration
	jitterBand time.Duration
	lockWait   time.Duration

	mu      sync.Mutex
	entries map[string]entry
	locks   map[string]chan struct{}
}

// NewCacheService creates the in-process cache.
func NewCacheService(baseTTL, jitterBand, lockWait time.Duration) *CacheService {
	if baseTTL <= 0 {
		baseTTL = 30 * time.Minute
	}
	if jitterBand < 0 || jitterBand >= baseTTL {
		jitterBand = baseTTL / 10
	}
	if lockWait <= 0 {
		lockWait = 5 * time.Second
	}
	return &CacheService{
		baseTTL:    baseTTL,
		jitterBand: jitterBand,
		lockWait:   lockWait,
		entries:    make(map[string]entry),
		locks:      make(map[string]chan struct{}),
	}
}

func (s *CacheService) Get(_ context.Context, key string, dest any) bool {
	s.mu.Lock()
	e, ok := s.entries[key]
	if ok && time.Now().After(e.expiresAt) {
		delete(s.entries, key)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return false
	}
	return json.Unmarshal(e.payload, dest) == nil
}

func (s *CacheService) Put(_ context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		return
	}
	if ttl <= 0 {
		ttl = s.baseTTL
	}
	if s.jitterBand > 0 {
		ttl += time.Duration(rand.Int63n(int64(2*s.jitterBand)+1)) - s.jitterBand
	}
	s.mu.Lock()
	s.entries[key] = entry{payload: payload, expiresAt: time.Now().Add(ttl)}
	s.mu.Unlock()
}

func (s *CacheService) Evict(_ context.Context, keys ...string) {
	s.mu.Lock()
	for _, key := range keys {
		delete(s.entries, key)
	}
	s.mu.Unlock()
}

func (s *CacheService) EvictByPrefix(_ context.Context, prefix string) {
	if prefix == "" {
		return
	}
	s.mu.Lock()
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of live entries, expired ones included until read.
func (s *CacheService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *CacheService) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	s.mu.Lock()
	ch, ok := s.locks[name]
	if !ok {
		ch = make(chan struct{}, 1)
		s.locks[name] = ch
	}
	s.mu.Unlock()

	select {
	case ch <- struct{}{}:
	case <-time.After(s.lockWait):
		return domain.ErrLockNotAcquired
	case <-ctx.Done():
		return domain.WrapError(domain.ErrCodeLocked, "interrupted waiting for lock", ctx.Err())
	}

	defer func() { <-ch }()
	return fn(ctx)
}

var _ repository.CacheService = (*CacheService)(nil)
