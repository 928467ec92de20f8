package redis

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
	redislib "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/relichub/backend/domain"
	"github.com/relichub/backend/repository"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// releaseScript deletes the lock key only while we still hold it, so an
// expired hold taken over by another writer is never released by us.
var releaseScript = redislib.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0
`)

const scanBatch = 200

// CacheConfig tunes TTL jitter and the named-lock budgets.
type CacheConfig struct {
	BaseTTL    time.Duration
	JitterBand time.Duration
	LockWait   time.Duration
	LockHold   time.Duration
	LockRetry  time.Duration
}

func (c *CacheConfig) normalize() {
	if c.BaseTTL <= 0 {
		c.BaseTTL = 30 * time.Minute
	}
	if c.JitterBand < 0 || c.JitterBand >= c.BaseTTL {
		c.JitterBand = c.BaseTTL / 10
	}
	if c.LockWait <= 0 {
		c.LockWait = 5 * time.Second
	}
	if c.LockHold <= 0 {
		c.LockHold = 30 * time.Second
	}
	if c.LockRetry <= 0 {
		c.LockRetry = 50 * time.Millisecond
	}
}

type cacheService struct {
	client *redislib.Client
	cfg    CacheConfig
	logger *zap.Logger
}

// NewCacheService creates the Redis-backed cache coherence service. The
// cache is a best-effort derived view: every failure below this boundary is
// logged and swallowed, except a failed lock acquisition which surfaces as
// domain.ErrLockNotAcquired.
func NewCacheService(client *redislib.Client, cfg CacheConfig, logger *zap.Logger) repository.CacheService {
	cfg.normalize()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &cacheService{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *cacheService) Get(ctx context.Context, key string, dest any) bool {
	payload, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redislib.Nil {
			s.logger.Warn("cache get failed", zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		s.logger.Warn("cache entry corrupt, evicting", zap.String("key", key), zap.Error(err))
		s.Evict(ctx, key)
		return false
	}
	return true
}

func (s *cacheService) Put(ctx context.Context, key string, value any, ttl time.Duration) {
	payload, err := json.Marshal(value)
	if err != nil {
		s.logger.Warn("cache marshal failed", zap.String("key", key), zap.Error(err))
		return
	}
	if ttl <= 0 {
		ttl = s.cfg.BaseTTL
	}
	if err := s.client.Set(ctx, key, payload, jitterTTL(ttl, s.cfg.JitterBand)).Err(); err != nil {
		s.logger.Warn("cache put failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *cacheService) Evict(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.Warn("cache evict failed", zap.Strings("keys", keys), zap.Error(err))
	}
}

func (s *cacheService) EvictByPrefix(ctx context.Context, prefix string) {
	if prefix == "" {
		return
	}
	iter := s.client.Scan(ctx, 0, prefix+"*", scanBatch).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) >= scanBatch {
			s.Evict(ctx, batch...)
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		s.logger.Warn("cache prefix scan failed", zap.String("prefix", prefix), zap.Error(err))
	}
	s.Evict(ctx, batch...)
}

// WithLock acquires the named lock with a bounded wait and a bounded,
// auto-expiring hold, runs fn while held, and releases on every exit path.
// A wait that exhausts its budget returns domain.ErrLockNotAcquired; a
// context cancelled mid-wait returns it wrapped around ctx.Err().
func (s *cacheService) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	token := uuid.NewString()
	deadline := time.Now().Add(s.cfg.LockWait)

	for {
		acquired, err := s.client.SetNX(ctx, name, token, s.cfg.LockHold).Result()
		if err != nil {
			s.logger.Warn("lock attempt failed", zap.String("lock", name), zap.Error(err))
		}
		if acquired {
			break
		}
		if time.Now().After(deadline) {
			return domain.ErrLockNotAcquired
		}
		select {
		case <-ctx.Done():
			return domain.WrapError(domain.ErrCodeLocked, "interrupted waiting for lock", ctx.Err())
		case <-time.After(s.cfg.LockRetry):
		}
	}

	defer s.release(context.WithoutCancel(ctx), name, token)
	return fn(ctx)
}

func (s *cacheService) release(ctx context.Context, name, token string) {
	if err := releaseScript.Run(ctx, s.client, []string{name}, token).Err(); err != nil && err != redislib.Nil {
		s.logger.Warn("lock release failed", zap.String("lock", name), zap.Error(err))
	}
}

// jitterTTL spreads an expiry uniformly across [base-band, base+band] so
// entries written together do not expire together.
func jitterTTL(base, band time.Duration) time.Duration {
	if band <= 0 {
		return base
	}
	offset := time.Duration(rand.Int63n(int64(2*band)+1)) - band
	ttl := base + offset
	if ttl < time.Second {
		ttl = time.Second
	}
	return ttl
}
