package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestJitterTTLStaysInsideBand(t *testing.T) {
	base := 30 * time.Minute
	band := 3 * time.Minute

	for i := 0; i < 100; i++ {
		ttl := jitterTTL(base, band)
		assert.GreaterOrEqual(t, ttl, base-band)
		assert.LessOrEqual(t, ttl, base+band)
	}
}

func TestJitterTTLSpreadsExpiries(t *testing.T) {
	base := 30 * time.Minute
	band := 3 * time.Minute

	seen := make(map[time.Duration]struct{})
	for i := 0; i < 50; i++ {
		seen[jitterTTL(base, band)] = struct{}{}
	}
	// a uniform draw over a six-minute band virtually never collapses
	assert.Greater(t, len(seen), 1)
}

func TestJitterTTLZeroBandPassesThrough(t *testing.T) {
	assert.Equal(t, time.Minute, jitterTTL(time.Minute, 0))
}

func TestJitterTTLFloorsAtOneSecond(t *testing.T) {
	for i := 0; i < 50; i++ {
		assert.GreaterOrEqual(t, jitterTTL(time.Second, 30*time.Second), time.Second)
	}
}

func TestCacheConfigNormalize(t *testing.T) {
	var cfg CacheConfig
	cfg.normalize()

	assert.Equal(t, 30*time.Minute, cfg.BaseTTL)
	assert.Equal(t, 3*time.Minute, cfg.JitterBand)
	assert.Equal(t, 5*time.Second, cfg.LockWait)
	assert.Equal(t, 30*time.Second, cfg.LockHold)
	assert.Equal(t, 50*time.Millisecond, cfg.LockRetry)
}

func TestCacheConfigNormalizeRejectsOversizedBand(t *testing.T) {
	cfg := CacheConfig{BaseTTL: time.Minute, JitterBand: 2 * time.Minute}
	cfg.normalize()
	assert.Equal(t, time.Minute/10, cfg.JitterBand)
}
