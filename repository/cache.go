package repository

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Aggregate type segments used in cache key namespaces.
const (
	AggFavorites = "favorites"
	AggComments  = "comments"
	AggGalleries = "galleries"
)

// CacheService is the cache-coherence boundary shared by the incremental
// repositories and the application services. The backing store stays
// authoritative: implementations treat every cache failure as a miss or a
// no-op, log it, and never surface it to the caller. The single exception is
// WithLock, which reports a failed acquisition as domain.ErrLockNotAcquired
// so state-changing call sites can fail hard.
type CacheService interface {
	// Get unmarshals the entry under key into dest and reports a hit.
	Get(ctx context.Context, key string, dest any) bool

	// Put stores value under key. A ttl of zero applies the service's base
	// TTL; every effective TTL is jittered inside a fixed band so entries
	// written together do not expire together.
	Put(ctx context.Context, key string, value any, ttl time.Duration)

	// Evict removes individual entries.
	Evict(ctx context.Context, keys ...string)

	// EvictByPrefix removes every entry whose key starts with prefix.
	EvictByPrefix(ctx context.Context, prefix string)

	// WithLock runs fn while holding the named mutual-exclusion lock. The
	// wait for acquisition is bounded and the hold auto-expires, so a
	// crashed holder self-heals. The lock is released on every exit path.
	WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error
}

// Segments reserved for sub-namespaces inside an aggregate's key space.
const (
	segSubject = "relic"
	segLock    = "lock"
)

// ownerSegment remaps an owner id equal to a reserved segment so that an
// owner's prefix never covers the relic-scoped pages or the locks.
func ownerSegment(ownerID string) string {
	if ownerID == segSubject || ownerID == segLock {
		return "id:" + ownerID
	}
	return ownerID
}

// AggregateKey addresses the cached aggregate blob: "{agg}:{owner}".
func AggregateKey(agg, ownerID string) string {
	return fmt.Sprintf("%s:%s", agg, ownerSegment(ownerID))
}

// OwnerPrefix scopes every derived cache entry of one owner:
// "{agg}:{owner}:". Evicting it after a save removes derived lists, counts
// and flags without touching other owners.
func OwnerPrefix(agg, ownerID string) string {
	return fmt.Sprintf("%s:%s:", agg, ownerSegment(ownerID))
}

// DerivedKey addresses one derived query result:
// "{agg}:{owner}:{query}:{param...}".
func DerivedKey(agg, ownerID, query string, params ...string) string {
	base := fmt.Sprintf("%s:%s:%s", agg, ownerSegment(ownerID), query)
	if len(params) == 0 {
		return base
	}
	return base + ":" + strings.Join(params, ":")
}

// SubjectPrefix scopes caches keyed by relic rather than by owner:
// "{agg}:relic:{relicID}:". One author's mutation can stale entries under a
// different relic-keyed dimension, e.g. a relic's approved-comment pages.
func SubjectPrefix(agg, relicID string) string {
	return fmt.Sprintf("%s:relic:%s:", agg, relicID)
}

// SubjectKey addresses one relic-scoped query result.
func SubjectKey(agg, relicID, query string, params ...string) string {
	base := fmt.Sprintf("%s:relic:%s:%s", agg, relicID, query)
	if len(params) == 0 {
		return base
	}
	return base + ":" + strings.Join(params, ":")
}

// LockName builds the mutual-exclusion key "{agg}:lock:{owner}:{operation}".
func LockName(agg, ownerID, operation string) string {
	return fmt.Sprintf("%s:lock:%s:%s", agg, ownerID, operation)
}
