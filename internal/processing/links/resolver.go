package links

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/shortloop/shortloop/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	// cacheKeyPrefix namespaces link entries inside the shared Redis
	// keyspace (rate-limit counters live under "rl:").
	cacheKeyPrefix = "link:code:"

	// defaultCacheTTL bounds staleness for links without an expiry.
	defaultCacheTTL = 5 * time.Minute

	defaultCacheOpTimeout = 250 * time.Millisecond
)

// Resolver resolves a short code to its link data, cache-aside: read the
// cache, fall back to the durable store on a miss, repopulate the cache with
// a TTL derived from the link's expiry. A cache hit is returned as-is with
// no re-validation against the store; staleness is bounded by the TTL.
//
// Concurrent misses for the same code may each hit the store and each write
// the cache. That is fine: the value is deterministic per code and the cache
// write is an idempotent overwrite, so last-write-wins converges.
type Resolver struct {
	links        LinkRepository
	cache        Cache
	defaultTTL   time.Duration
	cacheTimeout time.Duration
	now          func() time.Time
}

func NewResolver(links LinkRepository, cache Cache) *Resolver {
	return &Resolver{
		links:        links,
		cache:        cache,
		defaultTTL:   defaultCacheTTL,
		cacheTimeout: defaultCacheOpTimeout,
		now:          time.Now,
	}
}

// Resolve returns the link for code, or ErrNotFound. Cache failures degrade
// to a store read (logged, never surfaced); store failures are fatal to the
// resolution and wrapped in ErrStoreUnavailable.
func (r *Resolver) Resolve(ctx context.Context, code string) (*Link, error) {
	key := cacheKeyPrefix + code

	if link, ok := r.fromCache(ctx, key, code); ok {
		return link, nil
	}

	link, err := r.links.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// No negative caching: repeated misses for unknown codes
			// always reach the store.
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	r.populate(ctx, key, link)
	return link, nil
}

func (r *Resolver) fromCache(ctx context.Context, key, code string) (*Link, bool) {
	if r.cache == nil {
		return nil, false
	}

	cacheCtx, cancel := context.WithTimeout(ctx, r.cacheTimeout)
	defer cancel()

	raw, ok, err := r.cache.Get(cacheCtx, key)
	if err != nil {
		logger.Warn("link cache read failed, falling back to store",
			zap.Error(err), zap.String("code", code))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var entry cachedLink
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		logger.Warn("corrupt link cache entry, falling back to store",
			zap.Error(err), zap.String("code", code))
		return nil, false
	}

	return &Link{
		ID:          entry.LinkID,
		Code:        code,
		OriginalURL: entry.OriginalURL,
		IsActive:    entry.IsActive,
		ExpiresAt:   entry.ExpiresAt,
	}, true
}

// populate writes the cache entry for a freshly loaded link. Failures are
// logged and swallowed; the caller already holds a correct result.
func (r *Resolver) populate(ctx context.Context, key string, link *Link) {
	if r.cache == nil {
		return
	}

	payload, err := json.Marshal(cachedLink{
		LinkID:      link.ID,
		OriginalURL: link.OriginalURL,
		ExpiresAt:   link.ExpiresAt,
		IsActive:    link.IsActive,
	})
	if err != nil {
		return
	}

	cacheCtx, cancel := context.WithTimeout(ctx, r.cacheTimeout)
	defer cancel()

	if err := r.cache.Set(cacheCtx, key, string(payload), r.entryTTL(link)); err != nil {
		logger.Warn("link cache write failed", zap.Error(err), zap.String("code", link.Code))
	}
}

// entryTTL bounds the cache entry's lifetime: an expiring link is cached
// until its expiry (floored at 1s so the TTL is never zero or negative),
// anything else for the fixed default.
func (r *Resolver) entryTTL(link *Link) time.Duration {
	if link.ExpiresAt == nil {
		return r.defaultTTL
	}
	secs := int64(link.ExpiresAt.Sub(r.now().UTC()).Seconds())
	if secs < 1 {
		secs = 1
	}
	return time.Duration(secs) * time.Second
}
