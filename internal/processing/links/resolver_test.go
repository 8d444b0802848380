package links

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
}

func testLink(expiresAt *time.Time) *Link {
	return &Link{
		ID:          "link-1",
		Code:        "abc1234",
		OriginalURL: "https://example.com/a",
		IsActive:    true,
		ExpiresAt:   expiresAt,
		CreatedAt:   fixedNow().Add(-time.Hour),
	}
}

func newTestResolver(repo LinkRepository, cache Cache) *Resolver {
	r := NewResolver(repo, cache)
	r.now = fixedNow
	return r
}

func TestResolveCacheMissPopulatesCache(t *testing.T) {
	repo := &mockLinkRepository{
		findByCodeFunc: func(ctx context.Context, code string) (*Link, error) {
			return testLink(nil), nil
		},
	}
	cache := newMockCache()
	resolver := newTestResolver(repo, cache)

	link, err := resolver.Resolve(context.Background(), "abc1234")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if link.OriginalURL != "https://example.com/a" {
		t.Errorf("OriginalURL = %q", link.OriginalURL)
	}

	entry, ok := cache.entries["link:code:abc1234"]
	if !ok {
		t.Fatal("expected cache entry under link:code:abc1234")
	}
	if entry.ttl != 5*time.Minute {
		t.Errorf("ttl = %v, want 5m for a link without expiry", entry.ttl)
	}

	var cached cachedLink
	if err := json.Unmarshal([]byte(entry.value), &cached); err != nil {
		t.Fatalf("cache entry is not valid JSON: %v", err)
	}
	if cached.LinkID != "link-1" || !cached.IsActive {
		t.Errorf("cached entry = %+v", cached)
	}
}

func TestResolveCacheHitSkipsStore(t *testing.T) {
	repo := &mockLinkRepository{
		findByCodeFunc: func(ctx context.Context, code string) (*Link, error) {
			return testLink(nil), nil
		},
	}
	cache := newMockCache()
	resolver := newTestResolver(repo, cache)

	if _, err := resolver.Resolve(context.Background(), "abc1234"); err != nil {
		t.Fatalf("first Resolve() error = %v", err)
	}
	if _, err := resolver.Resolve(context.Background(), "abc1234"); err != nil {
		t.Fatalf("second Resolve() error = %v", err)
	}

	if repo.findCalls != 1 {
		t.Errorf("store reads = %d, want 1 (second resolve served from cache)", repo.findCalls)
	}
}

func TestResolveTTLTracksExpiry(t *testing.T) {
	expires := fixedNow().Add(10 * time.Second)
	repo := &mockLinkRepository{
		findByCodeFunc: func(ctx context.Context, code string) (*Link, error) {
			return testLink(&expires), nil
		},
	}
	cache := newMockCache()
	resolver := newTestResolver(repo, cache)

	if _, err := resolver.Resolve(context.Background(), "abc1234"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	entry := cache.entries["link:code:abc1234"]
	if entry.ttl != 10*time.Second {
		t.Errorf("ttl = %v, want 10s", entry.ttl)
	}
}

func TestResolveTTLFlooredAtOneSecond(t *testing.T) {
	expires := fixedNow().Add(200 * time.Millisecond)
	repo := &mockLinkRepository{
		findByCodeFunc: func(ctx context.Context, code string) (*Link, error) {
			return testLink(&expires), nil
		},
	}
	cache := newMockCache()
	resolver := newTestResolver(repo, cache)

	if _, err := resolver.Resolve(context.Background(), "abc1234"); err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}

	entry := cache.entries["link:code:abc1234"]
	if entry.ttl != time.Second {
		t.Errorf("ttl = %v, want floor of 1s", entry.ttl)
	}
}

func TestResolveCacheErrorFallsBackToStore(t *testing.T) {
	repo := &mockLinkRepository{
		findByCodeFunc: func(ctx context.Context, code string) (*Link, error) {
			return testLink(nil), nil
		},
	}
	cache := newMockCache()
	cache.getFunc = func(ctx context.Context, key string) (string, bool, error) {
		return "", false, errors.New("connection refused")
	}
	resolver := newTestResolver(repo, cache)

	link, err := resolver.Resolve(context.Background(), "abc1234")
	if err != nil {
		t.Fatalf("Resolve() error = %v, want cache failure swallowed", err)
	}
	if link.ID != "link-1" {
		t.Errorf("link.ID = %q", link.ID)
	}
}

func TestResolveCorruptCacheEntryFallsBackToStore(t *testing.T) {
	repo := &mockLinkRepository{
		findByCodeFunc: func(ctx context.Context, code string) (*Link, error) {
			return testLink(nil), nil
		},
	}
	cache := newMockCache()
	cache.entries["link:code:abc1234"] = cacheEntry{value: "{not json"}
	resolver := newTestResolver(repo, cache)

	link, err := resolver.Resolve(context.Background(), "abc1234")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if link.ID != "link-1" {
		t.Errorf("link.ID = %q", link.ID)
	}
	if repo.findCalls != 1 {
		t.Errorf("store reads = %d, want 1", repo.findCalls)
	}
}

func TestResolveSetFailureStillReturnsLink(t *testing.T) {
	repo := &mockLinkRepository{
		findByCodeFunc: func(ctx context.Context, code string) (*Link, error) {
			return testLink(nil), nil
		},
	}
	cache := newMockCache()
	cache.setFunc = func(ctx context.Context, key, value string, ttl time.Duration) error {
		return errors.New("write timeout")
	}
	resolver := newTestResolver(repo, cache)

	if _, err := resolver.Resolve(context.Background(), "abc1234"); err != nil {
		t.Fatalf("Resolve() error = %v, want cache write failure swallowed", err)
	}
}

func TestResolveNotFoundIsNotCached(t *testing.T) {
	repo := &mockLinkRepository{}
	cache := newMockCache()
	resolver := newTestResolver(repo, cache)

	for range 3 {
		if _, err := resolver.Resolve(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
			t.Fatalf("Resolve() error = %v, want ErrNotFound", err)
		}
	}

	if repo.findCalls != 3 {
		t.Errorf("store reads = %d, want 3 (no negative caching)", repo.findCalls)
	}
	if len(cache.entries) != 0 {
		t.Errorf("cache entries = %d, want none for a miss", len(cache.entries))
	}
}

func TestResolveStoreFailureIsWrapped(t *testing.T) {
	repo := &mockLinkRepository{
		findByCodeFunc: func(ctx context.Context, code string) (*Link, error) {
			return nil, errors.New("primary stepped down")
		},
	}
	resolver := newTestResolver(repo, newMockCache())

	_, err := resolver.Resolve(context.Background(), "abc1234")
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("Resolve() error = %v, want ErrStoreUnavailable", err)
	}
}

func TestResolveNilCache(t *testing.T) {
	repo := &mockLinkRepository{
		findByCodeFunc: func(ctx context.Context, code string) (*Link, error) {
			return testLink(nil), nil
		},
	}
	resolver := newTestResolver(repo, nil)

	link, err := resolver.Resolve(context.Background(), "abc1234")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if link.ID != "link-1" {
		t.Errorf("link.ID = %q", link.ID)
	}
}
