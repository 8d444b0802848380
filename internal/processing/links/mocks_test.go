package links

import (
	"context"
	"sync"
	"time"
)

type mockLinkRepository struct {
	insertFunc     func(ctx context.Context, link *Link) error
	findByCodeFunc func(ctx context.Context, code string) (*Link, error)

	mu        sync.Mutex
	inserts   []*Link
	findCalls int
}

func (m *mockLinkRepository) Insert(ctx context.Context, link *Link) error {
	m.mu.Lock()
	copied := *link
	m.inserts = append(m.inserts, &copied)
	m.mu.Unlock()
	if m.insertFunc != nil {
		return m.insertFunc(ctx, link)
	}
	return nil
}

func (m *mockLinkRepository) FindByCode(ctx context.Context, code string) (*Link, error) {
	m.mu.Lock()
	m.findCalls++
	m.mu.Unlock()
	if m.findByCodeFunc != nil {
		return m.findByCodeFunc(ctx, code)
	}
	return nil, ErrNotFound
}

type cacheEntry struct {
	value string
	ttl   time.Duration
}

type mockCache struct {
	getFunc func(ctx context.Context, key string) (string, bool, error)
	setFunc func(ctx context.Context, key, value string, ttl time.Duration) error

	mu      sync.Mutex
	entries map[string]cacheEntry
}

func newMockCache() *mockCache {
	return &mockCache{entries: make(map[string]cacheEntry)}
}

func (m *mockCache) Get(ctx context.Context, key string) (string, bool, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	return entry.value, ok, nil
}

func (m *mockCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if m.setFunc != nil {
		return m.setFunc(ctx, key, value, ttl)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = cacheEntry{value: value, ttl: ttl}
	return nil
}

type publishedMessage struct {
	topic string
	key   string
	value []byte
}

type mockPublisher struct {
	publishFunc func(ctx context.Context, topic, key string, value []byte) error

	mu       sync.Mutex
	messages []publishedMessage
}

func (m *mockPublisher) Publish(ctx context.Context, topic, key string, value []byte) error {
	m.mu.Lock()
	m.messages = append(m.messages, publishedMessage{topic: topic, key: key, value: value})
	m.mu.Unlock()
	if m.publishFunc != nil {
		return m.publishFunc(ctx, topic, key, value)
	}
	return nil
}

func (m *mockPublisher) published() []publishedMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]publishedMessage, len(m.messages))
	copy(out, m.messages)
	return out
}

type mockCodeGenerator struct {
	generateFunc func(length int) (string, error)
	calls        int
}

func (m *mockCodeGenerator) Generate(length int) (string, error) {
	m.calls++
	if m.generateFunc != nil {
		return m.generateFunc(length)
	}
	return "abc1234", nil
}
