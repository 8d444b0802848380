package links

import (
	"context"
	"errors"
	"time"
)

var (
	ErrNotFound     = errors.New("link not found")
	ErrReservedCode = errors.New("code is a reserved path segment")
	ErrInactive     = errors.New("link inactive")
	ErrExpired      = errors.New("link expired")
	ErrUnsafeTarget = errors.New("unsafe redirect target")
	ErrInvalidURL   = errors.New("invalid url")
	ErrInvalidAlias = errors.New("invalid custom alias")
	ErrCodeTaken    = errors.New("code taken")

	// ErrStoreUnavailable wraps durable-store I/O failures. There is no
	// cache-only fallback: the cache cannot serve as sole source of truth.
	ErrStoreUnavailable = errors.New("link store unavailable")
)

// LinkRepository is the durable store for links.
type LinkRepository interface {
	Insert(ctx context.Context, link *Link) error
	FindByCode(ctx context.Context, code string) (*Link, error)
}

// Cache is the key-value store used for the cache-aside read path. Get
// reports a miss with ok=false rather than an error.
type Cache interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Publisher emits events to the click stream. Implementations must be safe
// for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value []byte) error
}

// CodeGenerator mints random short codes.
type CodeGenerator interface {
	Generate(length int) (string, error)
}
