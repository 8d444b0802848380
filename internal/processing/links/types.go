package links

import "time"

// Link is the durable record a short code maps to. Code is unique across
// all links and never changes after creation; custom aliases share the same
// namespace.
type Link struct {
	ID          string
	Code        string
	OriginalURL string
	IsActive    bool
	ExpiresAt   *time.Time
	CreatedAt   time.Time
	OwnerID     string
}

// cachedLink is the denormalized cache projection of a Link. The JSON field
// names are a wire contract shared with other readers of the same Redis
// keyspace, so they must not change.
type cachedLink struct {
	LinkID      string     `json:"linkId"`
	OriginalURL string     `json:"originalUrl"`
	ExpiresAt   *time.Time `json:"expiresAt"`
	IsActive    bool       `json:"isActive"`
}

// ClickContext carries per-request attributes recorded on a click. Empty
// strings mean unknown and are published as nulls.
type ClickContext struct {
	Referrer  string
	UserAgent string
	IPHash    string
	Country   string
}

// CreateLinkInput is the request to mint a new short link.
type CreateLinkInput struct {
	OriginalURL string
	CustomAlias string
	ExpiresAt   *time.Time
	OwnerID     string
}
