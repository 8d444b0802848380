package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"strings"

	"github.com/shortloop/shortloop/internal/ratelimit"
)

const (
	APIKeyHeader = "X-API-Key"
	UserIDHeader = "X-User-Id"
)

// ResolveActor classifies the caller for rate limiting: API key first, then
// authenticated user, then IP. The raw API key never becomes a bucket key;
// its hash does, so the secret stays out of Redis.
func ResolveActor(r *http.Request) ratelimit.Actor {
	if apiKey := strings.TrimSpace(r.Header.Get(APIKeyHeader)); apiKey != "" {
		return ratelimit.APIKey(hashToken(apiKey))
	}
	if userID := strings.TrimSpace(r.Header.Get(UserIDHeader)); userID != "" {
		return ratelimit.User(userID)
	}
	return ratelimit.Anonymous(HashIP(r))
}

// HashIP returns a stable hash of the client IP. The raw address is never
// stored or published.
func HashIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err != nil || host == "" {
		host = strings.TrimSpace(r.RemoteAddr)
	}
	if host == "" {
		return ""
	}
	return hashToken(host)
}

func hashToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:16])
}
