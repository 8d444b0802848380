package middleware

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/shortloop/shortloop/internal/constants"
	"github.com/shortloop/shortloop/internal/infrastructure/logger"
	"github.com/shortloop/shortloop/internal/ratelimit"
	"github.com/shortloop/shortloop/pkg/httputils"
	"go.uber.org/zap"
)

// RateLimitOptions configures one rate-limited route group. FailOpen decides
// what happens when the counter store is unreachable: redirects let traffic
// through, the API rejects with 503.
type RateLimitOptions struct {
	Limiter  *ratelimit.FixedWindowLimiter
	Limit    int64
	Window   time.Duration
	FailOpen bool
	// KeyFunc derives the bucket key from the request.
	KeyFunc func(r *http.Request) string
}

func RateLimitMiddleware(opts RateLimitOptions) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFunc(r)

			ctx, cancel := context.WithTimeout(r.Context(), 200*time.Millisecond)
			defer cancel()

			res, err := opts.Limiter.Allow(ctx, key, opts.Limit, opts.Window)
			if err != nil {
				if opts.FailOpen {
					logger.Warn("rate limit store unavailable, allowing request",
						zap.Error(err), zap.String("key", key))
					next.ServeHTTP(w, r)
					return
				}
				logger.Error("rate limit store unavailable, rejecting request",
					zap.Error(err), zap.String("key", key))
				httputils.WriteAPIError(w, r, constants.ErrServiceUnavailable)
				return
			}

			setRateLimitHeaders(w, res)

			if !res.Allowed {
				httputils.WriteAPIError(w, r, constants.ErrRateLimited)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// setRateLimitHeaders exposes the decision on every limited response,
// allowed or denied.
func setRateLimitHeaders(w http.ResponseWriter, res ratelimit.Result) {
	w.Header().Set("x-ratelimit-limit", strconv.FormatInt(res.Limit, 10))
	w.Header().Set("x-ratelimit-remaining", strconv.FormatInt(res.Remaining, 10))
	w.Header().Set("x-ratelimit-reset", strconv.FormatInt(res.ResetSeconds, 10))
}
