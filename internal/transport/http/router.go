package http

import (
	"net/http"
	"strings"

	"github.com/shortloop/shortloop/internal/config"
	"github.com/shortloop/shortloop/internal/infrastructure/telemetry"
	"github.com/shortloop/shortloop/internal/processing/links"
	"github.com/shortloop/shortloop/internal/ratelimit"
	"github.com/shortloop/shortloop/internal/transport/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var spanNames = map[string]string{
	"GET /health":     "health",
	"GET /metrics":    "metrics",
	"POST /api/links": "links.create",
	"GET /{code}":     "links.redirect",
}

type RouterOptions struct {
	EnableCORS    bool
	EnableLogging bool
	EnableMetrics bool
}

func DefaultRouterOptions() RouterOptions {
	return RouterOptions{
		EnableCORS:    true,
		EnableLogging: true,
		EnableMetrics: true,
	}
}

type RouterDeps struct {
	LinkService     *links.Service
	RedirectService *links.RedirectService
	Limiter         *ratelimit.FixedWindowLimiter
}

func NewRouter(cfg *config.Config, deps RouterDeps) http.Handler {
	return NewRouterWithOptions(cfg, deps, DefaultRouterOptions())
}

func NewRouterWithOptions(cfg *config.Config, deps RouterDeps, opts RouterOptions) http.Handler {
	mux := http.NewServeMux()

	healthHandler := NewHealthHandler()
	linksHandler := NewLinksHandler(cfg, deps.LinkService)
	redirectHandler := NewRedirectHandler(cfg, deps.RedirectService)

	mux.HandleFunc("GET /health", healthHandler.Health)
	mux.Handle("GET /metrics", healthHandler.Metrics())

	// API writes fail closed when the counter store is down; public
	// redirects fail open so an outage degrades to unlimited rather than
	// unavailable.
	apiRateLimit := middleware.RateLimitMiddleware(middleware.RateLimitOptions{
		Limiter:  deps.Limiter,
		Limit:    int64(cfg.RateLimit.APILimit),
		Window:   cfg.RateLimit.APIWindow,
		FailOpen: false,
		KeyFunc: func(r *http.Request) string {
			return middleware.ResolveActor(r).APIBucketKey()
		},
	})
	redirectRateLimit := middleware.RateLimitMiddleware(middleware.RateLimitOptions{
		Limiter:  deps.Limiter,
		Limit:    int64(cfg.RateLimit.RedirectLimit),
		Window:   cfg.RateLimit.RedirectWindow,
		FailOpen: true,
		KeyFunc: func(r *http.Request) string {
			return ratelimit.RedirectBucketKey(middleware.HashIP(r))
		},
	})

	mux.Handle("POST /api/links", middleware.Chain(
		http.HandlerFunc(linksHandler.Create),
		middleware.APIKeyMiddleware(cfg.Security.APIKeys),
		apiRateLimit,
	))

	mux.Handle("GET /{code}", middleware.Chain(
		http.HandlerFunc(redirectHandler.Redirect),
		redirectRateLimit,
	))

	var innerHandler http.Handler = mux
	if opts.EnableCORS {
		innerHandler = middleware.CORSMiddleware(innerHandler)
	}
	if opts.EnableLogging {
		innerHandler = middleware.LoggingMiddleware(innerHandler)
	}
	if opts.EnableMetrics {
		innerHandler = middleware.MetricsMiddleware(innerHandler)
	}

	otelOptions := []otelhttp.Option{
		otelhttp.WithSpanNameFormatter(func(operation string, r *http.Request) string {
			key := r.Method + " " + r.Pattern
			if name, ok := spanNames[key]; ok {
				return name
			}
			if r.Pattern != "" {
				return r.Pattern
			}
			path := strings.TrimSpace(r.URL.Path)
			if path == "" {
				path = "/"
			}
			return path
		}),
	}

	if telemetry.TracerProvider != nil {
		otelOptions = append(otelOptions, otelhttp.WithTracerProvider(telemetry.TracerProvider))
	}

	return otelhttp.NewHandler(innerHandler, cfg.App.Name, otelOptions...)
}
