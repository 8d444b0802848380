package middleware

import "net/http"

// Chain wraps handler with middlewares so the first one listed is the
// outermost, matching the order they appear at the call site.
func Chain(handler http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
