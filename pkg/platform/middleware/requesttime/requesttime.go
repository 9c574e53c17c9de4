// Package requesttime provides middleware for request-scoped time.
// All operations within a single request use the same "now" timestamp, so
// every freshness, expiry, and holding-period comparison inside one
// authorization decision is evaluated against one consistent instant.
package requesttime

import (
	"net/http"
	"time"

	"surety/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and stores
// it in the context for consistent time references throughout the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		now := time.Now()
		ctx := requestcontext.WithTime(r.Context(), now)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
