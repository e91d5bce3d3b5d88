package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/gorilla/handlers"
)

// corsMaxAge is how many seconds browsers may cache a preflight response.
const corsMaxAge = 600

// CORS lets pages served from origins call the app, and read the ID of their request.
// Preflight OPTIONS requests are answered here, before reaching any route.
//
// Empty origins are ignored; with none left, CORS leaves requests alone.
func CORS(origins ...string) Adapter {
	allowed := make([]string, 0, len(origins))
	for _, o := range origins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" && !slices.Contains(allowed, o) {
			allowed = append(allowed, o)
		}
	}

	if len(allowed) == 0 {
		return NoopAdapter
	}

	return handlers.CORS(
		handlers.AllowedOrigins(allowed),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodHead, http.MethodPost}),
		handlers.AllowedHeaders([]string{"Content-Type", "X-CSRF-Token", "X-Requested-With"}),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
		handlers.MaxAge(corsMaxAge),
	)
}
