package middleware

import (
	"net/http"

	"github.com/xy-planning-network/signpost"
)

const hstsValue = "max-age=63072000; includeSubDomains"

// ForceHTTPS sends plain HTTP requests to their HTTPS URL, except in development.
// In production, HTTPS responses also carry Strict-Transport-Security.
//
// A request is HTTPS if it arrived over TLS or its proxy says so in "X-Forwarded-Proto".
func ForceHTTPS(env signpost.Environment) Adapter {
	if env.IsDevelopment() {
		return NoopAdapter
	}

	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				if env.IsProduction() {
					w.Header().Set("Strict-Transport-Security", hstsValue)
				}

				h.ServeHTTP(w, r)
				return
			}

			u := *r.URL
			u.Scheme, u.Host, u.User = "https", r.Host, nil

			// 301 lets browsers turn a POST into a GET
			code := http.StatusPermanentRedirect
			if r.Method == http.MethodGet || r.Method == http.MethodHead {
				code = http.StatusMovedPermanently
			}

			http.Redirect(w, r, u.String(), code)
		})
	}
}
