package middleware

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/xy-planning-network/signpost"
)

// RequestIDHeader carries the ID of a request back to its client.
const RequestIDHeader = "X-Request-Id"

// RequestID tags each request with an ID, stored under signpost.RequestIDKey
// and echoed in the response's RequestIDHeader.
// A UUID a proxy already set in RequestIDHeader is kept; otherwise a new one is made.
func RequestID() Adapter {
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, err := uuid.Parse(r.Header.Get(RequestIDHeader))
			if err != nil {
				id = uuid.New()
			}

			w.Header().Set(RequestIDHeader, id.String())
			ctx := context.WithValue(r.Context(), signpost.RequestIDKey, id.String())
			h.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
