package middleware_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost/http/middleware"
)

func TestCORS(t *testing.T) {
	// Act
	none := middleware.CORS("", " ")

	// Assert
	require.Equal(t, fmt.Sprintf("%p", middleware.NoopAdapter), fmt.Sprintf("%p", none))

	tcs := []struct {
		name     string
		method   string
		origin   string
		expected string
	}{
		{"allowed", http.MethodGet, "https://example.com", "https://example.com"},
		{"other", http.MethodGet, "https://elsewhere.com", ""},
		{"preflight", http.MethodOptions, "https://example.com", "https://example.com"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			w := httptest.NewRecorder()
			r := httptest.NewRequest(tc.method, "/report.json", nil)
			r.Header.Set("Origin", tc.origin)
			if tc.method == http.MethodOptions {
				r.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}

			// Act
			middleware.CORS("https://example.com/", "https://example.com")(noopHandler()).ServeHTTP(w, r)

			// Assert
			require.Equal(t, tc.expected, w.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
