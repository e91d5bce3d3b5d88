package ranger_test

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/dispatch"
	"github.com/xy-planning-network/signpost/logger"
	"github.com/xy-planning-network/signpost/ranger"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func quiet() logger.Logger {
	return logger.New(logger.WithLogger(log.New(io.Discard, "", 0)))
}

// clearEnv unsets the env vars New reads so a developer's .env cannot leak into tests.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "MAINTENANCE_MODE", "REDIS_URL", "SESSION_AUTH_KEY",
		"RATE_LIMIT", "VIEW_CACHE", "VIEW_EXT", "VIEW_PATH", "BASE_URL", "PORT", "ENVIRONMENT", "VIEW_WATCH",
	} {
		t.Setenv(k, "")
	}
}

func TestNew(t *testing.T) {
	// Arrange
	clearEnv(t)
	fsys := fstest.MapFS{
		"index.html":              {Data: []byte(`home {{.greeting}}`), ModTime: t0},
		"tenants/acme/index.html": {Data: []byte(`acme`), ModTime: t0},
	}

	rng, err := ranger.New(
		ranger.WithEnv(signpost.Development.String()),
		ranger.WithLogger(quiet()),
		ranger.WithViewRoot(fsys),
		ranger.WithConfig(ranger.FileConfig{
			Domains: map[string]string{"acme.example.com": "tenants/acme"},
		}),
		ranger.WithController("index", dispatch.Value{V: map[string]any{"greeting": "there"}}),
	)
	require.Nil(t, err)

	tcs := []struct {
		name     string
		target   string
		expected string
	}{
		{"default-root", "http://example.com/", "home there"},
		{"domain", "http://acme.example.com/", "acme"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()

			// Act
			rng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.target, nil))

			// Assert
			require.Equal(t, http.StatusOK, w.Code)
			require.Equal(t, tc.expected, w.Body.String())
			require.NotEmpty(t, w.Header().Get("X-Request-Id"))
		})
	}

	// Act
	w := httptest.NewRecorder()
	rng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Assert
	require.Contains(t, w.Body.String(), `signpost_dispatches_total{ext="html",status="200"} 2`)
	require.Equal(t, signpost.Development, rng.Environment())
	require.Nil(t, rng.EmitSessions())
}

func TestNewBadConfig(t *testing.T) {
	tcs := []struct {
		name string
		opts []ranger.RangerOption
	}{
		{"bad-error-code", []ranger.RangerOption{ranger.WithConfig(ranger.FileConfig{Errors: map[string]string{"oops": "x"}})}},
		{"bad-domain", []ranger.RangerOption{ranger.WithConfig(ranger.FileConfig{Domains: map[string]string{"bad..com": ""}})}},
		{"missing-config-file", nil},
		{"bad-env", []ranger.RangerOption{ranger.WithEnv("nowhere")}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			clearEnv(t)
			t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "none.yaml"))
			opts := append([]ranger.RangerOption{
				ranger.WithEnv(signpost.Development.String()),
				ranger.WithLogger(quiet()),
				ranger.WithViewRoot(fstest.MapFS{}),
			}, tc.opts...)

			// Act
			rng, err := ranger.New(opts...)

			// Assert
			require.ErrorIs(t, err, signpost.ErrBadConfig)
			require.Nil(t, rng)
		})
	}
}

func TestMaintModeHandler(t *testing.T) {
	tcs := []struct {
		name     string
		fsys     fstest.MapFS
		method   string
		expected string
	}{
		{"message", fstest.MapFS{}, http.MethodGet, "Service Unavailable"},
		{
			"page",
			fstest.MapFS{"errors/503.html": {Data: []byte(`Sorry for the inconvenience ({{.code}})`), ModTime: t0}},
			http.MethodPost,
			"Sorry for the inconvenience (503)",
		},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			e, err := dispatch.New(dispatch.Config{ViewRoot: tc.fsys}, dispatch.WithLogger(quiet()))
			require.Nil(t, err)
			require.Nil(t, e.Init())
			handler := ranger.MaintModeHandler(e)
			w := httptest.NewRecorder()

			// Act
			handler.ServeHTTP(w, httptest.NewRequest(tc.method, "/maint-mode-test", nil))

			// Assert
			require.Equal(t, http.StatusServiceUnavailable, w.Code)
			require.Equal(t, "600", w.Header().Get("Retry-After"))
			require.Equal(t, tc.expected, w.Body.String())
		})
	}
}

func TestMaintenanceMode(t *testing.T) {
	// Arrange
	clearEnv(t)
	t.Setenv("MAINTENANCE_MODE", "true")
	rng, err := ranger.New(
		ranger.WithEnv(signpost.Development.String()),
		ranger.WithLogger(quiet()),
		ranger.WithViewRoot(fstest.MapFS{"index.html": {Data: []byte(`home`), ModTime: t0}}),
	)
	require.Nil(t, err)
	w := httptest.NewRecorder()

	// Act
	rng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	// Assert
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestStaticMount(t *testing.T) {
	// Arrange
	clearEnv(t)
	dir := t.TempDir()
	require.Nil(t, os.WriteFile(filepath.Join(dir, "site.css"), []byte("body{}"), 0o644))
	t.Setenv("STATIC_MAX_AGE", "1h")

	rng, err := ranger.New(
		ranger.WithEnv(signpost.Development.String()),
		ranger.WithLogger(quiet()),
		ranger.WithViewRoot(fstest.MapFS{}),
		ranger.WithConfig(ranger.FileConfig{Static: map[string]string{"assets": dir}}),
	)
	require.Nil(t, err)
	w := httptest.NewRecorder()

	// Act
	rng.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/assets/site.css", nil))

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "body{}", w.Body.String())
	require.Equal(t, "max-age=3600", w.Header().Get("Cache-Control"))
}

func TestShutdown(t *testing.T) {
	// Arrange
	clearEnv(t)
	rng, err := ranger.New(
		ranger.WithContext(context.Background()),
		ranger.WithEnv(signpost.Development.String()),
		ranger.WithLogger(quiet()),
		ranger.WithViewRoot(fstest.MapFS{}),
		ranger.WithServer(&http.Server{Addr: "127.0.0.1:0"}),
	)
	require.Nil(t, err)

	// Act
	err = rng.Shutdown()

	// Assert
	require.Nil(t, err)
	require.Nil(t, rng.Shutdown())
	require.Equal(t, rng.EmitRouter(), rng.EmitServer().Handler)
}

func TestGuide(t *testing.T) {
	// Arrange
	clearEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	rng, err := ranger.New(
		ranger.WithContext(ctx),
		ranger.WithEnv(signpost.Development.String()),
		ranger.WithLogger(quiet()),
		ranger.WithViewRoot(fstest.MapFS{}),
		ranger.WithServer(&http.Server{Addr: "127.0.0.1:0"}),
	)
	require.Nil(t, err)

	done := make(chan error, 1)

	// Act
	go func() { done <- rng.Guide() }()
	time.AfterFunc(50*time.Millisecond, cancel)

	// Assert
	select {
	case err := <-done:
		require.Nil(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Guide did not return after its context ended")
	}
}
