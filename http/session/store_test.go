package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	gorilla "github.com/gorilla/sessions"
	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/http/session"
)

const hexKey = "ABCD"

func TestNewService(t *testing.T) {
	notHex := "ðŸ˜…"
	tcs := []struct {
		name string
		cfg  session.Config
	}{
		{"bad-env", session.Config{Env: "nope", SessionName: "s", AuthKey: hexKey, EncryptKey: hexKey}},
		{"no-name", session.Config{Env: signpost.Testing, AuthKey: hexKey, EncryptKey: hexKey}},
		{"bad-auth", session.Config{Env: signpost.Testing, SessionName: "s", AuthKey: notHex, EncryptKey: hexKey}},
		{"bad-encrypt", session.Config{Env: signpost.Testing, SessionName: "s", AuthKey: hexKey, EncryptKey: notHex}},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			svc, err := session.NewService(tc.cfg)

			// Assert
			require.Error(t, err)
			require.Zero(t, svc)
		})
	}

	// Arrange
	r := httptest.NewRequest(http.MethodGet, "https://example.com", nil)
	cfg := session.Config{Env: signpost.Testing, SessionName: "signpost-test", AuthKey: hexKey, EncryptKey: hexKey}

	// Act
	svc, err := session.NewService(cfg)

	// Assert
	require.Nil(t, err)
	require.NotZero(t, svc)
	require.NotPanics(t, func() { svc.Open(httptest.NewRecorder(), r) })
}

func TestSessionRoundTrip(t *testing.T) {
	// Arrange
	cfg := session.Config{Env: signpost.Testing, SessionName: "signpost-test", AuthKey: hexKey, EncryptKey: hexKey}
	svc, err := session.NewService(cfg, session.WithMaxAge(60))
	require.Nil(t, err)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "https://example.com/blog", nil)

	// Act
	s, err := svc.Open(w, r)
	require.Nil(t, err)
	require.True(t, s.IsNew())
	require.Nil(t, s.Set("visits", 1))
	require.Nil(t, s.AddFlash(session.Flash{Class: session.FlashInfo, Msg: "welcome"}))

	next := httptest.NewRequest(http.MethodGet, "https://example.com/blog", nil)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	next.AddCookie(cookies[len(cookies)-1])

	again, err := svc.Open(httptest.NewRecorder(), next)

	// Assert
	require.Nil(t, err)
	require.False(t, again.IsNew())
	require.Equal(t, 1, again.Get("visits"))
	require.Equal(t, []session.Flash{{Class: session.FlashInfo, Msg: "welcome"}}, again.Flashes())
	require.Empty(t, again.Flashes())
}

func TestSessionUnsetDelete(t *testing.T) {
	// Arrange
	svc, err := session.NewService(
		session.Config{Env: signpost.Testing, SessionName: "signpost-test", AuthKey: hexKey, EncryptKey: hexKey},
		session.WithStore(gorilla.NewCookieStore([]byte("k"))),
	)
	require.Nil(t, err)

	w := httptest.NewRecorder()
	s, err := svc.Open(w, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Nil(t, err)
	require.Nil(t, s.Set("a", "b"))

	// Act
	require.Nil(t, s.Unset("a"))
	require.Nil(t, s.Delete())

	// Assert
	require.Nil(t, s.Get("a"))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	require.Less(t, cookies[len(cookies)-1].MaxAge, 0)
}

func TestServiceOptions(t *testing.T) {
	cfg := session.Config{Env: signpost.Testing, SessionName: "signpost-test", AuthKey: hexKey, EncryptKey: hexKey}
	tcs := []struct {
		name   string
		opts   []session.ServiceOpt
		maxAge int
	}{
		{"default", nil, 86400},
		{"max-age-first", []session.ServiceOpt{session.WithMaxAge(60), session.WithCookie()}, 60},
		{"max-age-last", []session.ServiceOpt{session.WithCookie(), session.WithMaxAge(60)}, 60},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			svc, err := session.NewService(cfg, tc.opts...)
			require.Nil(t, err)

			w := httptest.NewRecorder()
			s, err := svc.Open(w, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Nil(t, err)

			// Act
			require.Nil(t, s.Set("a", "b"))

			// Assert
			cookies := w.Result().Cookies()
			require.Len(t, cookies, 1)
			require.Equal(t, "signpost-test", cookies[0].Name)
			require.Equal(t, tc.maxAge, cookies[0].MaxAge)
			require.Equal(t, "/", cookies[0].Path)
			require.True(t, cookies[0].HttpOnly)
			require.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
		})
	}

	// Act
	_, err := session.NewService(cfg, session.WithMaxAge(-1))

	// Assert
	require.ErrorIs(t, err, signpost.ErrBadConfig)
}
