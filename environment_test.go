package signpost_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost"
)

func TestEnvironmentValid(t *testing.T) {
	for _, tc := range []struct {
		env signpost.Environment
		err error
	}{
		{signpost.Development, nil},
		{signpost.Production, nil},
		{signpost.Review, nil},
		{signpost.Staging, nil},
		{signpost.Testing, nil},
		{"", signpost.ErrNotValid},
		{"development", signpost.ErrNotValid},
	} {
		t.Run(tc.env.String(), func(t *testing.T) {
			require.ErrorIs(t, tc.env.Valid(), tc.err)
		})
	}
}

func TestParseEnvironment(t *testing.T) {
	for _, tc := range []struct {
		in       string
		expected signpost.Environment
		err      error
	}{
		{"production", signpost.Production, nil},
		{" Review ", signpost.Review, nil},
		{"prod", "", signpost.ErrNotValid},
		{"", "", signpost.ErrNotValid},
	} {
		t.Run(tc.in, func(t *testing.T) {
			// Act
			actual, err := signpost.ParseEnvironment(tc.in)

			// Assert
			require.ErrorIs(t, err, tc.err)
			require.Equal(t, tc.expected, actual)
		})
	}
}

func TestCachesViews(t *testing.T) {
	require.True(t, signpost.Production.CachesViews())
	require.True(t, signpost.Staging.CachesViews())
	require.False(t, signpost.Development.CachesViews())
	require.False(t, signpost.Testing.CachesViews())
}

func TestEnvVarOr(t *testing.T) {
	// Arrange
	t.Setenv("SIGNPOST_BOOL", "1")
	t.Setenv("SIGNPOST_DURATION", "90s")
	t.Setenv("SIGNPOST_ENV", "staging")
	t.Setenv("SIGNPOST_INT", "nope")
	t.Setenv("SIGNPOST_STRING", "")
	t.Setenv("SIGNPOST_URL", "https://example.com/app")

	// Act + Assert
	require.True(t, signpost.EnvVarOrBool("SIGNPOST_BOOL", false))
	require.Equal(t, 90*time.Second, signpost.EnvVarOrDuration("SIGNPOST_DURATION", time.Second))
	require.Equal(t, signpost.Staging, signpost.EnvVarOrEnv("SIGNPOST_ENV", signpost.Development))
	require.Equal(t, 7, signpost.EnvVarOrInt("SIGNPOST_INT", 7))
	require.Equal(t, "def", signpost.EnvVarOrString("SIGNPOST_STRING", "def"))
	require.Equal(t, "https://example.com/app", signpost.EnvVarOrURL("SIGNPOST_URL", "http://localhost:3000").String())
	require.Equal(t, "http://localhost:3000/", signpost.EnvVarOrURL("SIGNPOST_MISSING", "http://localhost:3000").String())
	require.Nil(t, signpost.EnvVarOrURL("SIGNPOST_MISSING", "not a url"))
}
