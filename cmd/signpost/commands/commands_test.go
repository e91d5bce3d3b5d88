package commands_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/cmd/signpost/commands"
)

// clearEnv unsets the env vars the commands read or export.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"CONFIG_FILE", "VIEW_PATH", "ENVIRONMENT", "REDIS_URL", "SESSION_AUTH_KEY", "MAINTENANCE_MODE", "VIEW_EXT",
	} {
		t.Setenv(k, "")
	}
}

func TestVersion(t *testing.T) {
	// Arrange
	out := new(bytes.Buffer)
	cli := commands.New()
	cli.SetOut(out)
	cli.SetArgs([]string{"version"})

	// Act
	err := cli.Execute(context.Background())

	// Assert
	require.Nil(t, err)
	require.Equal(t, "signpost version dev\n", out.String())
}

func TestCheck(t *testing.T) {
	// Arrange
	clearEnv(t)
	dir := t.TempDir()
	views := filepath.Join(dir, "html")
	require.Nil(t, os.Mkdir(views, 0o755))
	cfgPath := filepath.Join(dir, "signpost.yaml")
	require.Nil(t, os.WriteFile(cfgPath, []byte("domains:\n  shop.example.com: shop\n"), 0o644))

	out := new(bytes.Buffer)
	cli := commands.New()
	cli.SetOut(out)
	cli.SetArgs([]string{"check", "--views", views, "--config", cfgPath, "--env", "DEVELOPMENT"})

	// Act
	err := cli.Execute(context.Background())

	// Assert
	require.Nil(t, err)
	require.Equal(t, "views: "+views+" (*.html)\ndomains: 1\nok\n", out.String())
	require.Equal(t, views, os.Getenv("VIEW_PATH"))
}

func TestCheckErrors(t *testing.T) {
	tcs := []struct {
		name   string
		config string
		views  string
		err    error
	}{
		{"bad-domain", "domains:\n  bad..com: x\n", "html", signpost.ErrBadConfig},
		{"bad-error-code", "errors:\n  teapot: x\n", "html", signpost.ErrBadConfig},
		{"missing-views", "", "missing", signpost.ErrNotExist},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			// Arrange
			clearEnv(t)
			dir := t.TempDir()
			require.Nil(t, os.Mkdir(filepath.Join(dir, "html"), 0o755))
			cfgPath := filepath.Join(dir, "signpost.yaml")
			require.Nil(t, os.WriteFile(cfgPath, []byte(tc.config), 0o644))

			cli := commands.New()
			cli.SetOut(new(bytes.Buffer))
			cli.SetArgs([]string{"check", "--views", filepath.Join(dir, tc.views), "--config", cfgPath, "--env", "DEVELOPMENT"})

			// Act
			err := cli.Execute(context.Background())

			// Assert
			require.ErrorIs(t, err, tc.err)
		})
	}
}
