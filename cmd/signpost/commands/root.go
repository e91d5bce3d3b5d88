// Package commands implements the CLI commands for the signpost web server.
package commands

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// Version is stamped at build time with -ldflags "-X".
var Version = "dev"

// CLI represents the command line interface for signpost.
type CLI struct {
	rootCmd *cobra.Command
}

// New creates a new CLI instance.
func New() *CLI {
	rootCmd := &cobra.Command{
		Use:           "signpost",
		Short:         "Serve a directory of views by convention",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	rootCmd.PersistentFlags().StringP("config", "c", "", "Config file (overrides CONFIG_FILE)")
	rootCmd.PersistentFlags().String("views", "", "Directory pages are served from (overrides VIEW_PATH)")
	rootCmd.PersistentFlags().StringP("env", "e", "", "Environment to run in (overrides ENVIRONMENT)")

	c := &CLI{rootCmd: rootCmd}

	rootCmd.AddCommand(c.newServeCmd())
	rootCmd.AddCommand(c.newCheckCmd())
	rootCmd.AddCommand(c.newVersionCmd())

	return c
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOut sets where commands print to. Used for testing.
func (c *CLI) SetOut(w io.Writer) {
	c.rootCmd.SetOut(w)
}

// flagEnv maps persistent flags onto the env vars package ranger reads.
var flagEnv = map[string]string{
	"config": "CONFIG_FILE",
	"views":  "VIEW_PATH",
	"env":    "ENVIRONMENT",
}

// applyFlags exports every flag set on cmd as its env var, so flags win over .env files.
func applyFlags(cmd *cobra.Command, extra map[string]string) error {
	for name, key := range mergeFlags(flagEnv, extra) {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}

		if err := os.Setenv(key, f.Value.String()); err != nil {
			return err
		}
	}

	return nil
}

func mergeFlags(a, b map[string]string) map[string]string {
	out := make(map[string]string, len(a)+len(b))
	for k, v := range a {
		out[k] = v
	}

	for k, v := range b {
		out[k] = v
	}

	return out
}
