package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"
	"github.com/xy-planning-network/signpost"
	"github.com/xy-planning-network/signpost/logger"
	"github.com/xy-planning-network/signpost/ranger"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Validate the config file and view directory without serving",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyFlags(cmd, nil); err != nil {
				return err
			}

			quiet := logger.New(logger.WithLogger(log.New(io.Discard, "", 0)))
			rng, err := ranger.New(ranger.WithContext(cmd.Context()), ranger.WithLogger(quiet))
			if err != nil {
				return err
			}
			defer rng.Cancel()()

			cfg := rng.Config()
			if cfg.ViewDir != "" {
				if fi, err := os.Stat(cfg.ViewDir); err != nil || !fi.IsDir() {
					return fmt.Errorf("%w: views: %s is not a directory", signpost.ErrNotExist, cfg.ViewDir)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "views: %s (*.%s)\n", cfg.ViewDir, cfg.TemplateExt)
			fmt.Fprintf(cmd.OutOrStdout(), "domains: %d\n", len(cfg.Domains))
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
