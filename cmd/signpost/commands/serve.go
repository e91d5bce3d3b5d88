package commands

import (
	"github.com/spf13/cobra"
	"github.com/xy-planning-network/signpost/ranger"
)

var serveFlagEnv = map[string]string{
	"port":  "PORT",
	"watch": "VIEW_WATCH",
}

func (c *CLI) newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := applyFlags(cmd, serveFlagEnv); err != nil {
				return err
			}

			rng, err := ranger.New(ranger.WithContext(cmd.Context()))
			if err != nil {
				return err
			}

			return rng.Guide()
		},
	}
	cmd.Flags().StringP("port", "p", "", "Port to listen on (overrides PORT)")
	cmd.Flags().BoolP("watch", "w", false, "Evict cached views when their files change (overrides VIEW_WATCH)")
	return cmd
}
