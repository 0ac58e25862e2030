package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/leonardcser/ssm-cache/internal/cache"
)

func newSetCmd(cacheFor func(*cobra.Command) (*cache.Cache, error)) *cobra.Command {
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: "Store a value for a limited time",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cacheFor(cmd)
			if err != nil {
				return err
			}
			ack, err := c.Set(cmd.Context(), args[0], args[1], ttl)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %d (%s)\n", c.Name(args[0]), ack.Version, ack.Tier)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", time.Hour, "how long the value stays live")
	return cmd
}
