package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leonardcser/ssm-cache/internal/cache"
)

func newGetCmd(cacheFor func(*cobra.Command) (*cache.Cache, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print a cached value",
		Long:  `Print the value stored for KEY. Exits with status 1 when there is no live value.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := cacheFor(cmd)
			if err != nil {
				return err
			}
			v, ok := c.Get(cmd.Context(), args[0])
			if !ok {
				return errMiss
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}
}
