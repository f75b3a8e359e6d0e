package cli

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

func NewPingCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Open a connection pool with the configured database and ping it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.LoadTimeout)
			defer cancel()
			pool, err := cfg.CreatePool(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := pool.Ping(ctx); err != nil {
				return errors.Wrap(err, "ping")
			}
			opts.logger.WithField("max_conns", cfg.PoolMaxConns).Info("database reachable")
			fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return nil
		},
	}
}
