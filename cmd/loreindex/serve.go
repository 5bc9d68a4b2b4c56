package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/ersonp/lore-index/internal/infrastructure/metrics"
	"github.com/ersonp/lore-index/internal/infrastructure/server"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve ranked queries over HTTP",
		Long:  "Loads the persisted index snapshot and serves /search, /health and /metrics.",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	return withDeps(func(d *Deps) error {
		if err := loadSnapshot(ctx, d); err != nil {
			return err
		}

		m := metrics.New(prometheus.DefaultRegisterer)
		m.DocumentsIndexed.Set(float64(d.Engine.DocumentCount()))

		srv := server.New(d.Config.Server, d.Handler, m, d.Log)
		return srv.Start(ctx)
	})
}
