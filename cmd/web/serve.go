package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"olist-dashboard/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard web server (default command)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	logger := a.logger
	logger.Info("starting application",
		"version", version,
		"addr", a.cfg.Address(),
		"orders_file", a.cfg.Datasets.OrdersFile,
		"segments_file", a.cfg.Datasets.SegmentsFile,
	)

	dashboard := a.dashboard()
	dashboard.StartEviction()

	// Load eagerly so the first visitor does not pay for parsing. A failure
	// is kept and every page reports it until restart.
	if data, err := dashboard.Datasets(ctx); err != nil {
		logger.Error("datasets unavailable, serving instructions only", "error", err)
	} else {
		logger.Info("datasets ready",
			"orders", len(data.Orders),
			"segments", len(data.Segments),
			"regions", len(data.Regions()),
		)
	}

	srv := server.NewServer(dashboard, a.cfg, logger)
	gracefulServer := server.NewGracefulServer(server.NewHTTPServer(a.cfg, srv), logger, a.cfg)

	gracefulServer.RegisterShutdownHook(func(ctx context.Context) error {
		logger.Info("stopping view cache")
		dashboard.Close()
		return nil
	})

	if err := gracefulServer.ListenAndServe(ctx); err != nil {
		logger.Error("server failed", "error", err)
		return fmt.Errorf("serve: %w", err)
	}

	logger.Info("application stopped gracefully")
	return nil
}
