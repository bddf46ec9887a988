package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"olist-dashboard/internal/config"
	"olist-dashboard/internal/observability"
	"olist-dashboard/internal/services"
)

const version = "1.0.0"

type app struct {
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "olist-dashboard",
		Short:         "Olist e-commerce business intelligence dashboard",
		Version:       version,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.serve(cmd.Context())
		},
	}
	root.PersistentFlags().StringVar(&a.cfgFile, "config", "", "config file (default ./config.yaml when present)")

	root.AddCommand(
		newServeCmd(a),
		newSummaryCmd(a),
		newConfigCmd(a),
	)
	return root
}

func (a *app) init() error {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = observability.NewLogger(cfg.Logger)
	slog.SetDefault(a.logger)
	return nil
}

func (a *app) datasets() *services.DatasetHandle {
	loader := services.NewCSVLoader(a.cfg.Datasets, a.logger)
	return services.NewDatasetHandle(loader, a.cfg.Datasets.LoadTimeout)
}

func (a *app) dashboard() *services.Dashboard {
	return services.NewDashboard(a.datasets(), a.cfg.Cache, a.logger)
}
