package main

import (
	"log/slog"
	"os"

	"forecast-mailer/internal/config"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "forecast-mailer",
		Short: "Email a 5-day weather forecast chart",
		Long: `forecast-mailer fetches a 5-day / 3-hour forecast for a coordinate,
renders it as a chart and emails the chart to a recipient.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd(), newSendCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and installs the default logger
func setup() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logger := cfg.NewLogger()
	slog.SetDefault(logger) // Set as default logger for the application

	return cfg, logger, nil
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the web form and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup()
			if err != nil {
				return err
			}

			p, err := newPipeline(cfg, logger)
			if err != nil {
				return err
			}

			app := NewApp(cfg, logger, p)

			// Start server
			logger.Info("starting server", "addr", cfg.GetServerAddr())
			if err := app.Run(cfg.GetServerAddr()); err != nil {
				logger.Error("server failed", "error", err)
				return err
			}
			return nil
		},
	}
}
