package main

import (
	"fmt"
	"os"

	"forecast-mailer/internal/notify"
	"forecast-mailer/internal/pipeline"
	"forecast-mailer/internal/types"

	"github.com/spf13/cobra"
)

const (
	defaultLatitude  = 16.504320
	defaultLongitude = 75.291748
)

type sendOptions struct {
	latitude  float64
	longitude float64
	recipient string
	chartOut  string
}

func newSendCmd() *cobra.Command {
	var opts sendOptions

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Fetch, render and email one forecast",
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

			result := p.Run(cmd.Context(), pipeline.Request{
				Coordinates: types.NewCoords(opts.latitude, opts.longitude),
				APIKey:      cfg.Weather.APIKey,
				Recipient:   opts.recipient,
				Sender:      notify.Credentials{Username: cfg.SMTP.Username, Secret: cfg.SMTP.Password},
			})

			// The chart is kept even when sending failed
			if opts.chartOut != "" && result.Chart != nil {
				if err := os.WriteFile(opts.chartOut, result.Chart.Data, 0644); err != nil {
					return fmt.Errorf("failed to write chart: %w", err)
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), result.Message)
			if !result.Succeeded() {
				return fmt.Errorf("run %s failed at %s: %w", result.RunID, result.FailedStage, result.Err)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&opts.latitude, "lat", defaultLatitude, "Latitude in decimal degrees")
	cmd.Flags().Float64Var(&opts.longitude, "lon", defaultLongitude, "Longitude in decimal degrees")
	cmd.Flags().StringVar(&opts.recipient, "to", "", "Recipient email address")
	cmd.Flags().StringVar(&opts.chartOut, "chart-out", "", "Also write the chart PNG to this path")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}
