package main

import (
	"fmt"
	"log/slog"

	"forecast-mailer/internal/chart"
	"forecast-mailer/internal/config"
	"forecast-mailer/internal/location"
	"forecast-mailer/internal/notify"
	"forecast-mailer/internal/pipeline"
	"forecast-mailer/internal/providers/openmeteo"
	"forecast-mailer/internal/providers/openstreetmap"
	"forecast-mailer/internal/providers/openweathermap"
	"forecast-mailer/internal/timezone"
)

// newPipeline builds the production pipeline from configuration
func newPipeline(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	weatherClient, err := newForecastFetcher(cfg.Weather, logger)
	if err != nil {
		return nil, err
	}

	renderer := chart.NewRenderer(logger, chart.Options{
		WidthInches:  cfg.Chart.WidthInches,
		HeightInches: cfg.Chart.HeightInches,
		DPI:          cfg.Chart.DPI,
	})

	notifier := notify.NewNotifier(logger, notify.Config{
		Host:    cfg.SMTP.Host,
		Port:    cfg.SMTP.Port,
		Timeout: cfg.SMTP.Timeout,
	})

	tz, err := timezone.NewService()
	if err != nil {
		return nil, err
	}

	// A nil interface disables place lookups
	var geocoder location.ReverseGeocodeProvider
	if cfg.Geocode.Enabled {
		geocoder = openstreetmap.NewClient(cfg.Geocode.BaseURL, cfg.Geocode.UserAgent)
	}

	return pipeline.New(logger, weatherClient, renderer, notifier,
		pipeline.WithLocator(location.NewLocationService(logger, geocoder, tz)),
		pipeline.WithFrom(cfg.SMTP.From),
	), nil
}

// newForecastFetcher picks the upstream forecast provider
func newForecastFetcher(cfg config.WeatherConfig, logger *slog.Logger) (pipeline.ForecastFetcher, error) {
	switch cfg.Provider {
	case "", "openweathermap":
		return openweathermap.NewClient(logger,
			openweathermap.WithBaseURL(cfg.BaseURL),
			openweathermap.WithTimeout(cfg.Timeout),
		), nil
	case "openmeteo":
		return openmeteo.NewClient(logger, cfg.OpenMeteoURL, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown weather provider %q", cfg.Provider)
	}
}
