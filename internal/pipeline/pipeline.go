// Package pipeline runs one forecast delivery: fetch, render, compose, send.
package pipeline

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"strconv"

	"forecast-mailer/internal/chart"
	"forecast-mailer/internal/location"
	"forecast-mailer/internal/notify"
	"forecast-mailer/internal/types"

	"github.com/google/uuid"
)

const (
	EmailSubject = "5-Day Weather Forecast"
)

// Stage is a step of a run
type Stage string

const (
	StageIdle      Stage = "idle"
	StageFetching  Stage = "fetching"
	StageRendering Stage = "rendering"
	StageSending   Stage = "sending"
	StageSucceeded Stage = "succeeded"
	StageFailed    Stage = "failed"
)

// ForecastFetcher defines the interface for forecast providers
type ForecastFetcher interface {
	FetchForecast(ctx context.Context, coords types.Coords, apiKey string) (*types.ForecastSeries, error)
}

// ChartRenderer defines the interface for chart rendering
type ChartRenderer interface {
	Render(series *types.ForecastSeries) (*chart.Artifact, error)
}

// Request carries everything one run needs, secrets included
type Request struct {
	Coordinates types.Coords
	APIKey      string
	Recipient   string
	Sender      notify.Credentials
}

// Result is the outcome of a run. Series and Chart are kept when a later
// stage fails.
type Result struct {
	RunID       string
	Stage       Stage
	FailedStage Stage
	Series      *types.ForecastSeries
	Chart       *chart.Artifact
	Message     string
	Err         error
}

func (r *Result) Succeeded() bool {
	return r.Stage == StageSucceeded
}

// Pipeline wires the forecast client, chart renderer and notifier together.
// It holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	fetcher  ForecastFetcher
	renderer ChartRenderer
	notifier notify.Notifier
	locator  location.Service
	from     string
	logger   *slog.Logger
}

type Option func(*Pipeline)

// WithLocator enriches fetched series with a place name and timezone
func WithLocator(locator location.Service) Option {
	return func(p *Pipeline) {
		p.locator = locator
	}
}

// WithFrom sets the From header. By default the sender username is used.
func WithFrom(from string) Option {
	return func(p *Pipeline) {
		p.from = from
	}
}

func New(
	logger *slog.Logger,
	fetcher ForecastFetcher,
	renderer ChartRenderer,
	notifier notify.Notifier,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		fetcher:  fetcher,
		renderer: renderer,
		notifier: notifier,
		logger:   logger.With("component", "pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Forecast fetches the series for coords and resolves where it is.
// Location lookups never fail the fetch.
func (p *Pipeline) Forecast(ctx context.Context, coords types.Coords, apiKey string) (*types.ForecastSeries, error) {
	series, err := p.fetcher.FetchForecast(ctx, coords, apiKey)
	if err != nil {
		return nil, err
	}
	p.enrich(ctx, series)
	return series, nil
}

// Preview fetches and renders without sending anything
func (p *Pipeline) Preview(ctx context.Context, coords types.Coords, apiKey string) (*types.ForecastSeries, *chart.Artifact, error) {
	series, err := p.Forecast(ctx, coords, apiKey)
	if err != nil {
		return nil, nil, err
	}
	artifact, err := p.render(series)
	if err != nil {
		return series, nil, err
	}
	return series, artifact, nil
}

// Run executes one delivery. The first failing stage ends the run; the
// returned result is never nil.
func (p *Pipeline) Run(ctx context.Context, req Request) *Result {
	result := &Result{
		RunID: uuid.NewString(),
		Stage: StageIdle,
	}
	logger := p.logger.With("run_id", result.RunID)

	logger.Info("starting run",
		"latitude", req.Coordinates.Latitude,
		"longitude", req.Coordinates.Longitude,
		"recipient", req.Recipient,
	)

	p.advance(logger, result, StageFetching)
	series, err := p.Forecast(ctx, req.Coordinates, req.APIKey)
	if err != nil {
		return p.fail(logger, result, err)
	}
	result.Series = series

	p.advance(logger, result, StageRendering)
	artifact, err := p.render(series)
	if err != nil {
		return p.fail(logger, result, err)
	}
	result.Chart = artifact

	p.advance(logger, result, StageSending)
	sent := p.notifier.Send(ctx, req.Sender, p.compose(req, series, artifact))
	if !sent.Sent {
		result.Stage = StageFailed
		result.FailedStage = StageSending
		result.Message = sent.Message
		result.Err = sent.Err
		logger.Error("run failed", "stage", StageSending, "error", sent.Err)
		return result
	}

	p.advance(logger, result, StageSucceeded)
	result.Message = sent.Message
	logger.Info("run succeeded", "points", series.Len())
	return result
}

func (p *Pipeline) render(series *types.ForecastSeries) (*chart.Artifact, error) {
	if series.IsEmpty() {
		return nil, chart.ErrEmptySeries
	}
	return p.renderer.Render(series)
}

func (p *Pipeline) enrich(ctx context.Context, series *types.ForecastSeries) {
	if p.locator == nil || series == nil {
		return
	}
	resolved, err := p.locator.Resolve(ctx, series.Coordinates)
	if err != nil {
		p.logger.Warn("location lookup failed", "error", err)
		return
	}
	if resolved.Timezone != "" {
		series.Timezone = resolved.Timezone
	}
	if name := resolved.Info.DisplayName(); name != "" {
		series.Place = name
	}
}

func (p *Pipeline) compose(req Request, series *types.ForecastSeries, artifact *chart.Artifact) notify.Message {
	return notify.Message{
		From:     p.from,
		To:       req.Recipient,
		Subject:  EmailSubject,
		HTMLBody: EmailBody(req.Coordinates, series.Place),
		Attachment: &notify.Attachment{
			Filename:    artifact.Filename(),
			ContentType: artifact.ContentType(),
			Data:        artifact.Data,
		},
	}
}

// EmailBody is the HTML body naming the coordinate and, when known, the place
func EmailBody(coords types.Coords, place string) string {
	lat := strconv.FormatFloat(coords.Latitude, 'f', -1, 64)
	lon := strconv.FormatFloat(coords.Longitude, 'f', -1, 64)

	target := fmt.Sprintf("latitude %s and longitude %s", lat, lon)
	if place != "" {
		target = fmt.Sprintf("%s (%s)", html.EscapeString(place), target)
	}
	return fmt.Sprintf("<h1>Weather Forecast</h1><p>Find attached the 5-day weather forecast for %s.</p>", target)
}

func (p *Pipeline) advance(logger *slog.Logger, result *Result, stage Stage) {
	logger.Debug("stage transition", "from", result.Stage, "to", stage)
	result.Stage = stage
}

func (p *Pipeline) fail(logger *slog.Logger, result *Result, err error) *Result {
	result.FailedStage = result.Stage
	result.Stage = StageFailed
	result.Message = notify.Notice(err)
	result.Err = err
	logger.Error("run failed", "stage", result.FailedStage, "error", err)
	return result
}
