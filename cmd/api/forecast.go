package main

import (
	"context"
	"errors"
	"time"

	"forecast-mailer/internal/chart"
	"forecast-mailer/internal/export"
	"forecast-mailer/internal/notify"
	"forecast-mailer/internal/pipeline"
	"forecast-mailer/internal/providers/openweathermap"
	"forecast-mailer/internal/types"

	"github.com/danielgtaylor/huma/v2"
)

// ForecastInput defines the query parameters shared by the forecast endpoints
type ForecastInput struct {
	Latitude  float64 `query:"latitude" required:"true" minimum:"-90" maximum:"90" example:"16.50432" doc:"Latitude in decimal degrees"`
	Longitude float64 `query:"longitude" required:"true" minimum:"-180" maximum:"180" example:"75.291748" doc:"Longitude in decimal degrees"`
}

func (in *ForecastInput) coords() types.Coords {
	return types.NewCoords(in.Latitude, in.Longitude)
}

// ForecastPointView is one row of the data table
type ForecastPointView struct {
	Timestamp          time.Time `json:"timestamp" doc:"Forecast time in the location's timezone"`
	TemperatureCelsius float64   `json:"temperature_celsius"`
	HumidityPercent    float64   `json:"humidity_percent"`
	WindSpeedMps       float64   `json:"wind_speed_mps"`
}

// ForecastBody is the data table for one coordinate
type ForecastBody struct {
	Latitude  float64             `json:"latitude"`
	Longitude float64             `json:"longitude"`
	Place     string              `json:"place,omitempty" example:"Bijapur, Karnataka, India"`
	Timezone  string              `json:"timezone,omitempty" example:"Asia/Kolkata"`
	Points    []ForecastPointView `json:"points"`
}

type ForecastOutput struct {
	Body ForecastBody
}

// FileOutput streams a binary artifact
type FileOutput struct {
	ContentType        string `header:"Content-Type"`
	ContentDisposition string `header:"Content-Disposition"`
	Body               []byte
}

type SendForecastInput struct {
	Body struct {
		Latitude  float64 `json:"latitude" minimum:"-90" maximum:"90" example:"16.50432" doc:"Latitude in decimal degrees"`
		Longitude float64 `json:"longitude" minimum:"-180" maximum:"180" example:"75.291748" doc:"Longitude in decimal degrees"`
		Recipient string  `json:"recipient" format:"email" example:"someone@example.com" doc:"Email address that receives the chart"`
	}
}

type SendForecastBody struct {
	RunID       string        `json:"run_id"`
	Succeeded   bool          `json:"succeeded"`
	Stage       string        `json:"stage" example:"succeeded"`
	FailedStage string        `json:"failed_stage,omitempty" example:"sending"`
	Notice      string        `json:"notice" example:"Email sent successfully to someone@example.com!"`
	Forecast    *ForecastBody `json:"forecast,omitempty"`
	Chart       []byte        `json:"chart,omitempty" doc:"Base64 encoded PNG chart"`
}

type SendForecastOutput struct {
	Body SendForecastBody
}

func (app *App) handleGetForecast(ctx context.Context, input *ForecastInput) (*ForecastOutput, error) {
	series, err := app.pipeline.Forecast(ctx, input.coords(), app.cfg.Weather.APIKey)
	if err != nil {
		return nil, app.forecastError(err, input.coords())
	}
	return &ForecastOutput{Body: newForecastBody(series)}, nil
}

func (app *App) handleGetForecastChart(ctx context.Context, input *ForecastInput) (*FileOutput, error) {
	_, artifact, err := app.pipeline.Preview(ctx, input.coords(), app.cfg.Weather.APIKey)
	if err != nil {
		return nil, app.forecastError(err, input.coords())
	}
	return &FileOutput{
		ContentType:        artifact.ContentType(),
		ContentDisposition: `inline; filename="` + artifact.Filename() + `"`,
		Body:               artifact.Data,
	}, nil
}

func (app *App) handleExportForecast(ctx context.Context, input *ForecastInput) (*FileOutput, error) {
	series, err := app.pipeline.Forecast(ctx, input.coords(), app.cfg.Weather.APIKey)
	if err != nil {
		return nil, app.forecastError(err, input.coords())
	}

	buf, err := export.WriteWorkbook(series)
	if err != nil {
		return nil, app.forecastError(err, input.coords())
	}

	return &FileOutput{
		ContentType:        export.ContentType,
		ContentDisposition: `attachment; filename="` + export.Filename + `"`,
		Body:               buf.Bytes(),
	}, nil
}

func (app *App) handleSendForecast(ctx context.Context, input *SendForecastInput) (*SendForecastOutput, error) {
	coords := types.NewCoords(input.Body.Latitude, input.Body.Longitude)

	result := app.pipeline.Run(ctx, pipeline.Request{
		Coordinates: coords,
		APIKey:      app.cfg.Weather.APIKey,
		Recipient:   input.Body.Recipient,
		Sender:      app.senderCredentials(),
	})
	if isInputError(result.Err) {
		return nil, huma.Error400BadRequest(result.Err.Error())
	}

	body := SendForecastBody{
		RunID:     result.RunID,
		Succeeded: result.Succeeded(),
		Stage:     string(result.Stage),
		Notice:    result.Message,
	}
	if result.FailedStage != "" {
		body.FailedStage = string(result.FailedStage)
	}
	if result.Series != nil {
		forecast := newForecastBody(result.Series)
		body.Forecast = &forecast
	}
	if result.Chart != nil {
		body.Chart = result.Chart.Data
	}

	return &SendForecastOutput{Body: body}, nil
}

func (app *App) senderCredentials() notify.Credentials {
	return notify.Credentials{
		Username: app.cfg.SMTP.Username,
		Secret:   app.cfg.SMTP.Password,
	}
}

// forecastError maps pipeline errors onto HTTP problems
func (app *App) forecastError(err error, coords types.Coords) error {
	if isInputError(err) {
		return huma.Error400BadRequest(err.Error())
	}

	app.logger.Error("failed to get forecast",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
		"error", err,
	)

	if errors.Is(err, chart.ErrEmptySeries) {
		return huma.Error502BadGateway("weather provider returned no forecast entries")
	}
	return huma.Error502BadGateway("weather provider request failed", err)
}

func isInputError(err error) bool {
	return errors.Is(err, types.ErrInvalidLatitude) ||
		errors.Is(err, types.ErrInvalidLongitude) ||
		errors.Is(err, openweathermap.ErrMissingAPIKey)
}

func newForecastBody(series *types.ForecastSeries) ForecastBody {
	loc := series.Location()
	points := make([]ForecastPointView, 0, series.Len())
	for _, p := range series.Points {
		points = append(points, ForecastPointView{
			Timestamp:          p.Timestamp.In(loc),
			TemperatureCelsius: p.TemperatureCelsius,
			HumidityPercent:    p.HumidityPercent,
			WindSpeedMps:       p.WindSpeedMps,
		})
	}
	return ForecastBody{
		Latitude:  series.Coordinates.Latitude,
		Longitude: series.Coordinates.Longitude,
		Place:     series.Place,
		Timezone:  series.Timezone,
		Points:    points,
	}
}
