package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"forecast-mailer/internal/providers"
	"forecast-mailer/internal/types"
)

// API Docs: https://open-meteo.com/en/docs
// Sample request: https://api.open-meteo.com/v1/forecast?latitude=16.50&longitude=75.29&hourly=temperature_2m,relative_humidity_2m,wind_speed_10m&wind_speed_unit=ms&timezone=GMT&forecast_days=5
const (
	baseForecastURL = "https://api.open-meteo.com/v1/forecast"

	providerName    = "open-meteo"
	timestampLayout = "2006-01-02T15:04"
	forecastDays    = 5
	// Hourly data is thinned to the same 3-hour cadence as OpenWeatherMap
	stepHours = 3
)

var ErrMalformedResponse = errors.New("malformed forecast response")

// Client fetches hourly forecasts from Open-Meteo. It needs no API key.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

func NewClient(logger *slog.Logger, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = baseForecastURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		logger:     logger.With("component", "openmeteo-client"),
	}
}

// FetchForecast returns five days of 3-hourly points. The apiKey argument is
// accepted for interface compatibility and ignored.
func (c *Client) FetchForecast(ctx context.Context, coords types.Coords, _ string) (*types.ForecastSeries, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("latitude", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	q.Set("hourly", strings.Join([]string{"temperature_2m", "relative_humidity_2m", "wind_speed_10m"}, ","))
	q.Set("timezone", "GMT")
	q.Set("forecast_days", strconv.Itoa(forecastDays))
	q.Set("timeformat", "iso8601")
	q.Set("wind_speed_unit", "ms")
	q.Set("temperature_unit", "celsius")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &providers.UpstreamError{Provider: providerName, Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		upstreamErr := &providers.UpstreamError{Provider: providerName, StatusCode: resp.StatusCode, Body: string(body)}
		var apiErr ErrorResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Reason != "" {
			upstreamErr.Body = apiErr.Reason
		}
		return nil, upstreamErr
	}

	var apiResp ForecastAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, &providers.SchemaError{Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}

	series, err := mapForecastAPIResponse(coords, &apiResp)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched forecast",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
		"points", series.Len(),
	)

	return series, nil
}

func mapForecastAPIResponse(coords types.Coords, apiResp *ForecastAPIResponse) (*types.ForecastSeries, error) {
	h := apiResp.Hourly
	if h == nil {
		return nil, &providers.SchemaError{Field: "hourly", Err: ErrMalformedResponse}
	}
	n := len(h.Time)
	if len(h.Temperature2m) != n || len(h.RelativeHumidity2m) != n || len(h.WindSpeed10m) != n {
		return nil, &providers.SchemaError{
			Field: "hourly",
			Err:   fmt.Errorf("%w: arrays differ in length", ErrMalformedResponse),
		}
	}

	series := &types.ForecastSeries{
		Coordinates: coords,
		UTCOffset:   apiResp.UTCOffsetSeconds,
		FetchedAt:   time.Now().UTC(),
		Points:      make([]types.ForecastPoint, 0, n/stepHours+1),
	}

	for i, raw := range h.Time {
		ts, err := time.ParseInLocation(timestampLayout, raw, time.UTC)
		if err != nil {
			return nil, &providers.SchemaError{
				Field: fmt.Sprintf("hourly.time[%d]", i),
				Err:   fmt.Errorf("%w: %v", ErrMalformedResponse, err),
			}
		}
		if ts.Hour()%stepHours != 0 {
			continue
		}
		// Open-Meteo pads the tail of the window with nulls
		if h.Temperature2m[i] == nil || h.RelativeHumidity2m[i] == nil || h.WindSpeed10m[i] == nil {
			continue
		}
		series.Points = append(series.Points, types.ForecastPoint{
			Timestamp:          ts,
			TemperatureCelsius: *h.Temperature2m[i],
			HumidityPercent:    *h.RelativeHumidity2m[i],
			WindSpeedMps:       *h.WindSpeed10m[i],
		})
	}

	return series, nil
}
