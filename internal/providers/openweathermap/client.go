package openweathermap

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"forecast-mailer/internal/types"
)

// API Docs: https://openweathermap.org/forecast5
// Sample request: https://api.openweathermap.org/data/2.5/forecast?lat=16.504320&lon=75.291748&appid={key}&units=metric
const (
	baseForecastURL = "https://api.openweathermap.org/data/2.5/forecast"
	defaultTimeout  = 10 * time.Second

	// dt_txt is reported in UTC
	timestampLayout = "2006-01-02 15:04:05"
)

type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	now        func() time.Time
}

type Option func(*Client)

// WithBaseURL points the client at another forecast endpoint
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = baseURL
		}
	}
}

// WithTimeout bounds the single forecast request
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

func NewClient(logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout},
		baseURL:    baseForecastURL,
		logger:     logger.With("component", "openweathermap-client"),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchForecast issues one GET for the coordinates and parses the forecast
// list into a series. No series is returned alongside an error.
func (c *Client) FetchForecast(ctx context.Context, coords types.Coords, apiKey string) (*types.ForecastSeries, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	q := u.Query()
	q.Set("lat", strconv.FormatFloat(coords.Latitude, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(coords.Longitude, 'f', -1, 64))
	q.Set("appid", apiKey)
	q.Set("units", "metric")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("requesting forecast",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &UpstreamError{Err: err}
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read response body: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var apiResp ForecastAPIResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, &SchemaError{Err: fmt.Errorf("failed to decode response: %w", err)}
	}

	series, err := mapForecastAPIResponse(coords, &apiResp)
	if err != nil {
		return nil, err
	}
	series.FetchedAt = c.now().UTC()

	c.logger.Debug("forecast parsed",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
		"points", len(series.Points),
	)

	return series, nil
}

func mapForecastAPIResponse(coords types.Coords, apiResp *ForecastAPIResponse) (*types.ForecastSeries, error) {
	if apiResp.List == nil {
		return nil, &SchemaError{Field: "list", Err: errMissingField}
	}

	entries := *apiResp.List
	points := make([]types.ForecastPoint, 0, len(entries))
	for i, entry := range entries {
		point, err := mapForecastEntry(i, entry)
		if err != nil {
			return nil, err
		}
		points = append(points, point)
	}

	series := &types.ForecastSeries{
		Coordinates: coords,
		Points:      points,
	}
	if apiResp.City != nil {
		series.Place = placeName(apiResp.City)
		series.UTCOffset = apiResp.City.Timezone
	}
	return series, nil
}

func mapForecastEntry(i int, entry ForecastEntry) (types.ForecastPoint, error) {
	field := func(name string) string {
		return fmt.Sprintf("list[%d].%s", i, name)
	}

	switch {
	case entry.DtTxt == nil:
		return types.ForecastPoint{}, &SchemaError{Field: field("dt_txt"), Err: errMissingField}
	case entry.Main == nil:
		return types.ForecastPoint{}, &SchemaError{Field: field("main"), Err: errMissingField}
	case entry.Main.Temp == nil:
		return types.ForecastPoint{}, &SchemaError{Field: field("main.temp"), Err: errMissingField}
	case entry.Main.Humidity == nil:
		return types.ForecastPoint{}, &SchemaError{Field: field("main.humidity"), Err: errMissingField}
	case entry.Wind == nil:
		return types.ForecastPoint{}, &SchemaError{Field: field("wind"), Err: errMissingField}
	case entry.Wind.Speed == nil:
		return types.ForecastPoint{}, &SchemaError{Field: field("wind.speed"), Err: errMissingField}
	}

	timestamp, err := time.ParseInLocation(timestampLayout, *entry.DtTxt, time.UTC)
	if err != nil {
		return types.ForecastPoint{}, &SchemaError{Field: field("dt_txt"), Err: err}
	}

	return types.ForecastPoint{
		Timestamp:          timestamp,
		TemperatureCelsius: *entry.Main.Temp,
		HumidityPercent:    *entry.Main.Humidity,
		WindSpeedMps:       *entry.Wind.Speed,
	}, nil
}

func placeName(city *City) string {
	switch {
	case city.Name != "" && city.Country != "":
		return city.Name + ", " + city.Country
	default:
		return city.Name
	}
}
