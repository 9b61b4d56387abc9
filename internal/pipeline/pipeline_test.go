package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"forecast-mailer/internal/chart"
	"forecast-mailer/internal/location"
	"forecast-mailer/internal/notify"
	"forecast-mailer/internal/providers/openweathermap"
	"forecast-mailer/internal/types"

	"github.com/wneessen/go-mail"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func forecastPayload(n int) string {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	entries := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ts := start.Add(time.Duration(3*i) * time.Hour)
		entries = append(entries, fmt.Sprintf(
			`{"dt":%d,"dt_txt":%q,"main":{"temp":%.1f,"humidity":%d},"wind":{"speed":%.1f}}`,
			ts.Unix(), ts.Format("2006-01-02 15:04:05"), 24.0+float64(i), 60+i, 3.0+float64(i)/2,
		))
	}
	return fmt.Sprintf(
		`{"cod":"200","cnt":%d,"list":[%s],"city":{"name":"Bijapur","country":"IN","timezone":19800}}`,
		n, strings.Join(entries, ","),
	)
}

// weatherServer counts calls so tests can assert a single fetch
func weatherServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

type fakeTransport struct {
	dialErr error
	sent    []*mail.Msg
	closed  int
}

func (f *fakeTransport) DialWithContext(ctx context.Context) error { return f.dialErr }

func (f *fakeTransport) Send(messages ...*mail.Msg) error {
	f.sent = append(f.sent, messages...)
	return nil
}

func (f *fakeTransport) Close() error {
	f.closed++
	return nil
}

// countingRenderer wraps the real renderer to observe whether it ran
type countingRenderer struct {
	inner ChartRenderer
	calls int
}

func (r *countingRenderer) Render(series *types.ForecastSeries) (*chart.Artifact, error) {
	r.calls++
	return r.inner.Render(series)
}

type fixture struct {
	pipeline    *Pipeline
	renderer    *countingRenderer
	transport   *fakeTransport
	transports  int
	weatherHits *int
}

func newFixture(t *testing.T, status int, body string, dialErr error) *fixture {
	t.Helper()
	srv, hits := weatherServer(t, status, body)

	f := &fixture{
		renderer: &countingRenderer{
			inner: chart.NewRenderer(testLogger(), chart.Options{WidthInches: 4, HeightInches: 3, DPI: 40}),
		},
		transport:   &fakeTransport{dialErr: dialErr},
		weatherHits: hits,
	}
	notifier := notify.NewNotifierWithTransport(testLogger(), func(notify.Credentials) (notify.Transport, error) {
		f.transports++
		return f.transport, nil
	})
	f.pipeline = New(testLogger(),
		openweathermap.NewClient(testLogger(), openweathermap.WithBaseURL(srv.URL)),
		f.renderer,
		notifier,
	)
	return f
}

func testRequest() Request {
	return Request{
		Coordinates: types.NewCoords(16.50432, 75.291748),
		APIKey:      "test-key",
		Recipient:   "recipient@example.com",
		Sender:      notify.Credentials{Username: "sender@example.com", Secret: "app-password"},
	}
}

func TestPipeline_Run_Success(t *testing.T) {
	tests := []struct {
		name    string
		entries int
		// distance between the first and last 3-hour window start
		wantSpan time.Duration
	}{
		{"five windows over 15 hours", 5, 12 * time.Hour},
		{"full five days", 40, 117 * time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, http.StatusOK, forecastPayload(tt.entries), nil)

			result := f.pipeline.Run(context.Background(), testRequest())

			if !result.Succeeded() {
				t.Fatalf("Run() stage = %s, err = %v", result.Stage, result.Err)
			}
			if result.RunID == "" {
				t.Error("RunID is empty")
			}
			if result.Message != "Email sent successfully to recipient@example.com!" {
				t.Errorf("Message = %q", result.Message)
			}
			if result.Series.Len() != tt.entries {
				t.Errorf("Series.Len() = %d, want %d", result.Series.Len(), tt.entries)
			}

			start, end := result.Series.Span()
			if got := end.Sub(start); got != tt.wantSpan {
				t.Errorf("Span() = %v, want %v", got, tt.wantSpan)
			}
			// The last entry covers the three hours after its timestamp
			if covered := end.Add(3 * time.Hour).Sub(start); tt.entries == 5 && covered != 15*time.Hour {
				t.Errorf("forecast covers %v, want 15h", covered)
			}

			if result.Chart == nil || len(result.Chart.Data) == 0 {
				t.Fatal("Chart missing from successful result")
			}
			if *f.weatherHits != 1 {
				t.Errorf("weather API called %d times, want 1", *f.weatherHits)
			}
			if len(f.transport.sent) != 1 {
				t.Fatalf("sent %d messages, want 1", len(f.transport.sent))
			}

			attachments := f.transport.sent[0].GetAttachments()
			if len(attachments) != 1 || attachments[0].Name != "weather_forecast.png" {
				t.Errorf("attachments = %v, want one weather_forecast.png", attachments)
			}
			if f.transport.closed != 1 {
				t.Errorf("transport closed %d times, want 1", f.transport.closed)
			}
		})
	}
}

func TestPipeline_Run_UpstreamUnauthorized(t *testing.T) {
	f := newFixture(t, http.StatusUnauthorized, `{"cod":401,"message":"Invalid API key"}`, nil)

	result := f.pipeline.Run(context.Background(), testRequest())

	if result.Stage != StageFailed || result.FailedStage != StageFetching {
		t.Fatalf("Stage = %s, FailedStage = %s, want failed at fetching", result.Stage, result.FailedStage)
	}
	if !strings.Contains(result.Message, "401") {
		t.Errorf("Message = %q, want it to mention 401", result.Message)
	}
	var upstreamErr *openweathermap.UpstreamError
	if !errors.As(result.Err, &upstreamErr) {
		t.Errorf("Err = %T, want *UpstreamError", result.Err)
	}
	if f.renderer.calls != 0 {
		t.Errorf("renderer called %d times, want 0", f.renderer.calls)
	}
	if f.transports != 0 {
		t.Errorf("mail transport opened %d times, want 0", f.transports)
	}
	if result.Series != nil || result.Chart != nil {
		t.Error("failed fetch left a series or chart on the result")
	}
}

func TestPipeline_Run_AuthRejected(t *testing.T) {
	dialErr := fmt.Errorf("SMTP AUTH failed: %w", &textproto.Error{Code: 535, Msg: "5.7.8 Username and Password not accepted"})
	f := newFixture(t, http.StatusOK, forecastPayload(8), dialErr)

	result := f.pipeline.Run(context.Background(), testRequest())

	if result.Stage != StageFailed || result.FailedStage != StageSending {
		t.Fatalf("Stage = %s, FailedStage = %s, want failed at sending", result.Stage, result.FailedStage)
	}
	if !strings.HasPrefix(result.Message, "Failed to send email:") {
		t.Errorf("Message = %q", result.Message)
	}
	var authErr *notify.AuthenticationError
	if !errors.As(result.Err, &authErr) {
		t.Errorf("Err = %T, want *AuthenticationError", result.Err)
	}
	if result.Chart == nil || len(result.Chart.Data) == 0 {
		t.Error("rendered chart dropped after a send failure")
	}
	if f.transport.closed != 1 {
		t.Errorf("transport closed %d times, want 1", f.transport.closed)
	}
}

func TestPipeline_Run_EmptySeries(t *testing.T) {
	f := newFixture(t, http.StatusOK, forecastPayload(0), nil)

	result := f.pipeline.Run(context.Background(), testRequest())

	if result.FailedStage != StageRendering {
		t.Errorf("FailedStage = %s, want rendering", result.FailedStage)
	}
	if !errors.Is(result.Err, chart.ErrEmptySeries) {
		t.Errorf("Err = %v, want ErrEmptySeries", result.Err)
	}
	if !strings.HasPrefix(result.Message, "An error occurred:") {
		t.Errorf("Message = %q", result.Message)
	}
	if f.transports != 0 {
		t.Error("email sent for an empty series")
	}
}

func TestPipeline_Run_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Request)
		wantErr error
	}{
		{"latitude out of range", func(r *Request) { r.Coordinates.Latitude = 91 }, types.ErrInvalidLatitude},
		{"longitude out of range", func(r *Request) { r.Coordinates.Longitude = -181 }, types.ErrInvalidLongitude},
		{"missing api key", func(r *Request) { r.APIKey = "" }, openweathermap.ErrMissingAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, http.StatusOK, forecastPayload(4), nil)
			req := testRequest()
			tt.mutate(&req)

			result := f.pipeline.Run(context.Background(), req)

			if !errors.Is(result.Err, tt.wantErr) {
				t.Errorf("Err = %v, want %v", result.Err, tt.wantErr)
			}
			if result.FailedStage != StageFetching {
				t.Errorf("FailedStage = %s, want fetching", result.FailedStage)
			}
			if *f.weatherHits != 0 {
				t.Error("weather API called with invalid input")
			}
		})
	}
}

// Mocks for location enrichment

type mockLocator struct {
	resolved *location.Resolved
	err      error
}

func (m *mockLocator) Resolve(ctx context.Context, coords types.Coords) (*location.Resolved, error) {
	return m.resolved, m.err
}

type stubFetcher struct {
	series *types.ForecastSeries
}

func (s *stubFetcher) FetchForecast(ctx context.Context, coords types.Coords, apiKey string) (*types.ForecastSeries, error) {
	copied := *s.series
	copied.Coordinates = coords
	return &copied, nil
}

type recordingNotifier struct {
	msgs []notify.Message
}

func (n *recordingNotifier) Send(ctx context.Context, creds notify.Credentials, msg notify.Message) notify.SendResult {
	n.msgs = append(n.msgs, msg)
	return notify.SendResult{Sent: true, Message: "ok"}
}

func TestPipeline_Forecast_Enrichment(t *testing.T) {
	base := &types.ForecastSeries{
		Place:     "Bijapur, IN",
		UTCOffset: 19800,
		Points:    []types.ForecastPoint{{Timestamp: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)}},
	}

	tests := []struct {
		name         string
		locator      location.Service
		wantPlace    string
		wantTimezone string
	}{
		{
			name:      "no locator",
			wantPlace: "Bijapur, IN",
		},
		{
			name: "resolved place and timezone",
			locator: &mockLocator{resolved: &location.Resolved{
				Info:     types.LocationInfo{Name: "Bijapur", State: "Karnataka", Country: "India"},
				Timezone: "Asia/Kolkata",
			}},
			wantPlace:    "Bijapur, Karnataka, India",
			wantTimezone: "Asia/Kolkata",
		},
		{
			name:         "timezone only",
			locator:      &mockLocator{resolved: &location.Resolved{Timezone: "Asia/Kolkata"}},
			wantPlace:    "Bijapur, IN",
			wantTimezone: "Asia/Kolkata",
		},
		{
			name:      "locator failure is not fatal",
			locator:   &mockLocator{err: errors.New("multiple errors")},
			wantPlace: "Bijapur, IN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts []Option
			if tt.locator != nil {
				opts = append(opts, WithLocator(tt.locator))
			}
			p := New(testLogger(), &stubFetcher{series: base}, nil, &recordingNotifier{}, opts...)

			series, err := p.Forecast(context.Background(), types.NewCoords(16.5, 75.3), "key")
			if err != nil {
				t.Fatalf("Forecast() error = %v", err)
			}
			if series.Place != tt.wantPlace {
				t.Errorf("Place = %q, want %q", series.Place, tt.wantPlace)
			}
			if series.Timezone != tt.wantTimezone {
				t.Errorf("Timezone = %q, want %q", series.Timezone, tt.wantTimezone)
			}
		})
	}
}

func TestPipeline_Run_ComposedMessage(t *testing.T) {
	series := &types.ForecastSeries{
		Place:  "Bijapur, IN",
		Points: []types.ForecastPoint{{Timestamp: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), TemperatureCelsius: 25}},
	}
	notifier := &recordingNotifier{}
	renderer := chart.NewRenderer(testLogger(), chart.Options{WidthInches: 2, HeightInches: 2, DPI: 30})
	p := New(testLogger(), &stubFetcher{series: series}, renderer, notifier, WithFrom("alerts@example.com"))

	result := p.Run(context.Background(), testRequest())
	if !result.Succeeded() {
		t.Fatalf("Run() failed: %v", result.Err)
	}
	if len(notifier.msgs) != 1 {
		t.Fatalf("notifier called %d times, want 1", len(notifier.msgs))
	}

	msg := notifier.msgs[0]
	if msg.From != "alerts@example.com" || msg.To != "recipient@example.com" {
		t.Errorf("From/To = %q/%q", msg.From, msg.To)
	}
	if msg.Subject != EmailSubject {
		t.Errorf("Subject = %q", msg.Subject)
	}
	wantBody := "<h1>Weather Forecast</h1><p>Find attached the 5-day weather forecast for Bijapur, IN (latitude 16.50432 and longitude 75.291748).</p>"
	if msg.HTMLBody != wantBody {
		t.Errorf("HTMLBody = %q, want %q", msg.HTMLBody, wantBody)
	}
	if msg.Attachment == nil || msg.Attachment.ContentType != "image/png" {
		t.Errorf("Attachment = %+v", msg.Attachment)
	}
}

func TestEmailBody(t *testing.T) {
	coords := types.NewCoords(16.50432, 75.291748)

	got := EmailBody(coords, "")
	want := "<h1>Weather Forecast</h1><p>Find attached the 5-day weather forecast for latitude 16.50432 and longitude 75.291748.</p>"
	if got != want {
		t.Errorf("EmailBody() = %q, want %q", got, want)
	}

	if escaped := EmailBody(coords, "<b>x</b>"); strings.Contains(escaped, "<b>") {
		t.Errorf("EmailBody() did not escape the place name: %q", escaped)
	}
}
