package types

import (
	"fmt"
	"time"
	_ "time/tzdata" // timestamps are localised even on hosts without a zoneinfo database
)

// ForecastPoint is one provider-supplied, time-stamped weather reading
type ForecastPoint struct {
	Timestamp          time.Time `json:"timestamp"`
	TemperatureCelsius float64   `json:"temperature_celsius"`
	HumidityPercent    float64   `json:"humidity_percent"`
	WindSpeedMps       float64   `json:"wind_speed_mps"`
}

// ForecastSeries holds the ordered forecast points fetched for one
// coordinate. It lives for a single request and is never cached.
type ForecastSeries struct {
	Coordinates Coords          `json:"coordinates"`
	Place       string          `json:"place,omitempty"`
	Timezone    string          `json:"timezone"`
	UTCOffset   int             `json:"utc_offset_seconds"`
	FetchedAt   time.Time       `json:"fetched_at"`
	Points      []ForecastPoint `json:"points"`
}

func (s *ForecastSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Points)
}

func (s *ForecastSeries) IsEmpty() bool {
	return s.Len() == 0
}

// Location resolves the series timezone. An IANA name wins; otherwise the
// provider's fixed UTC offset is used, and UTC when neither is known.
func (s *ForecastSeries) Location() *time.Location {
	if s == nil {
		return time.UTC
	}
	if s.Timezone != "" {
		if loc, err := time.LoadLocation(s.Timezone); err == nil {
			return loc
		}
	}
	if s.UTCOffset != 0 {
		return time.FixedZone(formatOffset(s.UTCOffset), s.UTCOffset)
	}
	return time.UTC
}

func formatOffset(seconds int) string {
	sign := "+"
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, seconds/3600, (seconds%3600)/60)
}

// Span returns the first and last timestamps of the series.
func (s *ForecastSeries) Span() (start, end time.Time) {
	if s.IsEmpty() {
		return time.Time{}, time.Time{}
	}
	return s.Points[0].Timestamp, s.Points[len(s.Points)-1].Timestamp
}
