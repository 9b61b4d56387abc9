package types

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestCoords_Validate(t *testing.T) {
	tests := []struct {
		name    string
		coords  Coords
		wantErr error
	}{
		{"valid", NewCoords(16.50432, 75.291748), nil},
		{"poles and antimeridian", NewCoords(-90, 180), nil},
		{"latitude too high", NewCoords(90.1, 0), ErrInvalidLatitude},
		{"latitude too low", NewCoords(-91, 0), ErrInvalidLatitude},
		{"longitude too high", NewCoords(0, 180.5), ErrInvalidLongitude},
		{"longitude too low", NewCoords(0, -181), ErrInvalidLongitude},
		{"latitude NaN", NewCoords(math.NaN(), 0), ErrInvalidLatitude},
		{"longitude NaN", NewCoords(0, math.NaN()), ErrInvalidLongitude},
		{"latitude infinite", NewCoords(math.Inf(1), 0), ErrInvalidLatitude},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.coords.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() unexpected error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestForecastSeries_Location(t *testing.T) {
	tests := []struct {
		name   string
		series *ForecastSeries
		want   string
	}{
		{"nil series", nil, "UTC"},
		{"iana name", &ForecastSeries{Timezone: "Asia/Kolkata"}, "Asia/Kolkata"},
		{"fixed offset", &ForecastSeries{UTCOffset: 19800}, "UTC+05:30"},
		{"negative offset", &ForecastSeries{UTCOffset: -25200}, "UTC-07:00"},
		{"unknown name falls back to offset", &ForecastSeries{Timezone: "Nowhere/Special", UTCOffset: 3600}, "UTC+01:00"},
		{"nothing known", &ForecastSeries{}, "UTC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.series.Location().String()
			if got != tt.want {
				t.Errorf("Location() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestForecastSeries_Span(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	series := &ForecastSeries{Points: []ForecastPoint{
		{Timestamp: start},
		{Timestamp: start.Add(3 * time.Hour)},
		{Timestamp: start.Add(6 * time.Hour)},
	}}

	first, last := series.Span()
	if !first.Equal(start) || !last.Equal(start.Add(6*time.Hour)) {
		t.Errorf("Span() = %v, %v", first, last)
	}

	var empty *ForecastSeries
	if !empty.IsEmpty() {
		t.Error("nil series should be empty")
	}
	if first, _ := empty.Span(); !first.IsZero() {
		t.Errorf("Span() on empty series = %v, want zero", first)
	}
}

func TestLocationInfo_DisplayName(t *testing.T) {
	tests := []struct {
		name string
		info LocationInfo
		want string
	}{
		{"full", LocationInfo{Name: "Bijapur", State: "Karnataka", Country: "India"}, "Bijapur, Karnataka, India"},
		{"no state", LocationInfo{Name: "Monaco", Country: "Monaco"}, "Monaco"},
		{"empty", LocationInfo{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.info.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
