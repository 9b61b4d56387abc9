package location

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"forecast-mailer/internal/providers/openstreetmap"
	"forecast-mailer/internal/types"
)

// Service describes where a coordinate is: a human place name and the
// timezone its forecast should be shown in
type Service interface {
	Resolve(ctx context.Context, coords types.Coords) (*Resolved, error)
}

// Resolved is the best-effort description of a coordinate. Either part may
// be empty when its lookup failed.
type Resolved struct {
	Coordinates types.Coords
	Info        types.LocationInfo
	Timezone    string
}

// ReverseGeocodeProvider defines the interface for location data providers
type ReverseGeocodeProvider interface {
	Lookup(ctx context.Context, coords types.Coords) (*openstreetmap.LookupAPIResponse, error)
}

// TimezoneProvider defines the interface for timezone lookups
type TimezoneProvider interface {
	GetTimezone(coords types.Coords) (string, error)
}

// locationService implements the Service interface
type locationService struct {
	locationProvider ReverseGeocodeProvider
	timezoneProvider TimezoneProvider
	logger           *slog.Logger
}

// NewLocationService creates a location service. A nil geocoder disables
// place name lookups.
func NewLocationService(
	logger *slog.Logger,
	locationProvider ReverseGeocodeProvider,
	timezoneProvider TimezoneProvider,
) Service {
	return &locationService{
		locationProvider: locationProvider,
		timezoneProvider: timezoneProvider,
		logger:           logger.With("component", "location-service"),
	}
}

// Resolve calls the geocoder and the timezone finder in parallel. It fails
// only when every configured lookup failed.
func (s *locationService) Resolve(ctx context.Context, coords types.Coords) (*Resolved, error) {
	if err := coords.Validate(); err != nil {
		return nil, err
	}

	var (
		wg           sync.WaitGroup
		locationResp *openstreetmap.LookupAPIResponse
		timezone     string
		locationErr  error
		timezoneErr  error
	)

	if s.locationProvider != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			locationResp, locationErr = s.locationProvider.Lookup(ctx, coords)
			if locationErr != nil {
				locationErr = fmt.Errorf("failed to get location: %w", locationErr)
			}
		}()
	}

	if s.timezoneProvider != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			timezone, timezoneErr = s.timezoneProvider.GetTimezone(coords)
			if timezoneErr != nil {
				timezoneErr = fmt.Errorf("failed to get timezone: %w", timezoneErr)
			}
		}()
	}

	// Wait for both calls to complete
	wg.Wait()

	if locationErr != nil && timezoneErr != nil {
		return nil, fmt.Errorf("multiple errors: location: %v; timezone: %v", locationErr, timezoneErr)
	}

	resolved := &Resolved{Coordinates: coords, Timezone: timezone}

	if locationErr != nil {
		s.logger.Warn("place name lookup failed",
			"latitude", coords.Latitude,
			"longitude", coords.Longitude,
			"error", locationErr,
		)
	} else if locationResp != nil {
		resolved.Info = translateLocationInfo(locationResp)
	}

	if timezoneErr != nil {
		s.logger.Warn("timezone lookup failed",
			"latitude", coords.Latitude,
			"longitude", coords.Longitude,
			"error", timezoneErr,
		)
	}

	s.logger.Debug("resolved location",
		"latitude", coords.Latitude,
		"longitude", coords.Longitude,
		"place", resolved.Info.DisplayName(),
		"timezone", resolved.Timezone,
	)

	return resolved, nil
}

// translateLocationInfo converts an OpenStreetMap reverse lookup response to domain LocationInfo type
func translateLocationInfo(resp *openstreetmap.LookupAPIResponse) types.LocationInfo {
	// Prefer the settlement name over the feature name
	name := resp.Name
	for _, candidate := range []string{resp.Address.City, resp.Address.Town, resp.Address.Village} {
		if candidate != "" {
			name = candidate
			break
		}
	}
	if name == "" {
		name = resp.DisplayName
	}

	return types.LocationInfo{
		Name:        name,
		County:      resp.Address.County,
		State:       resp.Address.State,
		Country:     resp.Address.Country,
		CountryCode: resp.Address.CountryCode,
	}
}
