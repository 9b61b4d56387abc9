package timezone

import (
	"fmt"
	"sync"

	"forecast-mailer/internal/types"

	"github.com/ringsaturn/tzf"
)

// Service resolves the IANA timezone used to localise forecast timestamps
type Service interface {
	GetTimezone(coords types.Coords) (string, error)
}

// service implements timezone lookup using tzf
type service struct {
	finder tzf.F
	mu     sync.RWMutex
}

var (
	instance *service
	initErr  error
	once     sync.Once
)

// NewService creates or returns the singleton timezone service.
// tzf.Finder keeps the polygon data in memory, so it is built only once.
func NewService() (Service, error) {
	once.Do(func() {
		finder, err := tzf.NewDefaultFinder()
		if err != nil {
			initErr = fmt.Errorf("failed to initialize timezone finder: %w", err)
			return
		}
		instance = &service{
			finder: finder,
		}
	})
	if initErr != nil {
		return nil, initErr
	}
	return instance, nil
}

// GetTimezone returns the IANA timezone name for the coordinates,
// e.g. "Asia/Kolkata" or "America/Denver"
func (s *service) GetTimezone(coords types.Coords) (string, error) {
	if err := coords.Validate(); err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	// tzf takes longitude first
	timezone := s.finder.GetTimezoneName(coords.Longitude, coords.Latitude)
	if timezone == "" {
		return "", fmt.Errorf("could not determine timezone for coordinates lat=%f, lon=%f", coords.Latitude, coords.Longitude)
	}

	return timezone, nil
}
