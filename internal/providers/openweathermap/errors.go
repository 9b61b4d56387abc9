package openweathermap

import (
	"errors"

	"forecast-mailer/internal/providers"
)

// ErrMissingAPIKey is returned before any request is made when no key is supplied.
var ErrMissingAPIKey = errors.New("weather API key is required")

type (
	UpstreamError = providers.UpstreamError
	SchemaError   = providers.SchemaError
)

var errMissingField = errors.New("field is missing")
