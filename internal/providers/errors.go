// Package providers holds the error types shared by the forecast provider clients.
package providers

import (
	"fmt"
)

// UpstreamError reports a non-2xx answer or a network fault from a weather provider.
// StatusCode is 0 when no response was received.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Body       string
	Err        error
}

func (e *UpstreamError) Error() string {
	name := e.Provider
	if name == "" {
		name = "weather provider"
	}
	switch {
	case e.StatusCode == 0:
		return fmt.Sprintf("%s request failed: %v", name, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s returned status %d: %v", name, e.StatusCode, e.Err)
	default:
		return fmt.Sprintf("%s returned status %d: %s", name, e.StatusCode, e.Body)
	}
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// SchemaError reports a 2xx payload that does not match the expected forecast shape.
type SchemaError struct {
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("unexpected forecast payload: %v", e.Err)
	}
	return fmt.Sprintf("unexpected forecast payload at %s: %v", e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}
