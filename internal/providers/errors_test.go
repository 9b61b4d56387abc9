package providers

import (
	"errors"
	"strings"
	"testing"
)

func TestUpstreamError_Error(t *testing.T) {
	readErr := errors.New("unexpected EOF")

	tests := []struct {
		name string
		err  *UpstreamError
		want []string
	}{
		{"network fault", &UpstreamError{Err: errors.New("connection refused")}, []string{"weather provider request failed", "connection refused"}},
		{"status with body", &UpstreamError{StatusCode: 401, Body: "Invalid API key"}, []string{"status 401", "Invalid API key"}},
		{"body read failure keeps cause", &UpstreamError{StatusCode: 200, Err: readErr}, []string{"status 200", "unexpected EOF"}},
		{"named provider", &UpstreamError{Provider: "open-meteo", StatusCode: 503, Body: "down"}, []string{"open-meteo returned status 503", "down"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			for _, want := range tt.want {
				if !strings.Contains(got, want) {
					t.Errorf("Error() = %q, want it to contain %q", got, want)
				}
			}
		})
	}

	if !errors.Is(&UpstreamError{StatusCode: 200, Err: readErr}, readErr) {
		t.Error("UpstreamError does not unwrap to its cause")
	}
}

func TestSchemaError_Error(t *testing.T) {
	cause := errors.New("field is missing")

	err := &SchemaError{Field: "list[0].main.temp", Err: cause}
	if got := err.Error(); got != "unexpected forecast payload at list[0].main.temp: field is missing" {
		t.Errorf("Error() = %q", got)
	}
	if !errors.Is(err, cause) {
		t.Error("SchemaError does not unwrap to its cause")
	}
	if got := (&SchemaError{Err: cause}).Error(); got != "unexpected forecast payload: field is missing" {
		t.Errorf("Error() without field = %q", got)
	}
}
