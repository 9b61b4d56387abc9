package openmeteo

// ForecastAPIResponse is the subset of the /v1/forecast payload the client reads
type ForecastAPIResponse struct {
	Latitude         float64      `json:"latitude"`
	Longitude        float64      `json:"longitude"`
	GenerationtimeMs float64      `json:"generationtime_ms"`
	UTCOffsetSeconds int          `json:"utc_offset_seconds"`
	Timezone         string       `json:"timezone"`
	Elevation        float64      `json:"elevation"`
	HourlyUnits      *HourlyUnits `json:"hourly_units"`
	Hourly           *HourlyData  `json:"hourly"`
}

type HourlyUnits struct {
	Temperature2m      string `json:"temperature_2m"`
	RelativeHumidity2m string `json:"relative_humidity_2m"`
	WindSpeed10m       string `json:"wind_speed_10m"`
}

// HourlyData holds parallel arrays indexed by hour. Values may be null.
type HourlyData struct {
	Time               []string   `json:"time"`
	Temperature2m      []*float64 `json:"temperature_2m"`
	RelativeHumidity2m []*float64 `json:"relative_humidity_2m"`
	WindSpeed10m       []*float64 `json:"wind_speed_10m"`
}

// ErrorResponse is returned with 400 status codes
type ErrorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}
