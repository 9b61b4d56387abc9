package openweathermap

// ForecastAPIResponse mirrors the 5 day / 3 hour forecast payload. Pointer
// fields distinguish a missing value from a zero reading.
type ForecastAPIResponse struct {
	Cnt  int              `json:"cnt"`
	List *[]ForecastEntry `json:"list"`
	City *City            `json:"city"`
}

type ForecastEntry struct {
	Dt    int64     `json:"dt"`
	DtTxt *string   `json:"dt_txt"`
	Main  *MainData `json:"main"`
	Wind  *WindData `json:"wind"`
	Pop   float64   `json:"pop"`
}

type MainData struct {
	Temp      *float64 `json:"temp"`
	FeelsLike float64  `json:"feels_like"`
	Pressure  float64  `json:"pressure"`
	Humidity  *float64 `json:"humidity"`
}

type WindData struct {
	Speed *float64 `json:"speed"`
	Deg   int      `json:"deg"`
	Gust  float64  `json:"gust"`
}

type City struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
	Coord   struct {
		Lat float64 `json:"lat"`
		Lon float64 `json:"lon"`
	} `json:"coord"`
	Timezone int `json:"timezone"` // shift in seconds from UTC
}
