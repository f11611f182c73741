package weather

import (
	"github.com/i474232898/weather-dashboard/internal/common"
)

// Kind identifies which payload a cache entry holds.
type Kind string

const (
	KindWeather  Kind = "weather"
	KindForecast Kind = "forecast"
)

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// LocationQuery addresses a place either by free-text city name or by
// coordinates. Exactly one of the two is set.
type LocationQuery struct {
	City   string       `json:"city,omitempty"`
	Coords *Coordinates `json:"coordinates,omitempty"`
}

// ByCity builds a name-addressed query.
func ByCity(name string) LocationQuery {
	return LocationQuery{City: name}
}

// ByCoordinates builds a coordinate-addressed query. Ranges are not checked.
func ByCoordinates(lat, lon float64) LocationQuery {
	return LocationQuery{Coords: &Coordinates{Lat: lat, Lon: lon}}
}

// Validate reports ErrInvalidQuery unless exactly one addressing mode is set.
func (q LocationQuery) Validate() error {
	hasCity := q.City != ""
	hasCoords := q.Coords != nil
	if hasCity == hasCoords {
		return ErrInvalidQuery
	}
	return nil
}

// Key returns the canonical cache key for the given payload kind.
// Name and coordinate addressing never share a key, even for the same city.
func (q LocationQuery) Key(kind Kind) string {
	if q.City != "" {
		return string(kind) + ":name:" + q.City
	}
	if q.Coords != nil {
		return string(kind) + ":coord:" + common.FormatCoord(q.Coords.Lat) + "," + common.FormatCoord(q.Coords.Lon)
	}
	return string(kind) + ":none"
}

func (q LocationQuery) String() string {
	if q.City != "" {
		return q.City
	}
	if q.Coords != nil {
		return common.FormatCoord(q.Coords.Lat) + "," + common.FormatCoord(q.Coords.Lon)
	}
	return "<empty>"
}

// Condition is the provider's weather condition descriptor.
type Condition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	ID          int    `json:"id"`
}

// Temperature holds whole-degree Celsius values.
type Temperature struct {
	Current   int `json:"current"`
	FeelsLike int `json:"feelsLike"`
	Min       int `json:"min"`
	Max       int `json:"max"`
}

// Wind speed is in m/s, direction in degrees.
type Wind struct {
	Speed     float64  `json:"speed"`
	Direction int      `json:"direction"`
	Gust      *float64 `json:"gust"`
}

// WeatherSnapshot is a single point-in-time current-conditions record.
// All epoch values are milliseconds. Snapshots are replaced, never mutated.
type WeatherSnapshot struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
	Condition   Condition   `json:"weather"`
	Temperature Temperature `json:"temperature"`
	Humidity    int         `json:"humidity"`
	Pressure    int         `json:"pressure"`
	Visibility  *int        `json:"visibility"` // km, nil when the provider omits it
	Wind        Wind        `json:"wind"`
	Clouds      int         `json:"clouds"`
	Sunrise     int64       `json:"sunrise"`
	Sunset      int64       `json:"sunset"`
	Timezone    int         `json:"timezone"` // seconds east of UTC
	LastUpdated int64       `json:"lastUpdated"`
}

// ForecastCity identifies the location a ForecastSet belongs to.
type ForecastCity struct {
	Name        string      `json:"name"`
	Country     string      `json:"country"`
	Coordinates Coordinates `json:"coordinates"`
	Timezone    int         `json:"timezone"`
	Sunrise     int64       `json:"sunrise"`
	Sunset      int64       `json:"sunset"`
}

// DayTemperature is the temperature group of a single forecast day.
type DayTemperature struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Current int `json:"current"`
}

// DayWind is the wind group of a single forecast day.
type DayWind struct {
	Speed     float64 `json:"speed"`
	Direction int     `json:"direction"`
}

// DayForecast is the midday reading chosen to represent one calendar date.
type DayForecast struct {
	Date                string         `json:"date"` // local date, YYYY-MM-DD
	Timestamp           int64          `json:"timestamp"`
	Condition           Condition      `json:"weather"`
	Temperature         DayTemperature `json:"temperature"`
	Humidity            int            `json:"humidity"`
	Wind                DayWind        `json:"wind"`
	Clouds              int            `json:"clouds"`
	PrecipitationChance int            `json:"pop"` // percent
}

// ForecastSet is the derived short-range forecast for one location.
// Forecasts holds at most MaxForecastDays entries in ascending date order.
type ForecastSet struct {
	City      ForecastCity  `json:"city"`
	Forecasts []DayForecast `json:"forecasts"`
}

// MaxForecastDays caps the number of days kept in a ForecastSet.
const MaxForecastDays = 3

// Report is the combined record handed to the UI: current conditions with
// the forecast embedded.
type Report struct {
	WeatherSnapshot
	Forecast ForecastSet `json:"forecast"`
}

// CitySearchResult is one geocoding match, in provider rank order.
type CitySearchResult struct {
	Name        string  `json:"name"`
	Country     string  `json:"country"`
	State       string  `json:"state,omitempty"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"displayName"`
}

// MaxSearchResults caps city search output.
const MaxSearchResults = 5

// Place is the result of reverse geocoding a coordinate pair.
type Place struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state,omitempty"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
