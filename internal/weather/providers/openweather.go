package providers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const (
	DefaultBaseURL    = "https://api.openweathermap.org/data/2.5"
	DefaultGeoBaseURL = "https://api.openweathermap.org/geo/1.0"

	// minSearchLength is the shortest query text worth sending to geocoding.
	minSearchLength = 2
)

// OpenWeatherConfig configures an OpenWeatherClient.
type OpenWeatherConfig struct {
	APIKey     string
	BaseURL    string // defaults to DefaultBaseURL
	GeoBaseURL string // defaults to DefaultGeoBaseURL

	// Now stamps normalized snapshots; defaults to time.Now.
	Now func() time.Time
}

// OpenWeatherClient implements weather.Provider for OpenWeatherMap.
type OpenWeatherClient struct {
	apiKey     string
	baseURL    string
	geoBaseURL string
	client     *http.Client
	now        func() time.Time

	// Geocoding has its own circuit so swallowed search failures never
	// block weather fetches.
	dataCircuit *gobreaker.CircuitBreaker
	geoCircuit  *gobreaker.CircuitBreaker
}

// NewOpenWeatherClient validates cfg and builds a client. A missing API key
// is reported here as weather.ErrConfiguration rather than on first use.
func NewOpenWeatherClient(client *http.Client, cfg OpenWeatherConfig) (*OpenWeatherClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("%w: openweather api key is not configured", weather.ErrConfiguration)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.GeoBaseURL == "" {
		cfg.GeoBaseURL = DefaultGeoBaseURL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &OpenWeatherClient{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		geoBaseURL: strings.TrimRight(cfg.GeoBaseURL, "/"),
		client:     client,
		now:        cfg.Now,

		dataCircuit: newCircuitBreaker("openweather-data"),
		geoCircuit:  newCircuitBreaker("openweather-geo"),
	}, nil
}

// weatherURL builds a data endpoint URL addressed by q.
func (c *OpenWeatherClient) weatherURL(endpoint string, q weather.LocationQuery) string {
	values := url.Values{}
	values.Set("appid", c.apiKey)
	values.Set("units", "metric")

	if q.City != "" {
		values.Set("q", q.City)
	} else {
		values.Set("lat", common.FormatCoord(q.Coords.Lat))
		values.Set("lon", common.FormatCoord(q.Coords.Lon))
	}

	return fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, values.Encode())
}

// FetchCurrentWeather returns normalized current conditions for q.
func (c *OpenWeatherClient) FetchCurrentWeather(ctx context.Context, q weather.LocationQuery) (weather.WeatherSnapshot, error) {
	if err := q.Validate(); err != nil {
		return weather.WeatherSnapshot{}, err
	}

	var payload currentPayload
	if err := getJSON(ctx, c.client, c.dataCircuit, c.weatherURL("weather", q), currentMessages, &payload); err != nil {
		return weather.WeatherSnapshot{}, err
	}

	return normalizeCurrent(payload, c.now()), nil
}

// FetchForecast returns the normalized short-range forecast for q.
func (c *OpenWeatherClient) FetchForecast(ctx context.Context, q weather.LocationQuery) (weather.ForecastSet, error) {
	if err := q.Validate(); err != nil {
		return weather.ForecastSet{}, err
	}

	var payload forecastPayload
	if err := getJSON(ctx, c.client, c.dataCircuit, c.weatherURL("forecast", q), forecastMessages, &payload); err != nil {
		return weather.ForecastSet{}, err
	}

	return normalizeForecast(payload), nil
}

// SearchCities returns up to five geocoding matches for text. Text shorter
// than two characters issues no request. Failures are logged and yield an
// empty result.
func (c *OpenWeatherClient) SearchCities(ctx context.Context, text string) []weather.CitySearchResult {
	text = strings.TrimSpace(text)
	if utf8.RuneCountInString(text) < minSearchLength {
		return []weather.CitySearchResult{}
	}

	values := url.Values{}
	values.Set("q", text)
	values.Set("limit", fmt.Sprint(weather.MaxSearchResults))
	values.Set("appid", c.apiKey)
	u := fmt.Sprintf("%s/direct?%s", c.geoBaseURL, values.Encode())

	var payload []geoPayload
	if err := getJSON(ctx, c.client, c.geoCircuit, u, searchMessages, &payload); err != nil {
		log.Printf("ERROR: city search for %q failed: %v", text, err)
		return []weather.CitySearchResult{}
	}

	return normalizeCities(payload)
}

// ReverseGeocode returns the closest named place for a coordinate pair, or
// nil when the provider knows none.
func (c *OpenWeatherClient) ReverseGeocode(ctx context.Context, lat, lon float64) (*weather.Place, error) {
	values := url.Values{}
	values.Set("lat", common.FormatCoord(lat))
	values.Set("lon", common.FormatCoord(lon))
	values.Set("limit", "1")
	values.Set("appid", c.apiKey)
	u := fmt.Sprintf("%s/reverse?%s", c.geoBaseURL, values.Encode())

	var payload []geoPayload
	if err := getJSON(ctx, c.client, c.geoCircuit, u, reverseMessages, &payload); err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, nil
	}

	return normalizePlace(payload[0]), nil
}
