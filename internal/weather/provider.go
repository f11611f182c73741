package weather

import (
	"context"
)

// Provider abstracts the weather API (OpenWeatherMap).
type Provider interface {
	FetchCurrentWeather(ctx context.Context, q LocationQuery) (WeatherSnapshot, error)
	FetchForecast(ctx context.Context, q LocationQuery) (ForecastSet, error)
	SearchCities(ctx context.Context, text string) []CitySearchResult
	ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error)
}

// Cache is the contract the in-memory TTL cache must satisfy.
type Cache interface {
	Get(kind Kind, q LocationQuery) (any, bool)
	Put(kind Kind, q LocationQuery, value any)
}
