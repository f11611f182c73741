package weather

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"
)

// Service joins cache lookups and concurrent provider calls into a single
// acquisition operation.
type Service struct {
	cache    Cache
	provider Provider
}

// NewService creates a new Service.
func NewService(cache Cache, provider Provider) *Service {
	return &Service{
		cache:    cache,
		provider: provider,
	}
}

// Lookup returns the combined report when both the current conditions and
// the forecast for q are cached and fresh.
func (s *Service) Lookup(q LocationQuery) (Report, bool) {
	cw, ok := s.cache.Get(KindWeather, q)
	if !ok {
		return Report{}, false
	}
	cf, ok := s.cache.Get(KindForecast, q)
	if !ok {
		return Report{}, false
	}

	snap, ok := cw.(WeatherSnapshot)
	if !ok {
		return Report{}, false
	}
	forecast, ok := cf.(ForecastSet)
	if !ok {
		return Report{}, false
	}
	return Report{WeatherSnapshot: snap, Forecast: forecast}, true
}

// Acquire returns current conditions and forecast for q. A full cache hit
// issues no network call. Otherwise both kinds are fetched concurrently;
// each successful result is cached as soon as it arrives, and the first
// failure fails the whole acquisition.
func (s *Service) Acquire(ctx context.Context, q LocationQuery) (Report, error) {
	if err := q.Validate(); err != nil {
		return Report{}, err
	}

	if r, ok := s.Lookup(q); ok {
		log.Printf("DEBUG: cache hit for %s", q)
		return r, nil
	}

	return s.fetch(ctx, q)
}

// Refresh fetches both kinds for q from the provider regardless of what is
// cached and stores the results, restarting their time-to-live.
func (s *Service) Refresh(ctx context.Context, q LocationQuery) (Report, error) {
	if err := q.Validate(); err != nil {
		return Report{}, err
	}
	return s.fetch(ctx, q)
}

func (s *Service) fetch(ctx context.Context, q LocationQuery) (Report, error) {
	var (
		g        errgroup.Group
		snap     WeatherSnapshot
		forecast ForecastSet
	)

	g.Go(func() error {
		res, err := s.provider.FetchCurrentWeather(ctx, q)
		if err != nil {
			return err
		}
		s.cache.Put(KindWeather, q, res)
		snap = res
		return nil
	})

	g.Go(func() error {
		res, err := s.provider.FetchForecast(ctx, q)
		if err != nil {
			return err
		}
		s.cache.Put(KindForecast, q, res)
		forecast = res
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Printf("ERROR: acquisition failed for %s: %v", q, err)
		return Report{}, err
	}

	return Report{WeatherSnapshot: snap, Forecast: forecast}, nil
}

// SearchCities delegates to the provider. It never fails; provider errors
// yield an empty result.
func (s *Service) SearchCities(ctx context.Context, text string) []CitySearchResult {
	return s.provider.SearchCities(ctx, text)
}

// ReverseGeocode delegates to the provider.
func (s *Service) ReverseGeocode(ctx context.Context, lat, lon float64) (*Place, error) {
	return s.provider.ReverseGeocode(ctx, lat, lon)
}
