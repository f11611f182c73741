package scheduler

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type recordingRefresher struct {
	mu      sync.Mutex
	queries []string
	fail    string
}

func (a *recordingRefresher) Refresh(ctx context.Context, q weather.LocationQuery) (weather.Report, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.queries = append(a.queries, q.City)
	if q.City == a.fail {
		return weather.Report{}, errors.New("boom")
	}
	return weather.Report{}, nil
}

func (a *recordingRefresher) seen() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := append([]string(nil), a.queries...)
	sort.Strings(out)
	return out
}

type countingWarmer struct {
	mu    sync.Mutex
	calls int
}

func (r *countingWarmer) Warm(ctx context.Context) (weather.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return weather.Report{}, nil
}

func (r *countingWarmer) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestRun_WarmsEveryCityAndHome(t *testing.T) {
	a := &recordingRefresher{fail: "Paris"}
	home := &countingWarmer{}
	s := New([]string{"Paris", "London", "Oslo"}, time.Minute, a, home)

	s.Run()

	assert.Equal(t, []string{"London", "Oslo", "Paris"}, a.seen(), "a failing city does not stop the others")
	assert.Equal(t, 1, home.count())
}

func TestStart_NothingToWarm(t *testing.T) {
	s := New(nil, time.Minute, &recordingRefresher{}, nil)
	require.NoError(t, s.Start())
	s.Stop()
}

func TestStart_RunsImmediately(t *testing.T) {
	a := &recordingRefresher{}
	s := New([]string{"Rome"}, time.Hour, a, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool { return len(a.seen()) == 1 }, 2*time.Second, 10*time.Millisecond)
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// slowProvider advances the clock while each current-weather fetch is in
// flight, so cached entries are younger than the tick that stored them.
type slowProvider struct {
	mu      sync.Mutex
	calls   int
	clock   *fakeClock
	latency time.Duration
}

func (p *slowProvider) FetchCurrentWeather(ctx context.Context, q weather.LocationQuery) (weather.WeatherSnapshot, error) {
	p.mu.Lock()
	p.calls++
	p.mu.Unlock()
	p.clock.Advance(p.latency)
	return weather.WeatherSnapshot{Name: q.City}, nil
}

func (p *slowProvider) FetchForecast(ctx context.Context, q weather.LocationQuery) (weather.ForecastSet, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	return weather.ForecastSet{}, nil
}

func (p *slowProvider) SearchCities(ctx context.Context, text string) []weather.CitySearchResult {
	return nil
}

func (p *slowProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*weather.Place, error) {
	return nil, nil
}

func (p *slowProvider) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

func TestRun_KeepsCacheWarmAcrossTicks(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	p := &slowProvider{clock: clock, latency: time.Second}
	svc := weather.NewService(store.NewMemoryCache(store.DefaultTTL, clock.Now), p)
	s := New([]string{"London"}, store.DefaultTTL, svc, nil)

	s.Run()
	require.Equal(t, 2, p.count())

	// One interval after the first tick the entries are just short of
	// expiry; the tick must still fetch.
	clock.Advance(store.DefaultTTL - time.Second)
	s.Run()
	assert.Equal(t, 4, p.count())

	clock.Advance(2 * time.Second)
	_, ok := svc.Lookup(weather.ByCity("London"))
	assert.True(t, ok, "a viewer shortly after the tick hits the cache")
}
