package geolocation

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

var (
	ErrPermissionDenied    = errors.New("Location access denied. Please enable location services and refresh the page.")
	ErrPositionUnavailable = errors.New("Location information is unavailable. Please try again.")
	ErrTimeout             = errors.New("Location request timed out. Please try again.")
	ErrUnsupported         = errors.New("Geolocation is not supported by this browser.")
)

const (
	DefaultTimeout = 10 * time.Second
	DefaultMaxAge  = 5 * time.Minute
)

// Position is a device fix. Timestamp is epoch milliseconds.
type Position struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Accuracy  float64 `json:"accuracy"` // meters
	Timestamp int64   `json:"timestamp"`
}

// Source produces device positions, e.g. a browser bridge or a GPS daemon.
type Source interface {
	CurrentPosition(ctx context.Context) (Position, error)
}

// Options bound how long a fix may take and how old a reused fix may be.
type Options struct {
	Timeout time.Duration
	MaxAge  time.Duration
}

// DefaultOptions mirror what the dashboard asks of the browser.
func DefaultOptions() Options {
	return Options{Timeout: DefaultTimeout, MaxAge: DefaultMaxAge}
}

// CachingLocator wraps a Source with a per-request timeout and reuses the
// last fix while it is younger than MaxAge. It is independent of the weather
// cache TTL.
type CachingLocator struct {
	mu   sync.Mutex
	src  Source
	opts Options
	now  func() time.Time
	last *Position
}

// NewCachingLocator creates a CachingLocator. A nil clock means time.Now.
func NewCachingLocator(src Source, opts Options, now func() time.Time) *CachingLocator {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if now == nil {
		now = time.Now
	}
	return &CachingLocator{src: src, opts: opts, now: now}
}

// CurrentPosition returns a fresh-enough fix, asking the source when needed.
func (l *CachingLocator) CurrentPosition(ctx context.Context) (Position, error) {
	if l.src == nil {
		return Position{}, ErrUnsupported
	}

	l.mu.Lock()
	if l.last != nil && l.now().Sub(time.UnixMilli(l.last.Timestamp)) < l.opts.MaxAge {
		pos := *l.last
		l.mu.Unlock()
		return pos, nil
	}
	l.mu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, l.opts.Timeout)
	defer cancel()

	pos, err := l.src.CurrentPosition(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return Position{}, ErrTimeout
		}
		log.Printf("geolocation: position lookup failed: %v", err)
		return Position{}, err
	}
	pos.Timestamp = l.now().UnixMilli()

	l.mu.Lock()
	l.last = &pos
	l.mu.Unlock()

	return pos, nil
}

// Locate adapts the locator for weather.Session.
func (l *CachingLocator) Locate(ctx context.Context) (weather.Coordinates, error) {
	pos, err := l.CurrentPosition(ctx)
	if err != nil {
		return weather.Coordinates{}, err
	}
	return weather.Coordinates{Lat: pos.Latitude, Lon: pos.Longitude}, nil
}

// StaticSource always reports the same position, e.g. a configured home.
type StaticSource struct {
	Latitude  float64
	Longitude float64
}

func (s StaticSource) CurrentPosition(ctx context.Context) (Position, error) {
	if err := ctx.Err(); err != nil {
		return Position{}, err
	}
	return Position{Latitude: s.Latitude, Longitude: s.Longitude}, nil
}
