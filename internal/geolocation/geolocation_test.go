package geolocation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

type countingSource struct {
	calls int
	pos   Position
	err   error
	block bool
}

func (s *countingSource) CurrentPosition(ctx context.Context) (Position, error) {
	s.calls++
	if s.block {
		<-ctx.Done()
		return Position{}, ctx.Err()
	}
	return s.pos, s.err
}

func TestCachingLocator_ReusesFixWithinMaxAge(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	src := &countingSource{pos: Position{Latitude: 59.91, Longitude: 10.75, Accuracy: 20}}
	l := NewCachingLocator(src, DefaultOptions(), func() time.Time { return now })

	first, err := l.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, now.UnixMilli(), first.Timestamp)

	now = now.Add(DefaultMaxAge - time.Second)
	second, err := l.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, src.calls)

	now = now.Add(time.Second)
	_, err = l.CurrentPosition(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestCachingLocator_Timeout(t *testing.T) {
	src := &countingSource{block: true}
	l := NewCachingLocator(src, Options{Timeout: 10 * time.Millisecond}, nil)

	_, err := l.CurrentPosition(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCachingLocator_PropagatesSourceErrors(t *testing.T) {
	src := &countingSource{err: ErrPermissionDenied}
	l := NewCachingLocator(src, DefaultOptions(), nil)

	_, err := l.Locate(context.Background())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestCachingLocator_NoSource(t *testing.T) {
	l := NewCachingLocator(nil, DefaultOptions(), nil)
	_, err := l.CurrentPosition(context.Background())
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestStaticSource_Locate(t *testing.T) {
	l := NewCachingLocator(StaticSource{Latitude: 48.85, Longitude: 2.35}, DefaultOptions(), nil)

	c, err := l.Locate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, weather.Coordinates{Lat: 48.85, Lon: 2.35}, c)
}
