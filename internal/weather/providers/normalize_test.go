package providers

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const londonCurrentJSON = `{
  "coord": {"lon": -0.1257, "lat": 51.5085},
  "weather": [{"id": 803, "main": "Clouds", "description": "broken clouds", "icon": "04d"}],
  "main": {"temp": 19.4, "feels_like": 18.5, "temp_min": 10.6, "temp_max": 21.5, "pressure": 1012, "humidity": 64},
  "visibility": 10000,
  "wind": {"speed": 4.12, "deg": 250, "gust": 7.2},
  "clouds": {"all": 75},
  "dt": 1714564800,
  "sys": {"country": "GB", "sunrise": 1714537380, "sunset": 1714591800},
  "timezone": 3600,
  "id": 2643743,
  "name": "London"
}`

func TestNormalizeCurrent(t *testing.T) {
	var raw currentPayload
	require.NoError(t, json.Unmarshal([]byte(londonCurrentJSON), &raw))

	now := time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
	snap := normalizeCurrent(raw, now)

	assert.Equal(t, 2643743, snap.ID)
	assert.Equal(t, "London", snap.Name)
	assert.Equal(t, "GB", snap.Country)
	assert.Equal(t, weather.Coordinates{Lat: 51.5085, Lon: -0.1257}, snap.Coordinates)
	assert.Equal(t, weather.Condition{Main: "Clouds", Description: "broken clouds", Icon: "04d", ID: 803}, snap.Condition)

	assert.Equal(t, 19, snap.Temperature.Current)
	assert.Equal(t, 19, snap.Temperature.FeelsLike)
	assert.Equal(t, 11, snap.Temperature.Min)
	assert.Equal(t, 22, snap.Temperature.Max)

	assert.Equal(t, 64, snap.Humidity)
	assert.Equal(t, 1012, snap.Pressure)
	require.NotNil(t, snap.Visibility)
	assert.Equal(t, 10, *snap.Visibility)

	assert.Equal(t, 4.12, snap.Wind.Speed)
	assert.Equal(t, 250, snap.Wind.Direction)
	require.NotNil(t, snap.Wind.Gust)
	assert.Equal(t, 7.2, *snap.Wind.Gust)

	assert.Equal(t, 75, snap.Clouds)
	assert.Equal(t, int64(1714537380000), snap.Sunrise)
	assert.Equal(t, int64(1714591800000), snap.Sunset)
	assert.Equal(t, 3600, snap.Timezone)
	assert.Equal(t, now.UnixMilli(), snap.LastUpdated, "capture time, not provider time")
}

func TestNormalizeCurrent_OptionalFieldsAbsent(t *testing.T) {
	raw := currentPayload{Name: "Nowhere"}
	snap := normalizeCurrent(raw, time.Now())

	assert.Nil(t, snap.Visibility, "absent visibility must be nil, never 0")
	assert.Nil(t, snap.Wind.Gust)
	assert.Equal(t, weather.Condition{}, snap.Condition)
}

func TestNormalizeCurrent_VisibilityRounding(t *testing.T) {
	v := 6500.0
	snap := normalizeCurrent(currentPayload{Visibility: &v}, time.Now())
	require.NotNil(t, snap.Visibility)
	assert.Equal(t, 7, *snap.Visibility)
}

func TestNormalizeCurrent_ZeroVisibilityAndGustAreAbsent(t *testing.T) {
	var raw currentPayload
	require.NoError(t, json.Unmarshal([]byte(`{"visibility": 0, "wind": {"speed": 1.5, "deg": 90, "gust": 0}}`), &raw))

	snap := normalizeCurrent(raw, time.Now())
	assert.Nil(t, snap.Visibility)
	assert.Nil(t, snap.Wind.Gust)
	assert.Equal(t, 1.5, snap.Wind.Speed)
}

func forecastEntry(ts time.Time, temp float64, pop float64) forecastItem {
	return forecastItem{
		Dt:      ts.Unix(),
		Main:    mainPayload{Temp: temp, TempMin: temp - 1.4, TempMax: temp + 1.6, Humidity: 50},
		Weather: []conditionPayload{{ID: 800, Main: "Clear", Description: "clear sky", Icon: "01d"}},
		Wind:    windPayload{Speed: 3.5, Deg: 180},
		Clouds:  cloudsPayload{All: 10},
		Pop:     pop,
	}
}

func TestNormalizeForecast_MiddaySelection(t *testing.T) {
	day := func(d, h int) time.Time { return time.Date(2024, 5, d, h, 0, 0, 0, time.UTC) }

	raw := forecastPayload{
		List: []forecastItem{
			forecastEntry(day(1, 9), 15, 0),
			forecastEntry(day(1, 12), 18.5, 0.29),
			forecastEntry(day(1, 15), 20, 0),
			forecastEntry(day(2, 12), 19.4, 0.5),
			forecastEntry(day(3, 12), 10.6, 1),
			forecastEntry(day(4, 12), 22, 0),
		},
	}
	raw.City.Name = "London"
	raw.City.Country = "GB"
	raw.City.Sunrise = 1714537380

	set := normalizeForecast(raw)

	require.Len(t, set.Forecasts, 3, "a fourth noon entry must be dropped")
	assert.Equal(t, "2024-05-01", set.Forecasts[0].Date)
	assert.Equal(t, "2024-05-02", set.Forecasts[1].Date)
	assert.Equal(t, "2024-05-03", set.Forecasts[2].Date)

	assert.Equal(t, day(1, 12).UnixMilli(), set.Forecasts[0].Timestamp)
	assert.Equal(t, 19, set.Forecasts[0].Temperature.Current)
	assert.Equal(t, 29, set.Forecasts[0].PrecipitationChance)
	assert.Equal(t, 50, set.Forecasts[1].PrecipitationChance)
	assert.Equal(t, 100, set.Forecasts[2].PrecipitationChance)
	assert.Equal(t, 11, set.Forecasts[2].Temperature.Current)

	assert.Equal(t, "London", set.City.Name)
	assert.Equal(t, int64(1714537380000), set.City.Sunrise)
}

func TestNormalizeForecast_UsesCityLocalTime(t *testing.T) {
	// UTC+3: 09:00 UTC is local noon.
	raw := forecastPayload{
		List: []forecastItem{
			forecastEntry(time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC), 25, 0),
			forecastEntry(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), 27, 0),
			forecastEntry(time.Date(2024, 5, 1, 21, 0, 0, 0, time.UTC), 20, 0), // local 00:00 on the 2nd
			forecastEntry(time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC), 26, 0),
		},
	}
	raw.City.Timezone = 3 * 3600

	set := normalizeForecast(raw)

	require.Len(t, set.Forecasts, 2)
	assert.Equal(t, "2024-05-01", set.Forecasts[0].Date)
	assert.Equal(t, 25, set.Forecasts[0].Temperature.Current)
	assert.Equal(t, "2024-05-02", set.Forecasts[1].Date)
}

func TestNormalizeForecast_DuplicateNoonForSameDateKeepsFirst(t *testing.T) {
	noon := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	raw := forecastPayload{
		List: []forecastItem{
			forecastEntry(noon, 18, 0),
			forecastEntry(noon.Add(30*time.Minute), 30, 0),
		},
	}

	set := normalizeForecast(raw)

	require.Len(t, set.Forecasts, 1)
	assert.Equal(t, 18, set.Forecasts[0].Temperature.Current)
}

func TestNormalizeCities(t *testing.T) {
	raw := []geoPayload{
		{Name: "Springfield", State: "Illinois", Country: "US", Lat: 39.8, Lon: -89.6},
		{Name: "Springfield", Country: "AU", Lat: -20.1, Lon: 148.5},
		{Name: "A"}, {Name: "B"}, {Name: "C"}, {Name: "D"},
	}

	out := normalizeCities(raw)

	require.Len(t, out, weather.MaxSearchResults)
	assert.Equal(t, "Springfield, Illinois, US", out[0].DisplayName)
	assert.Equal(t, "Springfield, AU", out[1].DisplayName)
	assert.Equal(t, "A", out[2].Name)
}
