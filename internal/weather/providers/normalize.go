package providers

import (
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

// Raw OpenWeatherMap payloads. Only the fields we normalize are decoded.

type coordPayload struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type conditionPayload struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

type mainPayload struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Pressure  int     `json:"pressure"`
	Humidity  int     `json:"humidity"`
}

type windPayload struct {
	Speed float64  `json:"speed"`
	Deg   int      `json:"deg"`
	Gust  *float64 `json:"gust"`
}

type cloudsPayload struct {
	All int `json:"all"`
}

type currentPayload struct {
	ID         int                `json:"id"`
	Name       string             `json:"name"`
	Coord      coordPayload       `json:"coord"`
	Weather    []conditionPayload `json:"weather"`
	Main       mainPayload        `json:"main"`
	Visibility *float64           `json:"visibility"` // meters
	Wind       windPayload        `json:"wind"`
	Clouds     cloudsPayload      `json:"clouds"`
	Sys        struct {
		Country string `json:"country"`
		Sunrise int64  `json:"sunrise"`
		Sunset  int64  `json:"sunset"`
	} `json:"sys"`
	Timezone int `json:"timezone"`
}

type forecastItem struct {
	Dt      int64              `json:"dt"`
	Main    mainPayload        `json:"main"`
	Weather []conditionPayload `json:"weather"`
	Wind    windPayload        `json:"wind"`
	Clouds  cloudsPayload      `json:"clouds"`
	Pop     float64            `json:"pop"`
}

type forecastPayload struct {
	List []forecastItem `json:"list"`
	City struct {
		Name     string       `json:"name"`
		Country  string       `json:"country"`
		Coord    coordPayload `json:"coord"`
		Timezone int          `json:"timezone"`
		Sunrise  int64        `json:"sunrise"`
		Sunset   int64        `json:"sunset"`
	} `json:"city"`
}

type geoPayload struct {
	Name    string  `json:"name"`
	Country string  `json:"country"`
	State   string  `json:"state"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}

// middayHour is the local hour whose reading represents a forecast day.
const middayHour = 12

func millis(epochSeconds int64) int64 {
	return epochSeconds * 1000
}

func firstCondition(items []conditionPayload) weather.Condition {
	if len(items) == 0 {
		return weather.Condition{}
	}
	c := items[0]
	return weather.Condition{
		Main:        c.Main,
		Description: c.Description,
		Icon:        c.Icon,
		ID:          c.ID,
	}
}

// normalizeCurrent converts a current-weather payload. now stamps LastUpdated.
func normalizeCurrent(raw currentPayload, now time.Time) weather.WeatherSnapshot {
	// A reported zero is treated like an absent reading for both visibility
	// and gust.
	var visibility *int
	if raw.Visibility != nil && *raw.Visibility != 0 {
		km := common.RoundHalfUp(*raw.Visibility / 1000)
		visibility = &km
	}

	var gust *float64
	if raw.Wind.Gust != nil && *raw.Wind.Gust != 0 {
		g := *raw.Wind.Gust
		gust = &g
	}

	return weather.WeatherSnapshot{
		ID:          raw.ID,
		Name:        raw.Name,
		Country:     raw.Sys.Country,
		Coordinates: weather.Coordinates{Lat: raw.Coord.Lat, Lon: raw.Coord.Lon},
		Condition:   firstCondition(raw.Weather),
		Temperature: weather.Temperature{
			Current:   common.RoundHalfUp(raw.Main.Temp),
			FeelsLike: common.RoundHalfUp(raw.Main.FeelsLike),
			Min:       common.RoundHalfUp(raw.Main.TempMin),
			Max:       common.RoundHalfUp(raw.Main.TempMax),
		},
		Humidity:   raw.Main.Humidity,
		Pressure:   raw.Main.Pressure,
		Visibility: visibility,
		Wind: weather.Wind{
			Speed:     raw.Wind.Speed,
			Direction: raw.Wind.Deg,
			Gust:      gust,
		},
		Clouds:      raw.Clouds.All,
		Sunrise:     millis(raw.Sys.Sunrise),
		Sunset:      millis(raw.Sys.Sunset),
		Timezone:    raw.Timezone,
		LastUpdated: now.UnixMilli(),
	}
}

// normalizeForecast keeps, per local calendar date, the first entry at local
// noon, and stops after MaxForecastDays dates.
func normalizeForecast(raw forecastPayload) weather.ForecastSet {
	zone := time.FixedZone("", raw.City.Timezone)
	seen := make(map[string]bool)
	days := make([]weather.DayForecast, 0, weather.MaxForecastDays)

	for _, item := range raw.List {
		if len(days) == weather.MaxForecastDays {
			break
		}

		local := time.Unix(item.Dt, 0).In(zone)
		date := local.Format("2006-01-02")
		if seen[date] || local.Hour() != middayHour {
			continue
		}
		seen[date] = true

		days = append(days, weather.DayForecast{
			Date:      date,
			Timestamp: millis(item.Dt),
			Condition: firstCondition(item.Weather),
			Temperature: weather.DayTemperature{
				Min:     common.RoundHalfUp(item.Main.TempMin),
				Max:     common.RoundHalfUp(item.Main.TempMax),
				Current: common.RoundHalfUp(item.Main.Temp),
			},
			Humidity: item.Main.Humidity,
			Wind: weather.DayWind{
				Speed:     item.Wind.Speed,
				Direction: item.Wind.Deg,
			},
			Clouds:              item.Clouds.All,
			PrecipitationChance: common.RoundHalfUp(item.Pop * 100),
		})
	}

	return weather.ForecastSet{
		City: weather.ForecastCity{
			Name:        raw.City.Name,
			Country:     raw.City.Country,
			Coordinates: weather.Coordinates{Lat: raw.City.Coord.Lat, Lon: raw.City.Coord.Lon},
			Timezone:    raw.City.Timezone,
			Sunrise:     millis(raw.City.Sunrise),
			Sunset:      millis(raw.City.Sunset),
		},
		Forecasts: days,
	}
}

// normalizeCities converts geocoding matches, preserving provider order.
func normalizeCities(raw []geoPayload) []weather.CitySearchResult {
	if len(raw) > weather.MaxSearchResults {
		raw = raw[:weather.MaxSearchResults]
	}
	out := make([]weather.CitySearchResult, 0, len(raw))
	for _, c := range raw {
		display := c.Name + ", " + c.Country
		if c.State != "" {
			display = c.Name + ", " + c.State + ", " + c.Country
		}
		out = append(out, weather.CitySearchResult{
			Name:        c.Name,
			Country:     c.Country,
			State:       c.State,
			Lat:         c.Lat,
			Lon:         c.Lon,
			DisplayName: display,
		})
	}
	return out
}

func normalizePlace(raw geoPayload) *weather.Place {
	return &weather.Place{
		Name:    raw.Name,
		Country: raw.Country,
		State:   raw.State,
		Lat:     raw.Lat,
		Lon:     raw.Lon,
	}
}
