package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
	"github.com/i474232898/weather-dashboard/internal/weather/providers"
)

var validate = validator.New()

// HomeLocation is the position served by the home dashboard.
type HomeLocation struct {
	Lat float64 `yaml:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `yaml:"lon" validate:"gte=-180,lte=180"`
}

type AppConfig struct {
	OpenWeatherAPIKey string `validate:"required"`
	BaseURL           string `validate:"required,url"`
	GeoBaseURL        string `validate:"required,url"`

	// HTTPTimeout bounds each outbound provider request.
	HTTPTimeout time.Duration `validate:"gt=0"`

	// WarmInterval controls how often configured cities are re-fetched. It
	// must be shorter than the cache ttl.
	WarmInterval time.Duration `validate:"gt=0"`
	WarmCities   []string

	Home *HomeLocation

	Port string `validate:"required,numeric"`
}

// fileConfig is the optional YAML file layout. Durations are strings.
type fileConfig struct {
	OpenWeatherAPIKey string        `yaml:"openWeatherApiKey"`
	BaseURL           string        `yaml:"baseUrl"`
	GeoBaseURL        string        `yaml:"geoBaseUrl"`
	HTTPTimeout       string        `yaml:"httpTimeout"`
	WarmInterval      string        `yaml:"warmInterval"`
	WarmCities        []string      `yaml:"warmCities"`
	Home              *HomeLocation `yaml:"home"`
	Port              string        `yaml:"port"`
}

// Load reads configuration from .env, an optional YAML file named by
// CONFIG_FILE, and the environment, in increasing precedence.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}

	file := fileConfig{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		f, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		file = *f
	}

	cfg := &AppConfig{}
	cfg.OpenWeatherAPIKey = getenvDefault("OPENWEATHER_API_KEY", file.OpenWeatherAPIKey)
	cfg.BaseURL = getenvDefault("OPENWEATHER_BASE_URL", orDefault(file.BaseURL, providers.DefaultBaseURL))
	cfg.GeoBaseURL = getenvDefault("OPENWEATHER_GEO_URL", orDefault(file.GeoBaseURL, providers.DefaultGeoBaseURL))
	cfg.Port = getenvDefault("PORT", orDefault(file.Port, "8080"))

	timeout, err := time.ParseDuration(getenvDefault("HTTP_TIMEOUT", orDefault(file.HTTPTimeout, "10s")))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid HTTP_TIMEOUT: %v", weather.ErrConfiguration, err)
	}
	cfg.HTTPTimeout = timeout

	interval, err := time.ParseDuration(getenvDefault("WARM_INTERVAL", orDefault(file.WarmInterval, "5m")))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid WARM_INTERVAL: %v", weather.ErrConfiguration, err)
	}
	if interval >= store.DefaultTTL {
		return nil, fmt.Errorf("%w: WARM_INTERVAL %s must be shorter than the cache ttl %s",
			weather.ErrConfiguration, interval, store.DefaultTTL)
	}
	cfg.WarmInterval = interval

	cfg.WarmCities = file.WarmCities
	if v := os.Getenv("WARM_CITIES"); v != "" {
		cfg.WarmCities = splitList(v)
	}

	cfg.Home = file.Home
	home, err := loadHome()
	if err != nil {
		return nil, err
	}
	if home != nil {
		cfg.Home = home
	}

	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrConfiguration, err)
	}

	return cfg, nil
}

func loadFile(path string) (*fileConfig, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	f := &fileConfig{}
	if err := yaml.Unmarshal(buf, f); err != nil {
		return nil, fmt.Errorf("%w: parsing yaml: %v", weather.ErrConfiguration, err)
	}
	return f, nil
}

// loadHome reads HOME_LAT/HOME_LON; both or neither must be set.
func loadHome() (*HomeLocation, error) {
	latStr, lonStr := os.Getenv("HOME_LAT"), os.Getenv("HOME_LON")
	if latStr == "" && lonStr == "" {
		return nil, nil
	}
	if latStr == "" || lonStr == "" {
		return nil, fmt.Errorf("%w: HOME_LAT and HOME_LON must be set together", weather.ErrConfiguration)
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid HOME_LAT: %v", weather.ErrConfiguration, err)
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid HOME_LON: %v", weather.ErrConfiguration, err)
	}
	return &HomeLocation{Lat: lat, Lon: lon}, nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}
