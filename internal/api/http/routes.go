package httpapi

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/geolocation"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. home may be nil
// when no home location is configured.
func RegisterRoutes(app *fiber.App, service *weather.Service, home *weather.LocatedSession) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.Acquire(c.UserContext(), q)
		if err != nil {
			return toFiberError(err)
		}

		return c.JSON(report)
	})

	v1.Get("/cities/search", func(c *fiber.Ctx) error {
		results := service.SearchCities(c.UserContext(), c.Query("q"))
		return c.JSON(results)
	})

	v1.Get("/cities/reverse", func(c *fiber.Ctx) error {
		coords, err := parseCoordinates(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		place, err := service.ReverseGeocode(c.UserContext(), coords.Lat, coords.Lon)
		if err != nil {
			return toFiberError(err)
		}
		if place == nil {
			return fiber.NewError(fiber.StatusNotFound, "no place found for coordinates")
		}

		return c.JSON(place)
	})

	v1.Get("/home", func(c *fiber.Ctx) error {
		if home == nil {
			return fiber.NewError(fiber.StatusNotFound, "home location is not configured")
		}
		return c.JSON(home.Session.State())
	})

	v1.Post("/home/refresh", func(c *fiber.Ctx) error {
		if home == nil {
			return fiber.NewError(fiber.StatusNotFound, "home location is not configured")
		}
		if _, err := home.Refresh(c.UserContext()); err != nil && !errors.Is(err, weather.ErrSuperseded) {
			return toFiberError(err)
		}
		return c.JSON(home.Session.State())
	})
}

// ErrorHandler renders every handler error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// toFiberError maps the weather error taxonomy onto HTTP statuses, keeping
// the user-facing message.
func toFiberError(err error) *fiber.Error {
	msg := weather.Message(err)
	switch {
	case errors.Is(err, weather.ErrInvalidQuery):
		return fiber.NewError(fiber.StatusBadRequest, msg)
	case errors.Is(err, weather.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, msg)
	case errors.Is(err, weather.ErrRateLimited):
		return fiber.NewError(fiber.StatusTooManyRequests, msg)
	case errors.Is(err, weather.ErrUnauthorized), errors.Is(err, weather.ErrProvider):
		return fiber.NewError(fiber.StatusBadGateway, msg)
	case errors.Is(err, weather.ErrNetwork):
		return fiber.NewError(fiber.StatusServiceUnavailable, msg)
	case errors.Is(err, geolocation.ErrTimeout):
		return fiber.NewError(fiber.StatusGatewayTimeout, msg)
	case errors.Is(err, geolocation.ErrPermissionDenied),
		errors.Is(err, geolocation.ErrPositionUnavailable),
		errors.Is(err, geolocation.ErrUnsupported):
		return fiber.NewError(fiber.StatusServiceUnavailable, msg)
	default:
		return fiber.NewError(fiber.StatusInternalServerError, msg)
	}
}

// coordinatesQuery holds a validated latitude/longitude pair.
type coordinatesQuery struct {
	Lat float64 `validate:"gte=-90,lte=90"`
	Lon float64 `validate:"gte=-180,lte=180"`
}

func parseCoordinates(c *fiber.Ctx) (coordinatesQuery, error) {
	var q coordinatesQuery

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("invalid lat")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("invalid lon")
	}
	q.Lat, q.Lon = lat, lon

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// parseLocationQuery prefers the city name when both forms are supplied,
// as the dashboard does for search selections.
func parseLocationQuery(c *fiber.Ctx) (weather.LocationQuery, error) {
	if city := strings.TrimSpace(c.Query("city")); city != "" {
		return weather.ByCity(city), nil
	}
	if c.Query("lat") == "" && c.Query("lon") == "" {
		return weather.LocationQuery{}, errors.New("city or lat and lon query parameters are required")
	}

	coords, err := parseCoordinates(c)
	if err != nil {
		return weather.LocationQuery{}, err
	}
	return weather.ByCoordinates(coords.Lat, coords.Lon), nil
}
