package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

// messages are the user-facing texts for one endpoint's failures.
type messages struct {
	notFound string
	failure  string // prefix for other non-2xx responses
	network  string
}

var (
	currentMessages = messages{
		notFound: "City not found. Please check the spelling and try again.",
		failure:  "Failed to fetch weather data",
		network:  "Network error. Please check your internet connection and try again.",
	}
	forecastMessages = messages{
		notFound: "City not found for forecast data.",
		failure:  "Failed to fetch forecast data",
		network:  "Network error while fetching forecast.",
	}
	searchMessages = messages{
		notFound: "No matching cities.",
		failure:  "Failed to search cities",
		network:  "Network error while searching cities.",
	}
	reverseMessages = messages{
		notFound: "Location not found.",
		failure:  "Failed to get location name",
		network:  "Network error while resolving location.",
	}
)

const (
	msgUnauthorized = "Invalid API key. Please check your OpenWeatherMap API configuration."
	msgRateLimited  = "Too many requests. Please try again later."
)

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
		// Only an unreachable or failing upstream counts against the circuit.
		IsSuccessful: func(err error) bool {
			return err == nil ||
				errors.Is(err, weather.ErrNotFound) ||
				errors.Is(err, weather.ErrUnauthorized) ||
				errors.Is(err, weather.ErrRateLimited)
		},
	})
}

// statusError maps a non-2xx response status to a typed provider error.
func statusError(code int, msgs messages) *weather.Error {
	switch code {
	case http.StatusNotFound:
		return &weather.Error{Kind: weather.ErrNotFound, Message: msgs.notFound, Status: code}
	case http.StatusUnauthorized:
		return &weather.Error{Kind: weather.ErrUnauthorized, Message: msgUnauthorized, Status: code}
	case http.StatusTooManyRequests:
		return &weather.Error{Kind: weather.ErrRateLimited, Message: msgRateLimited, Status: code}
	default:
		return &weather.Error{
			Kind:    weather.ErrProvider,
			Message: fmt.Sprintf("%s: %s", msgs.failure, http.StatusText(code)),
			Status:  code,
		}
	}
}

// getJSON issues a single GET through the circuit breaker and decodes a 2xx
// body into out. It never retries.
func getJSON(
	ctx context.Context,
	client *http.Client,
	cb *gobreaker.CircuitBreaker,
	u string,
	msgs messages,
	out any,
) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	result, err := cb.Execute(func() (interface{}, error) {
		resp, execErr := client.Do(req)
		if execErr != nil {
			return nil, &weather.Error{Kind: weather.ErrNetwork, Message: msgs.network, Err: execErr}
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			resp.Body.Close()
			return nil, statusError(resp.StatusCode, msgs)
		}
		return resp, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return &weather.Error{Kind: weather.ErrNetwork, Message: msgs.network, Err: err}
		}
		return err
	}

	resp, ok := result.(*http.Response)
	if !ok {
		return fmt.Errorf("unexpected result type from circuit breaker")
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
