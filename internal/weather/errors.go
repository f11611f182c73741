package weather

import "errors"

var (
	// ErrConfiguration is returned when the provider API key or URLs are missing.
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("invalid credentials")
	ErrRateLimited   = errors.New("rate limited")
	ErrNetwork       = errors.New("network error")
	ErrProvider      = errors.New("provider error")

	// ErrInvalidQuery is returned when a LocationQuery has neither or both
	// addressing modes set.
	ErrInvalidQuery = errors.New("either city name or coordinates must be provided")
)

// Error is a provider failure carrying a message meant for end users.
type Error struct {
	Kind    error  // one of the sentinels above
	Message string // human readable, surfaced verbatim
	Status  int    // HTTP status when the failure came from a response
	Err     error  // underlying transport error, if any
}

func (e *Error) Error() string {
	return e.Message
}

// Is lets errors.Is match the sentinel kind.
func (e *Error) Is(target error) bool {
	return e.Kind == target
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message returns the user-facing text for err.
func Message(err error) string {
	var we *Error
	if errors.As(err, &we) {
		return we.Message
	}
	return err.Error()
}
