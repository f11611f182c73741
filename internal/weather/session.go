package weather

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/google/uuid"
)

// Status is the lifecycle of a Session.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// ErrSuperseded is returned to a caller whose response arrived after a newer
// request had started. Its result was not applied to the session.
var ErrSuperseded = errors.New("request superseded by a newer one")

// ErrNoReport is returned by Refresh when there is nothing to refresh.
var ErrNoReport = errors.New("no weather data to refresh")

// Acquirer is the part of Service a Session drives.
type Acquirer interface {
	Lookup(q LocationQuery) (Report, bool)
	Acquire(ctx context.Context, q LocationQuery) (Report, error)
	Refresh(ctx context.Context, q LocationQuery) (Report, error)
}

// Locator supplies a device position for Session.Locate.
type Locator interface {
	Locate(ctx context.Context) (Coordinates, error)
}

// SessionState is a copy of what the UI renders.
type SessionState struct {
	Status    Status         `json:"status"`
	RequestID string         `json:"requestId,omitempty"`
	Query     *LocationQuery `json:"query,omitempty"`
	Report    *Report        `json:"report,omitempty"`
	Error     string         `json:"error,omitempty"`
}

// Session tracks the state of the most recent acquisition for one viewer.
// Requests are not cancelled when superseded; instead every request gets a
// generation number and only the latest generation may update the state.
type Session struct {
	mu         sync.Mutex
	acquirer   Acquirer
	generation uint64
	state      SessionState
}

// NewSession creates an idle session.
func NewSession(acquirer Acquirer) *Session {
	return &Session{
		acquirer: acquirer,
		state:    SessionState{Status: StatusIdle},
	}
}

// State returns a snapshot of the current session state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Fetch acquires weather for q and records the outcome. A full cache hit
// goes straight to success without passing through loading.
func (s *Session) Fetch(ctx context.Context, q LocationQuery) (Report, error) {
	return s.fetch(ctx, q, false)
}

// Reload is Fetch without the cache shortcut: the provider is always asked
// and the cache entries for q are renewed.
func (s *Session) Reload(ctx context.Context, q LocationQuery) (Report, error) {
	return s.fetch(ctx, q, true)
}

func (s *Session) fetch(ctx context.Context, q LocationQuery, fresh bool) (Report, error) {
	if err := q.Validate(); err != nil {
		return Report{}, err
	}

	id := uuid.NewString()

	acquire := s.acquirer.Acquire
	if fresh {
		acquire = s.acquirer.Refresh
	} else if r, ok := s.acquirer.Lookup(q); ok {
		s.mu.Lock()
		s.generation++
		s.state = SessionState{Status: StatusSuccess, RequestID: id, Query: &q, Report: &r}
		s.mu.Unlock()
		return r, nil
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.state = SessionState{Status: StatusLoading, RequestID: id, Query: &q}
	s.mu.Unlock()

	r, err := acquire(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		log.Printf("DEBUG: discarding stale response %s for %s", id, q)
		if err != nil {
			return Report{}, errors.Join(ErrSuperseded, err)
		}
		return r, ErrSuperseded
	}

	if err != nil {
		s.state = SessionState{Status: StatusFailure, RequestID: id, Query: &q, Error: Message(err)}
		return Report{}, err
	}
	s.state = SessionState{Status: StatusSuccess, RequestID: id, Query: &q, Report: &r}
	return r, nil
}

// Refresh re-acquires the current report, addressed by its coordinates.
func (s *Session) Refresh(ctx context.Context) (Report, error) {
	s.mu.Lock()
	report := s.state.Report
	s.mu.Unlock()

	if report == nil {
		return Report{}, ErrNoReport
	}
	c := report.Coordinates
	return s.Fetch(ctx, ByCoordinates(c.Lat, c.Lon))
}

// Locate resolves the device position and fetches weather for it.
func (s *Session) Locate(ctx context.Context, locator Locator) (Report, error) {
	return s.locate(ctx, locator, false)
}

func (s *Session) locate(ctx context.Context, locator Locator, fresh bool) (Report, error) {
	pos, err := locator.Locate(ctx)
	if err != nil {
		s.mu.Lock()
		s.generation++
		s.state = SessionState{Status: StatusFailure, Error: err.Error()}
		s.mu.Unlock()
		return Report{}, err
	}
	return s.fetch(ctx, ByCoordinates(pos.Lat, pos.Lon), fresh)
}

// Clear resets the session to idle. In-flight requests become stale.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.state = SessionState{Status: StatusIdle}
}

// LocatedSession keeps a session pointed at wherever a Locator says the
// viewer is.
type LocatedSession struct {
	Session *Session
	Locator Locator
}

// Refresh re-locates and fetches weather for the new position.
func (l LocatedSession) Refresh(ctx context.Context) (Report, error) {
	return l.Session.Locate(ctx, l.Locator)
}

// Warm re-locates and reloads weather for the new position, bypassing the
// cache so the entries for it stay fresh.
func (l LocatedSession) Warm(ctx context.Context) (Report, error) {
	return l.Session.locate(ctx, l.Locator, true)
}
