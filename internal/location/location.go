package location

import (
	"context"
	"errors"
	"sync"

	"backend-bandoxanh/internal/logging"
	"backend-bandoxanh/internal/shared/geo"

	"go.uber.org/zap"
)

var ErrUnavailable = errors.New("location unavailable")

// Locator performs one "get current position" request.
type Locator interface {
	CurrentPosition(ctx context.Context) (geo.Point, error)
}

// Static always reports the same position.
type Static geo.Point

func (s Static) CurrentPosition(context.Context) (geo.Point, error) {
	return geo.Point(s), nil
}

// Unavailable always fails, as a denied permission prompt would.
type Unavailable struct{}

func (Unavailable) CurrentPosition(context.Context) (geo.Point, error) {
	return geo.Point{}, ErrUnavailable
}

// Session holds the user location for one session. It is set at most once
// and never cleared; a failed attempt leaves it unknown.
type Session struct {
	mu     sync.Mutex
	point  *geo.Point
	logger *zap.Logger
}

func NewSession(logger *zap.Logger) *Session {
	return &Session{logger: logging.OrNop(logger)}
}

// Acquire asks the locator once. It is a no-op when a location is already
// known. Errors are logged and swallowed: callers degrade to "no distance".
func (s *Session) Acquire(ctx context.Context, loc Locator) {
	if s.Current() != nil {
		return
	}

	p, err := loc.CurrentPosition(ctx)
	if err != nil {
		s.logger.Warn("geolocation failed", zap.Error(err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.point == nil {
		s.point = &p
	}
}

// Current returns a copy of the known location, or nil.
func (s *Session) Current() *geo.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.point == nil {
		return nil
	}
	p := *s.point
	return &p
}
