package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// FixedWindowStore counts requests per identifier in fixed windows. It implements
// echo's RateLimiterStore.
type FixedWindowStore struct {
	mu        sync.Mutex
	limit     int
	window    time.Duration
	now       func() time.Time
	counters  map[string]*windowCounter
	lastSweep time.Time
}

type windowCounter struct {
	start time.Time
	count int
}

func NewFixedWindowStore(limit int, window time.Duration) *FixedWindowStore {
	return &FixedWindowStore{
		limit:    limit,
		window:   window,
		now:      time.Now,
		counters: make(map[string]*windowCounter),
	}
}

// Allow records a request for identifier and reports whether it fits in the current window.
func (s *FixedWindowStore) Allow(identifier string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	c, ok := s.counters[identifier]
	if !ok || now.Sub(c.start) >= s.window {
		c = &windowCounter{start: now}
		s.counters[identifier] = c
	}
	c.count++
	return c.count <= s.limit, nil
}

// sweep drops counters whose window ended, at most once per window.
func (s *FixedWindowStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.window {
		return
	}
	for id, c := range s.counters {
		if now.Sub(c.start) >= s.window {
			delete(s.counters, id)
		}
	}
	s.lastSweep = now
}

// NewTokenBucketStore spreads limit requests per window evenly, allowing bursts of up to limit.
func NewTokenBucketStore(limit int, window time.Duration) echomw.RateLimiterStore {
	return echomw.NewRateLimiterMemoryStoreWithConfig(echomw.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(float64(limit) / window.Seconds()),
		Burst:     limit,
		ExpiresIn: 3 * time.Minute,
	})
}

// RateLimit limits requests per client IP using store.
func RateLimit(store echomw.RateLimiterStore) echo.MiddlewareFunc {
	return echomw.RateLimiterWithConfig(echomw.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, "Unable to identify client.")
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests. Try again later.")
		},
	})
}
