// ABOUTME: Drops navigation requests issued while a previous one is settling
// ABOUTME: The guard releases after a fixed cooldown or when navigation fails

package navguard

import (
	"log/slog"
	"sync"
	"time"
)

// DefaultCooldown is how long the guard stays engaged after a navigation
const DefaultCooldown = 500 * time.Millisecond

// Method is how a target is reached
type Method int

const (
	Push Method = iota
	Replace
	Back
)

func (m Method) String() string {
	switch m {
	case Replace:
		return "replace"
	case Back:
		return "back"
	default:
		return "push"
	}
}

// Navigator performs the actual navigation
type Navigator interface {
	Navigate(target string, m Method) error
}

// NavigatorFunc adapts a function to Navigator
type NavigatorFunc func(target string, m Method) error

func (f NavigatorFunc) Navigate(target string, m Method) error {
	return f(target, m)
}

// Guard serializes navigations within a cooldown window
type Guard struct {
	nav      Navigator
	cooldown time.Duration
	now      func() time.Time
	logger   *slog.Logger

	mu    sync.Mutex
	until time.Time
}

// Option configures a Guard
type Option func(*Guard)

// WithCooldown sets the cooldown window
func WithCooldown(d time.Duration) Option {
	return func(g *Guard) {
		if d > 0 {
			g.cooldown = d
		}
	}
}

// WithClock overrides the guard's clock
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// WithLogger sets the guard's logger
func WithLogger(l *slog.Logger) Option {
	return func(g *Guard) {
		if l != nil {
			g.logger = l
		}
	}
}

// New creates a Guard in front of nav
func New(nav Navigator, opts ...Option) *Guard {
	g := &Guard{
		nav:      nav,
		cooldown: DefaultCooldown,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// IsNavigating reports whether the guard is engaged
func (g *Guard) IsNavigating() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.now().Before(g.until)
}

// NavigateSafely navigates unless a navigation is already in progress.
// It returns false when the request was dropped.
func (g *Guard) NavigateSafely(target string, m Method) (bool, error) {
	g.mu.Lock()
	now := g.now()
	if now.Before(g.until) {
		g.mu.Unlock()
		g.logger.Debug("Navigation dropped", "target", target, "method", m.String())
		return false, nil
	}
	g.until = now.Add(g.cooldown)
	g.mu.Unlock()

	if err := g.nav.Navigate(target, m); err != nil {
		g.Release()
		g.logger.Warn("Navigation failed", "target", target, "method", m.String(), "error", err)
		return true, err
	}
	return true, nil
}

// Release disengages the guard immediately
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.until = time.Time{}
}
