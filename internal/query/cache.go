// ABOUTME: Query cache keyed by resource and parameters
// ABOUTME: Coalesces concurrent fetches and tracks staleness per resource generation

package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultStaleTime is how long a successful result is served without refetching
const DefaultStaleTime = time.Minute

// Status is the lifecycle of a query
type Status int

const (
	StatusIdle Status = iota
	StatusLoading
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusLoading:
		return "loading"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Key identifies a cached query
type Key struct {
	Resource string
	Params   string
}

// NewKey builds a key from a resource name and its parameters
func NewKey(resource string, params ...any) Key {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprint(p)
	}
	return Key{Resource: resource, Params: strings.Join(parts, "/")}
}

func (k Key) String() string {
	if k.Params == "" {
		return k.Resource
	}
	return k.Resource + "/" + k.Params
}

type entry struct {
	status    Status
	data      any
	err       error
	fetchedAt time.Time
	stale     bool
}

// Cache holds query results
type Cache struct {
	mu        sync.Mutex
	entries   map[Key]*entry
	gens      map[string]uint64
	epoch     uint64
	group     singleflight.Group
	staleTime time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures a Cache
type Option func(*Cache)

// WithStaleTime sets the default freshness window
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) {
		if d >= 0 {
			c.staleTime = d
		}
	}
}

// WithClock overrides the cache clock
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithLogger sets the cache logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates an empty Cache
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:   make(map[Key]*entry),
		gens:      make(map[string]uint64),
		staleTime: DefaultStaleTime,
		now:       time.Now,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Invalidate marks every entry of the given resources stale. Fetches already
// in flight for those resources store their result as stale.
func (c *Cache) Invalidate(resources ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, res := range resources {
		c.gens[res]++
		for k, e := range c.entries {
			if k.Resource == res {
				e.stale = true
			}
		}
		c.logger.Debug("Cache invalidated", "resource", res, "generation", c.gens[res])
	}
}

// Clear drops every entry. Results of fetches in flight across a Clear are
// returned to their callers but never stored.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[Key]*entry)
	c.epoch++
	for res := range c.gens {
		c.gens[res]++
	}
}

// fresh returns the entry for key when it may be served without fetching
func (c *Cache) fresh(key Key, staleTime time.Duration) (*entry, bool) {
	e, ok := c.entries[key]
	if !ok || e.status != StatusSuccess || e.stale {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= staleTime {
		return nil, false
	}
	return e, true
}

// store records a fetch result. A result from an older generation is kept
// but marked stale. A result from before a Clear is not kept at all.
func (c *Cache) store(key Key, epoch, gen uint64, data any, err error) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if epoch != c.epoch {
		e := &entry{fetchedAt: c.now(), data: data, err: err, status: StatusSuccess, stale: true}
		if err != nil {
			e.status = StatusError
		}
		c.logger.Debug("Cache dropped result from before clear", "key", key.String())
		return e
	}

	prev := c.entries[key]
	e := &entry{fetchedAt: c.now(), stale: c.gens[key.Resource] != gen}
	if err != nil {
		e.status = StatusError
		e.err = err
		if prev != nil {
			e.data = prev.data
		}
	} else {
		e.status = StatusSuccess
		e.data = data
	}
	c.entries[key] = e
	return e
}

// flightKey scopes coalescing to an epoch and generation so a fetch issued
// after an invalidation or a Clear never joins one issued before it.
func flightKey(key Key, epoch, gen uint64) string {
	return fmt.Sprintf("%s#%d.%d", key, epoch, gen)
}

// FetchOption tunes a single fetch
type FetchOption func(*fetchConfig)

type fetchConfig struct {
	staleTime *time.Duration
	force     bool
}

// StaleTime overrides the cache's freshness window for one query
func StaleTime(d time.Duration) FetchOption {
	return func(fc *fetchConfig) { fc.staleTime = &d }
}

// State is what a screen renders
type State[T any] struct {
	Status    Status
	Data      T
	Err       error
	FetchedAt time.Time
	Stale     bool
}

func (s State[T]) IsLoading() bool { return s.Status == StatusLoading }
func (s State[T]) IsError() bool   { return s.Status == StatusError }
func (s State[T]) IsSuccess() bool { return s.Status == StatusSuccess }

// Loading returns a loading state
func Loading[T any]() State[T] {
	return State[T]{Status: StatusLoading}
}

func stateFrom[T any](e *entry) State[T] {
	s := State[T]{Status: e.status, Err: e.err, FetchedAt: e.fetchedAt, Stale: e.stale}
	if v, ok := e.data.(T); ok {
		s.Data = v
	}
	return s
}

// Fetch returns cached data while fresh and otherwise calls fn. Concurrent
// callers with the same key share one call of fn, run with the first
// caller's context.
func Fetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error), opts ...FetchOption) State[T] {
	fc := fetchConfig{}
	for _, opt := range opts {
		opt(&fc)
	}

	c.mu.Lock()
	staleTime := c.staleTime
	if fc.staleTime != nil {
		staleTime = *fc.staleTime
	}
	if !fc.force {
		if e, ok := c.fresh(key, staleTime); ok {
			if _, typed := e.data.(T); typed {
				c.mu.Unlock()
				c.logger.Debug("Cache hit", "key", key.String())
				return stateFrom[T](e)
			}
		}
	}
	epoch, gen := c.epoch, c.gens[key.Resource]
	c.mu.Unlock()

	ch := c.group.DoChan(flightKey(key, epoch, gen), func() (any, error) {
		c.logger.Debug("Cache fetch", "key", key.String())
		v, err := fn(ctx)
		if ctx.Err() != nil {
			// A cancelled fetch is reported to its callers but never cached.
			return &entry{status: StatusError, err: ctx.Err()}, nil
		}
		return c.store(key, epoch, gen, v, err), nil
	})

	select {
	case <-ctx.Done():
		return State[T]{Status: StatusError, Err: ctx.Err()}
	case res := <-ch:
		if res.Shared {
			c.logger.Debug("Cache fetch coalesced", "key", key.String())
		}
		return stateFrom[T](res.Val.(*entry))
	}
}

// Refetch always calls fn, regardless of freshness
func Refetch[T any](ctx context.Context, c *Cache, key Key, fn func(context.Context) (T, error), opts ...FetchOption) State[T] {
	opts = append(opts, func(fc *fetchConfig) { fc.force = true })
	return Fetch(ctx, c, key, fn, opts...)
}

// Peek returns the cached state for key without fetching
func Peek[T any](c *Cache, key Key) (State[T], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return State[T]{}, false
	}
	return stateFrom[T](e), true
}

// MutateOptions are the hooks around a write
type MutateOptions[T any] struct {
	Invalidates []string
	OnSuccess   func(T)
	OnError     func(error)
}

// Mutate runs a write. On success the listed resources are invalidated
// before OnSuccess runs.
func Mutate[T any](ctx context.Context, c *Cache, fn func(context.Context) (T, error), opts MutateOptions[T]) (T, error) {
	v, err := fn(ctx)
	if err != nil {
		if opts.OnError != nil {
			opts.OnError(err)
		}
		return v, err
	}
	c.Invalidate(opts.Invalidates...)
	if opts.OnSuccess != nil {
		opts.OnSuccess(v)
	}
	return v, nil
}
