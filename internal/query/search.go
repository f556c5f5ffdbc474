// ABOUTME: Debounced search that only applies the newest query's results
// ABOUTME: Short input resolves to an empty result without touching the network

package query

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// Search defaults
const (
	DefaultDebounce        = 300 * time.Millisecond
	DefaultMinSearchLength = 3
	DefaultSearchStaleTime = 5 * time.Second
)

// SearchResult is delivered for each issued search
type SearchResult[T any] struct {
	Query string
	Gen   uint64
	State State[T]
}

// SearchOption configures a Searcher
type SearchOption func(*searchConfig)

type searchConfig struct {
	debounce  time.Duration
	minLength int
	staleTime time.Duration
}

// WithDebounce sets the quiescence window
func WithDebounce(d time.Duration) SearchOption {
	return func(sc *searchConfig) {
		if d > 0 {
			sc.debounce = d
		}
	}
}

// WithMinLength sets the threshold; a query must be longer than n runes
func WithMinLength(n int) SearchOption {
	return func(sc *searchConfig) {
		if n >= 0 {
			sc.minLength = n
		}
	}
}

// WithSearchStaleTime sets how long search results stay fresh
func WithSearchStaleTime(d time.Duration) SearchOption {
	return func(sc *searchConfig) {
		if d >= 0 {
			sc.staleTime = d
		}
	}
}

// Searcher turns keystrokes into debounced, cancellable searches
type Searcher[T any] struct {
	cache    *Cache
	resource string
	fetch    func(ctx context.Context, q string) (T, error)
	cfg      searchConfig

	results chan SearchResult[T]
	done    chan struct{}

	closeOnce sync.Once

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// NewSearcher creates a Searcher whose results are cached under resource
func NewSearcher[T any](c *Cache, resource string, fetch func(ctx context.Context, q string) (T, error), opts ...SearchOption) *Searcher[T] {
	cfg := searchConfig{
		debounce:  DefaultDebounce,
		minLength: DefaultMinSearchLength,
		staleTime: DefaultSearchStaleTime,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Searcher[T]{
		cache:    c,
		resource: resource,
		fetch:    fetch,
		cfg:      cfg,
		results:  make(chan SearchResult[T], 16),
		done:     make(chan struct{}),
	}
}

// Results delivers search outcomes in issue order
func (s *Searcher[T]) Results() <-chan SearchResult[T] {
	return s.results
}

// Generation returns the generation of the most recent input
func (s *Searcher[T]) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Current reports whether r belongs to the most recent input
func (s *Searcher[T]) Current(r SearchResult[T]) bool {
	return r.Gen == s.Generation()
}

// Input records a new query. Any pending or running search is superseded.
func (s *Searcher[T]) Input(q string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.gen++
	gen := s.gen
	s.stopLocked()

	q = strings.TrimSpace(q)
	if utf8.RuneCountInString(q) <= s.cfg.minLength {
		var empty T
		s.deliverLocked(SearchResult[T]{Query: q, Gen: gen, State: State[T]{Status: StatusSuccess, Data: empty}})
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.timer = time.AfterFunc(s.cfg.debounce, func() {
		s.run(ctx, gen, q)
	})
}

// Close stops pending work. Results is not closed so late readers never
// see a spurious zero value.
func (s *Searcher[T]) Close() {
	s.closeOnce.Do(func() { close(s.done) })
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopLocked()
}

func (s *Searcher[T]) run(ctx context.Context, gen uint64, q string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.deliverLocked(SearchResult[T]{Query: q, Gen: gen, State: Loading[T]()})
	s.mu.Unlock()

	state := Fetch(ctx, s.cache, NewKey(s.resource, q), func(ctx context.Context) (T, error) {
		return s.fetch(ctx, q)
	}, StaleTime(s.cfg.staleTime))

	if ctx.Err() != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return
	}
	s.deliverLocked(SearchResult[T]{Query: q, Gen: gen, State: state})
}

func (s *Searcher[T]) stopLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// deliverLocked never blocks: when the buffer is full the oldest result,
// which r supersedes, is discarded.
func (s *Searcher[T]) deliverLocked(r SearchResult[T]) {
	for {
		select {
		case <-s.done:
			return
		case s.results <- r:
			return
		default:
		}
		select {
		case <-s.results:
		default:
		}
	}
}
