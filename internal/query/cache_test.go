// ABOUTME: Tests for the query cache
// ABOUTME: Covers freshness, coalescing, invalidation, and mutations

package query

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func newClock() *clock {
	return &clock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func counter(calls *int32, value []string) func(context.Context) ([]string, error) {
	return func(ctx context.Context) ([]string, error) {
		atomic.AddInt32(calls, 1)
		return value, nil
	}
}

func TestNewKey(t *testing.T) {
	if got := NewKey("news").String(); got != "news" {
		t.Errorf("expected news, got %s", got)
	}
	if got := NewKey("category", 3, true).String(); got != "category/3/true" {
		t.Errorf("expected category/3/true, got %s", got)
	}
	if NewKey("news", 1) == NewKey("news", 2) {
		t.Error("expected distinct keys for distinct params")
	}
}

func TestFetch_ServesFreshFromCache(t *testing.T) {
	clk := newClock()
	c := New(WithStaleTime(time.Minute), WithClock(clk.Now))
	var calls int32
	key := NewKey("news")

	first := Fetch(context.Background(), c, key, counter(&calls, []string{"a"}))
	if !first.IsSuccess() || len(first.Data) != 1 {
		t.Fatalf("unexpected first state: %+v", first)
	}
	second := Fetch(context.Background(), c, key, counter(&calls, []string{"b"}))
	if second.Data[0] != "a" {
		t.Errorf("expected cached data, got %v", second.Data)
	}
	if calls != 1 {
		t.Errorf("expected 1 call, got %d", calls)
	}

	clk.Advance(2 * time.Minute)
	third := Fetch(context.Background(), c, key, counter(&calls, []string{"c"}))
	if third.Data[0] != "c" {
		t.Errorf("expected refetch after stale time, got %v", third.Data)
	}
	if calls != 2 {
		t.Errorf("expected 2 calls, got %d", calls)
	}
}

func TestFetch_PerQueryStaleTime(t *testing.T) {
	clk := newClock()
	c := New(WithStaleTime(time.Hour), WithClock(clk.Now))
	var calls int32
	key := NewKey("searchNews", "banjir")

	Fetch(context.Background(), c, key, counter(&calls, nil), StaleTime(5*time.Second))
	clk.Advance(6 * time.Second)
	Fetch(context.Background(), c, key, counter(&calls, nil), StaleTime(5*time.Second))
	if calls != 2 {
		t.Errorf("expected per-query stale time to force refetch, got %d calls", calls)
	}
}

func TestFetch_CoalescesConcurrentCalls(t *testing.T) {
	c := New()
	var calls int32
	release := make(chan struct{})
	fn := func(ctx context.Context) (int, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]State[int], 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = Fetch(context.Background(), c, NewKey("news"), fn)
		}(i)
	}

	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Errorf("expected 1 underlying call, got %d", n)
	}
	for i, r := range results {
		if r.Data != 42 {
			t.Errorf("caller %d: expected 42, got %d", i, r.Data)
		}
	}
}

func TestFetch_ErrorNotCachedAsSuccess(t *testing.T) {
	c := New()
	key := NewKey("news")
	boom := errors.New("boom")

	st := Fetch(context.Background(), c, key, func(ctx context.Context) ([]string, error) {
		return nil, boom
	})
	if !st.IsError() || !errors.Is(st.Err, boom) {
		t.Fatalf("expected error state, got %+v", st)
	}

	var calls int32
	st = Fetch(context.Background(), c, key, counter(&calls, []string{"ok"}))
	if !st.IsSuccess() || calls != 1 {
		t.Errorf("expected retry after error, got %+v (calls=%d)", st, calls)
	}
}

func TestFetch_ErrorKeepsPreviousData(t *testing.T) {
	c := New(WithStaleTime(0))
	key := NewKey("news")
	var calls int32
	Fetch(context.Background(), c, key, counter(&calls, []string{"old"}))

	st := Fetch(context.Background(), c, key, func(ctx context.Context) ([]string, error) {
		return nil, errors.New("offline")
	})
	if !st.IsError() {
		t.Fatal("expected error state")
	}
	if len(st.Data) != 1 || st.Data[0] != "old" {
		t.Errorf("expected previous data retained, got %v", st.Data)
	}
}

func TestRefetch_BypassesFreshness(t *testing.T) {
	c := New(WithStaleTime(time.Hour))
	var calls int32
	key := NewKey("motivations")
	Fetch(context.Background(), c, key, counter(&calls, nil))
	Refetch(context.Background(), c, key, counter(&calls, nil))
	if calls != 2 {
		t.Errorf("expected refetch to call again, got %d calls", calls)
	}
}

func TestInvalidate_ForcesRefetch(t *testing.T) {
	c := New(WithStaleTime(time.Hour))
	var calls int32
	list := NewKey("news")
	detail := NewKey("news", 1)
	other := NewKey("motivations")

	Fetch(context.Background(), c, list, counter(&calls, nil))
	Fetch(context.Background(), c, detail, counter(&calls, nil))
	Fetch(context.Background(), c, other, counter(&calls, nil))

	c.Invalidate("news")

	if st, _ := Peek[[]string](c, list); !st.Stale {
		t.Error("expected list entry stale")
	}
	if st, _ := Peek[[]string](c, other); st.Stale {
		t.Error("expected other resource untouched")
	}

	Fetch(context.Background(), c, list, counter(&calls, nil))
	Fetch(context.Background(), c, detail, counter(&calls, nil))
	Fetch(context.Background(), c, other, counter(&calls, nil))
	if calls != 5 {
		t.Errorf("expected 5 calls (3 initial + 2 invalidated), got %d", calls)
	}
}

func TestInvalidate_DuringFlightStoresStale(t *testing.T) {
	c := New(WithStaleTime(time.Hour))
	key := NewKey("news")
	started := make(chan struct{})
	release := make(chan struct{})

	done := make(chan State[string])
	go func() {
		done <- Fetch(context.Background(), c, key, func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "before-mutation", nil
		})
	}()

	<-started
	c.Invalidate("news")
	close(release)
	first := <-done
	if !first.Stale {
		t.Error("expected in-flight result to be stored stale")
	}

	var calls int32
	st := Fetch(context.Background(), c, key, func(ctx context.Context) (string, error) {
		atomic.AddInt32(&calls, 1)
		return "after-mutation", nil
	})
	if calls != 1 || st.Data != "after-mutation" {
		t.Errorf("expected fresh fetch after invalidation, got %+v (calls=%d)", st, calls)
	}
}

func TestFetch_CancelledContext(t *testing.T) {
	c := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	st := Fetch(ctx, c, NewKey("news"), func(ctx context.Context) (int, error) {
		return 0, ctx.Err()
	})
	if !errors.Is(st.Err, context.Canceled) {
		t.Errorf("expected canceled, got %+v", st)
	}
	if _, ok := Peek[int](c, NewKey("news")); ok {
		t.Error("expected cancelled fetch not to be cached")
	}
}

func TestMutate_InvalidatesOnSuccess(t *testing.T) {
	c := New(WithStaleTime(time.Hour))
	var calls int32
	Fetch(context.Background(), c, NewKey("motivations"), counter(&calls, nil))

	var succeeded bool
	v, err := Mutate(context.Background(), c, func(ctx context.Context) (int, error) {
		return 7, nil
	}, MutateOptions[int]{
		Invalidates: []string{"motivations"},
		OnSuccess:   func(v int) { succeeded = v == 7 },
		OnError:     func(error) { t.Error("OnError should not run") },
	})
	if err != nil || v != 7 || !succeeded {
		t.Fatalf("unexpected mutate result: %d, %v, %v", v, err, succeeded)
	}

	Fetch(context.Background(), c, NewKey("motivations"), counter(&calls, nil))
	if calls != 2 {
		t.Errorf("expected refetch after mutation, got %d calls", calls)
	}
}

func TestMutate_ErrorLeavesCache(t *testing.T) {
	c := New(WithStaleTime(time.Hour))
	var calls int32
	Fetch(context.Background(), c, NewKey("news"), counter(&calls, nil))

	var gotErr error
	_, err := Mutate(context.Background(), c, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, errors.New("rejected")
	}, MutateOptions[struct{}]{
		Invalidates: []string{"news"},
		OnError:     func(err error) { gotErr = err },
	})
	if err == nil || gotErr == nil {
		t.Fatal("expected error to propagate")
	}

	Fetch(context.Background(), c, NewKey("news"), counter(&calls, nil))
	if calls != 1 {
		t.Errorf("expected cache kept after failed mutation, got %d calls", calls)
	}
}

func TestClear(t *testing.T) {
	c := New(WithStaleTime(time.Hour))
	var calls int32
	Fetch(context.Background(), c, NewKey("news"), counter(&calls, nil))
	c.Clear()
	if _, ok := Peek[[]string](c, NewKey("news")); ok {
		t.Error("expected empty cache")
	}
}

func TestClear_DropsResultInFlight(t *testing.T) {
	c := New(WithStaleTime(time.Hour))
	key := NewKey("motivations")
	release := make(chan struct{})
	started := make(chan struct{})

	done := make(chan State[[]string])
	go func() {
		done <- Fetch(context.Background(), c, key, func(ctx context.Context) ([]string, error) {
			close(started)
			<-release
			return []string{"previous-user-data"}, nil
		})
	}()

	<-started
	c.Clear()
	close(release)

	if got := <-done; len(got.Data) != 1 || got.Data[0] != "previous-user-data" {
		t.Errorf("expected the original caller to get its result, got %v", got.Data)
	}
	if _, ok := Peek[[]string](c, key); ok {
		t.Fatal("expected result from before Clear not to be cached")
	}

	var calls int32
	got := Fetch(context.Background(), c, key, counter(&calls, []string{"next-user-data"}))
	if calls != 1 {
		t.Errorf("expected a new fetch after Clear, got %d calls", calls)
	}
	if len(got.Data) != 1 || got.Data[0] != "next-user-data" {
		t.Errorf("expected next-user-data, got %v", got.Data)
	}
}
