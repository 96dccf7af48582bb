package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"
)

type counter struct {
	window      time.Duration
	windowStart time.Time
	curr        int
	prev        int
	lastSeen    time.Time
}

// MemoryStore is a sliding-window counter kept in process memory. Each key
// holds the count of the current fixed window and the previous one; the
// previous count is weighted by how much of it still overlaps the sliding
// window.
type MemoryStore struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time

	idleTTL  time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore starts a janitor that every interval evicts idle keys. A key
// is kept for at least idleTTL and never less than two of its windows, so an
// eviction cannot forget requests that still count. Call Stop to end it.
func NewMemoryStore(interval, idleTTL time.Duration) *MemoryStore {
	if interval <= 0 {
		interval = time.Minute
	}
	if idleTTL <= 0 {
		idleTTL = 10 * time.Minute
	}
	s := &MemoryStore{
		counters: make(map[string]*counter),
		now:      time.Now,
		idleTTL:  idleTTL,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	go s.janitor(interval)
	return s
}

// Allow implements Store
func (s *MemoryStore) Allow(_ context.Context, key string, limit int, window time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	start := now.Truncate(window)

	c, ok := s.counters[key]
	if !ok {
		c = &counter{windowStart: start}
		s.counters[key] = c
	}
	c.roll(start, window)
	c.window = window
	c.lastSeen = now

	elapsed := now.Sub(start)
	estimate := slidingEstimate(c.prev, c.curr, elapsed, window)

	res := Result{Limit: limit, ResetAt: start.Add(window)}
	if estimate >= float64(limit) {
		res.RetryAfter = retryAfter(c.prev, c.curr, limit, elapsed, window)
		return res, nil
	}

	c.curr++
	res.Allowed = true
	res.Remaining = remaining(limit, slidingEstimate(c.prev, c.curr, elapsed, window))
	return res, nil
}

// roll advances the counter to the window starting at start
func (c *counter) roll(start time.Time, window time.Duration) {
	switch {
	case start.Equal(c.windowStart):
	case start.Sub(c.windowStart) == window:
		c.prev, c.curr = c.curr, 0
		c.windowStart = start
	default:
		c.prev, c.curr = 0, 0
		c.windowStart = start
	}
}

// Len returns the number of tracked keys
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.counters)
}

// Stop ends the janitor goroutine. Safe to call more than once.
func (s *MemoryStore) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}

func (s *MemoryStore) janitor(interval time.Duration) {
	defer close(s.doneCh)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.evictIdle()
		}
	}
}

func (s *MemoryStore) evictIdle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	for key, c := range s.counters {
		ttl := 2 * c.window
		if ttl < s.idleTTL {
			ttl = s.idleTTL
		}
		if now.Sub(c.lastSeen) > ttl {
			delete(s.counters, key)
		}
	}
}

// slidingEstimate = prev * (window - elapsed) / window + curr
func slidingEstimate(prev, curr int, elapsed, window time.Duration) float64 {
	weight := float64(window-elapsed) / float64(window)
	return float64(prev)*weight + float64(curr)
}

func remaining(limit int, estimate float64) int {
	r := int(math.Floor(float64(limit) - estimate))
	if r < 0 {
		return 0
	}
	return r
}

// retryAfter is the wait until the estimate drops below limit, assuming no
// further requests are accepted in between
func retryAfter(prev, curr, limit int, elapsed, window time.Duration) time.Duration {
	w := float64(window)
	if curr < limit && prev > 0 {
		// still inside this window: wait for the previous window's weight to decay
		need := w * (1 - float64(limit-curr)/float64(prev))
		if wait := time.Duration(need) - elapsed; wait > 0 {
			return wait
		}
		return time.Millisecond
	}
	// next window: curr becomes prev and has to decay
	untilNext := window - elapsed
	need := w * (1 - float64(limit)/float64(curr))
	return untilNext + time.Duration(math.Max(need, 0)) + time.Millisecond
}

var _ Store = (*MemoryStore)(nil)
