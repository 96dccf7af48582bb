// Package ratelimit implements sliding-window request limiting with
// in-memory and Redis backed stores.
package ratelimit

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Result is the outcome of a single Allow call
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time     // end of the current window
	RetryAfter time.Duration // zero when allowed
}

// Store counts requests per key
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}

// Limiter applies a limit and window to a store. Limit and window can be
// changed at runtime.
type Limiter struct {
	store  Store
	prefix string

	mu     sync.RWMutex
	limit  int
	window time.Duration
}

// NewLimiter creates a limiter; prefix namespaces its keys within the store
func NewLimiter(store Store, prefix string, limit int, window time.Duration) (*Limiter, error) {
	if store == nil {
		return nil, errors.New("ratelimit: store is required")
	}
	l := &Limiter{store: store, prefix: prefix}
	if err := l.Configure(limit, window); err != nil {
		return nil, err
	}
	return l, nil
}

// Configure replaces the limit and window
func (l *Limiter) Configure(limit int, window time.Duration) error {
	if limit <= 0 {
		return errors.New("ratelimit: limit must be positive")
	}
	if window <= 0 {
		return errors.New("ratelimit: window must be positive")
	}
	l.mu.Lock()
	l.limit, l.window = limit, window
	l.mu.Unlock()
	return nil
}

// Settings returns the current limit and window
func (l *Limiter) Settings() (int, time.Duration) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.limit, l.window
}

// Allow records a request for key
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	limit, window := l.Settings()
	return l.store.Allow(ctx, l.prefix+key, limit, window)
}
