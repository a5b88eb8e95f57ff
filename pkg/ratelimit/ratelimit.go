// Package ratelimit implements a fixed-window request limiter with
// pluggable counter stores.
package ratelimit

import (
	"context"
	"time"
)

// Config describes a fixed-window limit: at most Limit requests per Window
// for a given key.
type Config struct {
	Limit  int64         `env:"RATE_LIMIT_MAX" envDefault:"100"`
	Window time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
}

// Store counts requests per key within a window. Implementations must be
// safe for concurrent use.
type Store interface {
	// Incr increments the counter for key, creating it with the window TTL
	// on first use, and returns the resulting count.
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Result reports the outcome of a limiter check.
type Result struct {
	Allowed   bool
	Remaining int64
}

// Limiter applies a fixed-window limit using a Store.
type Limiter struct {
	store Store
	cfg   Config
}

// New creates a limiter. An invalid config is rejected so that
// misconfiguration fails at startup.
func New(store Store, cfg Config) (*Limiter, error) {
	if store == nil {
		return nil, ErrNilStore
	}
	if cfg.Limit <= 0 || cfg.Window <= 0 {
		return nil, ErrInvalidConfig
	}
	return &Limiter{store: store, cfg: cfg}, nil
}

// Allow records one request for key and reports whether it is within the limit.
func (l *Limiter) Allow(ctx context.Context, key string) (Result, error) {
	count, err := l.store.Incr(ctx, key, l.cfg.Window)
	if err != nil {
		return Result{}, err
	}

	remaining := l.cfg.Limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Result{Allowed: count <= l.cfg.Limit, Remaining: remaining}, nil
}
