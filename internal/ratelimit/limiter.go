package ratelimit

import (
	"context"
	"time"

	"github.com/talenthub/competency-api/internal/config"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration // time until the window resets, set when denied
}

// Limiter applies per-route fixed-window rules against a counter store.
type Limiter struct {
	store Store
}

// New returns a Limiter backed by the given store.
func New(store Store) *Limiter {
	return &Limiter{store: store}
}

// Check counts a hit for the (identity, route) pair and decides whether the
// request may proceed under rule. The increment happens before the compare,
// so concurrent callers can never undercount.
func (l *Limiter) Check(ctx context.Context, identity, route string, rule config.RateRule) (Decision, error) {
	key := "rl:" + route + ":" + identity
	count, reset, err := l.store.Incr(ctx, key, rule.Window)
	if err != nil {
		return Decision{}, err
	}

	d := Decision{Allowed: count <= int64(rule.Limit), Limit: rule.Limit}
	if remaining := int64(rule.Limit) - count; remaining > 0 {
		d.Remaining = remaining
	}
	if !d.Allowed {
		d.RetryAfter = reset
	}
	return d, nil
}
