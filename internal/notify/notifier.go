// Package notify implements the "you're almost up" threshold notification:
// after any mutation that can reorder the queue, the entry at the threshold
// position gets one message, at most once per entry. Notifier failures are
// warnings, never errors for the mutation that triggered the check.
package notify

import (
	"context"
	"errors"

	"golang.org/x/time/rate"
)

// ErrNotConfigured means the sender has no credentials. Treated as a no-op
// failure by the trigger; it must never panic or crash startup.
var ErrNotConfigured = errors.New("notifier is not configured")

// Notifier sends a queue-position notification to a contact address.
type Notifier interface {
	Send(ctx context.Context, address string, position int) error
}

// RateLimited wraps a Notifier with a token-bucket limiter so a burst of
// queue mutations cannot flood the provider.
type RateLimited struct {
	inner   Notifier
	limiter *rate.Limiter
}

// NewRateLimited builds a limiter allowing perSecond sends with the given
// burst.
func NewRateLimited(inner Notifier, perSecond float64, burst int) *RateLimited {
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (r *RateLimited) Send(ctx context.Context, address string, position int) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.Send(ctx, address, position)
}
