package retry

import (
	"context"
	"time"
)

// Policy controls how Do spaces its attempts. Delay doubles after every
// failed attempt up to MaxDelay.
type Policy struct {
	Attempts  int
	BaseDelay time.Duration
	MaxDelay  time.Duration
}

// Default matches the backoff the external backends are called with
// throughout the service: three attempts, 500ms doubling to 10s.
var Default = Policy{Attempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}

// Do runs fn until it succeeds, the policy is exhausted, or ctx is done.
// The last error is returned once attempts run out.
func Do(ctx context.Context, p Policy, fn func() error) error {
	if p.Attempts <= 0 {
		p.Attempts = 1
	}
	delay := p.BaseDelay

	var err error
	for i := 0; i < p.Attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i == p.Attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return err
}
