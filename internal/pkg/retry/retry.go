// Package retry runs startup probes against services that may still be coming up.
package retry

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"time"
)

// IsRetryable reports whether err looks transient: a timeout or a network error.
// Cancellation of the caller's context is not retryable.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// Jitter spreads base by +/-20%.
func Jitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	j := 0.2
	delta := base.Seconds() * j
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

type Policy struct {
	Attempts int
	Base     time.Duration
	Max      time.Duration
	// Retryable decides whether an error is worth another attempt. Nil retries everything.
	Retryable func(error) bool
}

// Do calls fn until it succeeds, the attempts run out, fn returns an error the
// policy rejects, or ctx ends. Delays double from Base up to Max.
func Do(ctx context.Context, p Policy, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts <= 0 {
		attempts = 1
	}
	delay := p.Base
	if delay <= 0 {
		delay = 250 * time.Millisecond
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(ctx); err == nil {
			return nil
		}
		if i == attempts-1 || (p.Retryable != nil && !p.Retryable(err)) {
			break
		}
		t := time.NewTimer(Jitter(delay))
		select {
		case <-ctx.Done():
			t.Stop()
			return errors.Join(err, ctx.Err())
		case <-t.C:
		}
		delay *= 2
		if p.Max > 0 && delay > p.Max {
			delay = p.Max
		}
	}
	return err
}
