package worker

import (
	"math"
	"time"
)

// RetryPolicy shapes redelivery of a failed notification. MaxRetries counts
// total send attempts; delivery is abandoned once it is reached, since the
// availability view a notification describes goes stale quickly anyway.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

// Exhausted reports whether a notification that has made the given number
// of attempts should be dropped instead of retried.
func (r RetryPolicy) Exhausted(attempts int) bool {
	return attempts >= r.MaxRetries
}

// NextDelay returns the pause after a given attempt (1-based), growing by
// BackoffFactor from InitialDelay and clamped to MaxDelay. Unset fields
// fall back to a one-second base and doubling.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if r.InitialDelay <= 0 {
		r.InitialDelay = time.Second
	}
	if r.BackoffFactor <= 0 {
		r.BackoffFactor = 2
	}

	delay := float64(r.InitialDelay) * math.Pow(r.BackoffFactor, float64(attempt-1))
	d := time.Duration(delay)
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		d = time.Second
	}
	return d
}
