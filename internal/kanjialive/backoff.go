package kanjialive

import (
	"math/rand/v2"
	"time"
)

// Retry policy for the upstream API. Three total attempts; only 429, 5xx
// and transport failures are retried.
const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 30 * time.Second
)

// jitteredDelay computes the sleep before the next attempt: the current
// backoff capped at max, plus 0-10% jitter of the capped base, capped again.
// The jitter source returns a value in [0,1); it is injected so tests can
// pin the delay.
func jitteredDelay(backoff, max time.Duration, jitter func() float64) time.Duration {
	base := backoff
	if base > max {
		base = max
	}
	delay := base + time.Duration(jitter()*0.1*float64(base))
	if delay > max {
		delay = max
	}
	return delay
}

// jitterSource returns the default jitter source.
func jitterSource() func() float64 {
	return rand.Float64
}

// nextBackoff doubles the backoff, capped at max.
func nextBackoff(backoff, max time.Duration) time.Duration {
	next := backoff * 2
	if next > max {
		next = max
	}
	return next
}
