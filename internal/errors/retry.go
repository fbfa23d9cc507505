// Package errors holds retry machinery shared by the persisters.
package errors

import (
	"math/rand"
	"time"
)

// RetryController implements exponential backoff with jitter for bounded
// retry of shard file writes.
type RetryController struct {
	initialDelay time.Duration
	maxDelay     time.Duration
	maxRetries   int
}

// NewRetryController creates a retry controller.
// maxRetries is the number of attempts after the first; maxRetries = 0
// means try exactly once.
func NewRetryController(maxRetries int, initialDelay, maxDelay time.Duration) *RetryController {
	if initialDelay <= 0 {
		initialDelay = 10 * time.Millisecond
	}
	if maxDelay < initialDelay {
		maxDelay = initialDelay
	}
	return &RetryController{
		initialDelay: initialDelay,
		maxDelay:     maxDelay,
		maxRetries:   maxRetries,
	}
}

// DefaultRetryController returns the controller used by the async
// persister: 3 retries, 10ms initial delay, 1s cap.
func DefaultRetryController() *RetryController {
	return NewRetryController(3, 10*time.Millisecond, 1*time.Second)
}

// MaxRetries returns the configured retry bound.
func (rc *RetryController) MaxRetries() int {
	return rc.maxRetries
}

// Retry executes fn until it succeeds or the retry bound is exhausted,
// sleeping with exponential backoff between attempts. The last error is
// returned when all attempts fail.
func (rc *RetryController) Retry(fn func() error) error {
	var lastErr error

	for attempt := 0; attempt <= rc.maxRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt >= rc.maxRetries {
			break
		}
		time.Sleep(rc.calculateDelay(attempt))
	}

	return lastErr
}

// calculateDelay computes the delay for a given attempt using exponential
// backoff plus ±25% jitter.
func (rc *RetryController) calculateDelay(attempt int) time.Duration {
	delay := rc.initialDelay * time.Duration(1<<uint(attempt))
	if delay > rc.maxDelay {
		delay = rc.maxDelay
	}

	jitter := time.Duration(float64(delay) * 0.25 * (rand.Float64()*2 - 1))
	delay += jitter
	if delay < 0 {
		delay = rc.initialDelay
	}

	return delay
}
