// Package oracle defines the external text-generation capability
// consumed for question generation, profile extraction, answer judging
// and summaries, plus the timeout and retry policy wrapped around it.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Oracle is the remote completion capability. Implementations should
// honor ctx cancellation, but the Caller does not rely on it: a hung
// call is abandoned once its attempt deadline passes.
type Oracle interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

var (
	// ErrTimeout marks an attempt that exceeded its deadline.
	ErrTimeout = errors.New("oracle call timed out")
	// ErrEmptyResponse marks a successful call that returned no usable text.
	ErrEmptyResponse = errors.New("oracle returned an empty response")
	// ErrUnavailable marks an oracle that was never configured.
	ErrUnavailable = errors.New("oracle is not configured")
)

// Policy bounds a single logical oracle call: each call is allowed
// Retries+1 attempts, each attempt bounded by Timeout.
type Policy struct {
	Timeout time.Duration
	Retries int
}

type unavailable struct{}

func (unavailable) Complete(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

// Unavailable returns an oracle whose every call fails with
// ErrUnavailable, so the rest of the system degrades to its deterministic
// fallbacks when no provider is configured.
func Unavailable() Oracle {
	return unavailable{}
}

// Caller wraps an Oracle with a bounded timeout and retry policy.
// Only the last error is surfaced once all attempts are exhausted.
type Caller struct {
	oracle Oracle
	policy Policy
	logger *zap.Logger
}

// NewCaller builds a Caller. Zero policy fields are rejected late, at
// call time, so callers can rely on the defaults applied by their owner.
func NewCaller(o Oracle, policy Policy, logger *zap.Logger) *Caller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Caller{oracle: o, policy: policy, logger: logger}
}

// Call runs the prompt against the oracle under the caller's policy.
// The returned text is trimmed and never empty.
func (c *Caller) Call(ctx context.Context, prompt string) (string, error) {
	if c.oracle == nil {
		return "", ErrUnavailable
	}

	var lastErr error
	for attempt := 0; attempt <= c.policy.Retries; attempt++ {
		out, err := c.attempt(ctx, prompt)
		if err == nil {
			return out, nil
		}
		lastErr = err

		c.logger.Debug("oracle attempt failed",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", c.policy.Retries+1),
			zap.Error(err),
		)

		if ctx.Err() != nil {
			break
		}
	}

	return "", lastErr
}

type completion struct {
	text string
	err  error
}

// attempt races the underlying call against the attempt deadline, so a
// hung network call cannot stall the interview flow.
func (c *Caller) attempt(ctx context.Context, prompt string) (string, error) {
	timeout := c.policy.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan completion, 1)
	go func() {
		text, err := c.oracle.Complete(attemptCtx, prompt)
		done <- completion{text: text, err: err}
	}()

	select {
	case <-attemptCtx.Done():
		if errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
			return "", ErrTimeout
		}
		return "", attemptCtx.Err()
	case result := <-done:
		if result.err != nil {
			if errors.Is(result.err, context.DeadlineExceeded) {
				return "", ErrTimeout
			}
			return "", fmt.Errorf("oracle completion: %w", result.err)
		}
		text := strings.TrimSpace(result.text)
		if text == "" {
			return "", ErrEmptyResponse
		}
		return text, nil
	}
}
