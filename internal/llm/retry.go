package llm

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
)

const (
	baseBackoff = 500 * time.Millisecond
	maxBackoff  = 8 * time.Second
)

// RetryPolicy bounds how often a failed provider call is repeated.
type RetryPolicy struct {
	MaxRetries int

	// NewTimer, when set, supplies the timer used between attempts of one
	// call. It is invoked once per call, so concurrent calls never share a
	// timer. Nil means the wall clock.
	NewTimer func() backoff.Timer
}

// Retryable reports whether a provider failure is worth another attempt:
// rate limiting (but not an exhausted quota) and transient 5xx responses.
func Retryable(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusTooManyRequests:
		return apiErr.Code != CodeInsufficientQuota
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// hintedBackOff doubles from 500ms up to 8s, stretched to the server's
// Retry-After hint when that is longer.
type hintedBackOff struct {
	attempt int
	hint    time.Duration
}

func (b *hintedBackOff) NextBackOff() time.Duration {
	wait := maxBackoff
	if b.attempt < 5 {
		wait = min(maxBackoff, baseBackoff<<b.attempt)
	}
	wait = max(wait, b.hint)
	b.attempt++
	b.hint = 0
	return wait
}

func (b *hintedBackOff) Reset() {
	b.attempt = 0
	b.hint = 0
}

// Retry runs op until it succeeds, fails with a non-retryable error, or
// MaxRetries retries have been spent. The final error is returned unchanged.
func Retry[T any](ctx context.Context, policy RetryPolicy, op func() (T, error)) (T, error) {
	if policy.MaxRetries <= 0 {
		return op()
	}

	var result T
	hb := &hintedBackOff{}
	operation := func() error {
		v, err := op()
		if err == nil {
			result = v
			return nil
		}
		if !Retryable(err) {
			return backoff.Permanent(err)
		}
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			hb.hint = apiErr.RetryAfter
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		slog.Warn("Provider call failed, retrying", "error", err, "wait", wait, "attempt", hb.attempt)
	}

	var timer backoff.Timer
	if policy.NewTimer != nil {
		timer = policy.NewTimer()
	}
	b := backoff.WithContext(backoff.WithMaxRetries(hb, uint64(policy.MaxRetries)), ctx)
	err := backoff.RetryNotifyWithTimer(operation, b, notify, timer)
	return result, err
}

type retryingProvider struct {
	Provider
	policy RetryPolicy
}

// WithRetry wraps every GenerateText call of p in Retry.
func WithRetry(p Provider, policy RetryPolicy) Provider {
	return &retryingProvider{Provider: p, policy: policy}
}

func (r *retryingProvider) GenerateText(ctx context.Context, systemPrompt, userPrompt string, opts ...Option) (string, error) {
	return Retry(ctx, r.policy, func() (string, error) {
		return r.Provider.GenerateText(ctx, systemPrompt, userPrompt, opts...)
	})
}
