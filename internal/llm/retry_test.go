package llm

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTimer fires immediately and records every requested wait.
type fakeTimer struct {
	ch    chan time.Time
	waits []time.Duration
}

func newFakeTimer() *fakeTimer {
	return &fakeTimer{ch: make(chan time.Time, 1)}
}

func (t *fakeTimer) Start(d time.Duration) {
	t.waits = append(t.waits, d)
	t.ch <- time.Now()
}

func (t *fakeTimer) Stop() {}

func (t *fakeTimer) C() <-chan time.Time { return t.ch }

func (t *fakeTimer) source() backoff.Timer { return t }

type step struct {
	text string
	err  error
}

func sequence(steps ...step) (func() (string, error), *int) {
	calls := 0
	return func() (string, error) {
		s := steps[min(calls, len(steps)-1)]
		calls++
		return s.text, s.err
	}, &calls
}

func rateLimited(retryAfter time.Duration) *APIError {
	return &APIError{Provider: "openai", Status: http.StatusTooManyRequests, Code: "rate_limit_exceeded", RetryAfter: retryAfter}
}

func TestRetry_RecoversAfterTransientFailures(t *testing.T) {
	timer := newFakeTimer()
	op, calls := sequence(
		step{err: rateLimited(0)},
		step{err: &APIError{Status: http.StatusInternalServerError}},
		step{text: "done"},
	)

	got, err := Retry(context.Background(), RetryPolicy{MaxRetries: 2, NewTimer: timer.source}, op)
	require.NoError(t, err)
	assert.Equal(t, "done", got)
	assert.Equal(t, 3, *calls, "two retries after the first attempt")
	assert.Equal(t, []time.Duration{500 * time.Millisecond, time.Second}, timer.waits)
}

func TestRetry_QuotaExhaustedFailsImmediately(t *testing.T) {
	timer := newFakeTimer()
	quota := &APIError{Provider: "openai", Status: http.StatusTooManyRequests, Code: CodeInsufficientQuota}
	op, calls := sequence(step{err: quota})

	_, err := Retry(context.Background(), RetryPolicy{MaxRetries: 2, NewTimer: timer.source}, op)
	assert.Same(t, quota, err)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, timer.waits)
}

func TestRetry_NonRetryableStatuses(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusBadRequest, http.StatusForbidden, http.StatusNotFound} {
		timer := newFakeTimer()
		op, calls := sequence(step{err: &APIError{Status: status}})

		_, err := Retry(context.Background(), RetryPolicy{MaxRetries: 3, NewTimer: timer.source}, op)
		assert.Error(t, err)
		assert.Equal(t, 1, *calls, "status %d must not be retried", status)
	}
}

func TestRetry_TransportErrorsAreNotRetried(t *testing.T) {
	boom := errors.New("connection refused")
	op, calls := sequence(step{err: boom})

	_, err := Retry(context.Background(), RetryPolicy{MaxRetries: 2, NewTimer: newFakeTimer().source}, op)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, *calls)
}

func TestRetry_ExhaustedReturnsLastError(t *testing.T) {
	timer := newFakeTimer()
	last := &APIError{Status: http.StatusBadGateway, Message: "last"}
	op, calls := sequence(
		step{err: &APIError{Status: http.StatusServiceUnavailable}},
		step{err: &APIError{Status: http.StatusGatewayTimeout}},
		step{err: last},
	)

	_, err := Retry(context.Background(), RetryPolicy{MaxRetries: 2, NewTimer: timer.source}, op)
	assert.Same(t, last, err)
	assert.Equal(t, 3, *calls)
	assert.Len(t, timer.waits, 2)
}

func TestRetry_HonoursRetryAfterHint(t *testing.T) {
	timer := newFakeTimer()
	op, _ := sequence(step{err: rateLimited(5 * time.Second)}, step{text: "ok"})

	_, err := Retry(context.Background(), RetryPolicy{MaxRetries: 2, NewTimer: timer.source}, op)
	require.NoError(t, err)
	require.Len(t, timer.waits, 1)
	assert.Equal(t, 5*time.Second, timer.waits[0])
}

func TestRetry_ShortHintDoesNotShortenBackoff(t *testing.T) {
	timer := newFakeTimer()
	op, _ := sequence(step{err: rateLimited(100 * time.Millisecond)}, step{text: "ok"})

	_, err := Retry(context.Background(), RetryPolicy{MaxRetries: 1, NewTimer: timer.source}, op)
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{500 * time.Millisecond}, timer.waits)
}

func TestRetry_ZeroRetriesCallsOnce(t *testing.T) {
	op, calls := sequence(step{err: rateLimited(0)})

	_, err := Retry(context.Background(), RetryPolicy{}, op)
	assert.Error(t, err)
	assert.Equal(t, 1, *calls)
}

func TestRetry_RealTimerWaitsAtLeastBaseBackoff(t *testing.T) {
	if testing.Short() {
		t.Skip("sleeps for the base backoff")
	}
	op, _ := sequence(step{err: rateLimited(0)}, step{text: "ok"})

	start := time.Now()
	_, err := Retry(context.Background(), RetryPolicy{MaxRetries: 1}, op)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 500*time.Millisecond)
}

func TestRetry_ContextCancelledDuringWait(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	op := func() (string, error) {
		cancel()
		return "", rateLimited(time.Hour)
	}

	_, err := Retry(ctx, RetryPolicy{MaxRetries: 2}, op)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestHintedBackOff_Schedule(t *testing.T) {
	b := &hintedBackOff{}
	var got []time.Duration
	for range 7 {
		got = append(got, b.NextBackOff())
	}
	want := []time.Duration{
		500 * time.Millisecond, time.Second, 2 * time.Second, 4 * time.Second,
		8 * time.Second, 8 * time.Second, 8 * time.Second,
	}
	assert.Equal(t, want, got)

	b.Reset()
	assert.Equal(t, 500*time.Millisecond, b.NextBackOff())
}

func TestWithRetry_WrapsProvider(t *testing.T) {
	stub := &stubProvider{responses: []step{{err: rateLimited(0)}, {text: "report"}}}
	p := WithRetry(stub, RetryPolicy{MaxRetries: 2, NewTimer: newFakeTimer().source})

	got, err := p.GenerateText(context.Background(), "sys", "user", WithModel("m"))
	require.NoError(t, err)
	assert.Equal(t, "report", got)
	assert.Equal(t, 2, stub.calls)
	assert.Equal(t, "stub", p.Name())
}

type stubProvider struct {
	responses []step
	calls     int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) GenerateText(ctx context.Context, systemPrompt, userPrompt string, opts ...Option) (string, error) {
	r := s.responses[min(s.calls, len(s.responses)-1)]
	s.calls++
	return r.text, r.err
}

// flakyProvider fails the first attempt for every distinct prompt.
type flakyProvider struct {
	mu   sync.Mutex
	seen map[string]bool
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) GenerateText(ctx context.Context, systemPrompt, userPrompt string, opts ...Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.seen[userPrompt] {
		f.seen[userPrompt] = true
		return "", rateLimited(0)
	}
	return userPrompt, nil
}

func TestWithRetry_ConcurrentCallsGetOwnTimers(t *testing.T) {
	var (
		mu     sync.Mutex
		timers []*fakeTimer
	)
	policy := RetryPolicy{MaxRetries: 1, NewTimer: func() backoff.Timer {
		mu.Lock()
		defer mu.Unlock()
		ft := newFakeTimer()
		timers = append(timers, ft)
		return ft
	}}
	p := WithRetry(&flakyProvider{seen: map[string]bool{}}, policy)

	prompts := []string{"report", "analysis"}
	var wg sync.WaitGroup
	for _, prompt := range prompts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := p.GenerateText(context.Background(), "", prompt, WithModel("m"))
			assert.NoError(t, err)
			assert.Equal(t, prompt, got)
		}()
	}
	wg.Wait()

	require.Len(t, timers, len(prompts))
	for _, ft := range timers {
		assert.Equal(t, []time.Duration{500 * time.Millisecond}, ft.waits)
	}
}
