package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func retryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: time.Millisecond,
		MaxWait:     10 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func ok() MockResponse {
	return MockResponse{Content: json.RawMessage(`{"ok":true}`)}
}

func fail(err error) MockResponse {
	return MockResponse{Err: err}
}

func TestRetryPolicy(t *testing.T) {
	down := &ErrProviderUnavailable{Err: errors.New("down")}

	tests := []struct {
		name      string
		responses []MockResponse
		wantErr   any
		wantCalls int
	}{
		{
			name:      "first attempt succeeds",
			responses: []MockResponse{ok()},
			wantCalls: 1,
		},
		{
			name:      "transient then success",
			responses: []MockResponse{fail(down), ok()},
			wantCalls: 2,
		},
		{
			name:      "rate limit honours retry-after",
			responses: []MockResponse{fail(&ErrRateLimit{RetryAfter: time.Millisecond, Err: errors.New("429")}), ok()},
			wantCalls: 2,
		},
		{
			name:      "gives up after max attempts",
			responses: []MockResponse{fail(down), fail(down), fail(down), ok()},
			wantErr:   new(*ErrProviderUnavailable),
			wantCalls: 3,
		},
		{
			name:      "truncation is not retried",
			responses: []MockResponse{fail(&ErrMaxTokensExceeded{Content: json.RawMessage(`{`)}), ok()},
			wantErr:   new(*ErrMaxTokensExceeded),
			wantCalls: 1,
		},
		{
			name:      "invalid output is left to the caller",
			responses: []MockResponse{fail(&ErrInvalidResponse{Content: json.RawMessage(`{}`), Err: errors.New("bad")}), ok()},
			wantErr:   new(*ErrInvalidResponse),
			wantCalls: 1,
		},
		{
			name:      "rejected request is not retried",
			responses: []MockResponse{fail(&ErrRequestRejected{StatusCode: 401, Err: errors.New("bad key")}), ok()},
			wantErr:   new(*ErrRequestRejected),
			wantCalls: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(tt.responses...)
			p := WithRetry(mock, retryConfig(), nil)

			resp, err := p.Generate(context.Background(), Request{})
			assert.Equal(t, tt.wantCalls, mock.CallCount())
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.As(err, tt.wantErr), "got %T", err)
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, `{"ok":true}`, string(resp.Content))
		})
	}
}

func TestRetryStopsOnCancelledContext(t *testing.T) {
	mock := NewMockProvider(
		fail(&ErrProviderUnavailable{Err: errors.New("down")}),
		ok(),
	)
	cfg := retryConfig()
	cfg.InitialWait = time.Hour
	cfg.MaxWait = time.Hour
	p := WithRetry(mock, cfg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Generate(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetryLogsEachRetry(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	mock := NewMockProvider(
		fail(&ErrProviderUnavailable{Err: errors.New("down")}),
		fail(&ErrProviderUnavailable{Err: errors.New("down")}),
		ok(),
	)
	p := WithRetry(mock, retryConfig(), zap.New(core))

	_, err := p.Generate(WithPurpose(context.Background(), "model-gen"), Request{})
	require.NoError(t, err)

	entries := logs.FilterMessage("retrying llm request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, "model-gen", entries[0].ContextMap()["purpose"])
	assert.EqualValues(t, 2, entries[1].ContextMap()["attempt"])
}

func TestRetryBackoffBounds(t *testing.T) {
	r := WithRetry(NewMockProvider(), RetryConfig{
		MaxAttempts: 5,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     300 * time.Millisecond,
		Multiplier:  2,
	}, nil).(*RetryProvider)

	down := &ErrProviderUnavailable{}
	for attempt, base := range []time.Duration{100, 200, 300, 300} {
		base *= time.Millisecond
		wait := r.backoff(attempt, down)
		assert.GreaterOrEqual(t, wait, base*8/10, "attempt %d", attempt)
		assert.LessOrEqual(t, wait, base*12/10, "attempt %d", attempt)
	}
}

func TestRetryDefaults(t *testing.T) {
	mock := NewMockProvider(ok())
	p := WithRetry(mock, RetryConfig{}, nil)

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "mock", p.ModelID())
}
