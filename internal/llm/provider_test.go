package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockResponse{Content: json.RawMessage(`{"b":2}`)},
	)

	resp, err := mock.Generate(context.Background(), Request{System: "sys"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(resp.Content) != `{"a":1}` || resp.Usage.InputTokens != 10 {
		t.Fatalf("first response = %s %+v", resp.Content, resp.Usage)
	}
	resp, _ = mock.Generate(context.Background(), Request{})
	if string(resp.Content) != `{"b":2}` {
		t.Fatalf("second response = %s", resp.Content)
	}
	if mock.CallCount() != 2 || mock.Calls[0].System != "sys" {
		t.Fatalf("calls not recorded: %+v", mock.Calls)
	}

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("empty queue: expected ErrProviderUnavailable, got %T", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != "unknown" {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	ctx = WithPurpose(ctx, "model-gen")
	if p := PurposeFrom(ctx); p != "model-gen" {
		t.Fatalf("expected 'model-gen', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: ProviderConfig{APIKey: "sk-test"}}, false},
		{"openrouter without key", Config{Provider: "openrouter"}, true},
		{"gemini with key", Config{Provider: "gemini", Gemini: ProviderConfig{APIKey: "g-test"}}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "unknown"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	err := Config{Provider: "openrouter"}.Validate()
	if err == nil || err.Error() != "CONCEPTLINK_LLM_OPENROUTER_API_KEY is required for the openrouter provider" {
		t.Fatalf("unexpected message: %v", err)
	}
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"ANTHROPIC_API_KEY", "OPENAI_API_KEY", "GEMINI_API_KEY", "OPENROUTER_API_KEY"} {
		t.Setenv(k, "")
	}
	if _, ok := DiscoverConfig(); ok {
		t.Fatal("expected no config without keys")
	}

	t.Setenv("GEMINI_API_KEY", "g-key")
	cfg, ok := DiscoverConfig()
	if !ok || cfg.Provider != "gemini" || cfg.Gemini.APIKey != "g-key" {
		t.Fatalf("got %+v, %v", cfg, ok)
	}
}

type fakeUsage struct{ records []UsageRecord }

func (f *fakeUsage) RecordLLMUsage(_ context.Context, rec UsageRecord) error {
	f.records = append(f.records, rec)
	return nil
}

func TestLoggingProvider(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	usage := &fakeUsage{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`), Usage: Usage{InputTokens: 1000, OutputTokens: 500}},
		MockResponse{Err: &ErrRateLimit{Err: errors.New("429")}},
	)
	p := WithLogging(mock, zap.New(core), usage)

	ctx := WithPurpose(context.Background(), "model-gen")
	if _, err := p.Generate(ctx, Request{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	if len(usage.records) != 2 {
		t.Fatalf("expected 2 usage records, got %d", len(usage.records))
	}
	ok, failed := usage.records[0], usage.records[1]
	if !ok.Success || ok.Purpose != "model-gen" || ok.Provider != "mock" || ok.InputTokens != 1000 {
		t.Errorf("success record = %+v", ok)
	}
	if failed.Success || failed.ErrorMessage == "" {
		t.Errorf("failure record = %+v", failed)
	}
	if n := logs.FilterLevelExact(zapcore.WarnLevel).Len(); n != 1 {
		t.Errorf("expected 1 warning, got %d", n)
	}
}

func TestModelCost(t *testing.T) {
	c := LookupCost("claude-sonnet-4-5-20250929")
	if c == nil {
		t.Fatal("expected pricing for sonnet")
	}
	if got := c.Cost(1_000_000, 1_000_000); got != 18 {
		t.Errorf("cost = %v, want 18", got)
	}
	if LookupCost("unknown-model") != nil {
		t.Error("expected nil for unknown model")
	}
}
