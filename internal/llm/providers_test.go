package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOpenAIProvider(t *testing.T, name string, handler http.HandlerFunc) *OpenAIProvider {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newOpenAICompatible(name, ProviderConfig{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
		Model:   "gpt",
	}, openaiModels)
}

func openAIChatHandler(content, finishReason string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1234567890,
			"model":   "gpt-4.1",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": content},
				"finish_reason": finishReason,
			}},
			"usage": map[string]any{"prompt_tokens": 120, "completion_tokens": 80, "total_tokens": 200},
		})
	}
}

func openAIErrorHandler(status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": http.StatusText(status), "type": "error"},
		})
	}
}

func edgeRequest() Request {
	return Request{
		System:    "You design concept puzzles.",
		Messages:  []Message{{Role: RoleUser, Content: "One edge please."}},
		Schema:    edgeSchema(),
		MaxTokens: 256,
	}
}

func TestOpenAIProviderStructuredOutput(t *testing.T) {
	p := newTestOpenAIProvider(t, "openai",
		openAIChatHandler(`{"source":"n1","target":"n2","rationale":"heat causes evaporation"}`, "stop"))

	resp, err := p.Generate(context.Background(), edgeRequest())
	require.NoError(t, err)
	assert.Equal(t, 200, resp.Usage.TotalTokens)
	assert.Equal(t, StopEnd, resp.StopReason)
	assert.Equal(t, "gpt-4.1", resp.Model)
	assert.Equal(t, "gpt-4.1", p.ModelID(), "alias resolved")
}

func TestOpenAIProviderStripsCodeFence(t *testing.T) {
	p := newTestOpenAIProvider(t, "openai",
		openAIChatHandler("```json\n{\"source\":\"n1\",\"target\":\"n2\"}\n```", "stop"))

	resp, err := p.Generate(context.Background(), edgeRequest())
	require.NoError(t, err)
	assert.JSONEq(t, `{"source":"n1","target":"n2"}`, string(resp.Content))
}

func TestOpenAIProviderFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		target  any
	}{
		{"schema violation", openAIChatHandler(`{"source":"n1"}`, "stop"), new(*ErrInvalidResponse)},
		{"truncated", openAIChatHandler(`{"source":"n1","tar`, "length"), new(*ErrMaxTokensExceeded)},
		{"rate limited", openAIErrorHandler(http.StatusTooManyRequests), new(*ErrRateLimit)},
		{"bad key", openAIErrorHandler(http.StatusUnauthorized), new(*ErrRequestRejected)},
		{"server error", openAIErrorHandler(http.StatusBadGateway), new(*ErrProviderUnavailable)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestOpenAIProvider(t, "openai", tt.handler)
			_, err := p.Generate(context.Background(), edgeRequest())
			require.Error(t, err)
			assert.True(t, errors.As(err, tt.target), "got %T: %v", err, err)
		})
	}
}

func TestAnthropicProviderErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		header http.Header
		check  func(t *testing.T, err error)
	}{
		{
			name:   "server error",
			status: http.StatusInternalServerError,
			check: func(t *testing.T, err error) {
				var unavail *ErrProviderUnavailable
				assert.ErrorAs(t, err, &unavail)
			},
		},
		{
			name:   "rate limit with retry-after",
			status: http.StatusTooManyRequests,
			header: http.Header{"Retry-After": []string{"7"}},
			check: func(t *testing.T, err error) {
				var rl *ErrRateLimit
				require.ErrorAs(t, err, &rl)
				assert.Equal(t, 7*time.Second, rl.RetryAfter)
			},
		},
		{
			name:   "bad request",
			status: http.StatusBadRequest,
			check: func(t *testing.T, err error) {
				var rej *ErrRequestRejected
				require.ErrorAs(t, err, &rej)
				assert.Equal(t, http.StatusBadRequest, rej.StatusCode)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.header {
					w.Header()[k] = v
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"type":  "error",
					"error": map[string]any{"type": "api_error", "message": http.StatusText(tt.status)},
				})
			}))
			t.Cleanup(server.Close)

			client := anthropic.NewClient(
				option.WithAPIKey("test-key"),
				option.WithBaseURL(server.URL),
				option.WithMaxRetries(0),
			)
			p := &AnthropicProvider{client: &client, model: "claude-sonnet-4-5-20250929"}

			_, err := p.Generate(context.Background(), Request{
				Messages:  []Message{{Role: RoleUser, Content: "test"}},
				MaxTokens: 100,
			})
			tt.check(t, err)
		})
	}
}

func TestNewOpenRouterProvider(t *testing.T) {
	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "anthropic/claude-sonnet-4"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic/claude-sonnet-4", p.ModelID())
	assert.Equal(t, "openrouter", providerName(p))

	p, err = NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "gpt"})
	require.NoError(t, err)
	assert.Equal(t, "gpt", p.ModelID(), "openai aliases do not apply")

	_, err = NewOpenRouterProvider(OpenRouterConfig{Model: "x"})
	assert.Error(t, err)
}

func TestModelAliases(t *testing.T) {
	tests := []struct {
		table    map[string]string
		input    string
		expected string
	}{
		{anthropicModels, "claude-sonnet", "claude-sonnet-4-5-20250929"},
		{anthropicModels, "claude-haiku", "claude-haiku-4-5-20251001"},
		{openaiModels, "gpt-mini", "gpt-4.1-mini"},
		{geminiModels, "gemini-pro", "gemini-2.5-pro"},
		{geminiModels, "gemini-2.0-flash", "gemini-2.0-flash"},
		{nil, "meta-llama/llama-3-8b", "meta-llama/llama-3-8b"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, resolveModel(tt.input, tt.table), tt.input)
	}
}

func TestBuildGeminiSchema(t *testing.T) {
	def := map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties": map[string]any{
			"title": map[string]any{"type": []any{"string", "null"}},
			"nodes": map[string]any{
				"type":     "array",
				"minItems": 2,
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":     map[string]any{"type": "string"},
						"kind":   map[string]any{"type": "string", "enum": []any{"scenario", "outcome"}},
						"points": map[string]any{"type": "integer", "minimum": 0},
					},
					"required": []any{"id"},
				},
			},
		},
		"required": []any{"nodes"},
	}

	schema := buildGeminiSchema(def)
	assert.EqualValues(t, "OBJECT", schema.Type)
	assert.Equal(t, []string{"nodes", "title"}, schema.PropertyOrdering)

	title := schema.Properties["title"]
	assert.EqualValues(t, "STRING", title.Type)
	require.NotNil(t, title.Nullable)
	assert.True(t, *title.Nullable)

	nodes := schema.Properties["nodes"]
	assert.EqualValues(t, "ARRAY", nodes.Type)
	require.NotNil(t, nodes.MinItems)
	assert.EqualValues(t, 2, *nodes.MinItems)
	require.NotNil(t, nodes.Items)
	assert.Len(t, nodes.Items.Properties["kind"].Enum, 2)
	assert.Equal(t, []string{"id"}, nodes.Items.Required)
	assert.Equal(t, []string{"id", "kind", "points"}, nodes.Items.PropertyOrdering)

	points := nodes.Items.Properties["points"]
	require.NotNil(t, points.Minimum)
	assert.Zero(t, *points.Minimum)
}

func TestStripFence(t *testing.T) {
	tests := map[string]string{
		`{"a":1}`:                 `{"a":1}`,
		"  {\"a\":1}\n":           `{"a":1}`,
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}\n```\n":   `{"a":1}`,
		"```{\"a\":1}```":         `{"a":1}`,
	}
	for in, want := range tests {
		assert.Equal(t, want, stripFence(in), "%q", in)
	}
}
