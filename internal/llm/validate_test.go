package llm

import (
	"encoding/json"
	"errors"
	"testing"
)

func edgeSchema() *Schema {
	return &Schema{
		Name:        "test-edge",
		Description: "A directed edge",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"source":    map[string]any{"type": "string"},
				"target":    map[string]any{"type": "string"},
				"points":    map[string]any{"type": "integer", "minimum": 0},
				"kind":      map[string]any{"type": "string", "enum": []any{"cause", "effect"}},
				"rationale": map[string]any{"type": "string"},
			},
			"required": []any{"source", "target"},
		},
	}
}

func TestValidateResponse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"source":"n1","target":"n2","points":10,"kind":"cause"}`, false},
		{"optional fields omitted", `{"source":"n1","target":"n2"}`, false},
		{"missing required", `{"source":"n1"}`, true},
		{"wrong type", `{"source":"n1","target":"n2","points":"ten"}`, true},
		{"negative points", `{"source":"n1","target":"n2","points":-1}`, true},
		{"invalid enum", `{"source":"n1","target":"n2","kind":"both"}`, true},
		{"malformed JSON", `{not json}`, true},
		{"empty", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateResponse(edgeSchema(), json.RawMessage(tt.raw))
			if (err != nil) != tt.wantErr {
				t.Fatalf("validateResponse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var inv *ErrInvalidResponse
				if !errors.As(err, &inv) {
					t.Fatalf("expected ErrInvalidResponse, got %T", err)
				}
			}
		})
	}
}

func TestValidateResponse_NilSchema(t *testing.T) {
	if err := validateResponse(nil, json.RawMessage(`{"anything":"goes"}`)); err != nil {
		t.Fatalf("expected no error with nil schema, got: %v", err)
	}
}

func TestValidateResponse_NestedArrays(t *testing.T) {
	schema := &Schema{
		Name: "test-graph",
		Definition: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"solution": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":       "object",
						"properties": map[string]any{"source": map[string]any{"type": "string"}},
						"required":   []any{"source"},
					},
				},
			},
			"required": []any{"solution"},
		},
	}

	if err := validateResponse(schema, json.RawMessage(`{"solution":[{"source":"n1"}]}`)); err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if err := validateResponse(schema, json.RawMessage(`{"solution":[{"target":"n2"}]}`)); err == nil {
		t.Fatal("expected error for array item missing source")
	}
}
