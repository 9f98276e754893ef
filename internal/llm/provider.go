package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one completion per call. Implementations translate
// Request into their vendor API and normalise the result.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	ModelID() string
}

// Request is a single structured-output call.
type Request struct {
	System string
	// Messages alternate user and assistant turns. A repair round is the
	// rejected assistant output followed by a user turn listing problems.
	Messages []Message
	// Schema switches the provider into JSON mode and makes Generate
	// validate the output. Nil means free text.
	Schema      *Schema
	MaxTokens   int
	Temperature float64
}

type Message struct {
	Role    Role
	Content string
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema is a JSON Schema document plus the name and description vendors
// show the model. Name must be unique per definition: compiled schemas
// are cached by it.
type Schema struct {
	Name        string
	Description string
	Definition  map[string]any
}

// Response is a normalised completion. For structured requests Content
// has already passed schema validation.
type Response struct {
	Content    json.RawMessage
	Usage      Usage
	Model      string
	StopReason string
}

type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
