package content

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/abhisek/conceptlink/internal/graph"
	"github.com/abhisek/conceptlink/internal/llm"
)

// Brief describes the puzzle an author wants.
type Brief struct {
	Topic    string
	Audience string
	Nodes    int
	Notes    string
}

// GeneratorConfig holds model generation settings.
type GeneratorConfig struct {
	MaxTokens   int
	Temperature float64
	// MaxAttempts bounds the number of LLM calls, including repairs.
	MaxAttempts int
}

// DefaultGeneratorConfig returns sensible defaults for model generation.
func DefaultGeneratorConfig() GeneratorConfig {
	return GeneratorConfig{
		MaxTokens:   4096,
		Temperature: 0.4,
		MaxAttempts: 2,
	}
}

// Generator authors game models with an LLM and validates them exactly as
// loaded content is validated.
type Generator struct {
	provider llm.Provider
	config   GeneratorConfig
}

// NewGenerator creates a Generator.
func NewGenerator(provider llm.Provider, cfg GeneratorConfig) *Generator {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Generator{provider: provider, config: cfg}
}

const generatorSystemPrompt = `You design concept-connection puzzles for critical thinking practice.

Rules:
- Build a directed graph where each solution edge reads "source leads to / causes / informs target".
- Every node id used in solution and wrong_connections must exist in nodes.
- Never list the same (source, target) pair twice, and never connect a node to itself.
- Wrong connections are tempting but incorrect links; none may appear in the solution.
- Use kind "scenario" for the starting situation, "decision" for choices, "outcome" for results and "information" for supporting facts.
- Write plain text without markdown.
- Set version to "v1.0.0".`

// Generate asks the provider for a model matching the brief. When the
// output breaks the schema or the returned model fails validation, the
// problems are sent back for one repair round per remaining attempt.
func (g *Generator) Generate(ctx context.Context, brief Brief) (*graph.Model, error) {
	if strings.TrimSpace(brief.Topic) == "" {
		return nil, errors.New("brief topic is required")
	}
	ctx = llm.WithPurpose(ctx, "model-gen")

	messages := []llm.Message{{Role: llm.RoleUser, Content: buildBriefMessage(brief)}}
	var lastErr error
	for attempt := 1; attempt <= g.config.MaxAttempts; attempt++ {
		resp, err := g.provider.Generate(ctx, llm.Request{
			System:      generatorSystemPrompt,
			Messages:    messages,
			Schema:      GenerationSchema,
			MaxTokens:   g.config.MaxTokens,
			Temperature: g.config.Temperature,
		})
		var (
			invalid *llm.ErrInvalidResponse
			maxTok  *llm.ErrMaxTokensExceeded
		)
		var raw []byte
		switch {
		case err == nil:
			raw = resp.Content
			m, derr := Decode(raw, FormatJSON)
			if derr == nil {
				return m, nil
			}
			err = derr
		case errors.As(err, &invalid) && len(invalid.Content) > 0:
			raw = invalid.Content
		case errors.As(err, &maxTok):
			return nil, fmt.Errorf("model output truncated at %d tokens, raise max tokens or request fewer nodes: %w",
				g.config.MaxTokens, err)
		default:
			return nil, fmt.Errorf("LLM generation failed: %w", err)
		}
		lastErr = err

		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: string(raw)},
			llm.Message{Role: llm.RoleUser, Content: repairMessage(err)},
		)
	}
	return nil, fmt.Errorf("generated model rejected after %d attempts: %w", g.config.MaxAttempts, lastErr)
}

func buildBriefMessage(b Brief) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Topic: %s\n", b.Topic)
	if b.Audience != "" {
		fmt.Fprintf(&sb, "Audience: %s\n", b.Audience)
	}
	nodes := b.Nodes
	if nodes <= 0 {
		nodes = 6
	}
	fmt.Fprintf(&sb, "Nodes: about %d\n", nodes)
	fmt.Fprintf(&sb, "Solution edges: between %d and %d\n", nodes-1, nodes+2)
	sb.WriteString("Wrong connections: at least 2\n")
	if b.Notes != "" {
		fmt.Fprintf(&sb, "\nAuthor notes:\n%s\n", b.Notes)
	}
	return sb.String()
}

func repairMessage(err error) string {
	var verr *graph.ValidationError
	if errors.As(err, &verr) {
		return "The puzzle has these problems, return a corrected version:\n- " + strings.Join(verr.Problems, "\n- ")
	}
	return "The puzzle was rejected, return a corrected version: " + err.Error()
}
