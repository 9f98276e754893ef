package content

import "github.com/abhisek/conceptlink/internal/llm"

func strictObject(props map[string]any) map[string]any {
	required := make([]any, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

// GenerationSchema is the structured output an LLM must return when
// authoring a game model. Every field is required so providers with strict
// schema modes accept it.
var GenerationSchema = &llm.Schema{
	Name:        "concept-graph-model",
	Description: "A concept connection puzzle: nodes, the directed solution edges, and known wrong connections",
	Definition: strictObject(map[string]any{
		"id": map[string]any{
			"type":        "string",
			"description": "Short kebab-case identifier for the puzzle",
		},
		"title": map[string]any{
			"type":        "string",
			"description": "Learner-facing title",
		},
		"version": map[string]any{
			"type":        "string",
			"description": "Always \"v1.0.0\"",
		},
		"instructions": map[string]any{
			"type":        "string",
			"description": "Two or three sentences telling the learner what to connect",
		},
		"nodes": map[string]any{
			"type": "array",
			"items": strictObject(map[string]any{
				"id":     map[string]any{"type": "string", "description": "Unique node id such as n1"},
				"label":  map[string]any{"type": "string", "description": "Concept shown on the node, at most six words"},
				"kind":   map[string]any{"type": "string", "enum": []any{"scenario", "decision", "outcome", "information"}},
				"points": map[string]any{"type": "integer", "minimum": 0},
			}),
		},
		"solution": map[string]any{
			"type": "array",
			"items": strictObject(map[string]any{
				"source":    map[string]any{"type": "string"},
				"target":    map[string]any{"type": "string"},
				"points":    map[string]any{"type": "integer", "minimum": 0},
				"rationale": map[string]any{"type": "string", "description": "Why source leads to target"},
			}),
		},
		"wrong_connections": map[string]any{
			"type": "array",
			"items": strictObject(map[string]any{
				"source":      map[string]any{"type": "string"},
				"target":      map[string]any{"type": "string"},
				"explanation": map[string]any{"type": "string", "description": "Feedback explaining the misconception"},
				"penalty":     map[string]any{"type": "integer", "minimum": 0},
			}),
		},
		"hints": map[string]any{
			"type":        "array",
			"items":       map[string]any{"type": "string"},
			"description": "One nudge per solution edge, in the same order, never naming both endpoints",
		},
	}),
}
