package graph

import (
	"fmt"
	"strings"
)

// ValidationError lists every problem found in a model. A model that fails
// validation cannot be offered to a learner.
type ValidationError struct {
	ModelID  string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("game model %q validation failed:\n  %s", e.ModelID, strings.Join(e.Problems, "\n  "))
}

// Validate performs all load-time structural checks. It only reads m, so
// sessions sharing one model may validate it concurrently. Returns a
// *ValidationError describing all problems, or nil.
func (m *Model) Validate() error {
	var errs []string

	ids := make(map[string]bool, len(m.Nodes))
	for i, n := range m.Nodes {
		if n.ID == "" {
			errs = append(errs, fmt.Sprintf("node %d has an empty ID", i))
			continue
		}
		if ids[n.ID] {
			errs = append(errs, fmt.Sprintf("duplicate node ID: %q", n.ID))
		}
		ids[n.ID] = true
		if !n.Kind.Valid() {
			errs = append(errs, fmt.Sprintf("node %q has unknown kind %q", n.ID, n.Kind))
		}
	}

	// Dangling references in the solution.
	seen := make(map[Edge]bool, len(m.Solution))
	for i, s := range m.Solution {
		prefix := fmt.Sprintf("solution[%d] %s->%s", i, s.Source, s.Target)
		errs = append(errs, danglingRefs(prefix, s.Source, s.Target, ids)...)
		if seen[s.Edge()] {
			errs = append(errs, fmt.Sprintf("%s: duplicate solution entry", prefix))
		}
		seen[s.Edge()] = true
		if s.Points < 0 {
			errs = append(errs, fmt.Sprintf("%s: points must be >= 0, got %d", prefix, s.Points))
		}
	}

	// Dangling references in the wrong catalog. A wrong entry that is also
	// part of the solution can never fire, which is an authoring bug.
	for i, w := range m.WrongConnections {
		prefix := fmt.Sprintf("wrong_connections[%d] %s->%s", i, w.Source, w.Target)
		errs = append(errs, danglingRefs(prefix, w.Source, w.Target, ids)...)
		if seen[w.Edge()] {
			errs = append(errs, fmt.Sprintf("%s: edge is also in the solution", prefix))
		}
		if w.Penalty < 0 {
			errs = append(errs, fmt.Sprintf("%s: penalty must be >= 0, got %d", prefix, w.Penalty))
		}
	}

	if t := m.CompletionThreshold; t != nil && (*t <= 0 || *t > 1.0) {
		errs = append(errs, fmt.Sprintf("completion_threshold must be in (0, 1.0], got %f", *t))
	}

	if len(errs) > 0 {
		return &ValidationError{ModelID: m.ID, Problems: errs}
	}
	return nil
}

func danglingRefs(prefix, source, target string, ids map[string]bool) []string {
	var errs []string
	if source == target {
		errs = append(errs, fmt.Sprintf("%s: self-loop", prefix))
	}
	if !ids[source] {
		errs = append(errs, fmt.Sprintf("%s: references nonexistent source node %q", prefix, source))
	}
	if !ids[target] {
		errs = append(errs, fmt.Sprintf("%s: references nonexistent target node %q", prefix, target))
	}
	return errs
}
