package graph

import "sync"

// NodeKind classifies a concept node. The empty kind is allowed for
// untagged nodes.
type NodeKind string

const (
	KindScenario    NodeKind = "scenario"
	KindDecision    NodeKind = "decision"
	KindOutcome     NodeKind = "outcome"
	KindInformation NodeKind = "information"
)

// Valid reports whether k is a known kind or empty.
func (k NodeKind) Valid() bool {
	switch k {
	case "", KindScenario, KindDecision, KindOutcome, KindInformation:
		return true
	}
	return false
}

// Node is a single concept node on the board. A locked node is shown but
// cannot be connected or inspected.
type Node struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Kind     NodeKind `json:"kind,omitempty" yaml:"kind,omitempty"`
	Revealed bool     `json:"revealed,omitempty" yaml:"revealed,omitempty"`
	Locked   bool     `json:"locked,omitempty" yaml:"locked,omitempty"`
	Points   int      `json:"points,omitempty" yaml:"points,omitempty"`
}

// Edge is a directed connection. Source→Target is the only valid direction.
type Edge struct {
	Source string `json:"source" yaml:"source"`
	Target string `json:"target" yaml:"target"`
}

// SolutionEntry is one required edge of the reference graph.
type SolutionEntry struct {
	Source    string `json:"source" yaml:"source"`
	Target    string `json:"target" yaml:"target"`
	Points    int    `json:"points,omitempty" yaml:"points,omitempty"`
	Rationale string `json:"rationale,omitempty" yaml:"rationale,omitempty"`
}

// Edge returns the entry's directed edge.
func (e SolutionEntry) Edge() Edge { return Edge{Source: e.Source, Target: e.Target} }

// WrongConnection is a known mistake with pedagogical feedback.
type WrongConnection struct {
	Source      string `json:"source" yaml:"source"`
	Target      string `json:"target" yaml:"target"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Penalty     int    `json:"penalty,omitempty" yaml:"penalty,omitempty"`
}

// Edge returns the connection's directed edge.
func (w WrongConnection) Edge() Edge { return Edge{Source: w.Source, Target: w.Target} }

// SolutionSet is the ordered collection of required edges.
type SolutionSet []SolutionEntry

// WrongCatalog is the collection of known incorrect connections.
type WrongCatalog []WrongConnection

// ScoringOverrides lets authored content pick scoring constants.
// Zero values mean "use the configured default".
type ScoringOverrides struct {
	Mode          string `json:"mode,omitempty" yaml:"mode,omitempty"`
	CorrectPoints int    `json:"correct_points,omitempty" yaml:"correct_points,omitempty"`
	WrongPenalty  int    `json:"wrong_penalty,omitempty" yaml:"wrong_penalty,omitempty"`
	HintPenalty   int    `json:"hint_penalty,omitempty" yaml:"hint_penalty,omitempty"`
}

// Model is the static content of one game instance as produced by the
// authoring service.
type Model struct {
	ID                  string            `json:"id" yaml:"id"`
	Title               string            `json:"title" yaml:"title"`
	Version             string            `json:"version" yaml:"version"`
	Instructions        string            `json:"instructions,omitempty" yaml:"instructions,omitempty"`
	Nodes               []Node            `json:"nodes" yaml:"nodes"`
	Solution            SolutionSet       `json:"solution" yaml:"solution"`
	WrongConnections    WrongCatalog      `json:"wrong_connections" yaml:"wrong_connections"`
	Hints               []string          `json:"hints,omitempty" yaml:"hints,omitempty"`
	CompletionThreshold *float64          `json:"completion_threshold,omitempty" yaml:"completion_threshold,omitempty"`
	Scoring             *ScoringOverrides `json:"scoring,omitempty" yaml:"scoring,omitempty"`

	indexOnce sync.Once
	index     *index
}

// index holds lookup tables built on first use. The model must not be
// modified after that; sessions only read it.
type index struct {
	nodes    map[string]int
	solution map[Edge]int
	wrong    map[Edge]int
}

// Node returns the node with the given ID.
func (m *Model) Node(id string) (Node, bool) {
	ix := m.lookup()
	i, ok := ix.nodes[id]
	if !ok {
		return Node{}, false
	}
	return m.Nodes[i], true
}

// HasNode reports whether id names a node in the model.
func (m *Model) HasNode(id string) bool {
	_, ok := m.lookup().nodes[id]
	return ok
}

// SolutionFor returns the solution entry for the edge, if any.
func (m *Model) SolutionFor(e Edge) (SolutionEntry, bool) {
	i, ok := m.lookup().solution[e]
	if !ok {
		return SolutionEntry{}, false
	}
	return m.Solution[i], true
}

// WrongFor returns the wrong-catalog entry for the edge, if any.
func (m *Model) WrongFor(e Edge) (WrongConnection, bool) {
	i, ok := m.lookup().wrong[e]
	if !ok {
		return WrongConnection{}, false
	}
	return m.WrongConnections[i], true
}

// Threshold returns the authored completion threshold, or def when unset.
func (m *Model) Threshold(def float64) float64 {
	if m.CompletionThreshold == nil {
		return def
	}
	return *m.CompletionThreshold
}

// CloneNodes returns a copy of the node slice that a session may mutate.
func (m *Model) CloneNodes() []Node {
	out := make([]Node, len(m.Nodes))
	copy(out, m.Nodes)
	return out
}

func (m *Model) lookup() *index {
	m.indexOnce.Do(func() { m.index = buildIndex(m) })
	return m.index
}

func buildIndex(m *Model) *index {
	ix := &index{
		nodes:    make(map[string]int, len(m.Nodes)),
		solution: make(map[Edge]int, len(m.Solution)),
		wrong:    make(map[Edge]int, len(m.WrongConnections)),
	}
	for i, n := range m.Nodes {
		if _, dup := ix.nodes[n.ID]; !dup {
			ix.nodes[n.ID] = i
		}
	}
	for i, s := range m.Solution {
		if _, dup := ix.solution[s.Edge()]; !dup {
			ix.solution[s.Edge()] = i
		}
	}
	for i, w := range m.WrongConnections {
		if _, dup := ix.wrong[w.Edge()]; !dup {
			ix.wrong[w.Edge()] = i
		}
	}
	return ix
}
