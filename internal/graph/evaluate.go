package graph

// Classification is the evaluator's verdict on a drawn edge.
type Classification string

const (
	Correct Classification = "correct"
	Wrong   Classification = "wrong"
	Neutral Classification = "neutral"
)

// Evaluate classifies the directed edge source→target against the
// reference solution and the wrong-connection catalog. It has no side
// effects; (A,B) and (B,A) are evaluated independently.
func Evaluate(source, target string, solution SolutionSet, wrong WrongCatalog) Classification {
	for _, s := range solution {
		if s.Source == source && s.Target == target {
			return Correct
		}
	}
	for _, w := range wrong {
		if w.Source == source && w.Target == target {
			return Wrong
		}
	}
	return Neutral
}

// Evaluate is the indexed form of the package-level Evaluate.
func (m *Model) Evaluate(source, target string) Classification {
	e := Edge{Source: source, Target: target}
	if _, ok := m.SolutionFor(e); ok {
		return Correct
	}
	if _, ok := m.WrongFor(e); ok {
		return Wrong
	}
	return Neutral
}
