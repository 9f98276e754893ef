package game

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/conceptlink/internal/analytics"
	"github.com/abhisek/conceptlink/internal/eventlog"
	"github.com/abhisek/conceptlink/internal/graph"
	"github.com/abhisek/conceptlink/internal/hints"
	"github.com/abhisek/conceptlink/internal/scoring"
)

type fakeClock struct{ t time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func threshold(v float64) *float64 { return &v }

// twoEdgeModel has solution n1→n2, n2→n3 and known wrong n1→n3.
func twoEdgeModel(th *float64) *graph.Model {
	return &graph.Model{
		ID:      "supply-chain",
		Title:   "Supply chain shock",
		Version: "v1.0.0",
		Nodes: []graph.Node{
			{ID: "n1", Label: "Port closure", Kind: graph.KindScenario},
			{ID: "n2", Label: "Shipping delays", Kind: graph.KindDecision},
			{ID: "n3", Label: "Price increase", Kind: graph.KindOutcome},
			{ID: "n4", Label: "Locked note", Kind: graph.KindInformation, Locked: true},
		},
		Solution: graph.SolutionSet{
			{Source: "n1", Target: "n2", Points: 15, Rationale: "Closures delay shipments."},
			{Source: "n2", Target: "n3", Points: 20, Rationale: "Delays raise prices."},
		},
		WrongConnections: graph.WrongCatalog{
			{Source: "n1", Target: "n3", Explanation: "The effect runs through shipping.", Penalty: 5},
		},
		CompletionThreshold: th,
	}
}

func startedSession(t *testing.T, m *graph.Model, opts ...Option) (*Session, *fakeClock) {
	t.Helper()
	clock := newFakeClock()
	opts = append([]Option{WithClock(clock.Now), WithSessionID("s-1")}, opts...)
	s, err := New(m, opts...)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	return s, clock
}

func TestNew_RejectsMalformedModel(t *testing.T) {
	m := twoEdgeModel(nil)
	m.Solution = append(m.Solution, graph.SolutionEntry{Source: "n1", Target: "ghost"})

	_, err := New(m)
	var verr *graph.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestNew_RejectsBadThreshold(t *testing.T) {
	for _, th := range []float64{0, -0.1, 1.5} {
		_, err := New(twoEdgeModel(threshold(th)))
		assert.Error(t, err, "threshold %v", th)
	}

	cfg := DefaultConfig()
	cfg.Threshold = 2
	_, err := New(twoEdgeModel(nil), WithConfig(cfg))
	assert.Error(t, err)
}

func TestScenarioA_SingleCorrectCompletes(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(threshold(0.5)))

	res := s.AttemptConnection("n1", "n2")
	assert.Equal(t, Accepted, res.Status)
	assert.Equal(t, graph.Correct, res.Classification)
	assert.Equal(t, 10, res.Score)
	assert.True(t, res.Completed)
	assert.Equal(t, PhaseCompleted, s.Phase())
	assert.Equal(t, CompletedByThreshold, s.State().CompletedBy)
}

func TestScenarioB_WrongClampsAtZero(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(threshold(0.5)))

	res := s.AttemptConnection("n1", "n3")
	assert.Equal(t, graph.Wrong, res.Classification)
	assert.Equal(t, 0, res.Score)
	assert.Equal(t, "The effect runs through shipping.", res.Feedback)
	assert.Equal(t, PhaseActive, s.Phase())
}

func TestScenarioC_HintsOnly(t *testing.T) {
	s, clock := startedSession(t, twoEdgeModel(nil))
	for i := 0; i < 3; i++ {
		clock.Advance(10 * time.Second)
		r := s.RequestHint()
		require.Equal(t, hints.Granted, r.Status, "hint %d", i)
	}
	require.NoError(t, s.Finish())

	p, err := s.Profile()
	require.NoError(t, err)
	assert.InDelta(t, 40, p.Metrics.Metacognition, 1e-9)
}

func TestScenarioD_ImmediateCorrection(t *testing.T) {
	s, clock := startedSession(t, twoEdgeModel(nil))
	s.AttemptConnection("n1", "n3")
	clock.Advance(5 * time.Second)
	s.AttemptConnection("n1", "n2")
	require.NoError(t, s.Finish())

	p, err := s.Profile()
	require.NoError(t, err)
	assert.InDelta(t, 100, p.Metrics.ErrorRecovery, 1e-9)
}

func TestScenarioE_FinishEarly(t *testing.T) {
	s, clock := startedSession(t, twoEdgeModel(nil))

	res := s.AttemptConnection("n1", "n2")
	require.False(t, res.Completed, "0.7 of 2 edges needs both")
	clock.Advance(time.Minute)
	require.NoError(t, s.Finish())

	p, err := s.Profile()
	require.NoError(t, err)
	assert.InDelta(t, 50, p.Metrics.StrategicReasoning, 1e-9)
	assert.Equal(t, CompletedByFinish, s.State().CompletedBy)
}

func TestAttempt_AlreadySolvedIsIdempotent(t *testing.T) {
	m := twoEdgeModel(threshold(1))
	s, _ := startedSession(t, m)

	s.AttemptConnection("n1", "n2")
	before := s.State()

	res := s.AttemptConnection("n1", "n2")
	assert.Equal(t, AlreadySolved, res.Status)
	assert.Equal(t, before.Score, s.Score())
	assert.Equal(t, before.Counts, s.State().Counts)
	assert.Len(t, s.State().Log, len(before.Log))
}

func TestAttempt_RepeatedWrongPenalisedEachTime(t *testing.T) {
	m := twoEdgeModel(threshold(1))
	m.Nodes = append(m.Nodes, graph.Node{ID: "n5", Label: "Extra"})
	m.Solution = append(m.Solution, graph.SolutionEntry{Source: "n3", Target: "n5"})
	s, _ := startedSession(t, m)

	s.AttemptConnection("n1", "n2")
	s.AttemptConnection("n2", "n3")
	require.Equal(t, 20, s.Score())

	for want := 15; want >= 5; want -= 5 {
		res := s.AttemptConnection("n1", "n3")
		require.Equal(t, Accepted, res.Status)
		assert.Equal(t, want, s.Score())
		assert.Equal(t, -5, res.Delta)
	}
	assert.Equal(t, 3, s.State().Counts.Incorrect)
}

func TestAttempt_Rejections(t *testing.T) {
	m := twoEdgeModel(nil)

	s, err := New(m)
	require.NoError(t, err)
	res := s.AttemptConnection("n1", "n2")
	assert.Equal(t, Rejected, res.Status)
	assert.ErrorIs(t, res.Err, ErrInvalidTransition)

	s, _ = startedSession(t, m)
	tests := []struct {
		name     string
		src, dst string
		wantErr  error
	}{
		{"unknown source", "x", "n2", ErrUnknownNode},
		{"unknown target", "n1", "y", ErrUnknownNode},
		{"locked node", "n1", "n4", ErrNodeLocked},
		{"self connection", "n2", "n2", ErrSelfConnection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := s.AttemptConnection(tt.src, tt.dst)
			assert.Equal(t, Rejected, res.Status)
			assert.ErrorIs(t, res.Err, tt.wantErr)
		})
	}
	assert.Zero(t, s.State().Counts.Attempts(), "rejected attempts are not logged")
}

func TestAttempt_NeutralNoScore(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(nil))
	res := s.AttemptConnection("n2", "n1")
	assert.Equal(t, graph.Neutral, res.Classification)
	assert.Zero(t, res.Delta)
	assert.Equal(t, 1, s.State().Counts.Neutral)
}

func TestCountsMatchLog(t *testing.T) {
	m := twoEdgeModel(threshold(1))
	s, clock := startedSession(t, m)

	moves := [][2]string{{"n1", "n3"}, {"n2", "n1"}, {"n1", "n2"}, {"n1", "n3"}, {"n3", "n1"}, {"n2", "n3"}}
	for _, mv := range moves {
		clock.Advance(time.Second)
		s.AttemptConnection(mv[0], mv[1])
		st := s.State()
		assert.Equal(t, eventlog.Tally(st.Log), st.Counts)
		attempts := 0
		for _, e := range st.Log {
			if e.Kind == eventlog.KindConnectionAttempted {
				attempts++
			}
		}
		assert.Equal(t, attempts, st.Counts.Correct+st.Counts.Incorrect+st.Counts.Neutral)
		assert.Equal(t, scoring.Replay(st.Log, m, scoring.DefaultConfig()), st.Score)
	}
}

func TestHints_Bound(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(nil))

	first := s.RequestHint()
	require.Equal(t, hints.Granted, first.Status)
	assert.Equal(t, graph.Edge{Source: "n1", Target: "n2"}, first.Edge)
	assert.Equal(t, "Closures delay shipments.", first.Text)
	assert.Equal(t, 2, first.Remaining)

	second := s.RequestHint()
	assert.Equal(t, graph.Edge{Source: "n2", Target: "n3"}, second.Edge)
	third := s.RequestHint()
	assert.True(t, third.Repeat)

	fourth := s.RequestHint()
	assert.Equal(t, hints.Exhausted, fourth.Status)
	assert.Equal(t, 3, s.State().HintsUsed)
	assert.Equal(t, 0, s.Score())
}

func TestHints_SkipSolvedEdges(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(threshold(1)))
	s.AttemptConnection("n1", "n2")

	r := s.RequestHint()
	require.Equal(t, hints.Granted, r.Status)
	assert.Equal(t, graph.Edge{Source: "n2", Target: "n3"}, r.Edge)
	assert.Equal(t, 7, s.Score())
}

func TestInspectNode(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(nil))

	require.NoError(t, s.InspectNode("n2"))
	assert.ErrorIs(t, s.InspectNode("zz"), ErrUnknownNode)

	st := s.State()
	assert.True(t, st.Nodes[1].Revealed)
	assert.False(t, s.Model().Nodes[1].Revealed, "model content is never mutated")
	assert.Equal(t, 1, st.Counts.Inspected)
	assert.Zero(t, st.Score)
}

func TestCompletedSessionIsFrozen(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(threshold(0.5)))
	s.AttemptConnection("n1", "n2")
	require.Equal(t, PhaseCompleted, s.Phase())

	assert.Equal(t, Rejected, s.AttemptConnection("n2", "n3").Status)
	assert.ErrorIs(t, s.InspectNode("n1"), ErrInvalidTransition)
	assert.Equal(t, HintRejected, s.RequestHint().Status)
	assert.ErrorIs(t, s.Finish(), ErrInvalidTransition)
	assert.ErrorIs(t, s.Start(), ErrInvalidTransition)

	p1, err := s.Profile()
	require.NoError(t, err)
	p2, err := s.Profile()
	require.NoError(t, err)
	assert.Equal(t, p1, p2)
	assert.Equal(t, 1, s.State().Counts.Correct)
}

func TestProfileBeforeCompletion(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(nil))
	_, err := s.Profile()
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, PhaseActive, terr.Phase)
}

func TestStartTwice(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(nil))
	err := s.Start()
	assert.True(t, errors.Is(err, ErrInvalidTransition))
	assert.Equal(t, PhaseActive, s.Phase())
}

func TestReset(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(threshold(0.5)))
	s.AttemptConnection("n1", "n2")
	old, err := s.Profile()
	require.NoError(t, err)

	fresh := s.Reset()
	assert.NotEqual(t, s.ID(), fresh.ID())
	assert.Equal(t, PhaseInstructions, fresh.Phase())
	assert.Empty(t, fresh.State().Log)
	assert.Zero(t, fresh.Score())

	again, err := s.Profile()
	require.NoError(t, err)
	assert.Equal(t, old, again)
	assert.Len(t, s.State().Log, 1)
}

func TestStateIsDeepCopy(t *testing.T) {
	s, _ := startedSession(t, twoEdgeModel(nil))
	s.AttemptConnection("n1", "n3")

	st := s.State()
	st.Nodes[0].Label = "changed"
	st.Log[0].Connection.Classification = graph.Correct

	again := s.State()
	assert.Equal(t, "Port closure", again.Nodes[0].Label)
	assert.Equal(t, graph.Wrong, again.Log[0].Connection.Classification)
}

func TestTimestampsNeverGoBackwards(t *testing.T) {
	s, clock := startedSession(t, twoEdgeModel(nil))
	clock.Advance(time.Minute)
	s.AttemptConnection("n2", "n1")
	clock.Advance(-30 * time.Second)
	s.AttemptConnection("n3", "n1")
	clock.Advance(-time.Hour)
	require.NoError(t, s.Finish())

	st := s.State()
	for i := 1; i < len(st.Log); i++ {
		assert.False(t, st.Log[i].Timestamp.Before(st.Log[i-1].Timestamp))
		assert.Equal(t, int64(i+1), st.Log[i].Seq)
	}
	assert.False(t, st.CompletedAt.Before(st.Log[len(st.Log)-1].Timestamp))
	assert.GreaterOrEqual(t, st.Elapsed(clock.Now()), time.Duration(0))
}

func TestObservers(t *testing.T) {
	var changes []Change
	clock := newFakeClock()
	s, err := New(twoEdgeModel(threshold(0.5)),
		WithClock(clock.Now),
		WithObserver(ObserverFunc(func(c Change) { changes = append(changes, c) })),
	)
	require.NoError(t, err)

	require.NoError(t, s.Start())
	require.NoError(t, s.InspectNode("n1"))
	clock.Advance(90 * time.Second)
	s.AttemptConnection("n1", "n2")

	require.Len(t, changes, 4)
	assert.Equal(t, ChangeStarted, changes[0].Kind)
	assert.Equal(t, ChangeEvent, changes[1].Kind)
	assert.Equal(t, eventlog.KindNodeInspected, changes[1].Event.Kind)
	assert.Equal(t, ChangeEvent, changes[2].Kind)
	assert.Equal(t, 10, changes[2].Score)

	done := changes[3]
	assert.Equal(t, ChangeCompleted, done.Kind)
	require.NotNil(t, done.Summary)
	assert.Equal(t, s.ID(), done.SessionID)
	assert.InDelta(t, 90, done.Summary.ElapsedSeconds, 1e-9)
	assert.Equal(t, 2, done.Summary.Interactions)
	assert.Len(t, done.Summary.History, 2)

	p, err := s.Profile()
	require.NoError(t, err)
	assert.Equal(t, p, done.Summary.Profile)
	assert.Equal(t, p.CompletionScore, done.Summary.CompletionScore)

	fresh := s.Reset()
	require.NoError(t, fresh.Start())
	assert.Len(t, changes, 5, "observers carry over to a reset session")

	var late []Change
	fresh.Subscribe(ObserverFunc(func(c Change) { late = append(late, c) }))
	require.NoError(t, fresh.InspectNode("n2"))
	assert.Len(t, changes, 6)
	require.Len(t, late, 1)
	assert.Equal(t, ChangeEvent, late[0].Kind)
}

func TestWeightedScoringFromModel(t *testing.T) {
	m := twoEdgeModel(threshold(1))
	m.Scoring = &graph.ScoringOverrides{Mode: "weighted"}
	s, _ := startedSession(t, m)

	s.AttemptConnection("n1", "n2")
	assert.Equal(t, 15, s.Score())
	s.AttemptConnection("n1", "n3")
	assert.Equal(t, 10, s.Score())
}

func TestRequiredCorrect(t *testing.T) {
	tests := []struct {
		required  int
		threshold float64
		want      int
	}{
		{2, 0.5, 1},
		{2, 0.7, 2},
		{10, 0.7, 7},
		{3, 1, 3},
		{0, 0.7, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, RequiredCorrect(tt.required, tt.threshold), "%d×%v", tt.required, tt.threshold)
	}
	assert.False(t, ThresholdMet(0, 0, 0.7), "empty solution never auto-completes")
	assert.True(t, ThresholdMet(1, 0, 0.7))
}

func TestProfileCompletionScore(t *testing.T) {
	s, clock := startedSession(t, twoEdgeModel(nil))
	s.AttemptConnection("n1", "n2")
	clock.Advance(time.Minute)
	s.AttemptConnection("n2", "n3")
	require.Equal(t, PhaseCompleted, s.Phase())

	p, err := s.Profile()
	require.NoError(t, err)
	assert.Equal(t, 100, p.CompletionScore)
	assert.Equal(t, analytics.Excellent, p.Overall)
}

// Sessions built from one loaded model run independently; run with -race.
func TestSessionsShareModelConcurrently(t *testing.T) {
	m := twoEdgeModel(nil)

	var g errgroup.Group
	for range 8 {
		g.Go(func() error {
			s, err := New(m)
			if err != nil {
				return err
			}
			if err := s.Start(); err != nil {
				return err
			}
			res := s.AttemptConnection("n1", "n2")
			if res.Classification != graph.Correct {
				return fmt.Errorf("n1→n2 classified %s", res.Classification)
			}
			s.Reset()
			return nil
		})
	}
	require.NoError(t, g.Wait())

	s, _ := startedSession(t, m)
	assert.Equal(t, graph.Wrong, s.AttemptConnection("n1", "n3").Classification)
}
