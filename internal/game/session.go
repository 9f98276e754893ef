// Package game implements the connection puzzle state machine:
// Instructions → Active → Completed, driven by synchronous learner commands.
package game

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/conceptlink/internal/analytics"
	"github.com/abhisek/conceptlink/internal/eventlog"
	"github.com/abhisek/conceptlink/internal/graph"
	"github.com/abhisek/conceptlink/internal/hints"
	"github.com/abhisek/conceptlink/internal/scoring"
)

// ErrSelfConnection rejects an edge from a node to itself.
var ErrSelfConnection = errors.New("cannot connect a node to itself")

// Config holds gameplay settings.
type Config struct {
	// Threshold overrides the model's completion threshold when non-zero.
	Threshold float64
	MaxHints  int
	Scoring   scoring.Config
	Analytics analytics.Config
}

// DefaultConfig returns the stock gameplay settings.
func DefaultConfig() Config {
	return Config{
		MaxHints:  hints.DefaultMaxHints,
		Scoring:   scoring.DefaultConfig(),
		Analytics: analytics.DefaultConfig(),
	}
}

// Option configures a Session.
type Option func(*Session)

// WithConfig replaces the default gameplay settings.
func WithConfig(cfg Config) Option {
	return func(s *Session) { s.cfg = cfg }
}

// WithClock sets the time source used for event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.clock = now }
}

// WithSessionID sets the session identifier instead of a random UUID.
func WithSessionID(id string) Option {
	return func(s *Session) { s.id = id }
}

// WithObserver subscribes o before the session is returned.
func WithObserver(o Observer) Option {
	return func(s *Session) { s.observers = append(s.observers, o) }
}

// Session is one learner's playthrough of one model. It is not safe for
// concurrent use; a single goroutine owns it.
type Session struct {
	model     *graph.Model
	cfg       Config
	scoring   scoring.Config
	threshold float64
	dispenser *hints.Dispenser
	clock     func() time.Time
	observers []Observer

	id          string
	phase       Phase
	startedAt   time.Time
	completedAt time.Time
	completedBy CompletionReason
	score       int
	counts      eventlog.Counts
	log         eventlog.Log
	nodes       []graph.Node
	profile     *analytics.Profile
}

// New validates the model and returns a session in the Instructions phase.
func New(model *graph.Model, opts ...Option) (*Session, error) {
	if model == nil {
		return nil, errors.New("nil game model")
	}
	if err := model.Validate(); err != nil {
		return nil, err
	}

	s := &Session{
		model: model,
		cfg:   DefaultConfig(),
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.scoring = s.cfg.Scoring.WithOverrides(model.Scoring)
	if err := s.scoring.Validate(); err != nil {
		return nil, fmt.Errorf("model %s: %w", model.ID, err)
	}
	s.threshold = model.Threshold(DefaultThreshold)
	if s.cfg.Threshold != 0 {
		s.threshold = s.cfg.Threshold
	}
	if err := validateThreshold(s.threshold); err != nil {
		return nil, fmt.Errorf("model %s: %w", model.ID, err)
	}
	if s.cfg.MaxHints < 0 {
		s.cfg.MaxHints = 0
	}
	s.dispenser = hints.New(s.cfg.MaxHints, model.Hints)
	s.init()
	return s, nil
}

func (s *Session) init() {
	if s.id == "" {
		s.id = uuid.New().String()
	}
	s.phase = PhaseInstructions
	s.nodes = s.model.CloneNodes()
}

// Reset returns a brand-new session over the same model, configuration and
// observers. The receiver keeps its log and profile.
func (s *Session) Reset() *Session {
	fresh := &Session{
		model:     s.model,
		cfg:       s.cfg,
		scoring:   s.scoring,
		threshold: s.threshold,
		dispenser: s.dispenser,
		clock:     s.clock,
		observers: append([]Observer(nil), s.observers...),
	}
	fresh.init()
	return fresh
}

// Subscribe registers an observer for subsequent changes.
func (s *Session) Subscribe(o Observer) {
	s.observers = append(s.observers, o)
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Model returns the game model being played.
func (s *Session) Model() *graph.Model { return s.model }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Score returns the running score.
func (s *Session) Score() int { return s.score }

// Threshold returns the effective completion threshold.
func (s *Session) Threshold() float64 { return s.threshold }

// Start moves the session from Instructions to Active.
func (s *Session) Start() error {
	if s.phase != PhaseInstructions {
		return &TransitionError{Op: "start", Phase: s.phase}
	}
	s.phase = PhaseActive
	s.startedAt = s.clock()
	s.notify(Change{Kind: ChangeStarted, At: s.startedAt})
	return nil
}

// AttemptStatus is the outcome of a connection attempt.
type AttemptStatus string

const (
	Accepted      AttemptStatus = "accepted"
	AlreadySolved AttemptStatus = "already_solved"
	Rejected      AttemptStatus = "rejected"
)

// AttemptResult describes a connection attempt. Classification, Delta and
// Feedback are meaningful only when Status is Accepted.
type AttemptResult struct {
	Status         AttemptStatus
	Classification graph.Classification
	Delta          int
	Score          int
	Feedback       string
	Completed      bool
	Err            error
}

// AttemptConnection classifies and records the edge source→target.
// Re-attempting a solved edge is reported as AlreadySolved and changes
// nothing; a repeated wrong edge is recorded and penalised again.
func (s *Session) AttemptConnection(source, target string) AttemptResult {
	if s.phase != PhaseActive {
		return s.reject(&TransitionError{Op: "attempt connection", Phase: s.phase})
	}
	if err := s.checkNode(source); err != nil {
		return s.reject(err)
	}
	if err := s.checkNode(target); err != nil {
		return s.reject(err)
	}
	if source == target {
		return s.reject(ErrSelfConnection)
	}

	edge := graph.Edge{Source: source, Target: target}
	class := s.model.Evaluate(source, target)
	if class == graph.Correct && s.log.IsSolved(edge) {
		return AttemptResult{Status: AlreadySolved, Classification: class, Score: s.score}
	}

	before := s.score
	s.record(eventlog.Event{
		Kind:       eventlog.KindConnectionAttempted,
		Connection: &eventlog.Connection{Source: source, Target: target, Classification: class},
	})

	res := AttemptResult{
		Status:         Accepted,
		Classification: class,
		Delta:          s.score - before,
		Score:          s.score,
	}
	switch class {
	case graph.Correct:
		if entry, ok := s.model.SolutionFor(edge); ok {
			res.Feedback = entry.Rationale
		}
		if ThresholdMet(s.counts.Correct, len(s.model.Solution), s.threshold) {
			s.complete(CompletedByThreshold)
			res.Completed = true
		}
	case graph.Wrong:
		if w, ok := s.model.WrongFor(edge); ok {
			res.Feedback = w.Explanation
		}
	}
	return res
}

func (s *Session) reject(err error) AttemptResult {
	return AttemptResult{Status: Rejected, Score: s.score, Err: err}
}

func (s *Session) checkNode(id string) error {
	n, ok := s.model.Node(id)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	if n.Locked {
		return fmt.Errorf("%w: %q", ErrNodeLocked, id)
	}
	return nil
}

// InspectNode marks a node revealed and records the inspection. It has no
// effect on the score.
func (s *Session) InspectNode(id string) error {
	if s.phase != PhaseActive {
		return &TransitionError{Op: "inspect node", Phase: s.phase}
	}
	if err := s.checkNode(id); err != nil {
		return err
	}
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			s.nodes[i].Revealed = true
			break
		}
	}
	s.record(eventlog.Event{
		Kind:       eventlog.KindNodeInspected,
		Inspection: &eventlog.Inspection{NodeID: id},
	})
	return nil
}

// HintRejected is the hint status returned outside the Active phase.
const HintRejected hints.Status = "rejected"

// HintResult describes a hint request.
type HintResult struct {
	Status    hints.Status
	Index     int
	Edge      graph.Edge
	Text      string
	Repeat    bool
	Remaining int
	Score     int
	Err       error
}

// RequestHint reveals one unsolved solution edge if hints remain.
// Exhaustion is an ordinary result, not an error.
func (s *Session) RequestHint() HintResult {
	if s.phase != PhaseActive {
		return HintResult{
			Status: HintRejected,
			Score:  s.score,
			Err:    &TransitionError{Op: "request hint", Phase: s.phase},
		}
	}

	r := s.dispenser.Next(s.log.Events(), s.model.Solution)
	if r.Status != hints.Granted {
		return HintResult{Status: r.Status, Remaining: s.hintsRemaining(), Score: s.score}
	}

	s.record(eventlog.Event{
		Kind: eventlog.KindHintUsed,
		Hint: &eventlog.Hint{Index: r.Index, Source: r.Entry.Source, Target: r.Entry.Target},
	})
	return HintResult{
		Status:    hints.Granted,
		Index:     r.Index,
		Edge:      r.Entry.Edge(),
		Text:      r.Text,
		Repeat:    r.Repeat,
		Remaining: s.hintsRemaining(),
		Score:     s.score,
	}
}

func (s *Session) hintsRemaining() int {
	return max(0, s.cfg.MaxHints-s.counts.Hints)
}

// Finish ends an active session early regardless of the threshold.
func (s *Session) Finish() error {
	if s.phase != PhaseActive {
		return &TransitionError{Op: "finish", Phase: s.phase}
	}
	s.complete(CompletedByFinish)
	return nil
}

// Profile returns the performance profile of a completed session. It is
// computed on first use and the same value is returned afterwards.
func (s *Session) Profile() (analytics.Profile, error) {
	if s.phase != PhaseCompleted {
		return analytics.Profile{}, &TransitionError{Op: "profile", Phase: s.phase}
	}
	if s.profile == nil {
		p := s.computeProfile()
		s.profile = &p
	}
	p := *s.profile
	p.Mistakes = append([]analytics.Mistake(nil), s.profile.Mistakes...)
	return p, nil
}

func (s *Session) computeProfile() analytics.Profile {
	elapsed := s.elapsed()
	p := analytics.Aggregate(analytics.Input{
		Log:            s.log.Events(),
		Solution:       s.model.Solution,
		Wrong:          s.model.WrongConnections,
		ElapsedSeconds: elapsed.Seconds(),
		HintsUsed:      s.counts.Hints,
	}, s.cfg.Analytics)
	p.CompletionScore = scoring.CompletionScore(scoring.CompletionInput{
		Correct:   s.counts.Correct,
		Incorrect: s.counts.Incorrect,
		Required:  len(s.model.Solution),
		Elapsed:   elapsed,
		HintsUsed: s.counts.Hints,
		MaxHints:  s.cfg.MaxHints,
	}, s.scoring)
	return p
}

// State returns a deep copy of the session state.
func (s *Session) State() State {
	nodes := make([]graph.Node, len(s.nodes))
	copy(nodes, s.nodes)
	return State{
		SessionID:        s.id,
		ModelID:          s.model.ID,
		Phase:            s.phase,
		StartedAt:        s.startedAt,
		CompletedAt:      s.completedAt,
		CompletedBy:      s.completedBy,
		Score:            s.score,
		HintsUsed:        s.counts.Hints,
		HintsRemaining:   s.hintsRemaining(),
		Required:         len(s.model.Solution),
		RequiredToFinish: RequiredCorrect(len(s.model.Solution), s.threshold),
		Counts:           s.counts,
		Nodes:            nodes,
		Log:              s.log.Events(),
	}
}

// record appends e, recomputes the derived counts and score, and notifies
// observers.
func (s *Session) record(e eventlog.Event) {
	now := s.clock()
	if now.Before(s.startedAt) {
		now = s.startedAt
	}
	e = s.log.Append(e, now)
	s.counts = s.log.Counts()
	s.score = scoring.Apply(s.score, e, s.model, s.scoring)
	ev := e.Clone()
	s.notify(Change{Kind: ChangeEvent, At: e.Timestamp, Event: &ev})
}

func (s *Session) complete(reason CompletionReason) {
	now := s.clock()
	if last, ok := s.log.Last(); ok && now.Before(last.Timestamp) {
		now = last.Timestamp
	}
	if now.Before(s.startedAt) {
		now = s.startedAt
	}
	s.phase = PhaseCompleted
	s.completedAt = now
	s.completedBy = reason

	if len(s.observers) == 0 {
		return
	}
	p, _ := s.Profile()
	s.notify(Change{Kind: ChangeCompleted, At: now, Summary: &Summary{
		Reason:          reason,
		StartedAt:       s.startedAt,
		CompletedAt:     now,
		ElapsedSeconds:  s.elapsed().Seconds(),
		Score:           s.score,
		Counts:          s.counts,
		HintsUsed:       s.counts.Hints,
		Interactions:    s.log.Len(),
		CompletionScore: p.CompletionScore,
		Profile:         p,
		History:         s.log.Events(),
	}})
}

func (s *Session) elapsed() time.Duration {
	if s.completedAt.Before(s.startedAt) {
		return 0
	}
	return s.completedAt.Sub(s.startedAt)
}

func (s *Session) notify(c Change) {
	c.SessionID = s.id
	c.ModelID = s.model.ID
	c.Phase = s.phase
	c.Score = s.score
	for _, o := range s.observers {
		o.Observe(c)
	}
}
