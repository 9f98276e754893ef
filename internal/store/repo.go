package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/abhisek/conceptlink/internal/analytics"
	"github.com/abhisek/conceptlink/internal/eventlog"
	"github.com/abhisek/conceptlink/internal/llm"
)

// QueryOpts configures queries with filtering and pagination.
type QueryOpts struct {
	Limit  int       // max results (0 = unlimited)
	After  int64     // sequence > After
	Before int64     // sequence < Before
	From   time.Time // timestamp >= From
	To     time.Time // timestamp <= To
}

// InteractionData is one persisted interaction event with the session
// context it happened in.
type InteractionData struct {
	SessionID string
	ModelID   string
	Score     int
	Event     eventlog.Event
}

// StoredInteraction is an InteractionData read back with its global sequence.
type StoredInteraction struct {
	Sequence int64
	InteractionData
}

// ResultData is the analytics row written once per completed session.
type ResultData struct {
	SessionID       string
	ModelID         string
	Reason          string
	StartedAt       time.Time
	CompletedAt     time.Time
	ElapsedSeconds  float64
	Score           int
	Counts          eventlog.Counts
	HintsUsed       int
	Interactions    int
	CompletionScore int
	Profile         analytics.Profile
	History         []eventlog.Event
}

// StoredResult is a ResultData read back with its global sequence.
type StoredResult struct {
	Sequence int64
	ResultData
}

// LLMUsageTotals aggregates the llm_requests table.
type LLMUsageTotals struct {
	Requests     int
	Failures     int
	InputTokens  int
	OutputTokens int
	CostUSD      float64
}

// EventRepo provides append and query access to persisted rows.
type EventRepo interface {
	// AppendInteraction records one interaction event. Appending the same
	// (session, event seq) twice is a no-op.
	AppendInteraction(ctx context.Context, data InteractionData) error

	// Interactions returns a session's events in log order.
	Interactions(ctx context.Context, sessionID string, opts QueryOpts) ([]StoredInteraction, error)

	// SaveResult records the analytics row of a completed session.
	SaveResult(ctx context.Context, data ResultData) error

	// Result returns one session's analytics row, or nil if none exists.
	Result(ctx context.Context, sessionID string) (*StoredResult, error)

	// RecentResults returns completed sessions, newest first.
	RecentResults(ctx context.Context, opts QueryOpts) ([]StoredResult, error)

	// RecordLLMUsage records an LLM API call.
	RecordLLMUsage(ctx context.Context, rec llm.UsageRecord) error

	// LLMUsage totals recorded LLM calls.
	LLMUsage(ctx context.Context) (LLMUsageTotals, error)
}

// eventRepo implements EventRepo with raw SQL and the global sequence counter.
type eventRepo struct {
	db  *sql.DB
	seq *sequencer
}

var _ llm.UsageRecorder = (*eventRepo)(nil)
