package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/abhisek/conceptlink/internal/eventlog"
	"github.com/abhisek/conceptlink/internal/graph"
)

func (r *eventRepo) AppendInteraction(ctx context.Context, data InteractionData) error {
	if err := data.Event.Validate(); err != nil {
		return fmt.Errorf("append interaction: %w", err)
	}

	e := data.Event
	var source, target, class, nodeID string
	hintIndex := -1
	switch {
	case e.Connection != nil:
		source, target = e.Connection.Source, e.Connection.Target
		class = string(e.Connection.Classification)
	case e.Inspection != nil:
		nodeID = e.Inspection.NodeID
	case e.Hint != nil:
		source, target = e.Hint.Source, e.Hint.Target
		hintIndex = e.Hint.Index
	}

	_, err := r.seq.insert(ctx, `INSERT OR IGNORE INTO interaction_events
		(sequence, session_id, model_id, event_seq, kind, timestamp, source, target, classification, node_id, hint_index, score)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.SessionID, data.ModelID, e.Seq, string(e.Kind), e.Timestamp.UTC(),
		source, target, class, nodeID, hintIndex, data.Score,
	)
	switch {
	case errors.Is(err, errNotInserted):
		// Already stored; replays are idempotent.
		return nil
	case err != nil:
		return fmt.Errorf("save interaction event: %w", err)
	}
	return nil
}

func (r *eventRepo) Interactions(ctx context.Context, sessionID string, opts QueryOpts) ([]StoredInteraction, error) {
	conds, args := whereOpts([]string{"session_id = ?"}, []any{sessionID}, "timestamp", opts)
	query := buildQuery(`SELECT sequence, session_id, model_id, event_seq, kind, timestamp,
		source, target, classification, node_id, hint_index, score FROM interaction_events`,
		conds, "event_seq ASC", opts.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query interactions: %w", err)
	}
	defer rows.Close()

	var out []StoredInteraction
	for rows.Next() {
		var (
			si                             StoredInteraction
			kind, source, target, class, n string
			hintIndex                      int
		)
		if err := rows.Scan(&si.Sequence, &si.SessionID, &si.ModelID, &si.Event.Seq, &kind,
			&si.Event.Timestamp, &source, &target, &class, &n, &hintIndex, &si.Score); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		si.Event.Kind = eventlog.Kind(kind)
		switch si.Event.Kind {
		case eventlog.KindConnectionAttempted:
			si.Event.Connection = &eventlog.Connection{
				Source: source, Target: target, Classification: graph.Classification(class),
			}
		case eventlog.KindNodeInspected:
			si.Event.Inspection = &eventlog.Inspection{NodeID: n}
		case eventlog.KindHintUsed:
			si.Event.Hint = &eventlog.Hint{Index: hintIndex, Source: source, Target: target}
		}
		out = append(out, si)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}
