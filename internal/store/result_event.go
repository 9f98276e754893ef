package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

func (r *eventRepo) SaveResult(ctx context.Context, data ResultData) error {
	profile, err := json.Marshal(data.Profile)
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}
	history, err := json.Marshal(data.History)
	if err != nil {
		return fmt.Errorf("marshal history: %w", err)
	}

	_, err = r.seq.insert(ctx, `INSERT OR REPLACE INTO session_results
		(sequence, session_id, model_id, reason, started_at, completed_at, elapsed_seconds, score,
		 correct, incorrect, neutral, hints_used, interactions, completion_score,
		 overall, top_skill, focus_area, profile, history)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		data.SessionID, data.ModelID, data.Reason,
		data.StartedAt.UTC(), data.CompletedAt.UTC(), data.ElapsedSeconds, data.Score,
		data.Counts.Correct, data.Counts.Incorrect, data.Counts.Neutral,
		data.HintsUsed, data.Interactions, data.CompletionScore,
		string(data.Profile.Overall), string(data.Profile.TopSkill), string(data.Profile.FocusArea),
		string(profile), string(history),
	)
	if err != nil {
		return fmt.Errorf("save session result: %w", err)
	}
	return nil
}

const resultColumns = `sequence, session_id, model_id, reason, started_at, completed_at,
	elapsed_seconds, score, correct, incorrect, neutral, hints_used, interactions,
	completion_score, profile, history`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanResult(row rowScanner) (StoredResult, error) {
	var (
		sr               StoredResult
		profile, history string
	)
	err := row.Scan(&sr.Sequence, &sr.SessionID, &sr.ModelID, &sr.Reason, &sr.StartedAt,
		&sr.CompletedAt, &sr.ElapsedSeconds, &sr.Score, &sr.Counts.Correct,
		&sr.Counts.Incorrect, &sr.Counts.Neutral, &sr.HintsUsed, &sr.Interactions,
		&sr.CompletionScore, &profile, &history)
	if err != nil {
		return sr, err
	}
	if err := json.Unmarshal([]byte(profile), &sr.Profile); err != nil {
		return sr, fmt.Errorf("unmarshal profile: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &sr.History); err != nil {
		return sr, fmt.Errorf("unmarshal history: %w", err)
	}
	sr.Counts.Hints = sr.HintsUsed
	return sr, nil
}

func (r *eventRepo) Result(ctx context.Context, sessionID string) (*StoredResult, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+resultColumns+` FROM session_results WHERE session_id = ?`, sessionID)
	sr, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query session result: %w", err)
	}
	return &sr, nil
}

func (r *eventRepo) RecentResults(ctx context.Context, opts QueryOpts) ([]StoredResult, error) {
	conds, args := whereOpts(nil, nil, "completed_at", opts)
	query := buildQuery(`SELECT `+resultColumns+` FROM session_results`,
		conds, "completed_at DESC, sequence DESC", opts.Limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query session results: %w", err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		sr, err := scanResult(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session result: %w", err)
		}
		out = append(out, sr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate session results: %w", err)
	}
	return out, nil
}
