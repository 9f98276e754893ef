package store

import (
	"context"
	"database/sql"
	"fmt"
)

// Every table carries a sequence column drawn from the shared counter so
// rows can be ordered across tables.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS interaction_events (
		sequence       INTEGER NOT NULL UNIQUE,
		session_id     TEXT    NOT NULL,
		model_id       TEXT    NOT NULL,
		event_seq      INTEGER NOT NULL,
		kind           TEXT    NOT NULL,
		timestamp      DATETIME NOT NULL,
		source         TEXT    NOT NULL DEFAULT '',
		target         TEXT    NOT NULL DEFAULT '',
		classification TEXT    NOT NULL DEFAULT '',
		node_id        TEXT    NOT NULL DEFAULT '',
		hint_index     INTEGER NOT NULL DEFAULT -1,
		score          INTEGER NOT NULL,
		UNIQUE (session_id, event_seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_interaction_events_session ON interaction_events (session_id, event_seq)`,
	`CREATE TABLE IF NOT EXISTS session_results (
		sequence         INTEGER NOT NULL UNIQUE,
		session_id       TEXT    PRIMARY KEY,
		model_id         TEXT    NOT NULL,
		reason           TEXT    NOT NULL,
		started_at       DATETIME NOT NULL,
		completed_at     DATETIME NOT NULL,
		elapsed_seconds  REAL    NOT NULL,
		score            INTEGER NOT NULL,
		correct          INTEGER NOT NULL,
		incorrect        INTEGER NOT NULL,
		neutral          INTEGER NOT NULL,
		hints_used       INTEGER NOT NULL,
		interactions     INTEGER NOT NULL,
		completion_score INTEGER NOT NULL,
		overall          TEXT    NOT NULL,
		top_skill        TEXT    NOT NULL,
		focus_area       TEXT    NOT NULL,
		profile          TEXT    NOT NULL,
		history          TEXT    NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_session_results_completed ON session_results (completed_at)`,
	`CREATE TABLE IF NOT EXISTS llm_requests (
		sequence      INTEGER NOT NULL UNIQUE,
		timestamp     DATETIME NOT NULL,
		provider      TEXT    NOT NULL,
		model         TEXT    NOT NULL,
		purpose       TEXT    NOT NULL,
		input_tokens  INTEGER NOT NULL,
		output_tokens INTEGER NOT NULL,
		cost_usd      REAL    NOT NULL,
		latency_ms    INTEGER NOT NULL,
		success       BOOLEAN NOT NULL,
		error_message TEXT    NOT NULL DEFAULT ''
	)`,
}

func migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration: %w", err)
		}
	}
	return nil
}
