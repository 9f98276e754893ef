package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// sequencer hands out the sequence number shared by every table, so rows
// of different kinds can be ordered against each other and exported
// incrementally with "sequence > last seen".
//
// A number is taken in the same transaction as the row that carries it:
// an insert that fails, or that INSERT OR IGNORE skips, leaves no gap.
type sequencer struct {
	mu sync.Mutex
	db *sql.DB
}

func newSequencer(ctx context.Context, db *sql.DB) (*sequencer, error) {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
		id       INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`); err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}
	if _, err := db.ExecContext(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`); err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}
	return &sequencer{db: db}, nil
}

var errNotInserted = errors.New("row not inserted")

// insert runs query with the next sequence number bound as its first
// argument. It reports errNotInserted, and rolls the number back, when the
// statement affected no rows.
func (s *sequencer) insert(ctx context.Context, query string, args ...any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}

	res, err := tx.ExecContext(ctx, query, append([]any{seq}, args...)...)
	if err != nil {
		return 0, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return 0, errNotInserted
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return seq, nil
}

// peek returns the number the next insert will get.
func (s *sequencer) peek(ctx context.Context) (int64, error) {
	var next int64
	err := s.db.QueryRowContext(ctx, `SELECT next_val FROM global_sequence WHERE id = 1`).Scan(&next)
	return next, err
}
