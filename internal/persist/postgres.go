package persist

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	// Postgres driver.
	_ "github.com/lib/pq"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS conceptlink_records (
		id         UUID PRIMARY KEY,
		kind       TEXT NOT NULL,
		session_id TEXT NOT NULL,
		model_id   TEXT NOT NULL,
		ts         TIMESTAMPTZ NOT NULL,
		score      INTEGER NOT NULL,
		payload    JSONB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_conceptlink_records_session ON conceptlink_records(session_id, ts);
	CREATE INDEX IF NOT EXISTS idx_conceptlink_records_kind ON conceptlink_records(kind);
`

// PostgresSink stores every record as a JSONB row, for central collection
// of sessions played on many machines.
type PostgresSink struct {
	db *sql.DB
}

// OpenPostgres connects to dsn, verifies the connection and creates the
// records table if needed.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSink, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create records table: %w", err)
	}
	return &PostgresSink{db: db}, nil
}

func (p *PostgresSink) Name() string { return "postgres" }

func (p *PostgresSink) Write(ctx context.Context, rec Record) error {
	payload, err := recordPayload(rec)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO conceptlink_records (id, kind, session_id, model_id, ts, score, payload)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING`,
		rec.ID.String(), string(rec.Kind), rec.SessionID, rec.ModelID, rec.At, rec.Score, payload,
	)
	if err != nil {
		return fmt.Errorf("insert record: %w", err)
	}
	return nil
}

func (p *PostgresSink) Close() error { return p.db.Close() }

// recordPayload is the JSON document stored for rec: the event for
// interaction records, the summary for analytics records.
func recordPayload(rec Record) ([]byte, error) {
	var v any
	switch rec.Kind {
	case KindInteraction:
		v = rec.Event
	case KindAnalytics:
		v = rec.Summary
	default:
		return nil, fmt.Errorf("unknown record kind %q", rec.Kind)
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", rec.Kind, err)
	}
	return b, nil
}
