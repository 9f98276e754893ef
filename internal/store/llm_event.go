package store

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/conceptlink/internal/llm"
)

func (r *eventRepo) RecordLLMUsage(ctx context.Context, rec llm.UsageRecord) error {
	_, err := r.seq.insert(ctx, `INSERT INTO llm_requests
		(sequence, timestamp, provider, model, purpose, input_tokens, output_tokens, cost_usd, latency_ms, success, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().UTC(), rec.Provider, rec.Model, rec.Purpose,
		rec.InputTokens, rec.OutputTokens, rec.CostUSD, rec.LatencyMs, rec.Success, rec.ErrorMessage,
	)
	if err != nil {
		return fmt.Errorf("save LLM request event: %w", err)
	}
	return nil
}

func (r *eventRepo) LLMUsage(ctx context.Context) (LLMUsageTotals, error) {
	var t LLMUsageTotals
	err := r.db.QueryRowContext(ctx, `SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN success THEN 0 ELSE 1 END), 0),
		COALESCE(SUM(input_tokens), 0),
		COALESCE(SUM(output_tokens), 0),
		COALESCE(SUM(cost_usd), 0)
		FROM llm_requests`).Scan(&t.Requests, &t.Failures, &t.InputTokens, &t.OutputTokens, &t.CostUSD)
	if err != nil {
		return t, fmt.Errorf("query LLM usage: %w", err)
	}
	return t, nil
}
