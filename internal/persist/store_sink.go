package persist

import (
	"context"
	"fmt"

	"github.com/abhisek/conceptlink/internal/store"
)

// StoreSink writes records into the local SQLite event store.
type StoreSink struct {
	repo store.EventRepo
}

// NewStoreSink wraps repo. The caller keeps ownership of the store.
func NewStoreSink(repo store.EventRepo) *StoreSink {
	return &StoreSink{repo: repo}
}

func (s *StoreSink) Name() string { return "sqlite" }

func (s *StoreSink) Write(ctx context.Context, rec Record) error {
	switch rec.Kind {
	case KindInteraction:
		return s.repo.AppendInteraction(ctx, store.InteractionData{
			SessionID: rec.SessionID,
			ModelID:   rec.ModelID,
			Score:     rec.Score,
			Event:     *rec.Event,
		})
	case KindAnalytics:
		sum := rec.Summary
		return s.repo.SaveResult(ctx, store.ResultData{
			SessionID:       rec.SessionID,
			ModelID:         rec.ModelID,
			Reason:          string(sum.Reason),
			StartedAt:       sum.StartedAt,
			CompletedAt:     sum.CompletedAt,
			ElapsedSeconds:  sum.ElapsedSeconds,
			Score:           sum.Score,
			Counts:          sum.Counts,
			HintsUsed:       sum.HintsUsed,
			Interactions:    sum.Interactions,
			CompletionScore: sum.CompletionScore,
			Profile:         sum.Profile,
			History:         sum.History,
		})
	}
	return fmt.Errorf("unknown record kind %q", rec.Kind)
}

// Close is a no-op; the store outlives the sink.
func (s *StoreSink) Close() error { return nil }
