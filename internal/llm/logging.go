package llm

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// UsageRecord describes one provider call for accounting. Store implementations
// persist it; a nil recorder skips persistence.
type UsageRecord struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	CostUSD      float64
	LatencyMs    int64
	Success      bool
	ErrorMessage string
}

// UsageRecorder persists UsageRecords.
type UsageRecorder interface {
	RecordLLMUsage(ctx context.Context, rec UsageRecord) error
}

// LoggingProvider is a decorator that logs every request and reports its
// token usage.
type LoggingProvider struct {
	inner  Provider
	logger *zap.Logger
	usage  UsageRecorder
}

// WithLogging wraps a Provider with structured logging and usage accounting.
func WithLogging(p Provider, logger *zap.Logger, usage UsageRecorder) Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoggingProvider{inner: p, logger: logger.Named("llm"), usage: usage}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)

	rec := UsageRecord{
		Provider:  providerName(l.inner),
		Model:     l.inner.ModelID(),
		Purpose:   PurposeFrom(ctx),
		LatencyMs: time.Since(start).Milliseconds(),
		Success:   err == nil,
	}
	if resp != nil {
		rec.Model = resp.Model
		rec.InputTokens = resp.Usage.InputTokens
		rec.OutputTokens = resp.Usage.OutputTokens
		if cost := LookupCost(resp.Model); cost != nil {
			rec.CostUSD = cost.Cost(rec.InputTokens, rec.OutputTokens)
		}
	}

	fields := []zap.Field{
		zap.String("model", rec.Model),
		zap.String("purpose", rec.Purpose),
		zap.Int64("latency_ms", rec.LatencyMs),
		zap.Int("input_tokens", rec.InputTokens),
		zap.Int("output_tokens", rec.OutputTokens),
	}
	if err != nil {
		rec.ErrorMessage = err.Error()
		l.logger.Warn("llm request failed", append(fields, zap.Error(err))...)
	} else {
		l.logger.Debug("llm request", append(fields, zap.Float64("cost_usd", rec.CostUSD))...)
	}

	if l.usage != nil {
		if uerr := l.usage.RecordLLMUsage(ctx, rec); uerr != nil {
			l.logger.Warn("failed to record llm usage", zap.Error(uerr))
		}
	}
	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

// named is implemented by providers that report a vendor name for usage
// records.
type named interface {
	Name() string
}

func providerName(p Provider) string {
	if n, ok := p.(named); ok {
		return n.Name()
	}
	return "unknown"
}
