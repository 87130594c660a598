package expansion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/metrics"
)

// BudgetedExpander wraps a Provider with token budget enforcement and exposes
// the plain term list the search service consumes. Transport metrics are
// recorded by the provider; this layer owns budget accounting only.
type BudgetedExpander struct {
	inner    Provider
	provider string
	model    string
	budget   BudgetChecker
	logger   *zap.Logger
}

// NewBudgetedExpander wraps inner. budget may be nil (unlimited).
func NewBudgetedExpander(
	inner Provider, provider, model string,
	budget BudgetChecker, logger *zap.Logger,
) *BudgetedExpander {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BudgetedExpander{
		inner:    inner,
		provider: provider,
		model:    model,
		budget:   budget,
		logger:   logger,
	}
}

// Expand checks the budget, asks the provider and records billed tokens.
// Tokens are recorded even when the provider answer could not be used.
func (e *BudgetedExpander) Expand(ctx context.Context, query string) ([]string, error) {
	if e.budget != nil {
		if err := e.budget.Check(ctx); err != nil {
			e.logger.Warn("Expander budget exhausted",
				zap.String("provider", e.provider),
				zap.String("model", e.model),
				zap.Error(err),
			)
			return nil, fmt.Errorf("budget check: %w", err)
		}
	}

	start := time.Now()
	res, err := e.inner.Expand(ctx, query)
	duration := time.Since(start)

	e.record(ctx, int64(res.TotalTokens))

	if err != nil {
		e.logger.Warn("Expander request failed",
			zap.String("provider", e.provider),
			zap.String("model", e.model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("expand: %w", err)
	}

	e.logger.Debug("Expander request completed",
		zap.String("provider", e.provider),
		zap.String("model", e.model),
		zap.Duration("duration", duration),
		zap.Int("terms", len(res.Terms)),
		zap.Int("prompt_tokens", res.PromptTokens),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res.Terms, nil
}

func (e *BudgetedExpander) record(ctx context.Context, tokens int64) {
	if e.budget == nil || tokens <= 0 {
		return
	}
	e.budget.Record(ctx, tokens)
	u := e.budget.Usage()
	remaining := metrics.ExpanderBudgetTokensRemaining
	remaining.WithLabelValues(e.provider, "daily").Set(float64(u.RemainingDaily()))
	remaining.WithLabelValues(e.provider, "monthly").Set(float64(u.RemainingMonthly()))
}
