package expansion

import (
	"context"

	"github.com/kailas-cloud/catalogd/internal/domain"
)

// Provider is a token-metered expansion backend.
type Provider interface {
	Expand(ctx context.Context, query string) (domain.Expansion, error)
}

// BudgetStore persists token counters so replicas and restarts share them.
// IncrBy must be safe to call repeatedly.
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetChecker enforces the token budget around provider calls.
type BudgetChecker interface {
	Check(ctx context.Context) error
	Record(ctx context.Context, tokens int64)
	Usage() domain.TokenUsage
}
