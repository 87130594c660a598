package usage

import "github.com/kailas-cloud/catalogd/internal/domain"

// BudgetReader provides read-only access to the expander token budget.
type BudgetReader interface {
	Usage() domain.TokenUsage
}
