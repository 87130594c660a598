package domain

import "time"

// Expansion is one provider answer for a query: the extra terms and the
// tokens the provider billed for producing them.
type Expansion struct {
	Terms        []string
	PromptTokens int
	TotalTokens  int
}

// TokenUsage is a point-in-time view of the expander token budget.
// A zero limit means unlimited.
type TokenUsage struct {
	DailyLimit   int64
	DailyUsed    int64
	MonthlyLimit int64
	MonthlyUsed  int64
	DayStart     time.Time
	MonthStart   time.Time
}

// RemainingDaily returns tokens left today, or -1 when unlimited.
func (u TokenUsage) RemainingDaily() int64 { return remaining(u.DailyLimit, u.DailyUsed) }

// RemainingMonthly returns tokens left this month, or -1 when unlimited.
func (u TokenUsage) RemainingMonthly() int64 { return remaining(u.MonthlyLimit, u.MonthlyUsed) }

// Exhausted reports whether either window is spent.
func (u TokenUsage) Exhausted() bool {
	return u.RemainingDaily() == 0 || u.RemainingMonthly() == 0
}

func remaining(limit, used int64) int64 {
	if limit <= 0 {
		return -1
	}
	return max(limit-used, 0)
}
