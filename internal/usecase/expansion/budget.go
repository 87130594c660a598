package expansion

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/catalogd/internal/domain"
)

// Action defines behavior when the token budget is spent.
type Action string

const (
	// ActionWarn logs a warning but lets the request through.
	ActionWarn Action = "warn"
	// ActionReject fails the request with domain.ErrExpanderQuotaExceeded.
	ActionReject Action = "reject"
)

const keyPrefix = "catalogd:expander:budget:"

const persistTimeout = 2 * time.Second

// Limits caps token spend per UTC day and month. Zero means unlimited.
type Limits struct {
	Daily   int64
	Monthly int64
	Action  Action
}

// Budget tracks expander tokens in memory with optional write-behind
// persistence. Check never leaves the process.
type Budget struct {
	mu          sync.Mutex
	limits      Limits
	provider    string
	dailyUsed   int64
	monthlyUsed int64
	dayStart    time.Time
	monthStart  time.Time
	store       BudgetStore
	now         func() time.Time
	logger      *zap.Logger
}

// NewBudget creates a budget for provider.
func NewBudget(provider string, limits Limits, logger *zap.Logger) *Budget {
	if logger == nil {
		logger = zap.NewNop()
	}
	if limits.Action == "" {
		limits.Action = ActionWarn
	}
	b := &Budget{
		limits:   limits,
		provider: provider,
		now:      time.Now,
		logger:   logger,
	}
	b.dayStart, b.monthStart = windows(b.now())
	return b
}

// WithClock replaces time.Now (tests). Call before WithStore.
func (b *Budget) WithClock(now func() time.Time) *Budget {
	b.now = now
	b.dayStart, b.monthStart = windows(now())
	return b
}

// WithStore attaches persistence and loads the counters of the current windows.
func (b *Budget) WithStore(ctx context.Context, store BudgetStore) *Budget {
	b.store = store

	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.now()
	if v, err := store.Get(ctx, b.dailyKey(now)); err == nil {
		b.dailyUsed = v
	} else {
		b.logger.Warn("Failed to load daily token budget", zap.Error(err))
	}
	if v, err := store.Get(ctx, b.monthlyKey(now)); err == nil {
		b.monthlyUsed = v
	} else {
		b.logger.Warn("Failed to load monthly token budget", zap.Error(err))
	}

	b.logger.Info("Expander budget loaded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("monthly_used", b.monthlyUsed),
	)
	return b
}

// Check reports whether a new provider request may be made.
func (b *Budget) Check(_ context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()

	u := b.usageLocked()
	if !u.Exhausted() {
		return nil
	}
	if b.limits.Action == ActionReject {
		return domain.ErrExpanderQuotaExceeded
	}
	b.logger.Warn("Expander token budget exceeded",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", u.DailyUsed),
		zap.Int64("daily_limit", u.DailyLimit),
		zap.Int64("monthly_used", u.MonthlyUsed),
		zap.Int64("monthly_limit", u.MonthlyLimit),
	)
	return nil
}

// Record adds consumed tokens, then persists them when a store is attached.
// Persistence failures are logged; the in-memory count stays authoritative.
func (b *Budget) Record(ctx context.Context, tokens int64) {
	if tokens <= 0 {
		return
	}
	b.mu.Lock()
	b.rollover()
	b.dailyUsed += tokens
	b.monthlyUsed += tokens
	now := b.now()
	store := b.store
	b.mu.Unlock()

	if store == nil {
		return
	}

	// The caller may already be done with ctx; the write must still land.
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	for _, key := range []string{b.dailyKey(now), b.monthlyKey(now)} {
		if err := store.IncrBy(pctx, key, tokens); err != nil {
			b.logger.Warn("Failed to persist token budget", zap.String("key", key), zap.Error(err))
		}
	}
}

// Usage returns the current counters and limits.
func (b *Budget) Usage() domain.TokenUsage {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return b.usageLocked()
}

func (b *Budget) usageLocked() domain.TokenUsage {
	return domain.TokenUsage{
		DailyLimit:   b.limits.Daily,
		DailyUsed:    b.dailyUsed,
		MonthlyLimit: b.limits.Monthly,
		MonthlyUsed:  b.monthlyUsed,
		DayStart:     b.dayStart,
		MonthStart:   b.monthStart,
	}
}

// rollover zeroes counters when the UTC day or month changes. Caller holds mu.
func (b *Budget) rollover() {
	day, month := windows(b.now())
	if day.After(b.dayStart) {
		b.dailyUsed = 0
		b.dayStart = day
	}
	if month.After(b.monthStart) {
		b.monthlyUsed = 0
		b.monthStart = month
	}
}

func (b *Budget) dailyKey(t time.Time) string {
	return fmt.Sprintf("%s%s:daily:%s", keyPrefix, b.provider, t.UTC().Format("2006-01-02"))
}

func (b *Budget) monthlyKey(t time.Time) string {
	return fmt.Sprintf("%s%s:monthly:%s", keyPrefix, b.provider, t.UTC().Format("2006-01"))
}

func windows(t time.Time) (day, month time.Time) {
	t = t.UTC()
	day = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	month = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return day, month
}
