package usage

import (
	"context"
	"fmt"
	"time"

	"github.com/kailas-cloud/catalogd/internal/domain"
)

// Period selects the budget window a report covers.
type Period string

// Report periods.
const (
	PeriodDay   Period = "day"
	PeriodMonth Period = "month"
)

// ParsePeriod maps a query value to a Period. Empty means month.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case "", PeriodMonth:
		return PeriodMonth, nil
	case PeriodDay:
		return PeriodDay, nil
	default:
		return "", fmt.Errorf("period must be day or month, got %q: %w", s, domain.ErrInvalidRequest)
	}
}

// Report is the expander token usage for one window. Limit 0 and
// Remaining -1 mean unlimited.
type Report struct {
	Period      Period
	PeriodStart time.Time
	PeriodEnd   time.Time
	Limit       int64
	Used        int64
	Remaining   int64
	Exhausted   bool
}

// Service handles usage reporting.
type Service struct {
	br  BudgetReader
	now func() time.Time
}

// New creates a Service. br can be nil (expander disabled or unlimited).
func New(br BudgetReader) *Service {
	return &Service{br: br, now: time.Now}
}

// WithClock replaces time.Now (tests).
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetReport builds a usage report for the given period.
func (s *Service) GetReport(_ context.Context, period Period) Report {
	var u domain.TokenUsage
	if s.br != nil {
		u = s.br.Usage()
	}

	now := s.now().UTC()
	r := Report{Period: period, Remaining: -1}
	switch period {
	case PeriodDay:
		r.PeriodStart = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		r.PeriodEnd = r.PeriodStart.AddDate(0, 0, 1)
		r.Limit, r.Used = u.DailyLimit, u.DailyUsed
		if s.br != nil {
			r.Remaining = u.RemainingDaily()
		}
	default:
		r.Period = PeriodMonth
		r.PeriodStart = time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		r.PeriodEnd = r.PeriodStart.AddDate(0, 1, 0)
		r.Limit, r.Used = u.MonthlyLimit, u.MonthlyUsed
		if s.br != nil {
			r.Remaining = u.RemainingMonthly()
		}
	}
	r.Exhausted = r.Limit > 0 && r.Remaining == 0
	return r
}
