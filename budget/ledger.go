package budget

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrExceeded indicates the daily spend ceiling has been reached. The
// invocation wrapper raises it before attempting a model call.
var ErrExceeded = errors.New("daily budget exceeded")

// DefaultDailyLimitUSD is the default per-day spend ceiling.
const DefaultDailyLimitUSD = 10.0

// Usage is one model invocation's token consumption.
type Usage struct {
	Model            string    `json:"model"`
	PromptTokens     int       `json:"promptTokens"`
	CompletionTokens int       `json:"completionTokens"`
	CostUSD          float64   `json:"costUsd"`
	At               time.Time `json:"at"`
}

// ModelTotals aggregates usage for one model.
type ModelTotals struct {
	PromptTokens     int     `json:"promptTokens"`
	CompletionTokens int     `json:"completionTokens"`
	CostUSD          float64 `json:"costUsd"`
}

// Totals aggregates usage across records, broken down per model.
type Totals struct {
	PromptTokens     int                    `json:"promptTokens"`
	CompletionTokens int                    `json:"completionTokens"`
	CostUSD          float64                `json:"costUsd"`
	ByModel          map[string]ModelTotals `json:"byModel,omitempty"`
}

// UsageStore persists usage records. Implementations must be safe for
// concurrent use: runs log usage from overlapping goroutines.
type UsageStore interface {
	InsertUsage(ctx context.Context, u Usage) error
	SumUsage(ctx context.Context, since time.Time) (Totals, error)
}

// Degradation answers a "should we degrade" query.
type Degradation struct {
	Degrade bool
	Reason  string
}

// Ledger prices and records model usage against a daily ceiling.
type Ledger struct {
	store         UsageStore
	prices        PriceTable
	dailyLimitUSD float64
	now           func() time.Time
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithDailyLimit sets the daily ceiling in USD.
func WithDailyLimit(usd float64) Option {
	return func(l *Ledger) { l.dailyLimitUSD = usd }
}

// WithPrices replaces the price table.
func WithPrices(t PriceTable) Option {
	return func(l *Ledger) { l.prices = t }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a ledger over the given store.
func NewLedger(store UsageStore, opts ...Option) *Ledger {
	l := &Ledger{
		store:         store,
		prices:        DefaultPrices,
		dailyLimitUSD: DefaultDailyLimitUSD,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// LogUsage prices the record (unless the caller already did) and persists
// it. Returns the record with cost and timestamp filled in.
func (l *Ledger) LogUsage(ctx context.Context, u Usage) (Usage, error) {
	if u.CostUSD == 0 {
		u.CostUSD = l.prices.Cost(u.Model, u.PromptTokens, u.CompletionTokens)
	}
	if u.At.IsZero() {
		u.At = l.now()
	}
	if err := l.store.InsertUsage(ctx, u); err != nil {
		return u, fmt.Errorf("log usage: %w", err)
	}
	return u, nil
}

// TotalCost sums tokens and cost across records since the given cutoff.
// A zero cutoff sums everything.
func (l *Ledger) TotalCost(ctx context.Context, since time.Time) (Totals, error) {
	return l.store.SumUsage(ctx, since)
}

// ShouldDegrade reports whether the given running total crosses the ceiling.
func (l *Ledger) ShouldDegrade(totalCostUSD float64) Degradation {
	if totalCostUSD >= l.dailyLimitUSD {
		return Degradation{
			Degrade: true,
			Reason:  fmt.Sprintf("daily spend $%.4f reached ceiling $%.2f", totalCostUSD, l.dailyLimitUSD),
		}
	}
	return Degradation{}
}

// OverBudget reports whether today's spend (UTC day) crosses the ceiling.
func (l *Ledger) OverBudget(ctx context.Context) (bool, error) {
	totals, err := l.TotalCost(ctx, StartOfDayUTC(l.now()))
	if err != nil {
		return false, err
	}
	return l.ShouldDegrade(totals.CostUSD).Degrade, nil
}

// DailyLimitUSD returns the configured ceiling.
func (l *Ledger) DailyLimitUSD() float64 {
	return l.dailyLimitUSD
}

// StartOfDayUTC truncates t to UTC midnight.
func StartOfDayUTC(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
