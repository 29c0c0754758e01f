package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// HistoryPoint is one day's materialized valuation split by asset class.
// At most one row exists per calendar date; only today's row is mutable.
type HistoryPoint struct {
	Date  time.Time
	Cash  decimal.Decimal
	Stock decimal.Decimal
	Bond  decimal.Decimal
	Other decimal.Decimal
}

// Total returns the sum of the four class subtotals
func (p *HistoryPoint) Total() decimal.Decimal {
	return p.Cash.Add(p.Stock).Add(p.Bond).Add(p.Other)
}

// HistoryRange selects the trailing window of the valuation time series
type HistoryRange string

const (
	HistoryRange7D HistoryRange = "7d"
	HistoryRange1M HistoryRange = "1m"
	HistoryRange6M HistoryRange = "6m"
)

// ParseHistoryRange validates a caller-supplied range label
func ParseHistoryRange(s string) (HistoryRange, error) {
	switch HistoryRange(s) {
	case HistoryRange7D, HistoryRange1M, HistoryRange6M:
		return HistoryRange(s), nil
	}
	return "", fmt.Errorf("invalid history range %q", s)
}

// Days returns the number of trailing daily points the range covers.
// 0 means the full retained range.
func (r HistoryRange) Days() int {
	switch r {
	case HistoryRange7D:
		return 7
	case HistoryRange1M:
		return 30
	default:
		return 0
	}
}

// PortfolioSummary is the materialized current-state aggregate, kept in a
// one-row table with a fixed primary key so there is never ambiguity about
// which row is authoritative.
type PortfolioSummary struct {
	TotalValue      decimal.Decimal
	GainLoss        decimal.Decimal
	GainLossPercent decimal.Decimal
	UpdatedAt       time.Time
}
