package valuation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/finsight/finsight-backend/internal/domain"
)

// Direction selects whether a holding change accumulates or reduces
type Direction string

const (
	DirectionAdd    Direction = "add"
	DirectionReduce Direction = "reduce"
)

// Breakdown holds the portfolio value split by asset class
type Breakdown struct {
	Cash  decimal.Decimal
	Stock decimal.Decimal
	Bond  decimal.Decimal
	Other decimal.Decimal
}

// Total returns the sum of the four class subtotals, unrounded
func (b *Breakdown) Total() decimal.Decimal {
	return b.Cash.Add(b.Stock).Add(b.Bond).Add(b.Other)
}

// Summary is the current portfolio aggregate exposed to callers
type Summary struct {
	Total           decimal.Decimal
	GainLoss        decimal.Decimal
	GainLossPercent decimal.Decimal
}

// HistoryValue is one day of the valuation time series
type HistoryValue struct {
	Date  time.Time
	Value decimal.Decimal
}

// Engine computes portfolio value from current holdings joined with cached
// prices, and maintains the daily valuation time series
type Engine struct {
	HoldingRepo domain.HoldingRepository
	PriceRepo   domain.PriceSnapshotRepository
	HistoryRepo domain.HistoryRepository
	SummaryRepo domain.PortfolioSummaryRepository

	// FallbackBaseline is the gain/loss reference when no history exists yet
	FallbackBaseline decimal.Decimal

	logger *logrus.Entry
}

// NewEngine creates a new valuation Engine instance
func NewEngine(
	holdingRepo domain.HoldingRepository,
	priceRepo domain.PriceSnapshotRepository,
	historyRepo domain.HistoryRepository,
	summaryRepo domain.PortfolioSummaryRepository,
	fallbackBaseline decimal.Decimal,
	logger *logrus.Logger,
) *Engine {
	return &Engine{
		HoldingRepo:      holdingRepo,
		PriceRepo:        priceRepo,
		HistoryRepo:      historyRepo,
		SummaryRepo:      summaryRepo,
		FallbackBaseline: fallbackBaseline,
		logger:           logger.WithField("component", "valuation"),
	}
}

// ComputeClassBreakdown partitions holdings by asset class and returns the
// four subtotals. Stock holdings are priced via the price cache; a symbol
// with no cached price contributes zero rather than failing the read.
// Cash/bond/other amounts are value-equivalent and summed directly.
// Subtotals are unrounded; rounding happens once at the total.
func (e *Engine) ComputeClassBreakdown(ctx context.Context) (*Breakdown, error) {
	holdings, err := e.HoldingRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}

	var stockSymbols []string
	for _, h := range holdings {
		if h.AssetClass == domain.AssetClassStock {
			stockSymbols = append(stockSymbols, h.Symbol)
		}
	}

	prices := map[string]*domain.PriceSnapshot{}
	if len(stockSymbols) > 0 {
		prices, err = e.PriceRepo.GetBySymbols(ctx, stockSymbols)
		if err != nil {
			return nil, fmt.Errorf("failed to load price snapshots: %w", err)
		}
	}

	breakdown := &Breakdown{
		Cash:  decimal.Zero,
		Stock: decimal.Zero,
		Bond:  decimal.Zero,
		Other: decimal.Zero,
	}

	for _, h := range holdings {
		switch h.AssetClass {
		case domain.AssetClassStock:
			snap, ok := prices[h.Symbol]
			if !ok {
				// Missing price degrades this holding's contribution to
				// zero; it never fails the valuation
				e.logger.WithField("symbol", h.Symbol).Warn("no cached price for held stock, valuing at zero")
				continue
			}
			breakdown.Stock = breakdown.Stock.Add(h.Quantity.Mul(snap.Price))
		case domain.AssetClassCash:
			breakdown.Cash = breakdown.Cash.Add(h.Quantity)
		case domain.AssetClassBond:
			breakdown.Bond = breakdown.Bond.Add(h.Quantity)
		case domain.AssetClassOther:
			breakdown.Other = breakdown.Other.Add(h.Quantity)
		default:
			return nil, fmt.Errorf("holding %s: %w: %q", h.ID, domain.ErrUnknownAssetClass, h.AssetClass)
		}
	}

	return breakdown, nil
}

// ComputeTotalValue returns the current total portfolio value, rounded
// half-up to two decimal places at the final step only
func (e *Engine) ComputeTotalValue(ctx context.Context) (decimal.Decimal, error) {
	breakdown, err := e.ComputeClassBreakdown(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return breakdown.Total().Round(2), nil
}

// RecordDailySnapshot computes the class breakdown and upserts the history
// row for the given date. Calling it twice on the same date with unchanged
// holdings yields the same row.
func (e *Engine) RecordDailySnapshot(ctx context.Context, date time.Time) error {
	breakdown, err := e.ComputeClassBreakdown(ctx)
	if err != nil {
		return err
	}

	point := &domain.HistoryPoint{
		Date:  date,
		Cash:  breakdown.Cash.Round(2),
		Stock: breakdown.Stock.Round(2),
		Bond:  breakdown.Bond.Round(2),
		Other: breakdown.Other.Round(2),
	}

	if err := e.HistoryRepo.Upsert(ctx, point); err != nil {
		return fmt.Errorf("failed to record daily snapshot: %w", err)
	}

	return nil
}

// ApplyHoldingChange validates and applies an add/reduce mutation for an
// (assetClass, symbol) pair, then re-snapshots today's history row and
// returns the new total portfolio value.
//
// Validation fails closed: nothing is written on ErrInvalidAmount,
// ErrMissingSymbol, or ErrInsufficientBalance.
func (e *Engine) ApplyHoldingChange(ctx context.Context, class domain.AssetClass, symbol string, delta decimal.Decimal, direction Direction) (decimal.Decimal, error) {
	if !class.Valid() {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrUnknownAssetClass, class)
	}
	if delta.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("%w: got %s", domain.ErrInvalidAmount, delta)
	}

	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if class.RequiresSymbol() && symbol == "" {
		return decimal.Zero, fmt.Errorf("%s holding: %w", class, domain.ErrMissingSymbol)
	}

	var newQuantity decimal.Decimal
	var err error
	switch direction {
	case DirectionAdd:
		newQuantity, err = e.HoldingRepo.AddQuantity(ctx, class, symbol, delta)
	case DirectionReduce:
		newQuantity, err = e.HoldingRepo.ReduceQuantity(ctx, class, symbol, delta)
	default:
		return decimal.Zero, fmt.Errorf("unknown change direction %q", direction)
	}
	if err != nil {
		return decimal.Zero, err
	}

	e.logger.WithFields(logrus.Fields{
		"asset_class":  class,
		"symbol":       symbol,
		"direction":    direction,
		"delta":        delta.String(),
		"new_quantity": newQuantity.String(),
	}).Info("holding mutated")

	// Keep today's history row reflecting the latest known state
	if err := e.RecordDailySnapshot(ctx, time.Now()); err != nil {
		return decimal.Zero, err
	}

	summary, err := e.refreshSummary(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	return summary.Total, nil
}

// GainLoss computes the absolute and percentage change from a baseline
// value. Percent is zero when the baseline is zero; that degenerate case is
// not an error.
func GainLoss(baseline, current decimal.Decimal) (decimal.Decimal, decimal.Decimal) {
	delta := current.Sub(baseline)
	if baseline.IsZero() {
		return delta, decimal.Zero
	}
	percent := delta.Div(baseline).Mul(decimal.NewFromInt(100)).Round(2)
	return delta, percent
}

// GetTotalValue computes the current total with gain/loss against the
// earliest retained history point (or the configured fallback when no
// history exists) and refreshes the materialized summary row.
func (e *Engine) GetTotalValue(ctx context.Context) (*Summary, error) {
	summary, err := e.refreshSummary(ctx)
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (e *Engine) refreshSummary(ctx context.Context) (*Summary, error) {
	total, err := e.ComputeTotalValue(ctx)
	if err != nil {
		return nil, err
	}

	baseline, err := e.baseline(ctx)
	if err != nil {
		return nil, err
	}

	gainLoss, gainLossPercent := GainLoss(baseline, total)
	summary := &Summary{
		Total:           total,
		GainLoss:        gainLoss.Round(2),
		GainLossPercent: gainLossPercent,
	}

	err = e.SummaryRepo.Upsert(ctx, &domain.PortfolioSummary{
		TotalValue:      summary.Total,
		GainLoss:        summary.GainLoss,
		GainLossPercent: summary.GainLossPercent,
		UpdatedAt:       time.Now(),
	})
	if err != nil {
		return nil, err
	}

	return summary, nil
}

// baseline returns the gain/loss reference value: the earliest retained
// history point's total, or the configured fallback before any history
// exists
func (e *Engine) baseline(ctx context.Context) (decimal.Decimal, error) {
	earliest, err := e.HistoryRepo.GetEarliest(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return e.FallbackBaseline, nil
		}
		return decimal.Zero, err
	}
	return earliest.Total(), nil
}

// GetAllocation returns the current value split by asset class, each
// subtotal rounded to two decimal places
func (e *Engine) GetAllocation(ctx context.Context) (*Breakdown, error) {
	breakdown, err := e.ComputeClassBreakdown(ctx)
	if err != nil {
		return nil, err
	}

	return &Breakdown{
		Cash:  breakdown.Cash.Round(2),
		Stock: breakdown.Stock.Round(2),
		Bond:  breakdown.Bond.Round(2),
		Other: breakdown.Other.Round(2),
	}, nil
}

// GetHistory returns the valuation time series windowed to the trailing
// range, ordered ascending by date with one value per day
func (e *Engine) GetHistory(ctx context.Context, rng domain.HistoryRange) ([]HistoryValue, error) {
	points, err := e.HistoryRepo.ListAscending(ctx)
	if err != nil {
		return nil, err
	}

	points = trailingWindow(points, rng)

	values := make([]HistoryValue, 0, len(points))
	for _, p := range points {
		values = append(values, HistoryValue{
			Date:  p.Date,
			Value: p.Total().Round(2),
		})
	}

	return values, nil
}

// GetClassHistory returns the time series of a single asset class's
// subtotal over the same trailing windows as GetHistory
func (e *Engine) GetClassHistory(ctx context.Context, class domain.AssetClass, rng domain.HistoryRange) ([]HistoryValue, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownAssetClass, class)
	}

	points, err := e.HistoryRepo.ListAscending(ctx)
	if err != nil {
		return nil, err
	}

	points = trailingWindow(points, rng)

	values := make([]HistoryValue, 0, len(points))
	for _, p := range points {
		var v decimal.Decimal
		switch class {
		case domain.AssetClassCash:
			v = p.Cash
		case domain.AssetClassStock:
			v = p.Stock
		case domain.AssetClassBond:
			v = p.Bond
		case domain.AssetClassOther:
			v = p.Other
		}
		values = append(values, HistoryValue{Date: p.Date, Value: v})
	}

	return values, nil
}

func trailingWindow(points []*domain.HistoryPoint, rng domain.HistoryRange) []*domain.HistoryPoint {
	if days := rng.Days(); days > 0 && len(points) > days {
		return points[len(points)-days:]
	}
	return points
}
