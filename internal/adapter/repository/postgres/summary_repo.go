package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finsight/finsight-backend/internal/domain"
)

// The summary lives in a one-row table with a fixed primary key so there is
// exactly one authoritative aggregate, never a "latest row wins" lookup.
const summaryRowID = 1

// portfolioSummaryRepository implements domain.PortfolioSummaryRepository
type portfolioSummaryRepository struct {
	db *DB
}

// NewPortfolioSummaryRepository creates a new portfolio summary repository
func NewPortfolioSummaryRepository(db *DB) domain.PortfolioSummaryRepository {
	return &portfolioSummaryRepository{db: db}
}

// Get returns the current summary
func (r *portfolioSummaryRepository) Get(ctx context.Context) (*domain.PortfolioSummary, error) {
	query := `
		SELECT total_value, gain_loss, gain_loss_percent, updated_at
		FROM portfolio_summary
		WHERE id = $1
	`

	var summary domain.PortfolioSummary
	var totalStr, gainLossStr, gainLossPercentStr string

	err := r.db.QueryRowContext(ctx, query, summaryRowID).Scan(
		&totalStr,
		&gainLossStr,
		&gainLossPercentStr,
		&summary.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("portfolio summary: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get portfolio summary: %w", err)
	}

	if summary.TotalValue, err = decimal.NewFromString(totalStr); err != nil {
		return nil, fmt.Errorf("failed to parse total_value: %w", err)
	}
	if summary.GainLoss, err = decimal.NewFromString(gainLossStr); err != nil {
		return nil, fmt.Errorf("failed to parse gain_loss: %w", err)
	}
	if summary.GainLossPercent, err = decimal.NewFromString(gainLossPercentStr); err != nil {
		return nil, fmt.Errorf("failed to parse gain_loss_percent: %w", err)
	}

	return &summary, nil
}

// Upsert overwrites the single summary row
func (r *portfolioSummaryRepository) Upsert(ctx context.Context, summary *domain.PortfolioSummary) error {
	query := `
		INSERT INTO portfolio_summary (id, total_value, gain_loss, gain_loss_percent, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id)
		DO UPDATE SET total_value = EXCLUDED.total_value,
		              gain_loss = EXCLUDED.gain_loss,
		              gain_loss_percent = EXCLUDED.gain_loss_percent,
		              updated_at = EXCLUDED.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		summaryRowID,
		summary.TotalValue.String(),
		summary.GainLoss.String(),
		summary.GainLossPercent.String(),
		summary.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert portfolio summary: %w", err)
	}

	return nil
}
