package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/finsight/finsight-backend/internal/domain"
)

// recommendationRepository implements domain.RecommendationRepository
type recommendationRepository struct {
	db *DB
}

// NewRecommendationRepository creates a new recommendation repository
func NewRecommendationRepository(db *DB) domain.RecommendationRepository {
	return &recommendationRepository{db: db}
}

// GetBySymbol returns the cached recommendation for a symbol
func (r *recommendationRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.RecommendationSnapshot, error) {
	query := `
		SELECT symbol, period, strong_buy, buy, hold, sell, strong_sell, last_refreshed
		FROM recommendation_snapshots
		WHERE symbol = $1
	`

	var snap domain.RecommendationSnapshot
	err := r.db.QueryRowContext(ctx, query, symbol).Scan(
		&snap.Symbol,
		&snap.Period,
		&snap.StrongBuy,
		&snap.Buy,
		&snap.Hold,
		&snap.Sell,
		&snap.StrongSell,
		&snap.LastRefreshed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("recommendation snapshot %s: %w", symbol, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recommendation snapshot: %w", err)
	}

	return &snap, nil
}

// Upsert inserts or overwrites the snapshot for its symbol
func (r *recommendationRepository) Upsert(ctx context.Context, snap *domain.RecommendationSnapshot) error {
	query := `
		INSERT INTO recommendation_snapshots
			(symbol, period, strong_buy, buy, hold, sell, strong_sell, last_refreshed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (symbol)
		DO UPDATE SET period = EXCLUDED.period,
		              strong_buy = EXCLUDED.strong_buy,
		              buy = EXCLUDED.buy,
		              hold = EXCLUDED.hold,
		              sell = EXCLUDED.sell,
		              strong_sell = EXCLUDED.strong_sell,
		              last_refreshed = EXCLUDED.last_refreshed
	`

	_, err := r.db.ExecContext(ctx, query,
		snap.Symbol,
		snap.Period,
		snap.StrongBuy,
		snap.Buy,
		snap.Hold,
		snap.Sell,
		snap.StrongSell,
		snap.LastRefreshed,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert recommendation snapshot: %w", err)
	}

	return nil
}
