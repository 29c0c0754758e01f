package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/finsight/finsight-backend/internal/domain"
)

// priceSnapshotRepository implements domain.PriceSnapshotRepository
type priceSnapshotRepository struct {
	db *DB
}

// NewPriceSnapshotRepository creates a new price snapshot repository
func NewPriceSnapshotRepository(db *DB) domain.PriceSnapshotRepository {
	return &priceSnapshotRepository{db: db}
}

// GetBySymbol returns the cached price for a symbol
func (r *priceSnapshotRepository) GetBySymbol(ctx context.Context, symbol string) (*domain.PriceSnapshot, error) {
	query := `
		SELECT symbol, price, change_percent, last_refreshed
		FROM price_snapshots
		WHERE symbol = $1
	`

	snap, err := scanPriceSnapshot(r.db.QueryRowContext(ctx, query, symbol))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("price snapshot %s: %w", symbol, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get price snapshot: %w", err)
	}

	return snap, nil
}

// GetBySymbols returns the cached prices for the given symbols keyed by
// symbol. Missing symbols are absent from the map.
func (r *priceSnapshotRepository) GetBySymbols(ctx context.Context, symbols []string) (map[string]*domain.PriceSnapshot, error) {
	result := make(map[string]*domain.PriceSnapshot, len(symbols))
	if len(symbols) == 0 {
		return result, nil
	}

	query := `
		SELECT symbol, price, change_percent, last_refreshed
		FROM price_snapshots
		WHERE symbol = ANY($1)
	`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(symbols))
	if err != nil {
		return nil, fmt.Errorf("failed to get price snapshots: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		snap, err := scanPriceSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price snapshot: %w", err)
		}
		result[snap.Symbol] = snap
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price snapshots: %w", err)
	}

	return result, nil
}

// List retrieves all cached prices, most recently refreshed first
func (r *priceSnapshotRepository) List(ctx context.Context) ([]*domain.PriceSnapshot, error) {
	query := `
		SELECT symbol, price, change_percent, last_refreshed
		FROM price_snapshots
		ORDER BY last_refreshed DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list price snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []*domain.PriceSnapshot
	for rows.Next() {
		snap, err := scanPriceSnapshot(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan price snapshot: %w", err)
		}
		snaps = append(snaps, snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate price snapshots: %w", err)
	}

	return snaps, nil
}

// Upsert inserts or overwrites the snapshot for its symbol
func (r *priceSnapshotRepository) Upsert(ctx context.Context, snap *domain.PriceSnapshot) error {
	query := `
		INSERT INTO price_snapshots (symbol, price, change_percent, last_refreshed)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (symbol)
		DO UPDATE SET price = EXCLUDED.price,
		              change_percent = EXCLUDED.change_percent,
		              last_refreshed = EXCLUDED.last_refreshed
	`

	var changePercent interface{}
	if snap.ChangePercent != nil {
		changePercent = snap.ChangePercent.String()
	}

	_, err := r.db.ExecContext(ctx, query,
		snap.Symbol,
		snap.Price.String(),
		changePercent,
		snap.LastRefreshed,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert price snapshot: %w", err)
	}

	return nil
}

// Delete removes the snapshot for a symbol
func (r *priceSnapshotRepository) Delete(ctx context.Context, symbol string) error {
	query := `DELETE FROM price_snapshots WHERE symbol = $1`

	if _, err := r.db.ExecContext(ctx, query, symbol); err != nil {
		return fmt.Errorf("failed to delete price snapshot: %w", err)
	}

	return nil
}

func scanPriceSnapshot(s scanner) (*domain.PriceSnapshot, error) {
	var snap domain.PriceSnapshot
	var priceStr string
	var changePercentStr sql.NullString

	if err := s.Scan(&snap.Symbol, &priceStr, &changePercentStr, &snap.LastRefreshed); err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(priceStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse price: %w", err)
	}
	snap.Price = price

	if changePercentStr.Valid {
		changePercent, err := decimal.NewFromString(changePercentStr.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse change_percent: %w", err)
		}
		snap.ChangePercent = &changePercent
	}

	return &snap, nil
}
