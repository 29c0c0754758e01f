package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/finsight/finsight-backend/internal/domain"
)

// watchlistRepository implements domain.WatchlistRepository
type watchlistRepository struct {
	db *DB
}

// NewWatchlistRepository creates a new watchlist repository
func NewWatchlistRepository(db *DB) domain.WatchlistRepository {
	return &watchlistRepository{db: db}
}

// List returns all tracked symbols ordered by when they were added
func (r *watchlistRepository) List(ctx context.Context) ([]string, error) {
	query := `SELECT symbol FROM watchlist ORDER BY added_at, symbol`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list watchlist: %w", err)
	}
	defer rows.Close()

	var symbols []string
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("failed to scan watchlist symbol: %w", err)
		}
		symbols = append(symbols, symbol)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate watchlist: %w", err)
	}

	return symbols, nil
}

// Add inserts a symbol; adding an already-tracked symbol is a no-op
func (r *watchlistRepository) Add(ctx context.Context, symbol string, addedAt time.Time) error {
	query := `
		INSERT INTO watchlist (symbol, added_at)
		VALUES ($1, $2)
		ON CONFLICT (symbol) DO NOTHING
	`

	if _, err := r.db.ExecContext(ctx, query, symbol, addedAt); err != nil {
		return fmt.Errorf("failed to add watchlist symbol: %w", err)
	}

	return nil
}

// Remove deletes a symbol from the watchlist
func (r *watchlistRepository) Remove(ctx context.Context, symbol string) error {
	query := `DELETE FROM watchlist WHERE symbol = $1`

	if _, err := r.db.ExecContext(ctx, query, symbol); err != nil {
		return fmt.Errorf("failed to remove watchlist symbol: %w", err)
	}

	return nil
}
