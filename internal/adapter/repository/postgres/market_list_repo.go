package postgres

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finsight/finsight-backend/internal/domain"
)

// marketListRepository implements domain.MarketListRepository
type marketListRepository struct {
	db *DB
}

// NewMarketListRepository creates a new market list repository
func NewMarketListRepository(db *DB) domain.MarketListRepository {
	return &marketListRepository{db: db}
}

// GetByType returns the cached entries for a list in ranking order
func (r *marketListRepository) GetByType(ctx context.Context, listType domain.MarketListType) ([]*domain.MarketListEntry, error) {
	query := `
		SELECT list_type, symbol, name, price, change, change_percent,
		       volume, market_cap, fifty_two_week_range, last_refreshed
		FROM market_list_entries
		WHERE list_type = $1
		ORDER BY position
	`

	rows, err := r.db.QueryContext(ctx, query, string(listType))
	if err != nil {
		return nil, fmt.Errorf("failed to get market list entries: %w", err)
	}
	defer rows.Close()

	var entries []*domain.MarketListEntry
	for rows.Next() {
		var entry domain.MarketListEntry
		var listTypeStr, priceStr, changeStr, changePercentStr, marketCapStr string

		err := rows.Scan(
			&listTypeStr,
			&entry.Symbol,
			&entry.Name,
			&priceStr,
			&changeStr,
			&changePercentStr,
			&entry.Volume,
			&marketCapStr,
			&entry.FiftyTwoWeekRange,
			&entry.LastRefreshed,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan market list entry: %w", err)
		}

		entry.ListType = domain.MarketListType(listTypeStr)
		if entry.Price, err = decimal.NewFromString(priceStr); err != nil {
			return nil, fmt.Errorf("failed to parse price: %w", err)
		}
		if entry.Change, err = decimal.NewFromString(changeStr); err != nil {
			return nil, fmt.Errorf("failed to parse change: %w", err)
		}
		if entry.ChangePercent, err = decimal.NewFromString(changePercentStr); err != nil {
			return nil, fmt.Errorf("failed to parse change_percent: %w", err)
		}
		if entry.MarketCap, err = decimal.NewFromString(marketCapStr); err != nil {
			return nil, fmt.Errorf("failed to parse market_cap: %w", err)
		}

		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate market list entries: %w", err)
	}

	return entries, nil
}

// ReplaceList atomically swaps the full set of entries for a list type.
// A partial fetch must never be half-visible, so delete and inserts share
// one database transaction.
func (r *marketListRepository) ReplaceList(ctx context.Context, listType domain.MarketListType, entries []*domain.MarketListEntry) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	deleteQuery := `DELETE FROM market_list_entries WHERE list_type = $1`
	if _, err := dbTx.ExecContext(ctx, deleteQuery, string(listType)); err != nil {
		return fmt.Errorf("failed to clear market list: %w", err)
	}

	insertQuery := `
		INSERT INTO market_list_entries
			(list_type, symbol, position, name, price, change, change_percent,
			 volume, market_cap, fifty_two_week_range, last_refreshed)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for i, entry := range entries {
		_, err := dbTx.ExecContext(ctx, insertQuery,
			string(listType),
			entry.Symbol,
			i,
			entry.Name,
			entry.Price.String(),
			entry.Change.String(),
			entry.ChangePercent.String(),
			entry.Volume,
			entry.MarketCap.String(),
			entry.FiftyTwoWeekRange,
			entry.LastRefreshed,
		)
		if err != nil {
			return fmt.Errorf("failed to insert market list entry: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}
