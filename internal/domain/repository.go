package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HoldingRepository defines the interface for holding persistence operations.
// It enforces only the (assetClass, symbol) uniqueness invariant and the
// atomicity of quantity mutations; business validation lives in the
// valuation engine.
type HoldingRepository interface {
	// Get retrieves the holding for an (assetClass, symbol) pair.
	// symbol is empty for classes without one. Returns ErrNotFound when
	// no row exists.
	Get(ctx context.Context, class AssetClass, symbol string) (*Holding, error)

	// List retrieves all current holdings
	List(ctx context.Context) ([]*Holding, error)

	// UpsertQuantity sets the quantity for an (assetClass, symbol) pair,
	// creating the row if absent. Persists exactly what it is given.
	UpsertQuantity(ctx context.Context, class AssetClass, symbol string, quantity decimal.Decimal) error

	// AddQuantity atomically accumulates delta onto the holding's quantity,
	// creating the row if absent. Returns the new quantity.
	AddQuantity(ctx context.Context, class AssetClass, symbol string, delta decimal.Decimal) (decimal.Decimal, error)

	// ReduceQuantity atomically subtracts delta from the holding's quantity.
	// The check and the update are a single conditional statement, so two
	// concurrent reductions can never both pass against a stale read.
	// Returns ErrInsufficientBalance when the current quantity is less than
	// delta (including when no row exists). A quantity that reaches exactly
	// zero deletes the row; the update and delete share one transaction.
	ReduceQuantity(ctx context.Context, class AssetClass, symbol string, delta decimal.Decimal) (decimal.Decimal, error)

	// Delete removes a holding by ID
	Delete(ctx context.Context, id uuid.UUID) error
}

// PriceSnapshotRepository defines the interface for cached price persistence
type PriceSnapshotRepository interface {
	// GetBySymbol returns the cached price for a symbol, or ErrNotFound
	GetBySymbol(ctx context.Context, symbol string) (*PriceSnapshot, error)

	// GetBySymbols returns the cached prices for the given symbols keyed by
	// symbol. Missing symbols are simply absent from the map, not an error.
	GetBySymbols(ctx context.Context, symbols []string) (map[string]*PriceSnapshot, error)

	// List retrieves all cached prices, most recently refreshed first
	List(ctx context.Context) ([]*PriceSnapshot, error)

	// Upsert inserts or overwrites the snapshot for its symbol
	Upsert(ctx context.Context, snap *PriceSnapshot) error

	// Delete removes the snapshot for a symbol
	Delete(ctx context.Context, symbol string) error
}

// RecommendationRepository defines the interface for cached analyst
// recommendation persistence
type RecommendationRepository interface {
	// GetBySymbol returns the cached recommendation for a symbol, or ErrNotFound
	GetBySymbol(ctx context.Context, symbol string) (*RecommendationSnapshot, error)

	// Upsert inserts or overwrites the snapshot for its symbol
	Upsert(ctx context.Context, snap *RecommendationSnapshot) error
}

// MarketListRepository defines the interface for cached screener list
// persistence. Lists are replaced wholesale, never row by row.
type MarketListRepository interface {
	// GetByType returns the cached entries for a list in ranking order.
	// An empty slice means nothing is cached.
	GetByType(ctx context.Context, listType MarketListType) ([]*MarketListEntry, error)

	// ReplaceList atomically swaps the full set of entries for a list type
	ReplaceList(ctx context.Context, listType MarketListType, entries []*MarketListEntry) error
}

// HistoryRepository defines the interface for the daily valuation time series
type HistoryRepository interface {
	// Upsert inserts the point for its date, overwriting all four subtotal
	// columns if a row for that date already exists
	Upsert(ctx context.Context, point *HistoryPoint) error

	// ListAscending retrieves the full retained series ordered by date ascending
	ListAscending(ctx context.Context) ([]*HistoryPoint, error)

	// GetEarliest returns the oldest retained point, or ErrNotFound when the
	// series is empty
	GetEarliest(ctx context.Context) (*HistoryPoint, error)
}

// PortfolioSummaryRepository defines the interface for the one-row
// materialized portfolio aggregate
type PortfolioSummaryRepository interface {
	// Get returns the current summary, or ErrNotFound before the first upsert
	Get(ctx context.Context) (*PortfolioSummary, error)

	// Upsert overwrites the single summary row
	Upsert(ctx context.Context, summary *PortfolioSummary) error
}

// WatchlistRepository defines the interface for the persisted set of tracked
// ticker symbols. Adding a symbol is durable across restarts.
type WatchlistRepository interface {
	// List returns all tracked symbols ordered by when they were added
	List(ctx context.Context) ([]string, error)

	// Add inserts a symbol; adding an already-tracked symbol is a no-op
	Add(ctx context.Context, symbol string, addedAt time.Time) error

	// Remove deletes a symbol from the watchlist
	Remove(ctx context.Context, symbol string) error
}
