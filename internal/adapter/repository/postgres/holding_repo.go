package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/finsight/finsight-backend/internal/domain"
)

// holdingRepository implements domain.HoldingRepository
type holdingRepository struct {
	db *DB
}

// NewHoldingRepository creates a new holding repository
func NewHoldingRepository(db *DB) domain.HoldingRepository {
	return &holdingRepository{db: db}
}

// Get retrieves the holding for an (assetClass, symbol) pair
func (r *holdingRepository) Get(ctx context.Context, class domain.AssetClass, symbol string) (*domain.Holding, error) {
	query := `
		SELECT id, asset_class, symbol, quantity
		FROM holdings
		WHERE asset_class = $1 AND symbol = $2
	`

	holding, err := scanHolding(r.db.QueryRowContext(ctx, query, string(class), symbol))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("holding %s/%s: %w", class, symbol, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get holding: %w", err)
	}

	return holding, nil
}

// List retrieves all current holdings
func (r *holdingRepository) List(ctx context.Context) ([]*domain.Holding, error) {
	query := `
		SELECT id, asset_class, symbol, quantity
		FROM holdings
		ORDER BY asset_class, symbol
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list holdings: %w", err)
	}
	defer rows.Close()

	var holdings []*domain.Holding
	for rows.Next() {
		holding, err := scanHolding(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, holding)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate holdings: %w", err)
	}

	return holdings, nil
}

// UpsertQuantity sets the quantity for an (assetClass, symbol) pair,
// creating the row if absent
func (r *holdingRepository) UpsertQuantity(ctx context.Context, class domain.AssetClass, symbol string, quantity decimal.Decimal) error {
	query := `
		INSERT INTO holdings (id, asset_class, symbol, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (asset_class, symbol)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`

	_, err := r.db.ExecContext(ctx, query, uuid.New(), string(class), symbol, quantity.String())
	if err != nil {
		return fmt.Errorf("failed to upsert holding quantity: %w", err)
	}

	return nil
}

// AddQuantity atomically accumulates delta onto the holding's quantity,
// creating the row if absent
func (r *holdingRepository) AddQuantity(ctx context.Context, class domain.AssetClass, symbol string, delta decimal.Decimal) (decimal.Decimal, error) {
	query := `
		INSERT INTO holdings (id, asset_class, symbol, quantity)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (asset_class, symbol)
		DO UPDATE SET quantity = holdings.quantity + EXCLUDED.quantity
		RETURNING quantity
	`

	var quantityStr string
	err := r.db.QueryRowContext(ctx, query, uuid.New(), string(class), symbol, delta.String()).Scan(&quantityStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to add holding quantity: %w", err)
	}

	quantity, err := decimal.NewFromString(quantityStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse quantity: %w", err)
	}

	return quantity, nil
}

// ReduceQuantity atomically subtracts delta from the holding's quantity.
// The sufficiency check and the update are one conditional statement; a row
// that reaches exactly zero is deleted in the same database transaction.
func (r *holdingRepository) ReduceQuantity(ctx context.Context, class domain.AssetClass, symbol string, delta decimal.Decimal) (decimal.Decimal, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		UPDATE holdings
		SET quantity = quantity - $3
		WHERE asset_class = $1 AND symbol = $2 AND quantity >= $3
		RETURNING quantity
	`

	var quantityStr string
	err = dbTx.QueryRowContext(ctx, query, string(class), symbol, delta.String()).Scan(&quantityStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Either no such holding or not enough of it; both reject
			return decimal.Zero, fmt.Errorf("reduce %s %s/%s: %w", delta, class, symbol, domain.ErrInsufficientBalance)
		}
		return decimal.Zero, fmt.Errorf("failed to reduce holding quantity: %w", err)
	}

	quantity, err := decimal.NewFromString(quantityStr)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse quantity: %w", err)
	}

	// A holding reduced to exactly zero is deleted rather than retained
	if quantity.IsZero() {
		deleteQuery := `DELETE FROM holdings WHERE asset_class = $1 AND symbol = $2`
		if _, err := dbTx.ExecContext(ctx, deleteQuery, string(class), symbol); err != nil {
			return decimal.Zero, fmt.Errorf("failed to delete emptied holding: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return decimal.Zero, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return quantity, nil
}

// Delete removes a holding by ID
func (r *holdingRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `DELETE FROM holdings WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete holding: %w", err)
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scanning
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanHolding(s scanner) (*domain.Holding, error) {
	var holding domain.Holding
	var classStr string
	var quantityStr string

	if err := s.Scan(&holding.ID, &classStr, &holding.Symbol, &quantityStr); err != nil {
		return nil, err
	}

	holding.AssetClass = domain.AssetClass(classStr)

	quantity, err := decimal.NewFromString(quantityStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse quantity: %w", err)
	}
	if quantity.IsNegative() {
		// The CHECK constraint should make this impossible; a negative
		// quantity reaching here means the store no longer matches the
		// domain rules, and nothing downstream should act on it
		return nil, fmt.Errorf("holding %s: negative quantity %s: %w", holding.ID, quantity, domain.ErrDataInconsistency)
	}
	holding.Quantity = quantity

	return &holding, nil
}
