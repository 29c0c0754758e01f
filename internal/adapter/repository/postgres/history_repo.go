package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/finsight/finsight-backend/internal/domain"
)

// historyRepository implements domain.HistoryRepository
type historyRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) domain.HistoryRepository {
	return &historyRepository{db: db}
}

// Upsert inserts the point for its date, overwriting all four subtotal
// columns if a row for that date already exists
func (r *historyRepository) Upsert(ctx context.Context, point *domain.HistoryPoint) error {
	query := `
		INSERT INTO asset_history (date, cash_value, stock_value, bond_value, other_value)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (date)
		DO UPDATE SET cash_value = EXCLUDED.cash_value,
		              stock_value = EXCLUDED.stock_value,
		              bond_value = EXCLUDED.bond_value,
		              other_value = EXCLUDED.other_value
	`

	_, err := r.db.ExecContext(ctx, query,
		point.Date.Format("2006-01-02"),
		point.Cash.String(),
		point.Stock.String(),
		point.Bond.String(),
		point.Other.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert history point: %w", err)
	}

	return nil
}

// ListAscending retrieves the full retained series ordered by date ascending
func (r *historyRepository) ListAscending(ctx context.Context) ([]*domain.HistoryPoint, error) {
	query := `
		SELECT date, cash_value, stock_value, bond_value, other_value
		FROM asset_history
		ORDER BY date ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list history points: %w", err)
	}
	defer rows.Close()

	var points []*domain.HistoryPoint
	for rows.Next() {
		point, err := scanHistoryPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history point: %w", err)
		}
		points = append(points, point)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history points: %w", err)
	}

	return points, nil
}

// GetEarliest returns the oldest retained point
func (r *historyRepository) GetEarliest(ctx context.Context) (*domain.HistoryPoint, error) {
	query := `
		SELECT date, cash_value, stock_value, bond_value, other_value
		FROM asset_history
		ORDER BY date ASC
		LIMIT 1
	`

	point, err := scanHistoryPoint(r.db.QueryRowContext(ctx, query))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("history is empty: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get earliest history point: %w", err)
	}

	return point, nil
}

func scanHistoryPoint(s scanner) (*domain.HistoryPoint, error) {
	var point domain.HistoryPoint
	var cashStr, stockStr, bondStr, otherStr string

	if err := s.Scan(&point.Date, &cashStr, &stockStr, &bondStr, &otherStr); err != nil {
		return nil, err
	}

	var err error
	if point.Cash, err = decimal.NewFromString(cashStr); err != nil {
		return nil, fmt.Errorf("failed to parse cash_value: %w", err)
	}
	if point.Stock, err = decimal.NewFromString(stockStr); err != nil {
		return nil, fmt.Errorf("failed to parse stock_value: %w", err)
	}
	if point.Bond, err = decimal.NewFromString(bondStr); err != nil {
		return nil, fmt.Errorf("failed to parse bond_value: %w", err)
	}
	if point.Other, err = decimal.NewFromString(otherStr); err != nil {
		return nil, fmt.Errorf("failed to parse other_value: %w", err)
	}

	return &point, nil
}
