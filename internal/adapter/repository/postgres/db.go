package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// DB wraps the database connection
type DB struct {
	*sql.DB
}

// NewDB creates a new database connection
// connectionString should be in the format: "host=localhost port=5432 user=postgres password=postgres dbname=finsight sslmode=disable"
func NewDB(connectionString string) (*DB, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db}, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Bootstrap creates the schema if it does not exist. Safe to run on every
// startup.
func (db *DB) Bootstrap(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS holdings (
			id UUID PRIMARY KEY,
			asset_class TEXT NOT NULL,
			symbol TEXT NOT NULL DEFAULT '',
			quantity NUMERIC(18,2) NOT NULL CHECK (quantity >= 0),
			UNIQUE (asset_class, symbol)
		)`,
		`CREATE TABLE IF NOT EXISTS price_snapshots (
			symbol TEXT PRIMARY KEY,
			price NUMERIC(12,4) NOT NULL,
			change_percent NUMERIC(8,2),
			last_refreshed TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS recommendation_snapshots (
			symbol TEXT PRIMARY KEY,
			period TEXT NOT NULL,
			strong_buy INTEGER NOT NULL,
			buy INTEGER NOT NULL,
			hold INTEGER NOT NULL,
			sell INTEGER NOT NULL,
			strong_sell INTEGER NOT NULL,
			last_refreshed TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS market_list_entries (
			list_type TEXT NOT NULL,
			symbol TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			price NUMERIC(12,4) NOT NULL,
			change NUMERIC(12,4) NOT NULL,
			change_percent NUMERIC(8,2) NOT NULL,
			volume BIGINT NOT NULL,
			market_cap NUMERIC(20,0) NOT NULL,
			fifty_two_week_range TEXT NOT NULL,
			last_refreshed TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (list_type, symbol)
		)`,
		`CREATE TABLE IF NOT EXISTS asset_history (
			date DATE PRIMARY KEY,
			cash_value NUMERIC(12,2) NOT NULL,
			stock_value NUMERIC(12,2) NOT NULL,
			bond_value NUMERIC(12,2) NOT NULL,
			other_value NUMERIC(12,2) NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS portfolio_summary (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			total_value NUMERIC(12,2) NOT NULL,
			gain_loss NUMERIC(12,2) NOT NULL,
			gain_loss_percent NUMERIC(8,2) NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS watchlist (
			symbol TEXT PRIMARY KEY,
			added_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to bootstrap schema: %w", err)
		}
	}

	return nil
}
