package domain

import "errors"

// Sentinel errors shared across the engine, stores, and providers.
// Callers match them with errors.Is; wrapping with fmt.Errorf("…: %w", err)
// preserves the classification across layers.
var (
	// ErrInvalidAmount is returned when a change amount is non-numeric or
	// non-positive. Rejected before any store mutation.
	ErrInvalidAmount = errors.New("change amount must be a positive number")

	// ErrMissingSymbol is returned when an operation on a symbol-bearing
	// asset class is attempted without a symbol.
	ErrMissingSymbol = errors.New("symbol is required for this asset class")

	// ErrUnknownAssetClass is returned for asset classes outside
	// cash/stock/bond/other.
	ErrUnknownAssetClass = errors.New("unknown asset class")

	// ErrInsufficientBalance is returned when a reduction would drive a
	// holding's quantity negative. The holding is left unchanged.
	ErrInsufficientBalance = errors.New("insufficient balance for reduction")

	// ErrUpstreamUnavailable is returned when an external market data
	// provider call fails or times out.
	ErrUpstreamUnavailable = errors.New("market data provider unavailable")

	// ErrDataInconsistency marks a detected cross-table mismatch. It aborts
	// the current operation and is never repaired automatically.
	ErrDataInconsistency = errors.New("data inconsistency detected")

	// ErrNotFound is returned by repositories when no row matches.
	ErrNotFound = errors.New("record not found")
)
