package domain

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AssetClass represents the class of an owned asset
type AssetClass string

const (
	AssetClassCash  AssetClass = "cash"
	AssetClassStock AssetClass = "stock"
	AssetClassBond  AssetClass = "bond"
	AssetClassOther AssetClass = "other"
)

// Valid reports whether the asset class is one of the four supported classes
func (c AssetClass) Valid() bool {
	switch c {
	case AssetClassCash, AssetClassStock, AssetClassBond, AssetClassOther:
		return true
	}
	return false
}

// RequiresSymbol reports whether holdings of this class must carry a ticker
// symbol. Stock quantities are share counts priced via the price cache;
// cash/bond/other amounts are value-equivalent and need no lookup.
func (c AssetClass) RequiresSymbol() bool {
	return c == AssetClassStock
}

// Holding represents the current-state record of how much of a given asset
// class/symbol is owned. One row exists per (assetClass, symbol); repeated
// buys/sells mutate the quantity in place.
// Quantities use two decimal places for every asset class.
type Holding struct {
	ID         uuid.UUID
	AssetClass AssetClass
	Symbol     string // empty for classes without a traded symbol
	Quantity   decimal.Decimal
}

// Validate ensures the holding adheres to domain rules
// Returns an error if validation fails
func (h *Holding) Validate() error {
	if !h.AssetClass.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownAssetClass, h.AssetClass)
	}

	// Stock holdings MUST carry a symbol so they can be priced
	if h.AssetClass.RequiresSymbol() && h.Symbol == "" {
		return ErrMissingSymbol
	}

	// Quantity 0 means the row should not exist; it is deleted, not retained
	if h.Quantity.IsNegative() {
		return fmt.Errorf("holding quantity cannot be negative: %s", h.Quantity)
	}

	return nil
}
