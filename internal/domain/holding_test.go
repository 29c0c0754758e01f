package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestHolding_Validate(t *testing.T) {
	tests := []struct {
		name    string
		holding Holding
		wantErr bool
		errIs   error
	}{
		{
			name: "Stock holding without symbol should fail",
			holding: Holding{
				ID:         uuid.New(),
				AssetClass: AssetClassStock,
				// Symbol is empty
				Quantity: decimal.NewFromInt(10),
			},
			wantErr: true,
			errIs:   ErrMissingSymbol,
		},
		{
			name: "Stock holding with symbol should pass",
			holding: Holding{
				ID:         uuid.New(),
				AssetClass: AssetClassStock,
				Symbol:     "AAPL",
				Quantity:   decimal.NewFromInt(10),
			},
			wantErr: false,
		},
		{
			name: "Cash holding without symbol should pass",
			holding: Holding{
				ID:         uuid.New(),
				AssetClass: AssetClassCash,
				Quantity:   decimal.NewFromInt(5000),
			},
			wantErr: false,
		},
		{
			name: "Negative quantity should fail",
			holding: Holding{
				ID:         uuid.New(),
				AssetClass: AssetClassBond,
				Quantity:   decimal.NewFromInt(-1),
			},
			wantErr: true,
		},
		{
			name: "Unknown asset class should fail",
			holding: Holding{
				ID:         uuid.New(),
				AssetClass: AssetClass("crypto"),
				Quantity:   decimal.NewFromInt(1),
			},
			wantErr: true,
			errIs:   ErrUnknownAssetClass,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.holding.Validate()
			if tt.wantErr {
				assert.Error(t, err)
				if tt.errIs != nil {
					assert.ErrorIs(t, err, tt.errIs)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseHistoryRange(t *testing.T) {
	for _, valid := range []string{"7d", "1m", "6m"} {
		r, err := ParseHistoryRange(valid)
		assert.NoError(t, err)
		assert.Equal(t, HistoryRange(valid), r)
	}

	_, err := ParseHistoryRange("1y")
	assert.Error(t, err)
}

func TestHistoryPoint_Total(t *testing.T) {
	point := HistoryPoint{
		Cash:  decimal.NewFromInt(5000),
		Stock: decimal.NewFromInt(2100),
		Bond:  decimal.NewFromInt(2000),
		Other: decimal.NewFromInt(1000),
	}

	assert.True(t, point.Total().Equal(decimal.NewFromInt(10100)))
}
