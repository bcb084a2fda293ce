package core

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculate(t *testing.T) {
	tests := []struct {
		name     string
		lines    []CostedLine
		fee      int64
		shipping int64
		want     Financials
	}{
		{
			name:     "typical issuance",
			lines:    []CostedLine{{Quantity: 10, UnitPrice: 75000, UnitCost: 60000}},
			fee:      400,
			shipping: 25000,
			want: Financials{
				GrossRevenue:     750000,
				CostOfGoods:      600000,
				GrossMargin:      150000,
				HandlingFeeTotal: 4000,
				ShippingCharge:   25000,
				OperatingCost:    29000,
				RunningMargin:    121000,
				OwnerShares:      [OwnerCount]int64{36300, 36300, 36300},
				ReserveShare:     12100,
			},
		},
		{
			name:  "exact split of 100",
			lines: []CostedLine{{Quantity: 1, UnitPrice: 100}},
			want: Financials{
				GrossRevenue:  100,
				GrossMargin:   100,
				RunningMargin: 100,
				OwnerShares:   [OwnerCount]int64{30, 30, 30},
				ReserveShare:  10,
			},
		},
		{
			name:  "floor leaves remainder undistributed",
			lines: []CostedLine{{Quantity: 1, UnitPrice: 101}},
			want: Financials{
				GrossRevenue:  101,
				GrossMargin:   101,
				RunningMargin: 101,
				OwnerShares:   [OwnerCount]int64{30, 30, 30},
				ReserveShare:  10,
				Undistributed: 1,
			},
		},
		{
			name:  "fees push margin negative",
			lines: []CostedLine{{Quantity: 10, UnitPrice: 50000, UnitCost: 50000}},
			fee:   400,
			want: Financials{
				GrossRevenue:     500000,
				CostOfGoods:      500000,
				HandlingFeeTotal: 4000,
				OperatingCost:    4000,
				RunningMargin:    -4000,
				OwnerShares:      [OwnerCount]int64{-1200, -1200, -1200},
				ReserveShare:     -400,
			},
		},
		{
			name:  "negative margin floors away from zero",
			lines: []CostedLine{{Quantity: 1, UnitPrice: 0, UnitCost: 1}},
			want: Financials{
				CostOfGoods:   1,
				GrossMargin:   -1,
				RunningMargin: -1,
				OwnerShares:   [OwnerCount]int64{-1, -1, -1},
				ReserveShare:  -1,
				Undistributed: 3,
			},
		},
		{
			name: "multiple lines sum units for the fee",
			lines: []CostedLine{
				{Quantity: 2, UnitPrice: 1000, UnitCost: 500},
				{Quantity: 3, UnitPrice: 2000, UnitCost: 1500},
			},
			fee: 10,
			want: Financials{
				GrossRevenue:     8000,
				CostOfGoods:      5500,
				GrossMargin:      2500,
				HandlingFeeTotal: 50,
				OperatingCost:    50,
				RunningMargin:    2450,
				OwnerShares:      [OwnerCount]int64{735, 735, 735},
				ReserveShare:     245,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Calculate(tt.lines, tt.fee, tt.shipping)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			distributed := got.OwnerShares[0]*OwnerCount + got.ReserveShare + got.Undistributed
			assert.Equal(t, got.RunningMargin, distributed)
		})
	}
}

func TestCalculate_RejectsOverflow(t *testing.T) {
	tests := []struct {
		name     string
		lines    []CostedLine
		fee      int64
		shipping int64
	}{
		{"line revenue", []CostedLine{{Quantity: math.MaxInt64 / 2, UnitPrice: 3}}, 0, 0},
		{"summed revenue", []CostedLine{
			{Quantity: 1, UnitPrice: math.MaxInt64},
			{Quantity: 1, UnitPrice: 1},
		}, 0, 0},
		{"cost of goods", []CostedLine{{Quantity: 1 << 40, UnitPrice: 1, UnitCost: 1 << 40}}, 0, 0},
		{"handling fee", []CostedLine{{Quantity: 1 << 40, UnitPrice: 1}}, 1 << 40, 0},
		{"operating cost", []CostedLine{{Quantity: 1, UnitPrice: 1}}, math.MaxInt64, 1},
		{"running margin", []CostedLine{{Quantity: 1, UnitPrice: 0, UnitCost: math.MaxInt64}}, 0, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Calculate(tt.lines, tt.fee, tt.shipping)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}
