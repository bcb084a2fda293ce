package core

import (
	"math"

	"github.com/shopspring/decimal"
)

var (
	ownerShareRate   = decimal.RequireFromString("0.30")
	reserveShareRate = decimal.RequireFromString("0.10")
)

// CostedLine is the calculator's view of a line: quantity, sale price and the
// item's unit cost at the time of calculation.
type CostedLine struct {
	Quantity  int64
	UnitPrice int64
	UnitCost  int64
}

// Financials is the full monetary chain derived from a set of lines.
// Undistributed is what floor division leaves over after the split; it is
// never reassigned.
type Financials struct {
	GrossRevenue     int64             `json:"gross_revenue"`
	CostOfGoods      int64             `json:"cost_of_goods"`
	GrossMargin      int64             `json:"gross_margin"`
	HandlingFeeTotal int64             `json:"handling_fee_total"`
	ShippingCharge   int64             `json:"shipping_charge"`
	OperatingCost    int64             `json:"operating_cost"`
	RunningMargin    int64             `json:"running_margin"`
	OwnerShares      [OwnerCount]int64 `json:"owner_shares"`
	ReserveShare     int64             `json:"reserve_share"`
	Undistributed    int64             `json:"undistributed"`
}

// Calculate derives revenue, cost, margins and the profit split. It is pure.
// Totals that do not fit in int64 are rejected with a validation error.
func Calculate(lines []CostedLine, feeRatePerUnit, shippingCharge int64) (Financials, error) {
	var f Financials
	var units int64
	ok := true
	for _, l := range lines {
		f.GrossRevenue = addInt(f.GrossRevenue, mulInt(l.Quantity, l.UnitPrice, &ok), &ok)
		f.CostOfGoods = addInt(f.CostOfGoods, mulInt(l.Quantity, l.UnitCost, &ok), &ok)
		units = addInt(units, l.Quantity, &ok)
	}
	f.GrossMargin = addInt(f.GrossRevenue, negInt(f.CostOfGoods, &ok), &ok)
	f.HandlingFeeTotal = mulInt(feeRatePerUnit, units, &ok)
	f.ShippingCharge = shippingCharge
	f.OperatingCost = addInt(f.HandlingFeeTotal, shippingCharge, &ok)
	f.RunningMargin = addInt(f.GrossMargin, negInt(f.OperatingCost, &ok), &ok)
	if !ok {
		return Financials{}, Validationf("issuance totals exceed the supported range")
	}

	owner := floorShare(f.RunningMargin, ownerShareRate)
	for i := range f.OwnerShares {
		f.OwnerShares[i] = owner
	}
	f.ReserveShare = floorShare(f.RunningMargin, reserveShareRate)
	f.Undistributed = f.RunningMargin - owner*OwnerCount - f.ReserveShare
	return f, nil
}

// addInt, mulInt and negInt clear ok on int64 overflow. Once ok is false the
// returned values are meaningless.
func addInt(a, b int64, ok *bool) int64 {
	c := a + b
	if (c > a) != (b > 0) {
		*ok = false
	}
	return c
}

func mulInt(a, b int64, ok *bool) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	c := a * b
	if c/b != a || (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		*ok = false
	}
	return c
}

func negInt(a int64, ok *bool) int64 {
	if a == math.MinInt64 {
		*ok = false
	}
	return -a
}

// floorShare rounds toward negative infinity, so a negative margin yields
// shares at least as negative as the exact product.
func floorShare(amount int64, rate decimal.Decimal) int64 {
	return decimal.NewFromInt(amount).Mul(rate).Floor().IntPart()
}
