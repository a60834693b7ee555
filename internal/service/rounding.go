package service

import (
	"math"

	"github.com/shopspring/decimal"
)

// roundTo rounds half to even, the way the recap spreadsheets are reported.
// Non-finite values are returned unchanged.
func roundTo(v float64, places int32) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return v
	}
	f, _ := decimal.NewFromFloat(v).RoundBank(places).Float64()
	return f
}

// sumOf adds values in decimal to keep totals free of float drift.
func sumOf(values []float64) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total
}
