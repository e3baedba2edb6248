package market

import (
	"math"

	"github.com/shopspring/decimal"

	"coin-dashboard/internal/domain"
)

// Change returns the percent change between the first and last point of an
// ascending price series. Fewer than two points, or a zero opening price,
// yield 0.
func Change(points []*domain.HistoricalPricePoint) float64 {
	if len(points) < 2 {
		return 0
	}
	first, last := points[0].Price, points[len(points)-1].Price
	if first <= 0 || math.IsNaN(first) || math.IsNaN(last) {
		return 0
	}
	return (last - first) / first * 100
}

// Volume returns the sum of amount × price over trades, in SOL.
func Volume(trades []*domain.Trade) float64 {
	total := decimal.Zero
	for _, t := range trades {
		if t.Amount <= 0 || t.Price <= 0 || math.IsInf(t.Amount, 0) || math.IsInf(t.Price, 0) {
			continue
		}
		total = total.Add(decimal.NewFromFloat(t.Amount).Mul(decimal.NewFromFloat(t.Price)))
	}
	return total.InexactFloat64()
}
