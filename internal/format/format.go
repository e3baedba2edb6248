// Package format renders coin and trade values into display strings.
//
// All rounding happens in decimal arithmetic (half away from zero) so the
// rendered digits match what a reader would compute by hand. Non-finite
// inputs render as zero.
package format

import (
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Decimal places per field.
const (
	PricePlaces      = 6
	VolumePlaces     = 2
	MarketCapPlaces  = 0
	SupplyPlaces     = 0
	ChangePlaces     = 2
	TradeTotalPlaces = 4
)

// toDecimal converts f, mapping NaN and ±Inf to zero.
func toDecimal(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}

func fixed(f float64, places int32) string {
	return toDecimal(f).StringFixed(places)
}

// Price renders a price with 6 decimal places.
func Price(p float64) string {
	return fixed(p, PricePlaces)
}

// Volume renders a 24h volume with 2 decimal places.
func Volume(v float64) string {
	return fixed(v, VolumePlaces)
}

// MarketCap renders a market cap with no decimal places.
func MarketCap(v float64) string {
	return fixed(v, MarketCapPlaces)
}

// Supply renders a total supply with no decimal places.
func Supply(v float64) string {
	return fixed(v, SupplyPlaces)
}

// TradeTotal renders amount × price with 4 decimal places.
func TradeTotal(amount, price float64) string {
	return toDecimal(amount).Mul(toDecimal(price)).StringFixed(TradeTotalPlaces)
}

// Timestamp renders unix milliseconds as RFC3339 in UTC.
func Timestamp(ms int64) string {
	return time.UnixMilli(ms).UTC().Format(time.RFC3339)
}

// Clock renders unix milliseconds as HH:MM in loc (UTC when nil).
func Clock(ms int64, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return time.UnixMilli(ms).In(loc).Format("15:04")
}
