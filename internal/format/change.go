package format

// Tone is the styling class of a signed change.
type Tone string

const (
	TonePositive Tone = "positive"
	ToneNegative Tone = "negative"
)

// ProfitLossPlaces is the precision of realized PnL totals.
const ProfitLossPlaces = 4

// Signed renders v with places decimals and an explicit sign. Negative values
// keep "-" even when they round to zero.
func Signed(v float64, places int32) string {
	d := toDecimal(v)
	if d.IsNegative() {
		return "-" + d.Abs().StringFixed(places)
	}
	return "+" + d.StringFixed(places)
}

// ToneOf returns TonePositive for v >= 0 and ToneNegative otherwise.
func ToneOf(v float64) Tone {
	if toDecimal(v).IsNegative() {
		return ToneNegative
	}
	return TonePositive
}

// Change renders a 24h percentage change with 2 decimal places, an explicit
// sign and a "%" suffix, along with its tone.
func Change(pct float64) (string, Tone) {
	return Signed(pct, ChangePlaces) + "%", ToneOf(pct)
}

// ProfitLoss renders a signed PnL total with 4 decimal places.
func ProfitLoss(v float64) string {
	return Signed(v, ProfitLossPlaces)
}
