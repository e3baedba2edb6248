package format

import (
	"math"
	"strconv"
)

// Score bounds.
const (
	ScoreMin = 0
	ScoreMax = 100
)

// Sentiment labels.
const (
	SentimentPositive = "Positive"
	SentimentNegative = "Negative"
	SentimentNeutral  = "Neutral"
)

// ScoreBar returns the bar fill percentage for a social score, clamped to [0, 100].
func ScoreBar(score float64) float64 {
	if math.IsNaN(score) {
		return ScoreMin
	}
	return math.Max(ScoreMin, math.Min(ScoreMax, score))
}

// Score renders a social score as "x/100", x rounded to one decimal place
// with trailing zeros dropped.
func Score(score float64) string {
	return toDecimal(ScoreBar(score)).Round(1).String() + "/" + strconv.Itoa(ScoreMax)
}

// SentimentLabel maps a signed sentiment to Positive, Negative or Neutral.
func SentimentLabel(sentiment float64) string {
	switch {
	case sentiment > 0:
		return SentimentPositive
	case sentiment < 0:
		return SentimentNegative
	default:
		return SentimentNeutral
	}
}
