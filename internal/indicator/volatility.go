package indicator

import (
	"math"

	"github.com/contactkeval/option-data/internal/series"
)

// trueRange is max(high-low, |high-prevClose|, |low-prevClose|) per bar,
// skipping undefined terms. The first bar has no previous close, so its
// true range is just high-low.
func trueRange(t *series.Table) []float64 {
	highs, lows, closes := t.Highs(), t.Lows(), t.Closes()

	out := make([]float64, len(highs))
	for i := range out {
		tr := highs[i] - lows[i]
		if i > 0 && !math.IsNaN(closes[i-1]) {
			tr = nanMax(tr, math.Abs(highs[i]-closes[i-1]))
			tr = nanMax(tr, math.Abs(lows[i]-closes[i-1]))
		}
		out[i] = tr
	}
	return out
}

// nanMax returns the larger of a and b, ignoring NaN terms.
func nanMax(a, b float64) float64 {
	switch {
	case math.IsNaN(a):
		return b
	case math.IsNaN(b):
		return a
	case b > a:
		return b
	}
	return a
}

// atrIndicator is the Wilder-smoothed (alpha = 1/period) true range,
// undefined until period observations have accumulated. Default period 14.
func atrIndicator(t *series.Table, p Params) (Result, error) {
	return line(wilder(trueRange(t), p.period(14))), nil
}

// bollingerIndicator computes Bollinger bands: middle is the rolling mean,
// upper/lower are middle +/- stdDev times the rolling sample standard
// deviation. Defaults period 20, stdDev 2.0.
func bollingerIndicator(t *series.Table, p Params) (Result, error) {
	col, err := p.column(t)
	if err != nil {
		return Result{}, err
	}
	period := p.period(20)
	width := orFloat(p.StdDev, 2.0)

	middle := rollingMean(col, period)
	sd := rollingStd(col, period)

	upper := make([]float64, len(col))
	lower := make([]float64, len(col))
	for i := range col {
		upper[i] = middle[i] + width*sd[i]
		lower[i] = middle[i] - width*sd[i]
	}
	return Result{Lines: map[string][]float64{
		"upper":  upper,
		"middle": middle,
		"lower":  lower,
	}}, nil
}

// keltnerIndicator computes Keltner channels: middle is the EMA of typical
// price, upper/lower are middle +/- multiplier*ATR(period). Defaults
// period 20, multiplier 2.0.
func keltnerIndicator(t *series.Table, p Params) (Result, error) {
	period := p.period(20)
	mult := orFloat(p.Multiplier, 2.0)

	middle := ewmSpan(t.TypicalPrices(), period)
	atr := wilder(trueRange(t), period)

	upper := make([]float64, len(middle))
	lower := make([]float64, len(middle))
	for i := range middle {
		upper[i] = middle[i] + mult*atr[i]
		lower[i] = middle[i] - mult*atr[i]
	}
	return Result{Lines: map[string][]float64{
		"upper":  upper,
		"middle": middle,
		"lower":  lower,
	}}, nil
}
