package indicator

import (
	"math"

	"github.com/contactkeval/option-data/internal/series"
)

// rsiIndicator is the Relative Strength Index with Wilder smoothing
// (alpha = 1/period) of gains and losses. Undefined until period
// observations have accumulated; a zero average loss maps to RSI 50.
// Default period 14.
func rsiIndicator(t *series.Table, p Params) (Result, error) {
	col, err := p.column(t)
	if err != nil {
		return Result{}, err
	}
	period := p.period(14)

	delta := diff(col, 1)
	gains := make([]float64, len(col))
	losses := make([]float64, len(col))
	for i, d := range delta {
		// The undefined first delta counts as a zero observation.
		if d > 0 {
			gains[i] = d
		} else if d < 0 {
			losses[i] = -d
		}
	}

	avgGain := wilder(gains, period)
	avgLoss := wilder(losses, period)

	out := make([]float64, len(col))
	for i := range out {
		switch {
		case math.IsNaN(avgGain[i]) || math.IsNaN(avgLoss[i]):
			out[i] = math.NaN()
		case avgLoss[i] == 0:
			out[i] = 50
		default:
			rs := avgGain[i] / avgLoss[i]
			out[i] = 100 - 100/(1+rs)
		}
	}
	return line(out), nil
}

// stochasticIndicator is the stochastic oscillator:
// %K = 100*(close-lowestLow)/(highestHigh-lowestLow) with a degenerate
// range mapping to 50, and %D the rolling mean of %K. Defaults k=14, d=3.
func stochasticIndicator(t *series.Table, p Params) (Result, error) {
	kPeriod := orInt(p.KPeriod, 14)
	dPeriod := orInt(p.DPeriod, 3)

	closes := t.Closes()
	lowest := rollingMin(t.Lows(), kPeriod)
	highest := rollingMax(t.Highs(), kPeriod)

	k := make([]float64, len(closes))
	for i := range k {
		span := highest[i] - lowest[i]
		v := 100 * (closes[i] - lowest[i]) / span
		if span == 0 || math.IsNaN(v) {
			v = 50
		}
		k[i] = v
	}
	d := rollingMean(k, dPeriod)

	return Result{Lines: map[string][]float64{"k": k, "d": d}}, nil
}

// cciIndicator is the Commodity Channel Index:
// (tp - SMA(tp)) / (0.015 * meanAbsDev(tp)), with a zero mean absolute
// deviation mapping to 0. Default period 20.
func cciIndicator(t *series.Table, p Params) (Result, error) {
	period := p.period(20)

	tp := t.TypicalPrices()
	sma := rollingMean(tp, period)
	mad := rollingMeanAbsDev(tp, period)

	out := make([]float64, len(tp))
	for i := range out {
		v := (tp[i] - sma[i]) / (0.015 * mad[i])
		if mad[i] == 0 || math.IsNaN(v) {
			v = 0
		}
		out[i] = v
	}
	return line(out), nil
}

// williamsRIndicator is Williams %R:
// -100*(highestHigh-close)/(highestHigh-lowestLow), with a degenerate range
// mapping to -50. Default period 14.
func williamsRIndicator(t *series.Table, p Params) (Result, error) {
	period := p.period(14)

	closes := t.Closes()
	highest := rollingMax(t.Highs(), period)
	lowest := rollingMin(t.Lows(), period)

	out := make([]float64, len(closes))
	for i := range out {
		span := highest[i] - lowest[i]
		v := -100 * (highest[i] - closes[i]) / span
		if span == 0 || math.IsNaN(v) {
			v = -50
		}
		out[i] = v
	}
	return line(out), nil
}
