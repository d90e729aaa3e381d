package indicator

import (
	"math"

	"github.com/contactkeval/option-data/internal/series"
)

// obvIndicator is On-Balance Volume: the cumulative sum of
// sign(close delta) * volume, with the first row's direction defined as 0.
func obvIndicator(t *series.Table, p Params) (Result, error) {
	closes := t.Closes()
	volumes := t.Volumes()

	out := make([]float64, len(closes))
	sum := 0.0
	for i := range closes {
		if i > 0 {
			delta := closes[i] - closes[i-1]
			contribution := 0.0
			switch {
			case delta > 0:
				contribution = volumes[i]
			case delta < 0:
				contribution = -volumes[i]
			}
			if !math.IsNaN(contribution) {
				sum += contribution
			}
		}
		out[i] = sum
	}
	return line(out), nil
}

// vwapIndicator is the cumulative volume-weighted average price over
// typical prices. Rows before any volume has traded are undefined.
func vwapIndicator(t *series.Table, p Params) (Result, error) {
	tp := t.TypicalPrices()
	volumes := t.Volumes()

	out := make([]float64, len(tp))
	sumPV, sumV := 0.0, 0.0
	for i := range tp {
		pv := tp[i] * volumes[i]
		if !math.IsNaN(pv) {
			sumPV += pv
		}
		if !math.IsNaN(volumes[i]) {
			sumV += volumes[i]
		}
		if sumV == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = sumPV / sumV
	}
	return line(out), nil
}
