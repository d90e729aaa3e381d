package indicator

import (
	"math"

	"github.com/contactkeval/option-data/internal/series"
)

// macdIndicator is the Moving Average Convergence/Divergence: the fast EMA
// minus the slow EMA, an EMA signal line over it, and their difference as
// the histogram. Defaults 12/26/9.
func macdIndicator(t *series.Table, p Params) (Result, error) {
	col, err := p.column(t)
	if err != nil {
		return Result{}, err
	}
	fast := orInt(p.FastPeriod, 12)
	slow := orInt(p.SlowPeriod, 26)
	signalPeriod := orInt(p.SignalPeriod, 9)

	fastEMA := ewmSpan(col, fast)
	slowEMA := ewmSpan(col, slow)

	macd := make([]float64, len(col))
	for i := range macd {
		macd[i] = fastEMA[i] - slowEMA[i]
	}
	signal := ewmSpan(macd, signalPeriod)

	histogram := make([]float64, len(col))
	for i := range histogram {
		histogram[i] = macd[i] - signal[i]
	}
	return Result{Lines: map[string][]float64{
		"macd":      macd,
		"signal":    signal,
		"histogram": histogram,
	}}, nil
}

// adxIndicator is the Average Directional Index: directional movement and
// true range are Wilder-smoothed into +DI/-DI, DX is
// 100*|+DI - -DI|/(+DI + -DI) with a degenerate sum mapping to 0, and ADX
// is the Wilder-smoothed DX. Undefined until the smoothing has warmed up.
// Default period 14.
func adxIndicator(t *series.Table, p Params) (Result, error) {
	period := p.period(14)

	highs, lows := t.Highs(), t.Lows()
	plusDM := make([]float64, len(highs))
	minusDM := make([]float64, len(lows))
	for i := 1; i < len(highs); i++ {
		if up := highs[i] - highs[i-1]; up > 0 {
			plusDM[i] = up
		}
		if down := math.Abs(lows[i] - lows[i-1]); down > 0 {
			minusDM[i] = down
		}
	}

	smoothedTR := wilder(trueRange(t), period)
	smoothedPlus := wilder(plusDM, period)
	smoothedMinus := wilder(minusDM, period)

	dx := make([]float64, len(highs))
	for i := range dx {
		plusDI := 100 * smoothedPlus[i] / smoothedTR[i]
		minusDI := 100 * smoothedMinus[i] / smoothedTR[i]
		sum := plusDI + minusDI
		switch {
		case math.IsNaN(plusDI) || math.IsNaN(minusDI):
			dx[i] = math.NaN()
		case sum == 0:
			dx[i] = 0
		default:
			dx[i] = 100 * math.Abs(plusDI-minusDI) / sum
		}
	}

	return Result{Lines: map[string][]float64{"adx": wilder(dx, period)}}, nil
}

// momentumIndicator is close[t] - close[t-period]. Default period 10.
func momentumIndicator(t *series.Table, p Params) (Result, error) {
	col, err := p.column(t)
	if err != nil {
		return Result{}, err
	}
	return line(diff(col, p.period(10))), nil
}

// rocIndicator is the rate of change,
// 100*(close[t]-close[t-period])/close[t-period]; a zero base is
// undefined. Default period 10.
func rocIndicator(t *series.Table, p Params) (Result, error) {
	col, err := p.column(t)
	if err != nil {
		return Result{}, err
	}
	period := p.period(10)

	out := make([]float64, len(col))
	for i := range out {
		if i < period || col[i-period] == 0 {
			out[i] = math.NaN()
			continue
		}
		out[i] = 100 * (col[i] - col[i-period]) / col[i-period]
	}
	return line(out), nil
}
