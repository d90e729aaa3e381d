package indicator

import (
	"github.com/contactkeval/option-data/internal/series"
)

// smaIndicator is the rolling arithmetic mean. Windows shrink at the start,
// so there is no warm-up gap. Default period 20.
func smaIndicator(t *series.Table, p Params) (Result, error) {
	col, err := p.column(t)
	if err != nil {
		return Result{}, err
	}
	return line(rollingMean(col, p.period(20))), nil
}

// emaIndicator is the recursive exponential mean with alpha = 2/(period+1),
// seeded from the first value. Default period 20.
func emaIndicator(t *series.Table, p Params) (Result, error) {
	col, err := p.column(t)
	if err != nil {
		return Result{}, err
	}
	return line(ewmSpan(col, p.period(20))), nil
}

// wmaIndicator is the rolling linearly-weighted mean with weights
// 1..period. Default period 20.
func wmaIndicator(t *series.Table, p Params) (Result, error) {
	col, err := p.column(t)
	if err != nil {
		return Result{}, err
	}
	return line(rollingWeighted(col, p.period(20))), nil
}

// demaIndicator is 2*EMA1 - EMA2 where EMA2 smooths EMA1. Default period 20.
func demaIndicator(t *series.Table, p Params) (Result, error) {
	col, err := p.column(t)
	if err != nil {
		return Result{}, err
	}
	period := p.period(20)
	ema1 := ewmSpan(col, period)
	ema2 := ewmSpan(ema1, period)

	out := make([]float64, len(col))
	for i := range out {
		out[i] = 2*ema1[i] - ema2[i]
	}
	return line(out), nil
}

// temaIndicator is 3*EMA1 - 3*EMA2 + EMA3, each EMA smoothing the previous.
// Default period 20.
func temaIndicator(t *series.Table, p Params) (Result, error) {
	col, err := p.column(t)
	if err != nil {
		return Result{}, err
	}
	period := p.period(20)
	ema1 := ewmSpan(col, period)
	ema2 := ewmSpan(ema1, period)
	ema3 := ewmSpan(ema2, period)

	out := make([]float64, len(col))
	for i := range out {
		out[i] = 3*ema1[i] - 3*ema2[i] + ema3[i]
	}
	return line(out), nil
}
