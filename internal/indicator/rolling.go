package indicator

import (
	"math"

	"github.com/montanaflynn/stats"
)

// Rolling window and exponential smoothing primitives shared by the
// indicator implementations.
//
// Unless stated otherwise, windows shrink at the start of the series
// (minimum one observation) and NaN cells are skipped, so early rows carry
// values instead of a warm-up gap. Wilder-smoothed series are the
// exception: they stay NaN until a full period of observations has
// accumulated.

// rollingMean is the arithmetic mean over a trailing window, skipping NaN
// cells. A window with no valid cells yields NaN.
func rollingMean(vals []float64, window int) []float64 {
	window = clampWindow(window)
	out := make([]float64, len(vals))
	for i := range vals {
		sum, count := 0.0, 0
		for j := windowStart(i, window); j <= i; j++ {
			if !math.IsNaN(vals[j]) {
				sum += vals[j]
				count++
			}
		}
		if count == 0 {
			out[i] = math.NaN()
		} else {
			out[i] = sum / float64(count)
		}
	}
	return out
}

// rollingStd is the sample standard deviation over a trailing window,
// skipping NaN cells. Fewer than two valid cells yield NaN.
func rollingStd(vals []float64, window int) []float64 {
	window = clampWindow(window)
	out := make([]float64, len(vals))
	win := make([]float64, 0, window)
	for i := range vals {
		win = win[:0]
		for j := windowStart(i, window); j <= i; j++ {
			if !math.IsNaN(vals[j]) {
				win = append(win, vals[j])
			}
		}
		if len(win) < 2 {
			out[i] = math.NaN()
			continue
		}
		sd, err := stats.StandardDeviationSample(win)
		if err != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = sd
	}
	return out
}

// rollingMin is the minimum over a trailing window, skipping NaN cells.
func rollingMin(vals []float64, window int) []float64 {
	return rollingExtreme(vals, window, func(a, b float64) bool { return a < b })
}

// rollingMax is the maximum over a trailing window, skipping NaN cells.
func rollingMax(vals []float64, window int) []float64 {
	return rollingExtreme(vals, window, func(a, b float64) bool { return a > b })
}

func rollingExtreme(vals []float64, window int, better func(a, b float64) bool) []float64 {
	window = clampWindow(window)
	out := make([]float64, len(vals))
	for i := range vals {
		best := math.NaN()
		for j := windowStart(i, window); j <= i; j++ {
			v := vals[j]
			if math.IsNaN(v) {
				continue
			}
			if math.IsNaN(best) || better(v, best) {
				best = v
			}
		}
		out[i] = best
	}
	return out
}

// rollingWeighted is the linearly-weighted mean with weights 1..n, the most
// recent cell carrying the largest weight. Short windows at the start use
// weights 1..window_length. NaN cells propagate to the result.
func rollingWeighted(vals []float64, window int) []float64 {
	window = clampWindow(window)
	out := make([]float64, len(vals))
	for i := range vals {
		w := window
		if i+1 < w {
			w = i + 1
		}
		num, den := 0.0, 0.0
		for j := 0; j < w; j++ {
			weight := float64(j + 1)
			num += vals[i-w+1+j] * weight
			den += weight
		}
		out[i] = num / den
	}
	return out
}

// rollingMeanAbsDev is the mean absolute deviation about the window mean.
// NaN cells propagate to the result.
func rollingMeanAbsDev(vals []float64, window int) []float64 {
	window = clampWindow(window)
	out := make([]float64, len(vals))
	win := make([]float64, 0, window)
	dev := make([]float64, 0, window)
	for i := range vals {
		win = win[:0]
		for j := windowStart(i, window); j <= i; j++ {
			win = append(win, vals[j])
		}
		m, err := stats.Mean(win)
		if err != nil {
			out[i] = math.NaN()
			continue
		}
		dev = dev[:0]
		for _, v := range win {
			dev = append(dev, math.Abs(v-m))
		}
		md, err := stats.Mean(dev)
		if err != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = md
	}
	return out
}

// ewm is a recursive exponential mean: s[0] seeds from the first valid
// value, then s = alpha*v + (1-alpha)*s. NaN cells carry the previous
// state. Output is NaN until minObs valid observations have accumulated.
func ewm(vals []float64, alpha float64, minObs int) []float64 {
	out := make([]float64, len(vals))
	state := math.NaN()
	count := 0
	for i, v := range vals {
		if !math.IsNaN(v) {
			if math.IsNaN(state) {
				state = v
			} else {
				state = alpha*v + (1-alpha)*state
			}
			count++
		}
		if count >= minObs {
			out[i] = state
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// ewmSpan is ewm with the span parameterization alpha = 2/(span+1) and no
// warm-up gap.
func ewmSpan(vals []float64, span int) []float64 {
	return ewm(vals, 2/(float64(span)+1), 1)
}

// wilder is ewm with alpha = 1/period, undefined until period observations
// have accumulated.
func wilder(vals []float64, period int) []float64 {
	return ewm(vals, 1/float64(period), period)
}

// diff is vals[i] - vals[i-n]; the first n rows are NaN.
func diff(vals []float64, n int) []float64 {
	out := make([]float64, len(vals))
	for i := range vals {
		if i < n {
			out[i] = math.NaN()
			continue
		}
		out[i] = vals[i] - vals[i-n]
	}
	return out
}

func windowStart(i, window int) int {
	if i-window+1 < 0 {
		return 0
	}
	return i - window + 1
}

func clampWindow(window int) int {
	if window < 1 {
		return 1
	}
	return window
}
