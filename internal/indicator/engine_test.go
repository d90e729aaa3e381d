package indicator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-data/internal/series"
)

func closesTable(closes ...float64) *series.Table {
	t := &series.Table{}
	base := time.Date(2025, 6, 20, 9, 15, 0, 0, time.UTC)
	for i, c := range closes {
		t.Bars = append(t.Bars, series.Bar{
			Datetime: base.Add(time.Duration(i) * time.Minute),
			Open:     c, High: c, Low: c, Close: c,
			Volume: 100,
		})
	}
	return t
}

func ohlcvTable(highs, lows, closes, volumes []float64) *series.Table {
	t := &series.Table{}
	base := time.Date(2025, 6, 20, 9, 15, 0, 0, time.UTC)
	for i := range closes {
		b := series.Bar{
			Datetime: base.Add(time.Duration(i) * time.Minute),
			Open:     closes[i],
			High:     highs[i],
			Low:      lows[i],
			Close:    closes[i],
		}
		if volumes != nil {
			b.Volume = volumes[i]
		}
		t.Bars = append(t.Bars, b)
	}
	return t
}

func TestComputeUnknownIndicator(t *testing.T) {
	e := NewEngine()
	_, err := e.Compute(closesTable(1, 2, 3), "WOBBLE", Params{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown indicator")
}

func TestComputeCaseInsensitive(t *testing.T) {
	e := NewEngine()
	upper, err := e.Compute(closesTable(10, 20, 30), "SMA", Params{Period: 2})
	require.NoError(t, err)
	lower, err := e.Compute(closesTable(10, 20, 30), " sma ", Params{Period: 2})
	require.NoError(t, err)
	assert.Equal(t, upper.Line, lower.Line)
}

func TestComputeUnknownColumn(t *testing.T) {
	e := NewEngine()
	_, err := e.Compute(closesTable(10, 20, 30), "SMA", Params{Column: "typical"})
	require.Error(t, err)
}

func TestNamesCoversRegistry(t *testing.T) {
	e := NewEngine()
	names := e.Names()
	assert.Len(t, names, 18)
	assert.Contains(t, names, "SMA")
	assert.Contains(t, names, "VWAP")

	// every registered name computes with defaults
	tbl := ohlcvTable(
		[]float64{10, 12, 11, 13, 12, 14, 15, 14, 16, 15, 17, 16, 18, 17, 19, 18},
		[]float64{8, 9, 8.5, 10, 9.5, 11, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15},
		[]float64{9, 11, 10, 12, 11, 13, 14, 13, 15, 14, 16, 15, 17, 16, 18, 17},
		[]float64{100, 110, 90, 120, 80, 130, 140, 95, 150, 100, 160, 105, 170, 110, 180, 115},
	)
	for _, name := range names {
		res, err := e.Compute(tbl, name, Params{})
		require.NoError(t, err, name)
		if res.Line != nil {
			assert.Len(t, res.Line, tbl.Len(), name)
		} else {
			require.NotEmpty(t, res.Lines, name)
			for key, ln := range res.Lines {
				assert.Len(t, ln, tbl.Len(), name+"/"+key)
			}
		}
	}
}

func TestResultsAreFreshPerCall(t *testing.T) {
	e := NewEngine()
	tbl := closesTable(10, 20, 30, 40)

	first, err := e.Compute(tbl, "SMA", Params{Period: 3})
	require.NoError(t, err)
	second, err := e.Compute(tbl, "SMA", Params{Period: 3})
	require.NoError(t, err)

	first.Line[0] = -1
	assert.Equal(t, 10.0, second.Line[0], "results must not share storage")
}
