// Package series provides the timestamp-indexed OHLCV bar table shared by
// the data sources and the indicator engine.
//
// A Table is ordered strictly ascending by bar timestamp. Tables handed out
// by the data sources may be shared cached instances: callers must treat
// them as read-only.
package series

import (
	"sort"
	"strings"
	"time"

	"github.com/moznion/go-optional"
)

// OptionType identifies the side of an option contract.
type OptionType string

const (
	Call OptionType = "CE"
	Put  OptionType = "PE"
)

// ParseOptionType normalizes a raw option-type string. The second return
// value reports whether the input named a known side.
func ParseOptionType(s string) (OptionType, bool) {
	switch OptionType(strings.ToUpper(strings.TrimSpace(s))) {
	case Call:
		return Call, true
	case Put:
		return Put, true
	}
	return "", false
}

// Bar is a single OHLCV(+OI) observation at a timestamp.
//
// Open, High, Low and Close are NaN when the source cell was missing or
// failed numeric coercion. Volume and OpenInterest default to 0 when absent.
type Bar struct {
	Datetime     time.Time
	Open         float64
	High         float64
	Low          float64
	Close        float64
	Volume       float64
	OpenInterest int64
}

// TypicalPrice is (high + low + close) / 3.
func (b Bar) TypicalPrice() float64 {
	return (b.High + b.Low + b.Close) / 3
}

// Table is an ordered sequence of bars, one row per timestamp.
//
// For tables loaded by the options data source, Strike and OptionType are
// set uniformly for every row; spot tables leave them at their zero values.
type Table struct {
	Bars       []Bar
	Strike     float64
	OptionType OptionType
}

// Len returns the number of bars in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Bars)
}

// Empty reports whether the table holds no bars.
func (t *Table) Empty() bool { return t.Len() == 0 }

// Sort orders the bars ascending by timestamp. Loaders call this once
// before a table is published; published tables are never re-sorted.
func (t *Table) Sort() {
	sort.SliceStable(t.Bars, func(i, j int) bool {
		return t.Bars[i].Datetime.Before(t.Bars[j].Datetime)
	})
}

// SameDate reports whether two instants fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Midnight truncates an instant to its calendar date in UTC.
func Midnight(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FilterDate returns the sub-table of bars falling on the calendar date of
// d. The returned table shares the underlying bar storage; it carries the
// same Strike and OptionType stamp.
func (t *Table) FilterDate(d time.Time) *Table {
	if t == nil {
		return &Table{}
	}
	out := &Table{Strike: t.Strike, OptionType: t.OptionType}
	if t.Len() == 0 {
		return out
	}
	// Bars are sorted ascending, so a calendar date occupies one contiguous run.
	lo := sort.Search(len(t.Bars), func(i int) bool {
		return !t.Bars[i].Datetime.Before(Midnight(d))
	})
	hi := lo
	for hi < len(t.Bars) && SameDate(t.Bars[hi].Datetime, d) {
		hi++
	}
	out.Bars = t.Bars[lo:hi]
	return out
}

// NearestWithin finds the bar whose timestamp has the minimum absolute
// distance from ts. It returns None when the table is empty or when that
// minimum distance exceeds tol; a bar outside tolerance is never
// substituted. When two bars are equidistant the earlier one wins.
func (t *Table) NearestWithin(ts time.Time, tol time.Duration) optional.Option[Bar] {
	n := t.Len()
	if n == 0 {
		return optional.None[Bar]()
	}

	i := sort.Search(n, func(i int) bool {
		return !t.Bars[i].Datetime.Before(ts)
	})

	var best Bar
	switch {
	case i == 0:
		best = t.Bars[0]
	case i == n:
		best = t.Bars[n-1]
	default:
		before := t.Bars[i-1]
		after := t.Bars[i]
		// Ties go to the earlier bar.
		if ts.Sub(before.Datetime) <= after.Datetime.Sub(ts) {
			best = before
		} else {
			best = after
		}
	}

	diff := ts.Sub(best.Datetime)
	if diff < 0 {
		diff = -diff
	}
	if diff > tol {
		return optional.None[Bar]()
	}
	return optional.Some(best)
}

// Opens returns the open column.
func (t *Table) Opens() []float64 { return t.column(func(b Bar) float64 { return b.Open }) }

// Highs returns the high column.
func (t *Table) Highs() []float64 { return t.column(func(b Bar) float64 { return b.High }) }

// Lows returns the low column.
func (t *Table) Lows() []float64 { return t.column(func(b Bar) float64 { return b.Low }) }

// Closes returns the close column.
func (t *Table) Closes() []float64 { return t.column(func(b Bar) float64 { return b.Close }) }

// Volumes returns the volume column.
func (t *Table) Volumes() []float64 { return t.column(func(b Bar) float64 { return b.Volume }) }

// TypicalPrices returns the (high+low+close)/3 column.
func (t *Table) TypicalPrices() []float64 {
	return t.column(Bar.TypicalPrice)
}

// Timestamps returns the datetime index.
func (t *Table) Timestamps() []time.Time {
	if t == nil {
		return nil
	}
	out := make([]time.Time, t.Len())
	for i, b := range t.Bars {
		out[i] = b.Datetime
	}
	return out
}

// Column returns a named price/volume column. Unknown names return false.
func (t *Table) Column(name string) ([]float64, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "open":
		return t.Opens(), true
	case "high":
		return t.Highs(), true
	case "low":
		return t.Lows(), true
	case "", "close":
		return t.Closes(), true
	case "volume":
		return t.Volumes(), true
	}
	return nil, false
}

func (t *Table) column(get func(Bar) float64) []float64 {
	if t == nil {
		return nil
	}
	out := make([]float64, t.Len())
	for i, b := range t.Bars {
		out[i] = get(b)
	}
	return out
}
