// Package indicator computes technical indicators over OHLCV bar tables.
//
// A fixed registry maps case-insensitive indicator names to computation
// functions. Each function consumes a bar table plus parameters and returns
// one or more derived series aligned one-to-one with the table's timestamp
// index. Results are derived fresh on every call and never cached here;
// caching, if wanted, is the caller's concern.
package indicator

import (
	"fmt"
	"sort"
	"strings"

	"github.com/contactkeval/option-data/internal/series"
)

// Params carries the named parameters of an indicator. Zero values select
// the documented default for each indicator.
type Params struct {
	Period       int     // SMA/EMA/WMA/DEMA/TEMA/RSI/CCI/WILLR/ATR/BBANDS/KC/ADX/MOM/ROC
	Column       string  // price column, default "close" (where applicable)
	StdDev       float64 // BBANDS band width, default 2.0
	Multiplier   float64 // KC band width, default 2.0
	KPeriod      int     // STOCH %K window, default 14
	DPeriod      int     // STOCH %D window, default 3
	FastPeriod   int     // MACD fast EMA, default 12
	SlowPeriod   int     // MACD slow EMA, default 26
	SignalPeriod int     // MACD signal EMA, default 9
}

func (p Params) period(def int) int {
	if p.Period > 0 {
		return p.Period
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// column resolves the configured price column of a table, defaulting to
// close.
func (p Params) column(t *series.Table) ([]float64, error) {
	col, ok := t.Column(p.Column)
	if !ok {
		return nil, fmt.Errorf("unknown column: %s", p.Column)
	}
	return col, nil
}

// Result is a computed indicator. Single-series indicators set Line;
// indicators with named sub-series (bands, MACD, stochastic, ADX) set
// Lines instead.
type Result struct {
	Line  []float64            `json:"line,omitempty"`
	Lines map[string][]float64 `json:"lines,omitempty"`
}

func line(v []float64) Result { return Result{Line: v} }

// Func computes one indicator over a bar table.
type Func func(t *series.Table, p Params) (Result, error)

// Engine dispatches indicator computations by name.
type Engine struct {
	registry map[string]Func
}

// NewEngine constructs the engine with the full fixed registry.
func NewEngine() *Engine {
	e := &Engine{registry: make(map[string]Func)}

	// Moving averages
	e.registry["SMA"] = smaIndicator
	e.registry["EMA"] = emaIndicator
	e.registry["WMA"] = wmaIndicator
	e.registry["DEMA"] = demaIndicator
	e.registry["TEMA"] = temaIndicator

	// Oscillators
	e.registry["RSI"] = rsiIndicator
	e.registry["STOCH"] = stochasticIndicator
	e.registry["CCI"] = cciIndicator
	e.registry["WILLR"] = williamsRIndicator

	// Volatility
	e.registry["ATR"] = atrIndicator
	e.registry["BBANDS"] = bollingerIndicator
	e.registry["KC"] = keltnerIndicator

	// Momentum
	e.registry["MACD"] = macdIndicator
	e.registry["ADX"] = adxIndicator
	e.registry["MOM"] = momentumIndicator
	e.registry["ROC"] = rocIndicator

	// Volume
	e.registry["OBV"] = obvIndicator
	e.registry["VWAP"] = vwapIndicator

	return e
}

// Compute runs the named indicator over the table. The name is
// case-insensitive; an unregistered name is an error.
func (e *Engine) Compute(t *series.Table, name string, p Params) (Result, error) {
	fn, ok := e.registry[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Result{}, fmt.Errorf("unknown indicator: %s", name)
	}
	return fn(t, p)
}

// Names lists the registered indicator names, sorted.
func (e *Engine) Names() []string {
	out := make([]string, 0, len(e.registry))
	for name := range e.registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
