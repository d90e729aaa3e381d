// Package data provides the market-data access layer: folder-structured
// options and spot data sources with nearest-timestamp matching and
// multi-level caching.
//
// File layout (read-only):
//
//	options: <base>/<expiry:YYYY-MM-DD>/<strike>_<CE|PE>.csv
//	spot:    one consolidated CSV, or <base>/<YYYY-MM-DD|YYYYMMDD>.csv per date
//
// All per-query lookups fail soft: unknown expiries, strikes, dates and
// tolerance-exceeded matches return None/empty rather than errors. Only a
// missing base location at construction is fatal.
package data

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/contactkeval/option-data/internal/logger"
	"github.com/contactkeval/option-data/internal/series"
)

// DefaultTolerance is the maximum time distance between a query timestamp
// and the matched bar when the caller does not supply one.
const DefaultTolerance = 5 * time.Minute

const expiryLayout = "2006-01-02"

// Strikes holds the available strikes for one expiry, sorted ascending,
// split by option side.
type Strikes struct {
	CE []float64 `json:"CE"`
	PE []float64 `json:"PE"`
}

// Quote is the bar matched by a QuoteAt lookup. Missing volume and open
// interest are reported as 0.
type Quote struct {
	Datetime     time.Time `json:"datetime"`
	Open         float64   `json:"open"`
	High         float64   `json:"high"`
	Low          float64   `json:"low"`
	Close        float64   `json:"close"`
	Volume       int64     `json:"volume"`
	OpenInterest int64     `json:"open_interest"`
}

// Options loads option contract bars from a folder structure of expiry
// directories. The expiry index is scanned once at construction and is
// immutable afterwards; strike indexes and contract tables are loaded
// lazily and cached until ClearCache.
//
// Safe for concurrent use: caches are mutex-guarded and concurrent loads
// of the same contract are collapsed into a single file read.
type Options struct {
	base        string
	expiryDates []time.Time       // ascending, unique
	expiryDirs  map[string]string // ISO expiry date -> folder path

	mu      sync.RWMutex
	strikes map[string]Strikes
	tables  map[string]*series.Table
	loads   singleflight.Group
}

// NewOptions scans base for expiry folders and constructs the data source.
// A missing or unreadable base path is a construction error; folders whose
// names do not parse as YYYY-MM-DD dates are skipped silently.
func NewOptions(base string) (*Options, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, fmt.Errorf("options base path: %w", err)
	}

	o := &Options{
		base:       base,
		expiryDirs: make(map[string]string),
		strikes:    make(map[string]Strikes),
		tables:     make(map[string]*series.Table),
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		d, err := time.ParseInLocation(expiryLayout, e.Name(), time.UTC)
		if err != nil {
			continue
		}
		key := d.Format(expiryLayout)
		if _, dup := o.expiryDirs[key]; dup {
			continue
		}
		o.expiryDirs[key] = filepath.Join(base, e.Name())
		o.expiryDates = append(o.expiryDates, d)
	}
	sort.Slice(o.expiryDates, func(i, j int) bool { return o.expiryDates[i].Before(o.expiryDates[j]) })

	logger.Infof("found %d expiry folders under %s", len(o.expiryDates), base)
	return o, nil
}

// ListExpiries returns all discovered expiry dates, ascending, no duplicates.
func (o *Options) ListExpiries() []time.Time {
	out := make([]time.Time, len(o.expiryDates))
	copy(out, o.expiryDates)
	return out
}

// ExpiryOnOrAfter returns the earliest listed expiry on or after the
// calendar date of d, or None when every listed expiry is earlier. This
// models "next expiry for a trade date".
func (o *Options) ExpiryOnOrAfter(d time.Time) optional.Option[time.Time] {
	day := series.Midnight(d)
	i := sort.Search(len(o.expiryDates), func(i int) bool {
		return !o.expiryDates[i].Before(day)
	})
	if i == len(o.expiryDates) {
		return optional.None[time.Time]()
	}
	return optional.Some(o.expiryDates[i])
}

// ListStrikes returns the strikes available for an expiry, split by option
// side and sorted ascending. An unknown expiry yields empty lists, not an
// error. The result is cached per expiry until ClearCache.
func (o *Options) ListStrikes(expiry time.Time) Strikes {
	key := series.Midnight(expiry).Format(expiryLayout)

	o.mu.RLock()
	s, ok := o.strikes[key]
	o.mu.RUnlock()
	if ok {
		return s
	}

	dir, known := o.expiryDirs[key]
	if !known {
		logger.Debugf("strikes: unknown expiry %s", key)
		return Strikes{}
	}

	s = scanStrikes(dir)

	o.mu.Lock()
	o.strikes[key] = s
	o.mu.Unlock()
	return s
}

// scanStrikes parses <strike>_<CE|PE>.csv file names under dir.
func scanStrikes(dir string) Strikes {
	entries, err := os.ReadDir(dir)
	if err != nil {
		logger.Errorf("scan strikes %s: %v", dir, err)
		return Strikes{}
	}

	seen := map[series.OptionType]map[float64]bool{
		series.Call: {},
		series.Put:  {},
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.EqualFold(filepath.Ext(name), ".csv") {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		i := strings.LastIndex(stem, "_")
		if i <= 0 {
			continue
		}
		d, err := decimal.NewFromString(stem[:i])
		if err != nil {
			continue
		}
		typ, ok := series.ParseOptionType(stem[i+1:])
		if !ok {
			continue
		}
		seen[typ][d.InexactFloat64()] = true
	}

	return Strikes{CE: sortedKeys(seen[series.Call]), PE: sortedKeys(seen[series.Put])}
}

func sortedKeys(m map[float64]bool) []float64 {
	out := make([]float64, 0, len(m))
	for v := range m {
		out = append(out, v)
	}
	sort.Float64s(out)
	return out
}

// LoadBars locates and loads the contract file for (expiry, strike, type).
//
// File-name resolution tries the exact strike representation first, then an
// integer-with-one-decimal form (strike 25000 -> 25000_CE.csv, then
// 25000.0_CE.csv) to tolerate inconsistent vendor formatting. Every row of
// the returned table is stamped with the queried strike and upper-cased
// option type. Returns nil when the expiry is unknown, neither file name
// exists, or an I/O error occurs reading an existing file (logged).
//
// The returned table is a shared cached instance and must not be mutated.
func (o *Options) LoadBars(expiry time.Time, strike float64, typ series.OptionType) *series.Table {
	normTyp, ok := series.ParseOptionType(string(typ))
	if !ok {
		logger.Debugf("load bars: invalid option type %q", typ)
		return nil
	}
	expiryKey := series.Midnight(expiry).Format(expiryLayout)
	key := contractKey(expiryKey, strike, normTyp)

	o.mu.RLock()
	t, hit := o.tables[key]
	o.mu.RUnlock()
	if hit {
		return t
	}

	// Collapse concurrent loads of the same contract into one file read.
	v, _, _ := o.loads.Do(key, func() (any, error) {
		o.mu.RLock()
		t, hit := o.tables[key]
		o.mu.RUnlock()
		if hit {
			return t, nil
		}

		t = o.loadContract(expiryKey, strike, normTyp)
		if t != nil {
			o.mu.Lock()
			o.tables[key] = t
			o.mu.Unlock()
		}
		return t, nil
	})
	return v.(*series.Table)
}

func (o *Options) loadContract(expiryKey string, strike float64, typ series.OptionType) *series.Table {
	dir, known := o.expiryDirs[expiryKey]
	if !known {
		logger.Debugf("load bars: unknown expiry %s", expiryKey)
		return nil
	}

	path := ""
	for _, name := range strikeFileCandidates(strike, typ) {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
			break
		}
	}
	if path == "" {
		logger.Debugf("load bars: no file for strike %v %s under %s", strike, typ, dir)
		return nil
	}

	bars, err := readBarFile(path)
	if err != nil {
		// An existing file that cannot be read counts as "no data".
		logger.Errorf("load bars %s: %v", path, err)
		return nil
	}
	return &series.Table{Bars: bars, Strike: strike, OptionType: typ}
}

// strikeFileCandidates returns the file names tried for a strike, exact
// representation first. The one-decimal fallback only applies to
// integer-valued strikes; fractional strikes with inconsistent vendor
// formatting are a data-contract issue, not guessed at here.
func strikeFileCandidates(strike float64, typ series.OptionType) []string {
	d := decimal.NewFromFloat(strike)
	names := []string{fmt.Sprintf("%s_%s.csv", d.String(), typ)}
	if d.IsInteger() {
		fallback := fmt.Sprintf("%s_%s.csv", d.StringFixed(1), typ)
		if fallback != names[0] {
			names = append(names, fallback)
		}
	}
	return names
}

func contractKey(expiryKey string, strike float64, typ series.OptionType) string {
	return expiryKey + "|" + decimal.NewFromFloat(strike).String() + "|" + string(typ)
}

// QuoteAt resolves the contract's bar nearest to ts on ts's calendar date.
//
// A zero or negative tol selects DefaultTolerance. Returns None when the
// contract has no bars on that date or the nearest bar is farther than tol
// from ts. When two bars are equidistant the earlier one is returned.
func (o *Options) QuoteAt(expiry time.Time, strike float64, typ series.OptionType, ts time.Time, tol time.Duration) optional.Option[Quote] {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	t := o.LoadBars(expiry, strike, typ)
	if t.Empty() {
		return optional.None[Quote]()
	}

	bar, err := t.FilterDate(ts).NearestWithin(ts, tol).Take()
	if err != nil {
		logger.Debugf("quote: no bar within %v of %v for %v %s", tol, ts, strike, typ)
		return optional.None[Quote]()
	}
	return optional.Some(quoteFromBar(bar))
}

func quoteFromBar(b series.Bar) Quote {
	q := Quote{
		Datetime:     b.Datetime,
		Open:         b.Open,
		High:         b.High,
		Low:          b.Low,
		Close:        b.Close,
		OpenInterest: b.OpenInterest,
	}
	if !math.IsNaN(b.Volume) {
		q.Volume = int64(b.Volume)
	}
	return q
}

// ClearCache empties the strike-index cache and the per-contract data
// cache together. The expiry index is not re-scanned.
func (o *Options) ClearCache() {
	o.mu.Lock()
	o.strikes = make(map[string]Strikes)
	o.tables = make(map[string]*series.Table)
	o.mu.Unlock()
	logger.Debugf("options caches cleared for %s", o.base)
}

// Info summarizes the dataset behind this source.
type Info struct {
	BasePath      string   `json:"base_path"`
	TotalExpiries int      `json:"total_expiries"`
	Start         string   `json:"start,omitempty"`
	End           string   `json:"end,omitempty"`
	Expiries      []string `json:"expiries"`
}

// Info reports the base path, expiry count and covered date range.
func (o *Options) Info() Info {
	info := Info{
		BasePath:      o.base,
		TotalExpiries: len(o.expiryDates),
		Expiries:      make([]string, len(o.expiryDates)),
	}
	for i, d := range o.expiryDates {
		info.Expiries[i] = d.Format(expiryLayout)
	}
	if len(o.expiryDates) > 0 {
		info.Start = info.Expiries[0]
		info.End = info.Expiries[len(info.Expiries)-1]
	}
	return info
}
