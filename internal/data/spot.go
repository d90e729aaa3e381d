package data

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/moznion/go-optional"
	"golang.org/x/sync/singleflight"

	"github.com/contactkeval/option-data/internal/logger"
	"github.com/contactkeval/option-data/internal/series"
)

// spotDateLayouts are the file-name forms accepted for per-date spot files.
var spotDateLayouts = []string{"2006-01-02", "20060102"}

// Spot loads underlying price bars either from one consolidated CSV file
// (file mode) or from a folder of per-date CSV files (folder mode). The
// mode is selected at construction from the given location.
//
// File mode loads, normalizes and sorts the whole table once. Folder mode
// loads lazily per queried date and caches the result.
type Spot struct {
	path       string
	folderMode bool

	consolidated *series.Table // file mode only

	mu     sync.RWMutex
	byDate map[string]*series.Table // folder mode only
	loads  singleflight.Group
}

// NewSpot constructs a spot data source for a file or folder location.
//
// A location that is not an existing directory is treated as file mode, and
// a missing or unreadable file is a construction error. Folder mode never
// fails at construction: absent per-date files simply yield empty results.
func NewSpot(location string) (*Spot, error) {
	s := &Spot{path: location, byDate: make(map[string]*series.Table)}

	if fi, err := os.Stat(location); err == nil && fi.IsDir() {
		s.folderMode = true
		logger.Infof("spot source in folder mode: %s", location)
		return s, nil
	}

	bars, err := readBarFile(location)
	if err != nil {
		return nil, fmt.Errorf("spot file: %w", err)
	}
	s.consolidated = &series.Table{Bars: bars}
	logger.Infof("spot source in file mode: %s (%d bars)", location, len(bars))
	return s, nil
}

// BarsForDate returns the bars falling on the calendar date of d. The
// result may be empty but is never nil; it is a shared cached instance in
// folder mode and must not be mutated.
func (s *Spot) BarsForDate(d time.Time) *series.Table {
	if !s.folderMode {
		return s.consolidated.FilterDate(d)
	}

	key := series.Midnight(d).Format(expiryLayout)

	s.mu.RLock()
	t, hit := s.byDate[key]
	s.mu.RUnlock()
	if hit {
		return t
	}

	v, _, _ := s.loads.Do(key, func() (any, error) {
		s.mu.RLock()
		t, hit := s.byDate[key]
		s.mu.RUnlock()
		if hit {
			return t, nil
		}

		t = s.loadDateFile(d)
		if !t.Empty() {
			s.mu.Lock()
			s.byDate[key] = t
			s.mu.Unlock()
		}
		return t, nil
	})
	return v.(*series.Table)
}

// loadDateFile tries <date>.csv then <YYYYMMDD>.csv under the folder.
// Missing files yield an empty table; a read failure on an existing file is
// logged and also yields an empty table.
func (s *Spot) loadDateFile(d time.Time) *series.Table {
	day := series.Midnight(d)
	for _, layout := range spotDateLayouts {
		path := filepath.Join(s.path, day.Format(layout)+".csv")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		bars, err := readBarFile(path)
		if err != nil {
			logger.Errorf("spot bars %s: %v", path, err)
			return &series.Table{}
		}
		return &series.Table{Bars: bars}
	}
	logger.Debugf("spot: no file for date %s under %s", day.Format(expiryLayout), s.path)
	return &series.Table{}
}

// PriceAt resolves the close of the bar nearest to ts on ts's calendar
// date. A zero or negative tol selects DefaultTolerance. Returns None when
// no bar falls within tol of ts; the nearest bar is never substituted
// outside tolerance.
func (s *Spot) PriceAt(ts time.Time, tol time.Duration) optional.Option[float64] {
	if tol <= 0 {
		tol = DefaultTolerance
	}
	bar, err := s.BarsForDate(ts).NearestWithin(ts, tol).Take()
	if err != nil {
		logger.Debugf("spot: no bar within %v of %v", tol, ts)
		return optional.None[float64]()
	}
	return optional.Some(bar.Close)
}

// ListAvailableDates returns the calendar dates covered by the source,
// ascending. Folder mode enumerates parseable file names (unparseable names
// are skipped); file mode derives the distinct dates present in the loaded
// table.
func (s *Spot) ListAvailableDates() []time.Time {
	if !s.folderMode {
		var out []time.Time
		for _, b := range s.consolidated.Bars {
			day := series.Midnight(b.Datetime)
			if len(out) == 0 || !day.Equal(out[len(out)-1]) {
				out = append(out, day)
			}
		}
		return out
	}

	entries, err := os.ReadDir(s.path)
	if err != nil {
		logger.Errorf("list spot dates %s: %v", s.path, err)
		return nil
	}

	seen := make(map[time.Time]bool)
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".csv" {
			continue
		}
		stem := name[:len(name)-len(".csv")]
		for _, layout := range spotDateLayouts {
			if d, err := time.ParseInLocation(layout, stem, time.UTC); err == nil {
				seen[d] = true
				break
			}
		}
	}

	out := make([]time.Time, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
