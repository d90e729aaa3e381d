package data

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/contactkeval/option-data/internal/series"
)

// datetimeColumns are the header names accepted for the timestamp column,
// in lookup order.
var datetimeColumns = []string{"datetime", "date", "time", "timestamp"}

// timestampLayouts are the formats tried, in order, when coercing a
// timestamp cell. All parse in UTC.
var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102",
}

// readBarFile loads one OHLCV(+OI) CSV file into sorted bars.
//
// Header names are lower-cased and trimmed before matching. Any cell that
// fails numeric coercion becomes a missing value (NaN for prices, 0 for
// volume and open interest) rather than failing the load. Rows without a
// parseable timestamp are dropped: a bar that cannot be placed on the time
// index is unusable. The returned bars are sorted ascending by timestamp.
func readBarFile(path string) ([]series.Bar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	dtCol := -1
	for _, name := range datetimeColumns {
		if i, ok := cols[name]; ok {
			dtCol = i
			break
		}
	}
	if dtCol == -1 {
		return nil, fmt.Errorf("%s: no timestamp column among %v", path, datetimeColumns)
	}

	openCol, hasOpen := cols["open"]
	highCol, hasHigh := cols["high"]
	lowCol, hasLow := cols["low"]
	closeCol, hasClose := cols["close"]
	volCol, hasVol := cols["volume"]
	oiCol, hasOI := cols["oi"]
	if !hasOI {
		oiCol, hasOI = cols["open_interest"]
	}

	bars := make([]series.Bar, 0, len(records)-1)
	for _, row := range records[1:] {
		ts, ok := parseTimestamp(cell(row, dtCol, true))
		if !ok {
			continue
		}
		b := series.Bar{
			Datetime: ts,
			Open:     priceCell(row, openCol, hasOpen),
			High:     priceCell(row, highCol, hasHigh),
			Low:      priceCell(row, lowCol, hasLow),
			Close:    priceCell(row, closeCol, hasClose),
			Volume:   countCell(row, volCol, hasVol),
		}
		b.OpenInterest = int64(countCell(row, oiCol, hasOI))
		bars = append(bars, b)
	}

	t := &series.Table{Bars: bars}
	t.Sort()
	return t.Bars, nil
}

func cell(row []string, i int, ok bool) string {
	if !ok || i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// priceCell coerces a price cell; failures become NaN.
func priceCell(row []string, i int, ok bool) float64 {
	s := cell(row, i, ok)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}

// countCell coerces a volume/open-interest cell; failures become 0.
func countCell(row []string, i int, ok bool) float64 {
	s := cell(row, i, ok)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) {
		return 0
	}
	return v
}

func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
