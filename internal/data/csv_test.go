package data

import (
	"math"
	"path/filepath"
	"testing"
	"time"
)

func TestReadBarFileNormalizesHeaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	writeFile(t, path, ` Date ,OPEN, High ,low,Close,Volume,OI
2025-06-20 09:15:00,100,110,95,105,1200,3400
`)

	bars, err := readBarFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("expected 1 bar, got %d", len(bars))
	}
	b := bars[0]
	if b.Open != 100 || b.High != 110 || b.Low != 95 || b.Close != 105 {
		t.Fatalf("unexpected OHLC: %+v", b)
	}
	if b.Volume != 1200 || b.OpenInterest != 3400 {
		t.Fatalf("unexpected volume/oi: %+v", b)
	}
}

func TestReadBarFileCoercionFailures(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	writeFile(t, path, `datetime,open,high,low,close,volume,oi
2025-06-20 09:15:00,oops,110,,105,n/a,xyz
`)

	bars, err := readBarFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := bars[0]
	if !math.IsNaN(b.Open) || !math.IsNaN(b.Low) {
		t.Fatalf("expected uncoercible price cells to be NaN, got %+v", b)
	}
	if b.High != 110 || b.Close != 105 {
		t.Fatalf("valid cells must survive coercion: %+v", b)
	}
	if b.Volume != 0 || b.OpenInterest != 0 {
		t.Fatalf("expected volume/oi to default to 0, got %+v", b)
	}
}

func TestReadBarFileDropsUnparseableTimestamps(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	writeFile(t, path, `datetime,open,high,low,close,volume
garbage,1,1,1,1,1
2025-06-20 09:15:00,100,110,95,105,1200
`)

	bars, err := readBarFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 {
		t.Fatalf("expected the garbage row to be dropped, got %d bars", len(bars))
	}
}

func TestReadBarFileSortsAscending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	writeFile(t, path, `datetime,close
2025-06-20 09:30:00,3
2025-06-20 09:15:00,1
2025-06-20 09:20:00,2
`)

	bars, err := readBarFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i-1].Datetime.Before(bars[i].Datetime) {
			t.Fatalf("bars not sorted ascending: %v then %v", bars[i-1].Datetime, bars[i].Datetime)
		}
	}
	if bars[0].Close != 1 || bars[2].Close != 3 {
		t.Fatalf("unexpected order: %+v", bars)
	}
}

func TestReadBarFileTimestampColumnAliases(t *testing.T) {
	for _, col := range []string{"datetime", "date", "time", "timestamp"} {
		path := filepath.Join(t.TempDir(), col+".csv")
		writeFile(t, path, col+",close\n2025-06-20 09:15:00,105\n")

		bars, err := readBarFile(path)
		if err != nil {
			t.Fatalf("%s column: unexpected error: %v", col, err)
		}
		want := time.Date(2025, 6, 20, 9, 15, 0, 0, time.UTC)
		if len(bars) != 1 || !bars[0].Datetime.Equal(want) {
			t.Fatalf("%s column: unexpected bars %+v", col, bars)
		}
	}
}

func TestReadBarFileNoTimestampColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bars.csv")
	writeFile(t, path, "open,close\n1,2\n")

	if _, err := readBarFile(path); err == nil {
		t.Fatal("expected error when no timestamp column exists")
	}
}
