package series

import (
	"testing"
	"time"
)

func bar(ts time.Time, close float64) Bar {
	return Bar{Datetime: ts, Open: close, High: close, Low: close, Close: close}
}

func at(h, m int) time.Time {
	return time.Date(2025, 6, 20, h, m, 0, 0, time.UTC)
}

func sampleTable() *Table {
	return &Table{Bars: []Bar{
		bar(at(9, 15), 100),
		bar(at(9, 20), 101),
		bar(at(9, 30), 102),
		bar(time.Date(2025, 6, 23, 9, 15, 0, 0, time.UTC), 103),
	}}
}

func TestParseOptionType(t *testing.T) {
	cases := map[string]OptionType{
		"CE": Call, "ce": Call, " pe ": Put, "PE": Put,
	}
	for in, want := range cases {
		got, ok := ParseOptionType(in)
		if !ok || got != want {
			t.Fatalf("ParseOptionType(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseOptionType("call"); ok {
		t.Fatal("expected unknown type to be rejected")
	}
}

func TestFilterDate(t *testing.T) {
	tbl := sampleTable()
	tbl.Strike = 25000
	tbl.OptionType = Call

	day := tbl.FilterDate(at(11, 0))
	if day.Len() != 3 {
		t.Fatalf("expected 3 bars on 2025-06-20, got %d", day.Len())
	}
	if day.Strike != 25000 || day.OptionType != Call {
		t.Fatal("expected contract stamp to carry through FilterDate")
	}

	if !tbl.FilterDate(time.Date(2025, 6, 22, 0, 0, 0, 0, time.UTC)).Empty() {
		t.Fatal("expected empty table for a date with no bars")
	}

	var nilTable *Table
	if !nilTable.FilterDate(at(9, 15)).Empty() {
		t.Fatal("expected empty result from a nil table")
	}
}

func TestNearestWithin(t *testing.T) {
	day := sampleTable().FilterDate(at(9, 0))

	// nearest
	b, err := day.NearestWithin(at(9, 18), 5*time.Minute).Take()
	if err != nil || b.Close != 101 {
		t.Fatalf("expected 09:20 bar, got %+v (err %v)", b, err)
	}

	// equidistant -> earlier bar
	b, err = day.NearestWithin(at(9, 25), 5*time.Minute).Take()
	if err != nil || b.Close != 101 {
		t.Fatalf("expected tie to pick the earlier 09:20 bar, got %+v (err %v)", b, err)
	}

	// outside tolerance: nearest bar is never substituted
	if day.NearestWithin(at(9, 40), 5*time.Minute).IsSome() {
		t.Fatal("expected none outside tolerance")
	}

	// before the first bar
	b, err = day.NearestWithin(at(9, 12), 5*time.Minute).Take()
	if err != nil || b.Close != 100 {
		t.Fatalf("expected first bar, got %+v (err %v)", b, err)
	}

	if (&Table{}).NearestWithin(at(9, 15), 5*time.Minute).IsSome() {
		t.Fatal("expected none from an empty table")
	}
}

func TestColumns(t *testing.T) {
	tbl := &Table{Bars: []Bar{
		{Datetime: at(9, 15), Open: 1, High: 3, Low: 0.5, Close: 2, Volume: 10},
		{Datetime: at(9, 20), Open: 2, High: 4, Low: 1.5, Close: 3, Volume: 20},
	}}

	if got := tbl.Closes(); got[0] != 2 || got[1] != 3 {
		t.Fatalf("unexpected closes: %v", got)
	}
	tp := tbl.TypicalPrices()
	if tp[0] != (3+0.5+2)/3 {
		t.Fatalf("unexpected typical price: %v", tp[0])
	}

	// default column is close
	col, ok := tbl.Column("")
	if !ok || col[1] != 3 {
		t.Fatalf("expected default column to be close, got %v %v", col, ok)
	}
	if _, ok := tbl.Column("vwap"); ok {
		t.Fatal("expected unknown column to be rejected")
	}
}
