package engine

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
)

const wideCases = `Province/State,Country/Region,Lat,Long,1/22/20,1/23/20,1/24/20
,US,40.0,-100.0,10,15,20
Hubei,China,30.9,112.2,444,444,549
"Bonaire, Sint Eustatius and Saba",Netherlands,12.1,-68.2,0,1,1
`

func day(s string) arrow.Date32 {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return arrow.Date32FromTime(t)
}

func TestMelt(t *testing.T) {
	table, err := Melt(strings.NewReader(wideCases), "cases")
	if err != nil {
		t.Fatal(err)
	}

	// 3 rows x 3 date columns
	if table.Len() != 9 {
		t.Fatalf("Expected 9 rows, got %d", table.Len())
	}

	row := table.Row(0)
	if row.Country != "US" || row.SubRegion != "" || row.Value != 10 {
		t.Errorf("Row 0: unexpected %+v", row)
	}
	if !row.Date.Equal(time.Date(2020, 1, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Row 0 Date: Expected 2020-01-22, got %v", row.Date)
	}

	row = table.Row(6)
	if row.SubRegion != "Bonaire, Sint Eustatius and Saba" || row.Country != "Netherlands" {
		t.Errorf("Quoted sub-region not preserved: %+v", row)
	}

	if len(table.CountryDict) != 3 {
		t.Errorf("Expected 3 unique countries, got %d", len(table.CountryDict))
	}
}

func TestMeltSingleRow(t *testing.T) {
	in := "Province/State,Country/Region,1/1/20,1/2/20\n,US,10,15\n"
	table, err := Melt(strings.NewReader(in), "cases")
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 2 {
		t.Fatalf("Expected 2 rows, got %d", table.Len())
	}

	want := []struct {
		date  arrow.Date32
		value int64
	}{
		{day("2020-01-01"), 10},
		{day("2020-01-02"), 15},
	}
	for i, w := range want {
		if table.Dates[i] != w.date || table.Values[i] != w.value {
			t.Errorf("Row %d: got (%v, %d), want (%v, %d)", i, table.Dates[i], table.Values[i], w.date, w.value)
		}
		if table.CountryDict[table.CountryIDs[i]] != "US" {
			t.Errorf("Row %d: country %q", i, table.CountryDict[table.CountryIDs[i]])
		}
	}
}

func TestMeltDropsUnparseableDates(t *testing.T) {
	in := "Province/State,Country/Region,1/22/20,not-a-date,UID,2020-01-24\n" +
		",US,1,99,840,3\n" +
		",India,0,99,356,2\n"
	table, err := Melt(strings.NewReader(in), "cases")
	if err != nil {
		t.Fatal(err)
	}

	// rows x parseable date columns
	if table.Len() != 2*2 {
		t.Fatalf("Expected 4 rows, got %d", table.Len())
	}
	for i, v := range table.Values {
		if v == 99 || v == 840 || v == 356 {
			t.Errorf("Row %d carries a value from a dropped column: %d", i, v)
		}
	}
}

func TestMeltBlankValueCountsAsZero(t *testing.T) {
	in := "Province/State,Country/Region,1/22/20\n,US,\n"
	table, err := Melt(strings.NewReader(in), "deaths")
	if err != nil {
		t.Fatal(err)
	}
	if table.Len() != 1 || table.Values[0] != 0 {
		t.Errorf("Expected one zero row, got %v", table.Values)
	}
}

func TestMeltErrors(t *testing.T) {
	cases := map[string]string{
		"empty":       "",
		"no country":  "Province/State,1/22/20\n,1\n",
		"no province": "Country/Region,1/22/20\nUS,1\n",
	}
	for name, in := range cases {
		if _, err := Melt(strings.NewReader(in), "cases"); !errors.Is(err, ErrMissingColumn) {
			t.Errorf("%s: expected ErrMissingColumn, got %v", name, err)
		}
	}

	ragged := "Province/State,Country/Region,1/22/20\n,US,1,2\n"
	if _, err := Melt(strings.NewReader(ragged), "cases"); err == nil {
		t.Error("Expected an error for a ragged row")
	}
}

func TestParseDate(t *testing.T) {
	for _, s := range []string{"1/22/20", "1/22/2020", "2020-01-22"} {
		d, ok := parseDate(s)
		if !ok || d != day("2020-01-22") {
			t.Errorf("parseDate(%q) = %v, %v", s, d, ok)
		}
	}
	if _, ok := parseDate("Lat"); ok {
		t.Error("parseDate accepted a non-date header")
	}
}

func TestParseCount(t *testing.T) {
	cases := map[string]int64{
		"42":     42,
		" 7 ":    7,
		"3.0":    3,
		"":       0,
		"n/a":    0,
		"1e300":  0,
		"-1e300": 0,
		"NaN":    0,
		"Inf":    0,
	}
	for in, want := range cases {
		if got := parseCount(in); got != want {
			t.Errorf("parseCount(%q) = %d, want %d", in, got, want)
		}
	}
}
