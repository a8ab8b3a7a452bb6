package engine

import (
	"sort"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
)

// Table holds one metric in long form, Struct-of-Arrays layout.
// Row i is (SubRegionDict[SubRegionIDs[i]], CountryDict[CountryIDs[i]], Dates[i], Values[i]).
// Tables are never mutated after construction.
type Table struct {
	Metric string

	// Data Columns
	Dates  []arrow.Date32
	Values []int64

	// Dictionary Encoded IDs
	SubRegionIDs []int32
	CountryIDs   []int32

	// Dictionaries (ID -> String)
	SubRegionDict []string
	CountryDict   []string
}

// Observation is a single decoded row of a Table.
type Observation struct {
	SubRegion string
	Country   string
	Date      time.Time
	Value     int64
}

// Dataset is the result of one load: both metrics plus when they were fetched.
type Dataset struct {
	Cases    *Table
	Deaths   *Table
	LoadedAt time.Time
}

func (t *Table) Len() int {
	return len(t.Values)
}

func (t *Table) Row(i int) Observation {
	return Observation{
		SubRegion: t.SubRegionDict[t.SubRegionIDs[i]],
		Country:   t.CountryDict[t.CountryIDs[i]],
		Date:      t.Dates[i].ToTime(),
		Value:     t.Values[i],
	}
}

// Countries returns the distinct countries that have at least one row, sorted.
func (t *Table) Countries() []string {
	seen := make([]bool, len(t.CountryDict))
	for _, id := range t.CountryIDs {
		seen[id] = true
	}
	out := make([]string, 0, len(t.CountryDict))
	for id, ok := range seen {
		if ok {
			out = append(out, t.CountryDict[id])
		}
	}
	sort.Strings(out)
	return out
}

// dict interns strings into a dictionary column.
type dict struct {
	ids  map[string]int32
	list []string
}

func newDict() *dict {
	return &dict{ids: make(map[string]int32)}
}

func (d *dict) id(s string) int32 {
	if id, ok := d.ids[s]; ok {
		return id
	}
	id := int32(len(d.list))
	d.list = append(d.list, s)
	d.ids[s] = id
	return id
}
