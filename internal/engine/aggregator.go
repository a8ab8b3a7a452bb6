package engine

import (
	"coviddash/internal/models"
	"sort"

	"github.com/apache/arrow/go/v18/arrow"
)

const dateFormat = "2006-01-02"

// Filter keeps only rows whose country is in allow. The result shares
// dictionaries with t; t itself is not modified.
func (t *Table) Filter(allow []string) *Table {
	keep := make([]bool, len(t.CountryDict))
	for _, c := range allow {
		for id, name := range t.CountryDict {
			if name == c {
				keep[id] = true
			}
		}
	}

	out := &Table{
		Metric:        t.Metric,
		SubRegionDict: t.SubRegionDict,
		CountryDict:   t.CountryDict,
	}
	for i, cid := range t.CountryIDs {
		if !keep[cid] {
			continue
		}
		out.Dates = append(out.Dates, t.Dates[i])
		out.Values = append(out.Values, t.Values[i])
		out.SubRegionIDs = append(out.SubRegionIDs, t.SubRegionIDs[i])
		out.CountryIDs = append(out.CountryIDs, cid)
	}
	return out
}

// distinctDates returns each date present in t once, ascending.
func (t *Table) distinctDates() []arrow.Date32 {
	seen := make(map[arrow.Date32]struct{})
	out := make([]arrow.Date32, 0)
	for _, d := range t.Dates {
		if _, ok := seen[d]; !ok {
			seen[d] = struct{}{}
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

type cell struct {
	sum  int64
	rows int
}

// grid sums values into a dense [date][country] matrix sized by the dates and
// countries that actually occur in t, not by the date span or dictionary size.
type grid struct {
	dates     []arrow.Date32
	countries []int32 // country IDs, by name
	cells     []cell
}

func (t *Table) dateCountryGrid() *grid {
	g := &grid{dates: t.distinctDates(), countries: t.presentCountries()}

	dateIdx := make(map[arrow.Date32]int, len(g.dates))
	for i, d := range g.dates {
		dateIdx[d] = i
	}
	col := make([]int, len(t.CountryDict))
	for i, cid := range g.countries {
		col[cid] = i
	}

	// Flattened [Date][Country] -> [date * numCountries + country]
	numCountries := len(g.countries)
	g.cells = make([]cell, len(g.dates)*numCountries)
	for i, cid := range t.CountryIDs {
		idx := dateIdx[t.Dates[i]]*numCountries + col[cid]
		g.cells[idx].sum += t.Values[i]
		g.cells[idx].rows++
	}
	return g
}

// SumByDateCountry sums values per (date, country), ordered by date then country.
func (t *Table) SumByDateCountry() []models.CasePoint {
	g := t.dateCountryGrid()
	numCountries := len(g.countries)

	out := make([]models.CasePoint, 0)
	for d, date := range g.dates {
		day := date.ToTime().Format(dateFormat)
		for c, cid := range g.countries {
			cl := g.cells[d*numCountries+c]
			if cl.rows == 0 {
				continue
			}
			out = append(out, models.CasePoint{
				Date:    day,
				Country: t.CountryDict[cid],
				Cases:   cl.sum,
			})
		}
	}
	return out
}

// SumByCountry sums every row of each country, across all dates.
func (t *Table) SumByCountry() []models.DeathTotal {
	totals := make([]cell, len(t.CountryDict))
	for i, cid := range t.CountryIDs {
		totals[cid].sum += t.Values[i]
		totals[cid].rows++
	}
	return t.countryTotals(totals)
}

// LatestByCountry sums each country's rows on that country's most recent date.
func (t *Table) LatestByCountry() []models.DeathTotal {
	latest := make([]arrow.Date32, len(t.CountryDict))
	seen := make([]bool, len(t.CountryDict))
	for i, cid := range t.CountryIDs {
		if !seen[cid] || t.Dates[i] > latest[cid] {
			latest[cid] = t.Dates[i]
			seen[cid] = true
		}
	}

	totals := make([]cell, len(t.CountryDict))
	for i, cid := range t.CountryIDs {
		if t.Dates[i] == latest[cid] {
			totals[cid].sum += t.Values[i]
			totals[cid].rows++
		}
	}
	return t.countryTotals(totals)
}

func (t *Table) countryTotals(totals []cell) []models.DeathTotal {
	out := make([]models.DeathTotal, 0)
	for _, cid := range t.countryOrder() {
		if totals[cid].rows == 0 {
			continue
		}
		out = append(out, models.DeathTotal{Country: t.CountryDict[cid], Deaths: totals[cid].sum})
	}
	return out
}

// presentCountries returns the IDs of countries with at least one row, sorted by name.
func (t *Table) presentCountries() []int32 {
	seen := make([]bool, len(t.CountryDict))
	for _, cid := range t.CountryIDs {
		seen[cid] = true
	}
	out := make([]int32, 0)
	for _, cid := range t.countryOrder() {
		if seen[cid] {
			out = append(out, cid)
		}
	}
	return out
}

// countryOrder returns country IDs sorted by name.
func (t *Table) countryOrder() []int32 {
	ids := make([]int32, len(t.CountryDict))
	for i := range ids {
		ids[i] = int32(i)
	}
	sort.Slice(ids, func(i, j int) bool { return t.CountryDict[ids[i]] < t.CountryDict[ids[j]] })
	return ids
}
