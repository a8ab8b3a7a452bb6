package engine

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/apache/arrow/go/v18/arrow"
)

const (
	subRegionColumn = "Province/State"
	countryColumn   = "Country/Region"
)

var ErrMissingColumn = errors.New("missing id column")

// Header layouts accepted for date columns, tried in order.
var dateLayouts = []string{"1/2/06", "1/2/2006", "2006-01-02"}

// Columns dropped before the pivot even though they are not id columns.
var droppedColumns = map[string]bool{"Lat": true, "Long": true, "Long_": true}

type dateColumn struct {
	idx  int
	date arrow.Date32
}

func parseDate(s string) (arrow.Date32, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return arrow.Date32FromTime(t), true
		}
	}
	return 0, false
}

// parseCount treats blanks and junk as zero so a missing cell adds nothing to a sum.
func parseCount(s string) int64 {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	// Floats outside the int64 range (and NaN) count as junk.
	if f, err := strconv.ParseFloat(s, 64); err == nil && f >= math.MinInt64 && f < math.MaxInt64 {
		return int64(f)
	}
	return 0
}

// Melt reads a wide time-series CSV (one column per date) and pivots it to
// long form: one row per (region, date column). Header cells that are not
// dates are dropped.
func Melt(r io.Reader, metric string) (*Table, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%s: empty csv: %w", metric, ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: read header: %w", metric, err)
	}

	subIdx, countryIdx := -1, -1
	var dates []dateColumn
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch {
		case h == subRegionColumn:
			subIdx = i
		case h == countryColumn:
			countryIdx = i
		case droppedColumns[h]:
		default:
			if d, ok := parseDate(h); ok {
				dates = append(dates, dateColumn{idx: i, date: d})
			}
		}
	}
	if countryIdx < 0 {
		return nil, fmt.Errorf("%s: %q: %w", metric, countryColumn, ErrMissingColumn)
	}
	if subIdx < 0 {
		return nil, fmt.Errorf("%s: %q: %w", metric, subRegionColumn, ErrMissingColumn)
	}

	t := &Table{Metric: metric}
	subs, countries := newDict(), newDict()
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", metric, err)
		}

		sid := subs.id(strings.TrimSpace(rec[subIdx]))
		cid := countries.id(strings.TrimSpace(rec[countryIdx]))
		for _, dc := range dates {
			t.SubRegionIDs = append(t.SubRegionIDs, sid)
			t.CountryIDs = append(t.CountryIDs, cid)
			t.Dates = append(t.Dates, dc.date)
			t.Values = append(t.Values, parseCount(rec[dc.idx]))
		}
	}
	t.SubRegionDict = subs.list
	t.CountryDict = countries.list
	return t, nil
}
