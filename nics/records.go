package nics

import (
	"time"

	d "github.com/invertedv/nicsdf"
)

// Record is one cleaned row: a state and month with its counts.
type Record struct {
	State    string
	Month    time.Time
	Year     int
	Counters map[string]float64
}

// Total is the totals counter.
func (r Record) Total() float64 {
	return r.Counters[TotalsColumn]
}

// Between keeps the rows with year in [from, to].
func Between(t *d.Table, from, to int) (*d.Table, error) {
	yc := t.Column(YearColumn)
	if yc == nil {
		return nil, d.Validationf(stage, "column %s not found", YearColumn)
	}

	years, e := yc.AsInt()
	if e != nil {
		return nil, e
	}

	keep := make([]bool, len(years))
	for ind, y := range years {
		keep[ind] = y >= from && y <= to
	}

	return t.Where(keep)
}

// Records returns the rows of a cleaned table. Counters holds every float column present.
func Records(t *d.Table) ([]Record, error) {
	var (
		states []string
		months []time.Time
		years  []int
		e      error
	)
	if states, e = t.Strings(RegionColumn); e != nil {
		return nil, e
	}

	mc, yc := t.Column(PeriodColumn), t.Column(YearColumn)
	if mc == nil || yc == nil {
		return nil, d.Validationf(stage, "table is not cleaned: need %s and %s", PeriodColumn, YearColumn)
	}

	if months, e = mc.AsDate(); e != nil {
		return nil, e
	}

	if years, e = yc.AsInt(); e != nil {
		return nil, e
	}

	counters := make(map[string][]float64)
	for _, col := range t.Columns() {
		if col.DataType() != d.DTfloat {
			continue
		}

		counters[col.Name()], _ = col.AsFloat()
	}

	recs := make([]Record, t.RowCount())
	for ind := range recs {
		recs[ind] = Record{State: states[ind], Month: months[ind], Year: years[ind], Counters: make(map[string]float64)}
		for name, x := range counters {
			recs[ind].Counters[name] = x[ind]
		}
	}

	return recs, nil
}
