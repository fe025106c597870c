package reconcile

import (
	"github.com/invertedv/nicsdf/census"
)

// Record is one state of the reconciled table.
type Record struct {
	census.Record
	Checks    map[int]float64
	PerCapita map[int]float64
}

// Records returns the rows of r.Table.
func (r *Result) Records() ([]Record, error) {
	var (
		demo []census.Record
		e    error
	)
	if demo, e = census.Records(r.Table); e != nil {
		return nil, e
	}

	years := []int{r.YearA, r.YearB}
	checks := make(map[int][]float64)
	perCapita := make(map[int][]float64)
	for _, y := range years {
		if checks[y], e = r.Table.Floats(ChecksColumn(y)); e != nil {
			return nil, e
		}

		if perCapita[y], e = r.Table.Floats(PerCapitaColumn(y)); e != nil {
			return nil, e
		}
	}

	recs := make([]Record, len(demo))
	for ind := range demo {
		recs[ind] = Record{Record: demo[ind], Checks: make(map[int]float64), PerCapita: make(map[int]float64)}
		for _, y := range years {
			recs[ind].Checks[y] = checks[y][ind]
			recs[ind].PerCapita[y] = perCapita[y][ind]
		}
	}

	return recs, nil
}
