// Package reconcile joins the yearly gun check totals of two years with the census attributes and
// adds gun checks per capita.
package reconcile

import (
	"fmt"
	"sort"

	d "github.com/invertedv/nicsdf"
	"github.com/invertedv/nicsdf/census"
	"github.com/invertedv/nicsdf/nics"
)

const stage = "reconcile"

// Drop is a state left out of the result and the sources it was missing from.
type Drop struct {
	State       string
	MissingFrom []string
}

// Result is the reconciled table, one row per state found in all three sources, sorted by state.
// Dropped lists the states seen in some source but not in all.
type Result struct {
	Table   *d.Table
	YearA   int
	YearB   int
	Dropped []Drop
}

func ChecksColumn(year int) string {
	return fmt.Sprintf("gun_checks_%d", year)
}

func PerCapitaColumn(year int) string {
	return fmt.Sprintf("gun_checks_per_capita_%d", year)
}

func PopulationColumn(year int) string {
	return fmt.Sprintf("population_%d", year)
}

// YearTotals sums the totals of the cleaned checks table by state for one year. The sum column
// is ChecksColumn(year).
func YearTotals(checks *d.Table, year int) (*d.Table, error) {
	var (
		t *d.Table
		e error
	)
	if t, e = nics.Between(checks, year, year); e != nil {
		return nil, e
	}

	if t.Column(nics.TotalsColumn) == nil {
		return nil, d.Validationf(stage, "column %s not found", nics.TotalsColumn)
	}

	if t, e = t.SumBy(nics.RegionColumn, nics.TotalsColumn); e != nil {
		return nil, e
	}

	return t.Rename(nics.TotalsColumn, ChecksColumn(year))
}

// Reconcile inner joins the checks of yearA, the checks of yearB and the demographics on state and
// adds PerCapitaColumn for each year. The demographics must have PopulationColumn for both years.
func Reconcile(checks, demographics *d.Table, yearA, yearB int) (*Result, error) {
	if yearA == yearB {
		return nil, d.Validationf(stage, "years must differ, both are %d", yearA)
	}

	for _, y := range []int{yearA, yearB} {
		if demographics.Column(PopulationColumn(y)) == nil {
			return nil, d.Validationf(stage, "demographics has no %s", PopulationColumn(y))
		}
	}

	if checks.Column(nics.TotalsColumn) == nil {
		return nil, d.Validationf(stage, "checks has no %s", nics.TotalsColumn)
	}

	var (
		ta, tb, out *d.Table
		e           error
	)
	if ta, e = YearTotals(checks, yearA); e != nil {
		return nil, e
	}

	if tb, e = YearTotals(checks, yearB); e != nil {
		return nil, e
	}

	if out, e = ta.Join(tb, nics.RegionColumn); e != nil {
		return nil, e
	}

	if out, e = out.Join(demographics, census.StateColumn); e != nil {
		return nil, e
	}

	for _, y := range []int{yearA, yearB} {
		if out, e = addPerCapita(out, y); e != nil {
			return nil, e
		}
	}

	if out, e = out.Sort(true, census.StateColumn); e != nil {
		return nil, e
	}

	sources := map[string]*d.Table{
		fmt.Sprintf("checks_%d", yearA): ta,
		fmt.Sprintf("checks_%d", yearB): tb,
		"census":                        demographics,
	}

	var dropped []Drop
	if dropped, e = drops(out, sources); e != nil {
		return nil, e
	}

	return &Result{Table: out, YearA: yearA, YearB: yearB, Dropped: dropped}, nil
}

func addPerCapita(t *d.Table, year int) (*d.Table, error) {
	var (
		checks, pop []float64
		e           error
	)
	if checks, e = t.Floats(ChecksColumn(year)); e != nil {
		return nil, e
	}

	if pop, e = t.Floats(PopulationColumn(year)); e != nil {
		return nil, e
	}

	pc := make([]float64, len(checks))
	for ind := range checks {
		pc[ind] = checks[ind] / pop[ind]
	}

	var col *d.Col
	if col, e = d.NewCol(pc, d.ColName(PerCapitaColumn(year))); e != nil {
		return nil, e
	}

	return t.AppendColumn(col, false)
}

// drops finds the states present in some source and absent from out.
func drops(out *d.Table, sources map[string]*d.Table) ([]Drop, error) {
	kept, e := stateSet(out)
	if e != nil {
		return nil, e
	}

	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)

	found := make(map[string]map[string]bool)
	all := make(map[string]bool)
	for _, name := range names {
		var set map[string]bool
		if set, e = stateSet(sources[name]); e != nil {
			return nil, e
		}

		found[name] = set
		for s := range set {
			all[s] = true
		}
	}

	var dropped []Drop
	for s := range all {
		if kept[s] {
			continue
		}

		dr := Drop{State: s}
		for _, name := range names {
			if !found[name][s] {
				dr.MissingFrom = append(dr.MissingFrom, name)
			}
		}

		dropped = append(dropped, dr)
	}

	sort.Slice(dropped, func(i, j int) bool { return dropped[i].State < dropped[j].State })

	return dropped, nil
}

func stateSet(t *d.Table) (map[string]bool, error) {
	states, e := t.Strings(census.StateColumn)
	if e != nil {
		return nil, e
	}

	set := make(map[string]bool)
	for _, s := range states {
		set[s] = true
	}

	return set, nil
}
