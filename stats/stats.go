// Package stats has the descriptive statistics of the analysis: summaries, correlations, trends
// and coverage of the cleaned tables.
package stats

import (
	"fmt"
	"math"
	"slices"
	"sort"

	d "github.com/invertedv/nicsdf"
	"github.com/invertedv/nicsdf/nics"
	"github.com/invertedv/nicsdf/reconcile"
	"gonum.org/v1/gonum/stat"
)

const (
	StatisticColumn = "statistic"
	AttributeColumn = "attribute"
	MonthsColumn    = "months"
)

// Statistics are the rows of Describe.
var Statistics = []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

// Describe summarizes the float columns cols, all float columns if cols is empty. Missing values
// are skipped. Quantiles interpolate linearly between order statistics.
func Describe(t *d.Table, cols ...string) (*d.Table, error) {
	if len(cols) == 0 {
		for _, c := range t.Columns() {
			if c.DataType() == d.DTfloat {
				cols = append(cols, c.Name())
			}
		}
	}

	if len(cols) == 0 {
		return nil, fmt.Errorf("no float columns to describe")
	}

	sc, e := d.NewCol(Statistics, d.ColName(StatisticColumn))
	if e != nil {
		return nil, e
	}

	out := []*d.Col{sc}
	for _, cn := range cols {
		var x []float64
		if x, e = t.Floats(cn); e != nil {
			return nil, e
		}

		var col *d.Col
		if col, e = d.NewCol(summary(x), d.ColName(cn)); e != nil {
			return nil, e
		}

		out = append(out, col)
	}

	return d.NewTable(out...)
}

func summary(xIn []float64) []float64 {
	x := present(xIn)
	n := float64(len(x))
	if len(x) == 0 {
		nan := math.NaN()
		return []float64{0, nan, nan, nan, nan, nan, nan, nan}
	}

	sort.Float64s(x)
	sd := math.NaN()
	if len(x) > 1 {
		sd = stat.StdDev(x, nil)
	}

	return []float64{n, stat.Mean(x, nil), sd, x[0],
		stat.Quantile(0.25, stat.LinInterp, x, nil),
		stat.Quantile(0.5, stat.LinInterp, x, nil),
		stat.Quantile(0.75, stat.LinInterp, x, nil),
		x[len(x)-1]}
}

func present(x []float64) []float64 {
	var out []float64
	for _, xv := range x {
		if !math.IsNaN(xv) {
			out = append(out, xv)
		}
	}

	return out
}

// Pairs returns the elements of x and y where neither is missing.
func Pairs(x, y []float64) (xOut, yOut []float64) {
	for ind := range x {
		if math.IsNaN(x[ind]) || math.IsNaN(y[ind]) {
			continue
		}

		xOut = append(xOut, x[ind])
		yOut = append(yOut, y[ind])
	}

	return xOut, yOut
}

// Correlate is the Pearson correlation of columns x and y over rows where both are present.
// It is NaN with fewer than two such rows.
func Correlate(t *d.Table, x, y string) (float64, error) {
	var (
		xs, ys []float64
		e      error
	)
	if xs, e = t.Floats(x); e != nil {
		return 0, e
	}

	if ys, e = t.Floats(y); e != nil {
		return 0, e
	}

	xs, ys = Pairs(xs, ys)
	if len(xs) < 2 {
		return math.NaN(), nil
	}

	return stat.Correlation(xs, ys, nil), nil
}

// DefaultAttributes are the attributes correlated with gun checks.
func DefaultAttributes(yearA, yearB int) []string {
	return []string{"female_employment_percentage", "median_income", "income_per_capita",
		fmt.Sprintf("percent_over_65_%d", yearA), fmt.Sprintf("percent_over_65_%d", yearB),
		"hs_diploma_percentage", "bachelors_degree_percentage", "uninsured_percentage"}
}

// Correlations has a row for each of attrs and a column reconcile.ChecksColumn(year) for each
// of years holding the correlation of the two.
func Correlations(t *d.Table, attrs []string, years ...int) (*d.Table, error) {
	ac, e := d.NewCol(attrs, d.ColName(AttributeColumn))
	if e != nil {
		return nil, e
	}

	cols := []*d.Col{ac}
	for _, y := range years {
		x := make([]float64, len(attrs))
		for ind, a := range attrs {
			if x[ind], e = Correlate(t, a, reconcile.ChecksColumn(y)); e != nil {
				return nil, e
			}
		}

		var col *d.Col
		if col, e = d.NewCol(x, d.ColName(reconcile.ChecksColumn(y))); e != nil {
			return nil, e
		}

		cols = append(cols, col)
	}

	return d.NewTable(cols...)
}

// MonthlyTotals sums the totals of a cleaned checks table by month.
func MonthlyTotals(checks *d.Table) (*d.Table, error) {
	return checks.SumBy(nics.PeriodColumn, nics.TotalsColumn)
}

// AnnualTotals sums the totals of a cleaned checks table by year for the years from through to.
func AnnualTotals(checks *d.Table, from, to int) (*d.Table, error) {
	t, e := nics.Between(checks, from, to)
	if e != nil {
		return nil, e
	}

	return t.SumBy(nics.YearColumn, nics.TotalsColumn)
}

// Coverage counts the distinct months observed in each year of a cleaned checks table.
func Coverage(checks *d.Table) (*d.Table, error) {
	yc, mc := checks.Column(nics.YearColumn), checks.Column(nics.PeriodColumn)
	if yc == nil || mc == nil {
		return nil, fmt.Errorf("checks table needs %s and %s", nics.YearColumn, nics.PeriodColumn)
	}

	years, e := yc.AsInt()
	if e != nil {
		return nil, e
	}

	months, e := mc.AsDate()
	if e != nil {
		return nil, e
	}

	seen := make(map[int]map[int]bool)
	for ind, y := range years {
		if seen[y] == nil {
			seen[y] = make(map[int]bool)
		}

		seen[y][int(months[ind].Month())] = true
	}

	var ys, counts []int
	for y := range seen {
		ys = append(ys, y)
	}
	sort.Ints(ys)

	for _, y := range ys {
		counts = append(counts, len(seen[y]))
	}

	ycol, e := d.NewCol(ys, d.ColName(nics.YearColumn), d.ColDataType(d.DTint))
	if e != nil {
		return nil, e
	}

	ccol, e := d.NewCol(counts, d.ColName(MonthsColumn), d.ColDataType(d.DTint))
	if e != nil {
		return nil, e
	}

	return d.NewTable(ycol, ccol)
}

// PartialYears are the years with fewer than 12 months observed.
func PartialYears(checks *d.Table) ([]int, error) {
	cov, e := Coverage(checks)
	if e != nil {
		return nil, e
	}

	years, _ := cov.Column(nics.YearColumn).AsInt()
	counts, _ := cov.Column(MonthsColumn).AsInt()

	var partial []int
	for ind, y := range years {
		if counts[ind] < 12 {
			partial = append(partial, y)
		}
	}

	return partial, nil
}

// FullYears are the years with all 12 months observed.
func FullYears(checks *d.Table) ([]int, error) {
	cov, e := Coverage(checks)
	if e != nil {
		return nil, e
	}

	years, _ := cov.Column(nics.YearColumn).AsInt()
	counts, _ := cov.Column(MonthsColumn).AsInt()

	var full []int
	for ind, y := range years {
		if counts[ind] == 12 {
			full = append(full, y)
		}
	}

	return full, nil
}

// FullYearTotals sums the totals by year over the years of FullYears, so the first and last years
// of the file, which are usually partial, do not distort the trend.
func FullYearTotals(checks *d.Table) (*d.Table, error) {
	full, e := FullYears(checks)
	if e != nil {
		return nil, e
	}

	years, e := checks.Column(nics.YearColumn).AsInt()
	if e != nil {
		return nil, e
	}

	keep := make([]bool, len(years))
	for ind, y := range years {
		keep[ind] = slices.Contains(full, y)
	}

	t, e := checks.Where(keep)
	if e != nil {
		return nil, e
	}

	return t.SumBy(nics.YearColumn, nics.TotalsColumn)
}

// Rank sorts on by and returns the first n rows of the columns by and cols.
func Rank(t *d.Table, by string, n int, ascending bool, cols ...string) (*d.Table, error) {
	keep := []string{by}
	for _, c := range cols {
		if c != by {
			keep = append(keep, c)
		}
	}

	out, e := t.KeepColumns(keep...)
	if e != nil {
		return nil, e
	}

	if out, e = out.Sort(ascending, by); e != nil {
		return nil, e
	}

	return out.Head(n), nil
}
