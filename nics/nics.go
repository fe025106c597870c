// Package nics cleans the FBI NICS firearm background check table: it imputes missing counts,
// restricts the regions to the 50 states, normalizes the state key and splits the period into
// month and year.
package nics

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	d "github.com/invertedv/nicsdf"
	"gonum.org/v1/gonum/stat"
)

const (
	RegionColumn = "state"
	PeriodColumn = "month"
	YearColumn   = "year"
	TotalsColumn = "totals"

	stage = "nics"
)

// Counters are the numeric columns of the public NICS file.
var Counters = []string{"permit", "permit_recheck", "handgun", "long_gun", "other", "multiple", "admin",
	"prepawn_handgun", "prepawn_long_gun", "prepawn_other",
	"redemption_handgun", "redemption_long_gun", "redemption_other",
	"returned_handgun", "returned_long_gun", "returned_other",
	"rentals_handgun", "rentals_long_gun",
	"private_sale_handgun", "private_sale_long_gun", "private_sale_other",
	"return_to_seller_handgun", "return_to_seller_long_gun", "return_to_seller_other",
	TotalsColumn}

// Cleaner holds the settings of the cleaning steps. Each step takes a table and returns a new one.
type Cleaner struct {
	region   string
	period   string
	excluded []string
	logger   *slog.Logger
}

type Opt func(c *Cleaner)

func WithRegionColumn(name string) Opt {
	return func(c *Cleaner) { c.region = name }
}

func WithPeriodColumn(name string) Opt {
	return func(c *Cleaner) { c.period = name }
}

// WithExcluded replaces the regions dropped by FilterRegions. The default is df.NonStates.
func WithExcluded(regions ...string) Opt {
	return func(c *Cleaner) { c.excluded = regions }
}

func WithLogger(logger *slog.Logger) Opt {
	return func(c *Cleaner) { c.logger = logger }
}

func NewCleaner(opts ...Opt) *Cleaner {
	c := &Cleaner{
		region:   RegionColumn,
		period:   PeriodColumn,
		excluded: d.NonStates,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Clean checks the counters and runs Impute, FilterRegions, NormalizeKeys and Decompose, in that
// order. Imputation must come before the filter since the means are taken over every region.
func (c *Cleaner) Clean(raw *d.Table) (*d.Table, error) {
	var (
		t *d.Table
		e error
	)

	if e = CheckCounters(raw); e != nil {
		return nil, e
	}

	if t, e = c.Impute(raw); e != nil {
		return nil, e
	}

	if t, e = c.FilterRegions(t); e != nil {
		return nil, e
	}

	if t, e = c.NormalizeKeys(t); e != nil {
		return nil, e
	}

	if t, e = c.Decompose(t); e != nil {
		return nil, e
	}

	c.logger.Info("nics cleaned", slog.Int("rows_in", raw.RowCount()), slog.Int("rows_out", t.RowCount()))

	return t, nil
}

// CheckCounters requires the totals column and requires every counter in Counters that is present
// to be numeric. A counter holding text the loader could not read as a number would otherwise
// escape imputation.
func CheckCounters(t *d.Table) error {
	if t.Column(TotalsColumn) == nil {
		return d.Validationf(stage, "counter %s not found", TotalsColumn)
	}

	for _, name := range Counters {
		col := t.Column(name)
		if col == nil {
			continue
		}

		if col.DataType() != d.DTfloat {
			return d.Validationf(stage, "counter %s is not numeric", name)
		}
	}

	return nil
}

// Impute replaces the missing values of each float column with the mean of the column's
// non-missing values.
func (c *Cleaner) Impute(t *d.Table) (*d.Table, error) {
	out := t
	for _, col := range t.Columns() {
		if col.DataType() != d.DTfloat || col.Name() == c.period {
			continue
		}

		x, _ := col.AsFloat()
		var (
			present []float64
			nMiss   int
		)
		for _, xv := range x {
			if math.IsNaN(xv) {
				nMiss++
				continue
			}

			present = append(present, xv)
		}

		if nMiss == 0 {
			continue
		}

		if present == nil {
			return nil, d.Validationf(stage, "column %s has no values to impute from", col.Name())
		}

		mean := stat.Mean(present, nil)
		filled := make([]float64, len(x))
		for ind, xv := range x {
			filled[ind] = xv
			if math.IsNaN(xv) {
				filled[ind] = mean
			}
		}

		var (
			fc *d.Col
			e  error
		)
		if fc, e = d.NewCol(filled, d.ColName(col.Name())); e != nil {
			return nil, e
		}

		if out, e = out.AppendColumn(fc, true); e != nil {
			return nil, e
		}

		c.logger.Debug("imputed", slog.String("column", col.Name()), slog.Int("cells", nMiss), slog.Float64("mean", mean))
	}

	return out, nil
}

// FilterRegions drops the rows of the excluded regions. Region names are compared without
// regard to case.
func (c *Cleaner) FilterRegions(t *d.Table) (*d.Table, error) {
	var (
		regions []string
		e       error
	)
	if regions, e = t.Strings(c.region); e != nil {
		return nil, d.Validationf(stage, "%v", e)
	}

	keep := make([]bool, len(regions))
	for ind, r := range regions {
		keep[ind] = !c.isExcluded(r)
	}

	return t.Where(keep)
}

func (c *Cleaner) isExcluded(region string) bool {
	for _, x := range c.excluded {
		if strings.EqualFold(strings.TrimSpace(region), x) {
			return true
		}
	}

	return false
}

// NormalizeKeys lowercases the region so it joins with the census states.
func (c *Cleaner) NormalizeKeys(t *d.Table) (*d.Table, error) {
	var (
		regions []string
		e       error
	)
	if regions, e = t.Strings(c.region); e != nil {
		return nil, d.Validationf(stage, "%v", e)
	}

	lower := make([]string, len(regions))
	for ind, r := range regions {
		lower[ind] = strings.ToLower(strings.TrimSpace(r))
	}

	col, e := d.NewCol(lower, d.ColName(c.region))
	if e != nil {
		return nil, e
	}

	return t.AppendColumn(col, true)
}

// Decompose replaces the period with the first day of its month and adds the year right after it.
func (c *Cleaner) Decompose(t *d.Table) (*d.Table, error) {
	pc := t.Column(c.period)
	if pc == nil {
		return nil, d.Validationf(stage, "period column %s not found", c.period)
	}

	months := make([]time.Time, t.RowCount())
	years := make([]int, t.RowCount())
	for ind := 0; ind < t.RowCount(); ind++ {
		var (
			dt time.Time
			e  error
		)
		switch x := pc.Element(ind).(type) {
		case time.Time:
			dt = x
		case float64:
			// periods such as 201709 load as numbers
			if math.IsNaN(x) {
				e = d.ErrEmpty
				break
			}

			dt, e = d.ParseDate(strconv.FormatFloat(x, 'f', -1, 64))
		case int:
			dt, e = d.ParseDate(strconv.Itoa(x))
		case string:
			dt, e = d.ParseDate(strings.TrimSpace(x))
		default:
			e = fmt.Errorf("unsupported type %T", x)
		}

		if e != nil {
			return nil, d.Validationf(stage, "row %d: unparseable period %v", ind+1, pc.Element(ind))
		}

		months[ind] = time.Date(dt.Year(), dt.Month(), 1, 0, 0, 0, 0, time.UTC)
		years[ind] = dt.Year()
	}

	mc, e := d.NewCol(months, d.ColName(c.period))
	if e != nil {
		return nil, e
	}

	yc, e := d.NewCol(years, d.ColName(YearColumn))
	if e != nil {
		return nil, e
	}

	var cols []*d.Col
	for _, col := range t.Columns() {
		switch col.Name() {
		case c.period:
			cols = append(cols, mc, yc)
		case YearColumn:
			// replaced
		default:
			cols = append(cols, col)
		}
	}

	return d.NewTable(cols...)
}
