// Package census cleans the census state facts table. The raw table has one row per fact and one
// column per state; the cleaned table has one row per state and one float column per attribute.
package census

import (
	"log/slog"
	"math"
	"strconv"
	"strings"

	d "github.com/invertedv/nicsdf"
)

const (
	FactColumn  = "Fact"
	NoteColumn  = "Fact Note"
	StateColumn = "state"

	// DefaultMaxMissing is the share of missing cells above which PruneColumns drops a column.
	DefaultMaxMissing = 0.5

	stage = "census"
)

// Fact maps the label of a raw fact row to an attribute name.
type Fact struct {
	Label string
	Name  string
}

// DefaultFacts are the facts kept by the cleaner.
var DefaultFacts = []Fact{
	{"Population estimates, July 1, 2016,  (V2016)", "population_2016"},
	{"Population estimates base, April 1, 2010,  (V2016)", "population_2010"},
	{"Population, percent change - April 1, 2010 (estimates base) to July 1, 2016,  (V2016)", "percent_change_population"},
	{"Persons 65 years and over, percent, July 1, 2016,  (V2016)", "percent_over_65_2016"},
	{"Persons 65 years and over, percent, April 1, 2010", "percent_over_65_2010"},
	{"High school graduate or higher, percent of persons age 25 years+, 2011-2015", "hs_diploma_percentage"},
	{"Bachelor's degree or higher, percent of persons age 25 years+, 2011-2015", "bachelors_degree_percentage"},
	{"Persons  without health insurance, under age 65 years, percent", "uninsured_percentage"},
	{"In civilian labor force, total, percent of population age 16 years+, 2011-2015", "total_employment_percentage"},
	{"In civilian labor force, female, percent of population age 16 years+, 2011-2015", "female_employment_percentage"},
	{"Median household income (in 2015 dollars), 2011-2015", "median_income"},
	{"Per capita income in past 12 months (in 2015 dollars), 2011-2015", "income_per_capita"},
	{"Persons in poverty, percent", "poverty_percentage"},
	{"Total employer establishments, 2015", "number_of_employers"},
	{"Population per square mile, 2010", "population_density"},
	{"Land area in square miles, 2010", "land_area"},
}

// FractionalStates are the states whose percent facts are published as fractions.
var FractionalStates = []string{"new mexico", "new york", "north carolina", "north dakota", "ohio", "oklahoma",
	"oregon", "pennsylvania", "rhode island", "south carolina", "south dakota", "tennessee"}

// PercentColumns are the attributes rescaled for FractionalStates.
var PercentColumns = []string{"percent_change_population", "female_employment_percentage", "hs_diploma_percentage",
	"bachelors_degree_percentage", "total_employment_percentage", "poverty_percentage"}

// Cleaner holds the settings of the cleaning steps. Each step takes a table and returns a new one.
type Cleaner struct {
	facts       []Fact
	annotations []string
	maxMissing  float64
	fractional  []string
	percent     []string
	logger      *slog.Logger
}

type Opt func(c *Cleaner)

// WithFacts replaces DefaultFacts.
func WithFacts(facts ...Fact) Opt {
	return func(c *Cleaner) { c.facts = facts }
}

// WithAnnotations sets the columns PruneColumns always drops. The default is the "Fact Note" column.
func WithAnnotations(cols ...string) Opt {
	return func(c *Cleaner) { c.annotations = cols }
}

func WithMaxMissing(share float64) Opt {
	return func(c *Cleaner) { c.maxMissing = share }
}

// WithFractionalStates replaces FractionalStates.
func WithFractionalStates(states ...string) Opt {
	return func(c *Cleaner) { c.fractional = states }
}

// WithPercentColumns replaces PercentColumns.
func WithPercentColumns(cols ...string) Opt {
	return func(c *Cleaner) { c.percent = cols }
}

func WithLogger(logger *slog.Logger) Opt {
	return func(c *Cleaner) { c.logger = logger }
}

func NewCleaner(opts ...Opt) *Cleaner {
	c := &Cleaner{
		facts:       DefaultFacts,
		annotations: []string{NoteColumn},
		maxMissing:  DefaultMaxMissing,
		fractional:  FractionalStates,
		percent:     PercentColumns,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Attributes are the names of the configured facts, in order.
func (c *Cleaner) Attributes() []string {
	var names []string
	for _, f := range c.facts {
		names = append(names, f.Name)
	}

	return names
}

// Clean runs PruneColumns, SelectFacts, Dedup, Coerce, Transpose and FixScale and sorts the result
// by state. The result must have exactly one row for each of the 50 states.
func (c *Cleaner) Clean(raw *d.Table) (*d.Table, error) {
	var (
		t *d.Table
		e error
	)

	if t, e = c.PruneColumns(raw); e != nil {
		return nil, e
	}

	if t, e = c.SelectFacts(t); e != nil {
		return nil, e
	}

	if t, e = c.Dedup(t); e != nil {
		return nil, e
	}

	var failed int
	if t, failed, e = c.Coerce(t); e != nil {
		return nil, e
	}

	if failed > 0 {
		c.logger.Warn("census cells not numeric, left missing", slog.Int("cells", failed))
	}

	if t, e = c.Transpose(t); e != nil {
		return nil, e
	}

	if e = c.validate(t); e != nil {
		return nil, e
	}

	if t, e = c.FixScale(t); e != nil {
		return nil, e
	}

	if t, e = t.Sort(true, StateColumn); e != nil {
		return nil, e
	}

	c.logger.Info("census cleaned", slog.Int("states", t.RowCount()), slog.Int("attributes", t.ColumnCount()-1))

	return t, nil
}

// PruneColumns drops the annotation columns and any other column whose share of missing cells
// exceeds the threshold. The fact column is always kept.
func (c *Cleaner) PruneColumns(raw *d.Table) (*d.Table, error) {
	if raw.Column(FactColumn) == nil {
		return nil, d.Validationf(stage, "column %s not found", FactColumn)
	}

	var keep []string
	for _, col := range raw.Columns() {
		name := col.Name()
		if name == FactColumn {
			keep = append(keep, name)
			continue
		}

		if isOneOf(name, c.annotations) {
			continue
		}

		if share := missingShare(col); share > c.maxMissing {
			c.logger.Debug("dropping sparse column", slog.String("column", name), slog.Float64("missing", share))
			continue
		}

		keep = append(keep, name)
	}

	if len(keep) < 2 {
		return nil, d.Validationf(stage, "no state columns left after pruning")
	}

	return raw.KeepColumns(keep...)
}

func missingShare(col *d.Col) float64 {
	if col.Len() == 0 {
		return 0
	}

	var n int
	for ind := 0; ind < col.Len(); ind++ {
		if col.Missing(ind) {
			n++
		}
	}

	return float64(n) / float64(col.Len())
}

// SelectFacts keeps the rows whose label is a configured fact. Labels match after case folding and
// collapsing runs of white space.
func (c *Cleaner) SelectFacts(t *d.Table) (*d.Table, error) {
	labels, e := t.Strings(FactColumn)
	if e != nil {
		return nil, e
	}

	want := make(map[string]bool)
	for _, f := range c.facts {
		want[normalize(f.Label)] = true
	}

	keep := make([]bool, len(labels))
	for ind, l := range labels {
		keep[ind] = want[normalize(l)]
	}

	return t.Where(keep)
}

// Dedup removes exact duplicate rows. A fact that still appears more than once has conflicting
// values and is an error.
func (c *Cleaner) Dedup(t *d.Table) (*d.Table, error) {
	out := t.Distinct()

	labels, e := out.Strings(FactColumn)
	if e != nil {
		return nil, e
	}

	counts := make(map[string]int)
	for _, l := range labels {
		counts[normalize(l)]++
	}

	for _, l := range labels {
		if n := counts[normalize(l)]; n > 1 {
			return nil, d.Validationf(stage, "fact %q appears %d times with different values", l, n)
		}
	}

	return out, nil
}

// Coerce converts every state column to float, stripping thousands separators, currency and
// percent signs. Cells that still do not parse become NaN and are counted in failed.
func (c *Cleaner) Coerce(t *d.Table) (out *d.Table, failed int, err error) {
	out = t
	for _, col := range t.Columns() {
		if col.Name() == FactColumn || col.DataType() == d.DTfloat {
			continue
		}

		var x []string
		if x, err = col.AsString(); err != nil {
			return nil, 0, err
		}

		vals := make([]float64, len(x))
		for ind, xs := range x {
			var ok bool
			if vals[ind], ok = parseNumber(xs); !ok {
				failed++
				c.logger.Debug("not numeric", slog.String("state", col.Name()), slog.String("value", xs))
			}
		}

		var fc *d.Col
		if fc, err = d.NewCol(vals, d.ColName(col.Name())); err != nil {
			return nil, 0, err
		}

		if out, err = out.AppendColumn(fc, true); err != nil {
			return nil, 0, err
		}
	}

	return out, failed, nil
}

// parseNumber returns NaN, true for an empty cell and NaN, false for one that is not a number.
func parseNumber(xs string) (float64, bool) {
	s := strings.NewReplacer(",", "", "$", "", "%", "", " ", "").Replace(strings.TrimSpace(xs))
	if s == "" {
		return math.NaN(), true
	}

	f, e := strconv.ParseFloat(s, 64)
	if e != nil {
		return math.NaN(), false
	}

	return f, true
}

// Transpose turns the fact rows into attribute columns and the state columns into rows. State
// names are lowercased.
func (c *Cleaner) Transpose(t *d.Table) (*d.Table, error) {
	labels, e := t.Strings(FactColumn)
	if e != nil {
		return nil, e
	}

	row := make(map[string]int)
	for ind, l := range labels {
		row[normalize(l)] = ind
	}

	var (
		states []string
		data   [][]float64
	)
	for _, col := range t.Columns() {
		if col.Name() == FactColumn {
			continue
		}

		x, e := col.AsFloat()
		if e != nil {
			return nil, e
		}

		states = append(states, strings.ToLower(strings.TrimSpace(col.Name())))
		data = append(data, x)
	}

	sc, e := d.NewCol(states, d.ColName(StateColumn))
	if e != nil {
		return nil, e
	}

	cols := []*d.Col{sc}
	for _, f := range c.facts {
		r, ok := row[normalize(f.Label)]
		if !ok {
			continue
		}

		x := make([]float64, len(states))
		for s := range states {
			x[s] = data[s][r]
		}

		var fc *d.Col
		if fc, e = d.NewCol(x, d.ColName(f.Name)); e != nil {
			return nil, e
		}

		cols = append(cols, fc)
	}

	return d.NewTable(cols...)
}

// FixScale multiplies the percent columns by 100 in the rows of the fractional states.
func (c *Cleaner) FixScale(t *d.Table) (*d.Table, error) {
	states, e := t.Strings(StateColumn)
	if e != nil {
		return nil, e
	}

	out := t
	for _, name := range c.percent {
		var x []float64
		if x, e = t.Floats(name); e != nil {
			return nil, d.Validationf(stage, "%v", e)
		}

		fixed := make([]float64, len(x))
		for ind, xv := range x {
			fixed[ind] = xv
			if isOneOf(states[ind], c.fractional) {
				fixed[ind] = 100 * xv
			}
		}

		var fc *d.Col
		if fc, e = d.NewCol(fixed, d.ColName(name)); e != nil {
			return nil, e
		}

		if out, e = out.AppendColumn(fc, true); e != nil {
			return nil, e
		}
	}

	return out, nil
}

func (c *Cleaner) validate(t *d.Table) error {
	for _, name := range c.Attributes() {
		if t.Column(name) == nil {
			return d.Validationf(stage, "attribute %s not found", name)
		}
	}

	states, e := t.Strings(StateColumn)
	if e != nil {
		return e
	}

	if len(states) != len(d.USStates) {
		return d.Validationf(stage, "have %d states, expected %d", len(states), len(d.USStates))
	}

	seen := make(map[string]bool)
	for _, s := range states {
		if !d.IsState(s) {
			return d.Validationf(stage, "%q is not a state", s)
		}

		if seen[s] {
			return d.Validationf(stage, "state %q appears twice", s)
		}

		seen[s] = true
	}

	return nil
}

func normalize(label string) string {
	return strings.ToLower(strings.Join(strings.Fields(label), " "))
}

func isOneOf(needle string, haystack []string) bool {
	for _, h := range haystack {
		if strings.EqualFold(strings.TrimSpace(needle), strings.TrimSpace(h)) {
			return true
		}
	}

	return false
}
