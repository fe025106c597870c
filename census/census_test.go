package census_test

import (
	"bytes"
	"fmt"
	"log/slog"
	"math"
	"testing"

	d "github.com/invertedv/nicsdf"
	"github.com/invertedv/nicsdf/census"
	"github.com/invertedv/nicsdf/fixtures"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleaner_Clean(t *testing.T) {
	raw := fixtures.Census(
		fixtures.Cell{State: "Ohio", Attr: "population_2016", Value: "1,234,567"},
		fixtures.Cell{State: "Ohio", Attr: "hs_diploma_percentage", Value: "0.45"},
	)

	out, e := census.NewCleaner().Clean(raw)
	require.Nil(t, e)
	assert.Equal(t, 50, out.RowCount())
	assert.Equal(t, append([]string{census.StateColumn}, census.NewCleaner().Attributes()...), out.ColumnNames())

	states, _ := out.Strings(census.StateColumn)
	assert.Equal(t, d.USStates, states)

	recs, e := census.Records(out)
	require.Nil(t, e)

	var ohio census.Record
	for _, r := range recs {
		if r.State == "ohio" {
			ohio = r
		}
	}

	assert.Equal(t, 1234567.0, ohio.Population2016)
	assert.InDelta(t, 45.0, ohio.HSDiplomaPercentage, 1e-9)
	assert.InDelta(t, 58.0, ohio.FemaleEmploymentPercentage, 1e-9)
	assert.Equal(t, 15.0, ohio.PercentOver65In2016)
	assert.Equal(t, 50000.0+34*100, ohio.MedianIncome)
	assert.Equal(t, 50000.25, ohio.LandArea)

	for _, name := range census.PercentColumns {
		x, _ := out.Floats(name)
		for ind, xv := range x {
			assert.True(t, xv >= 0 && xv <= 100, "%s %s %v", name, states[ind], xv)
		}
	}
}

func TestCleaner_NotNumeric(t *testing.T) {
	// a fact that does not parse is left missing and logged
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	raw := fixtures.Census(fixtures.Cell{State: "utah", Attr: "land_area", Value: "Z"})

	out, e := census.NewCleaner(census.WithLogger(logger)).Clean(raw)
	require.Nil(t, e)

	recs, _ := census.Records(out)
	var utah census.Record
	for _, r := range recs {
		if r.State == "utah" {
			utah = r
		}
	}

	assert.True(t, math.IsNaN(utah.LandArea))
	assert.Contains(t, buf.String(), "not numeric")
}

func TestCleaner_Errors(t *testing.T) {
	var ve *d.ValidationError

	// a state column dropped
	raw, _ := fixtures.Census().DropColumns("Wyoming")
	_, e := census.NewCleaner().Clean(raw)
	require.ErrorAs(t, e, &ve)
	assert.Equal(t, "census", ve.Stage)

	// an attribute not in the source
	extra := append(append([]census.Fact(nil), census.DefaultFacts...), census.Fact{Label: "Veterans, 2011-2015", Name: "veterans"})
	_, e = census.NewCleaner(census.WithFacts(extra...)).Clean(fixtures.Census())
	assert.ErrorAs(t, e, &ve)

	// a region that is not a state
	raw, _ = fixtures.Census().Rename("Utah", "Guam")
	_, e = census.NewCleaner().Clean(raw)
	assert.ErrorAs(t, e, &ve)

	raw, _ = fixtures.Census().DropColumns(census.FactColumn)
	_, e = census.NewCleaner().Clean(raw)
	assert.ErrorAs(t, e, &ve)
}

func TestCleaner_Dedup(t *testing.T) {
	c := census.NewCleaner()
	f, _ := d.NewCol([]string{"Land area in square miles, 2010", "Land area in square miles, 2010", "x"}, d.ColName("Fact"))
	v, _ := d.NewCol([]string{"10", "10", "3"}, d.ColName("Utah"))
	tab, _ := d.NewTable(f, v)
	out, e := c.Dedup(tab)
	require.Nil(t, e)
	assert.Equal(t, 2, out.RowCount())

	v, _ = d.NewCol([]string{"10", "11", "3"}, d.ColName("Utah"))
	tab, _ = d.NewTable(f, v)
	_, e = c.Dedup(tab)
	var ve *d.ValidationError
	assert.ErrorAs(t, e, &ve)
}

func TestCleaner_PruneColumns(t *testing.T) {
	f, _ := d.NewCol([]string{"a", "b", "c", "d"}, d.ColName("Fact"))
	n, _ := d.NewCol([]string{"", "(a)", "(b)", "(c)"}, d.ColName("Fact Note"))
	s1, _ := d.NewCol([]string{"1", "2", "", ""}, d.ColName("Utah"))
	s2, _ := d.NewCol([]string{"1", "", "", ""}, d.ColName("Ohio"))
	s3, _ := d.NewCol([]float64{1, math.NaN(), math.NaN(), math.NaN()}, d.ColName("Iowa"))
	tab, _ := d.NewTable(f, n, s1, s2, s3)

	out, e := census.NewCleaner().PruneColumns(tab)
	require.Nil(t, e)
	assert.Equal(t, []string{"Fact", "Utah"}, out.ColumnNames())

	out, e = census.NewCleaner(census.WithMaxMissing(0.8), census.WithAnnotations()).PruneColumns(tab)
	require.Nil(t, e)
	assert.Equal(t, []string{"Fact", "Fact Note", "Utah", "Ohio", "Iowa"}, out.ColumnNames())

	_, e = census.NewCleaner(census.WithMaxMissing(0.1)).PruneColumns(tab)
	assert.NotNil(t, e)
}

func TestCleaner_SelectFacts(t *testing.T) {
	f, _ := d.NewCol([]string{"LAND AREA in square   miles, 2010", "Fact Notes", "persons in poverty, percent "}, d.ColName("Fact"))
	v, _ := d.NewCol([]string{"1", "2", "3"}, d.ColName("Utah"))
	tab, _ := d.NewTable(f, v)

	out, e := census.NewCleaner().SelectFacts(tab)
	require.Nil(t, e)
	vals, _ := out.Strings("Utah")
	assert.Equal(t, []string{"1", "3"}, vals)
}

func TestCleaner_Coerce(t *testing.T) {
	f, _ := d.NewCol([]string{"a", "b", "c", "d", "e"}, d.ColName("Fact"))
	v, _ := d.NewCol([]string{"$1,234", "12.5%", "", "D", " 7 "}, d.ColName("Utah"))
	tab, _ := d.NewTable(f, v)

	out, failed, e := census.NewCleaner().Coerce(tab)
	require.Nil(t, e)
	assert.Equal(t, 1, failed)
	x, _ := out.Floats("Utah")
	assert.Equal(t, 1234.0, x[0])
	assert.Equal(t, 12.5, x[1])
	assert.True(t, math.IsNaN(x[2]))
	assert.True(t, math.IsNaN(x[3]))
	assert.Equal(t, 7.0, x[4])
}

func TestCleaner_FixScale(t *testing.T) {
	s, _ := d.NewCol([]string{"ohio", "texas"}, d.ColName("state"))
	p, _ := d.NewCol([]float64{0.12, 14}, d.ColName("poverty_percentage"))
	inc, _ := d.NewCol([]float64{0.5, 0.5}, d.ColName("median_income"))
	tab, _ := d.NewTable(s, p, inc)

	c := census.NewCleaner(census.WithPercentColumns("poverty_percentage"))
	out, e := c.FixScale(tab)
	require.Nil(t, e)
	x, _ := out.Floats("poverty_percentage")
	assert.InDelta(t, 12.0, x[0], 1e-9)
	assert.Equal(t, 14.0, x[1])
	y, _ := out.Floats("median_income")
	assert.Equal(t, []float64{0.5, 0.5}, y)

	_, e = census.NewCleaner().FixScale(tab)
	assert.NotNil(t, e)
}

// The cleaned table has a row per state and an attribute per fact.
func ExampleCleaner_Clean() {
	raw := fixtures.Census(fixtures.Cell{State: "Texas", Attr: "population_2016", Value: "27,862,596"})

	var (
		out *d.Table
		e   error
	)
	if out, e = census.NewCleaner().Clean(raw); e != nil {
		panic(e)
	}

	tx, _ := out.Where(isState(out, "texas"))
	fmt.Println(out.RowCount(), out.ColumnCount())
	fmt.Println(tx.Column("population_2016").AsAny())
	// Output:
	// 50 17
	// [2.7862596e+07]
}

func isState(t *d.Table, state string) []bool {
	states, _ := t.Strings(census.StateColumn)
	keep := make([]bool, len(states))
	for ind, s := range states {
		keep[ind] = s == state
	}

	return keep
}
