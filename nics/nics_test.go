package nics_test

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	d "github.com/invertedv/nicsdf"
	"github.com/invertedv/nicsdf/fixtures"
	"github.com/invertedv/nicsdf/load"
	"github.com/invertedv/nicsdf/nics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawChecks() *d.Table {
	return fixtures.Nics(
		fixtures.Check{Month: "2016-02", State: "Texas", Handgun: 10, LongGun: 1, Totals: 300},
		fixtures.Check{Month: "2016-01", State: "Guam", Handgun: 30, LongGun: 1, Totals: 5},
		fixtures.Check{Month: "2010-03", State: "Ohio", Handgun: math.NaN(), LongGun: 1, Totals: 12},
		fixtures.Check{Month: "2010-03", State: " District of Columbia", Handgun: 2, LongGun: math.NaN(), Totals: 8},
	)
}

func TestCleaner_Clean(t *testing.T) {
	out, e := nics.NewCleaner().Clean(rawChecks())
	require.Nil(t, e)

	states, _ := out.Strings(nics.RegionColumn)
	assert.Equal(t, []string{"texas", "ohio"}, states)

	// the mean covers Guam and DC, which are then filtered out
	hg, _ := out.Floats("handgun")
	assert.InDelta(t, 14.0, hg[1], 1e-9)

	lg, _ := out.Floats("long_gun")
	assert.Equal(t, []float64{1, 1}, lg)

	years := out.Column(nics.YearColumn).AsAny()
	assert.Equal(t, []int{2016, 2010}, years)

	months, e := out.Column(nics.PeriodColumn).AsDate()
	require.Nil(t, e)
	assert.Equal(t, time.Date(2016, 2, 1, 0, 0, 0, 0, time.UTC), months[0])

	names := out.ColumnNames()
	assert.Equal(t, []string{nics.PeriodColumn, nics.YearColumn, nics.RegionColumn}, names[:3])
	assert.Equal(t, nics.TotalsColumn, names[len(names)-1])
}

func TestCleaner_Impute(t *testing.T) {
	c := nics.NewCleaner()
	out, e := c.Impute(rawChecks())
	require.Nil(t, e)

	for _, name := range nics.Counters {
		x, _ := out.Floats(name)
		for _, xv := range x {
			assert.False(t, math.IsNaN(xv), name)
		}
	}

	hg, _ := out.Floats("handgun")
	assert.InDelta(t, 14.0, hg[2], 1e-9)

	// input untouched
	hgIn, _ := rawChecks().Floats("handgun")
	assert.True(t, math.IsNaN(hgIn[2]))

	allMissing := fixtures.Nics(fixtures.Check{Month: "2016-01", State: "Texas", Handgun: math.NaN()})
	_, e = c.Impute(allMissing)
	var ve *d.ValidationError
	assert.ErrorAs(t, e, &ve)
}

func TestCleaner_CleanNotNumeric(t *testing.T) {
	fileName := filepath.Join(t.TempDir(), "checks.csv")
	text := "month,state,handgun,totals\n2010-01,Texas,5,100\n2016-01,Texas,-,200\n2016-01,Ohio,3,n/a\n"
	require.Nil(t, os.WriteFile(fileName, []byte(text), 0o644))

	raw, e := load.Load(context.Background(), fileName)
	require.Nil(t, e)
	assert.Equal(t, d.DTstring, raw.Column("handgun").DataType())

	_, e = nics.NewCleaner().Clean(raw)
	var ve *d.ValidationError
	require.ErrorAs(t, e, &ve)
	assert.Equal(t, "nics", ve.Stage)
	assert.Contains(t, ve.Msg, "is not numeric")

	noTotals, _ := fixtures.Nics(fixtures.Check{Month: "2016-01", State: "Texas"}).DropColumns(nics.TotalsColumn)
	e = nics.CheckCounters(noTotals)
	assert.ErrorAs(t, e, &ve)
	assert.Nil(t, nics.CheckCounters(rawChecks()))
}

func TestCleaner_FilterRegions(t *testing.T) {
	c := nics.NewCleaner(nics.WithExcluded("Texas"))
	out, e := c.FilterRegions(rawChecks())
	require.Nil(t, e)
	states, _ := out.Strings(nics.RegionColumn)
	assert.Equal(t, []string{"Guam", "Ohio", " District of Columbia"}, states)

	out, e = nics.NewCleaner().FilterRegions(rawChecks())
	require.Nil(t, e)
	assert.Equal(t, 2, out.RowCount())
}

func TestCleaner_Decompose(t *testing.T) {
	c := nics.NewCleaner()
	bad := fixtures.Nics(fixtures.Check{Month: "September", State: "Texas"})
	_, e := c.Decompose(bad)
	var ve *d.ValidationError
	require.ErrorAs(t, e, &ve)
	assert.Equal(t, "nics", ve.Stage)

	_, e = nics.NewCleaner(nics.WithPeriodColumn("period")).Decompose(rawChecks())
	assert.ErrorAs(t, e, &ve)

	// periods loaded as numbers
	p, _ := d.NewCol([]float64{201709, 199811}, d.ColName("month"))
	s, _ := d.NewCol([]string{"Ohio", "Utah"}, d.ColName("state"))
	tab, _ := d.NewTable(p, s)
	out, e := c.Decompose(tab)
	require.Nil(t, e)
	assert.Equal(t, []int{2017, 1998}, out.Column(nics.YearColumn).AsAny())
}

func TestBetween(t *testing.T) {
	out, e := nics.NewCleaner().Clean(fixtures.Nics(fixtures.StatesChecks(10, "2009-12", "2010-01", "2016-06", "2017-01")...))
	require.Nil(t, e)
	assert.Equal(t, 200, out.RowCount())

	b, e := nics.Between(out, 2010, 2016)
	require.Nil(t, e)
	assert.Equal(t, 100, b.RowCount())

	b, e = nics.Between(out, 2011, 2015)
	require.Nil(t, e)
	assert.Equal(t, 0, b.RowCount())

	_, e = nics.Between(rawChecks(), 2010, 2016)
	assert.NotNil(t, e)
}

func TestRecords(t *testing.T) {
	out, e := nics.NewCleaner().Clean(rawChecks())
	require.Nil(t, e)

	recs, e := nics.Records(out)
	require.Nil(t, e)
	require.Len(t, recs, 2)
	assert.Equal(t, "texas", recs[0].State)
	assert.Equal(t, 2016, recs[0].Year)
	assert.Equal(t, 300.0, recs[0].Total())
	assert.Len(t, recs[0].Counters, len(nics.Counters))

	_, e = nics.Records(rawChecks())
	assert.NotNil(t, e)
}

// Clean imputes, drops the non-state regions, lowercases the state and adds the year.
func ExampleCleaner_Clean() {
	raw := fixtures.Nics(
		fixtures.Check{Month: "2016-02", State: "Texas", Totals: 300},
		fixtures.Check{Month: "2016-02", State: "Puerto Rico", Totals: 7},
		fixtures.Check{Month: "2010-11", State: "Ohio", Totals: math.NaN()},
	)

	var (
		out *d.Table
		e   error
	)
	if out, e = nics.NewCleaner().Clean(raw); e != nil {
		panic(e)
	}

	tab, _ := out.KeepColumns("state", "year", "totals")
	for r := 0; r < tab.RowCount(); r++ {
		fmt.Println(tab.Row(r))
	}
	// Output:
	// [texas 2016 300]
	// [ohio 2010 153.5]
}
