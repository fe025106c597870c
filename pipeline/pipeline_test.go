package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	d "github.com/invertedv/nicsdf"
	"github.com/invertedv/nicsdf/config"
	"github.com/invertedv/nicsdf/fixtures"
	"github.com/invertedv/nicsdf/logging"
	"github.com/invertedv/nicsdf/nics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T, nicsText, censusText string) (*config.Config, *bytes.Buffer) {
	dir := t.TempDir()
	nicsFile := filepath.Join(dir, "gun_data.csv")
	censusFile := filepath.Join(dir, "us_census_data.csv")
	require.NoError(t, os.WriteFile(nicsFile, []byte(nicsText), 0o644))
	require.NoError(t, os.WriteFile(censusFile, []byte(censusText), 0o644))

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Input.NicsURL = nicsFile
	cfg.Input.CensusURL = censusFile
	cfg.Output.Dir = filepath.Join(dir, "out")

	return cfg, &bytes.Buffer{}
}

func nicsText() string {
	months := []string{"1998-11", "2010-01", "2010-02", "2016-07", "2017-09"}
	// one complete year
	for m := 1; m <= 12; m++ {
		months = append(months, fmt.Sprintf("2012-%02d", m))
	}

	checks := fixtures.StatesChecks(100, months...)
	// dropped from the checks of 2016
	var kept []fixtures.Check
	for _, c := range checks {
		if c.State == "Vermont" && c.Month == "2016-07" {
			continue
		}

		kept = append(kept, c)
	}

	kept = append(kept, fixtures.Check{Month: "2016-07", State: "Guam", Handgun: 1, LongGun: 1, Totals: 3})

	return fixtures.NicsCSV(kept...)
}

func TestRun(t *testing.T) {
	cfg, buf := setup(t, nicsText(), fixtures.CensusCSV())
	cfg.Output.XLSX = true
	cfg.Output.Plots = true
	logger := logging.NewWithWriter(buf, cfg.Logging)

	res, err := Run(context.Background(), cfg, logger)
	require.NoError(t, err)

	assert.Equal(t, 49, res.Reconciled.Table.RowCount())
	require.Len(t, res.Reconciled.Dropped, 1)
	assert.Equal(t, "vermont", res.Reconciled.Dropped[0].State)
	assert.Equal(t, []string{"checks_2016"}, res.Reconciled.Dropped[0].MissingFrom)
	assert.Contains(t, buf.String(), "state dropped from reconciled table")

	assert.Equal(t, []int{1998, 2010, 2016, 2017}, res.PartialYears)
	assert.Equal(t, 8, res.Correlations.RowCount())
	// only 2012 is complete; 100..149 for each of 12 months
	assert.Equal(t, []int{2012}, res.Annual.Column(nics.YearColumn).AsAny())
	annual, _ := res.Annual.Floats(nics.TotalsColumn)
	assert.Equal(t, []float64{12 * 6225}, annual)
	assert.Equal(t, 50, res.Demographics.RowCount())

	for _, name := range []string{ChecksFile, CensusFile, ReconciledFile, CorrelationsFile, WorkbookFile,
		filepath.Join(PlotDir, "monthly_totals.html"), filepath.Join(PlotDir, "median_income.html")} {
		_, err := os.Stat(filepath.Join(cfg.Output.Dir, name))
		assert.NoError(t, err, name)
	}

	b, err := os.ReadFile(filepath.Join(cfg.Output.Dir, ReconciledFile))
	require.NoError(t, err)
	header := strings.Split(string(b), "\n")[0]
	assert.True(t, strings.HasPrefix(header, `"state","gun_checks_2010","gun_checks_2016"`))
}

func TestRun_LoadError(t *testing.T) {
	cfg, buf := setup(t, nicsText(), fixtures.CensusCSV())
	cfg.Input.CensusURL = filepath.Join(t.TempDir(), "missing.csv")

	_, err := Run(context.Background(), cfg, logging.NewWithWriter(buf, cfg.Logging))
	var le *d.LoadError
	require.ErrorAs(t, err, &le)
	assert.ErrorIs(t, err, d.ErrNotFound)

	_, err = os.Stat(cfg.Output.Dir)
	assert.True(t, os.IsNotExist(err))
}

func TestRun_ValidationError(t *testing.T) {
	raw, _ := fixtures.Census().DropColumns("Utah")
	dir := t.TempDir()
	censusFile := filepath.Join(dir, "census.csv")
	require.NoError(t, d.NewFiles().Save(censusFile, raw))

	cfg, buf := setup(t, nicsText(), fixtures.CensusCSV())
	cfg.Input.CensusURL = censusFile

	_, err := Run(context.Background(), cfg, logging.NewWithWriter(buf, cfg.Logging))
	var ve *d.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "census", ve.Stage)

	_, err = os.Stat(cfg.Output.Dir)
	assert.True(t, os.IsNotExist(err))
}
