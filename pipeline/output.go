package pipeline

import (
	"fmt"
	"log/slog"
	"path/filepath"

	d "github.com/invertedv/nicsdf"
	"github.com/invertedv/nicsdf/census"
	"github.com/invertedv/nicsdf/config"
	"github.com/invertedv/nicsdf/export"
	"github.com/invertedv/nicsdf/nics"
	"github.com/invertedv/nicsdf/plot"
	"github.com/invertedv/nicsdf/reconcile"
	"github.com/invertedv/nicsdf/stats"
	"github.com/pkg/errors"
)

// Output file names within the output directory.
const (
	ChecksFile       = "checks.csv"
	CensusFile       = "census.csv"
	ReconciledFile   = "reconciled.csv"
	CorrelationsFile = "correlations.csv"
	WorkbookFile     = "analysis.xlsx"
	PlotDir          = "plots"
)

func (r *Result) sheets() []export.Sheet {
	return []export.Sheet{
		{Name: "reconciled", Table: r.Reconciled.Table},
		{Name: "correlations", Table: r.Correlations},
		{Name: "census_summary", Table: r.Describe},
		{Name: "annual_totals", Table: r.Annual},
		{Name: "monthly_totals", Table: r.Monthly},
	}
}

// Write saves the outputs selected in cfg.
func (r *Result) Write(cfg config.OutputConfig, logger *slog.Logger) error {
	if cfg.CSV {
		files := map[string]*d.Table{
			ChecksFile:       r.Checks,
			CensusFile:       r.Demographics,
			ReconciledFile:   r.Reconciled.Table,
			CorrelationsFile: r.Correlations,
		}

		for name, t := range files {
			fileName := filepath.Join(cfg.Dir, name)
			if err := export.WriteCSV(t, fileName); err != nil {
				return err
			}

			logger.Info("wrote", slog.String("file", fileName), slog.Int("rows", t.RowCount()))
		}
	}

	if cfg.XLSX {
		fileName := filepath.Join(cfg.Dir, WorkbookFile)
		if err := export.WriteXLSX(fileName, r.sheets()...); err != nil {
			return err
		}

		logger.Info("wrote", slog.String("file", fileName))
	}

	if cfg.Plots {
		if err := r.Plots(filepath.Join(cfg.Dir, PlotDir), logger); err != nil {
			return err
		}
	}

	return nil
}

// Plots draws the trends, the per capita checks by state and a scatter of each correlated
// attribute against checks per capita.
func (r *Result) Plots(dir string, logger *slog.Logger) error {
	rt := r.Reconciled.Table
	yearA, yearB := r.Reconciled.YearA, r.Reconciled.YearB

	save := func(p *plot.Plot, name string) error {
		fileName := filepath.Join(dir, name+".html")
		if err := p.Save(fileName); err != nil {
			return errors.Wrapf(err, "plot %s", name)
		}

		logger.Debug("wrote plot", slog.String("file", fileName))

		return nil
	}

	p := plot.NewPlot(plot.WithTitle("Monthly background checks"), plot.WithXlabel("month"), plot.WithYlabel("checks"))
	if err := p.PlotXY(r.Monthly.Column(nics.PeriodColumn), r.Monthly.Column(nics.TotalsColumn), "total", "black"); err != nil {
		return err
	}

	if err := save(p, "monthly_totals"); err != nil {
		return err
	}

	p = plot.NewPlot(plot.WithTitle("Annual background checks"), plot.WithXlabel("year"), plot.WithYlabel("checks"))
	if err := p.Bar(r.Annual.Column(nics.YearColumn), r.Annual.Column(nics.TotalsColumn), "total"); err != nil {
		return err
	}

	if err := save(p, "annual_totals"); err != nil {
		return err
	}

	p = plot.NewPlot(plot.WithTitle("Background checks per capita"), plot.WithLegend(true))
	for _, y := range []int{yearA, yearB} {
		if err := p.Bar(rt.Column(census.StateColumn), rt.Column(reconcile.PerCapitaColumn(y)), fmt.Sprint(y)); err != nil {
			return err
		}
	}

	if err := save(p, "per_capita"); err != nil {
		return err
	}

	colors := map[int]string{yearA: "blue", yearB: "red"}
	for _, attr := range stats.DefaultAttributes(yearA, yearB) {
		p = plot.NewPlot(plot.WithTitle(attr+" and checks per capita"), plot.WithXlabel(attr),
			plot.WithYlabel("checks per capita"), plot.WithLegend(true))
		for _, y := range []int{yearA, yearB} {
			if err := p.Scatter(rt.Column(attr), rt.Column(reconcile.PerCapitaColumn(y)), fmt.Sprint(y), colors[y], true); err != nil {
				return errors.Wrapf(err, "scatter %s", attr)
			}
		}

		if err := save(p, attr); err != nil {
			return err
		}
	}

	return nil
}
