// Package pipeline runs the whole analysis: load and clean both sources, reconcile them, compute
// the statistics and write the outputs.
package pipeline

import (
	"context"
	"log/slog"

	d "github.com/invertedv/nicsdf"
	"github.com/invertedv/nicsdf/census"
	"github.com/invertedv/nicsdf/config"
	"github.com/invertedv/nicsdf/load"
	"github.com/invertedv/nicsdf/nics"
	"github.com/invertedv/nicsdf/reconcile"
	"github.com/invertedv/nicsdf/stats"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// Result holds every table the run produced.
type Result struct {
	Checks       *d.Table
	Demographics *d.Table
	Reconciled   *reconcile.Result
	Correlations *d.Table
	Describe     *d.Table
	Annual       *d.Table
	Monthly      *d.Table
	PartialYears []int
}

// Run executes the pipeline. A load or validation failure stops it before any analysis. Outputs
// are written to cfg.Output.Dir.
func Run(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Result, error) {
	checks, demo, err := Clean(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	res, err := Analyze(checks, demo, cfg.Years.A, cfg.Years.B, logger)
	if err != nil {
		return nil, err
	}

	if err := res.Write(cfg.Output, logger); err != nil {
		return nil, err
	}

	return res, nil
}

// Clean loads and cleans the two sources concurrently.
func Clean(ctx context.Context, cfg *config.Config, logger *slog.Logger) (checks, demo *d.Table, err error) {
	loadOpts := []load.Opt{load.WithSeparator(cfg.Separator())}
	if cfg.Input.Sheet != "" {
		loadOpts = append(loadOpts, load.WithSheet(cfg.Input.Sheet))
	}

	nicsOpts := []nics.Opt{nics.WithLogger(logger.With(slog.String("stage", "nics")))}
	if len(cfg.Nics.Excluded) > 0 {
		nicsOpts = append(nicsOpts, nics.WithExcluded(cfg.Nics.Excluded...))
	}

	censusOpts := []census.Opt{census.WithLogger(logger.With(slog.String("stage", "census"))),
		census.WithMaxMissing(cfg.Census.MaxMissing)}
	if len(cfg.Census.FractionalStates) > 0 {
		censusOpts = append(censusOpts, census.WithFractionalStates(cfg.Census.FractionalStates...))
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		raw, err := load.Load(gctx, cfg.Input.NicsURL, loadOpts...)
		if err != nil {
			return err
		}

		logger.Info("loaded", slog.String("source", cfg.Input.NicsURL), slog.Int("rows", raw.RowCount()))
		checks, err = nics.NewCleaner(nicsOpts...).Clean(raw)

		return err
	})

	g.Go(func() error {
		raw, err := load.Load(gctx, cfg.Input.CensusURL, loadOpts...)
		if err != nil {
			return err
		}

		logger.Info("loaded", slog.String("source", cfg.Input.CensusURL), slog.Int("rows", raw.RowCount()))
		demo, err = census.NewCleaner(censusOpts...).Clean(raw)

		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return checks, demo, nil
}

// Analyze reconciles the cleaned tables and computes the statistics.
func Analyze(checks, demo *d.Table, yearA, yearB int, logger *slog.Logger) (*Result, error) {
	rec, err := reconcile.Reconcile(checks, demo, yearA, yearB)
	if err != nil {
		return nil, err
	}

	for _, dr := range rec.Dropped {
		logger.Warn("state dropped from reconciled table", slog.String("state", dr.State),
			slog.Any("missing_from", dr.MissingFrom))
	}

	logger.Info("reconciled", slog.Int("states", rec.Table.RowCount()), slog.Int("dropped", len(rec.Dropped)))

	res := &Result{Checks: checks, Demographics: demo, Reconciled: rec}

	if res.Correlations, err = stats.Correlations(rec.Table, stats.DefaultAttributes(yearA, yearB), yearA, yearB); err != nil {
		return nil, errors.Wrap(err, "correlations")
	}

	if res.Describe, err = stats.Describe(demo); err != nil {
		return nil, errors.Wrap(err, "describe")
	}

	if res.Monthly, err = stats.MonthlyTotals(checks); err != nil {
		return nil, errors.Wrap(err, "monthly totals")
	}

	if res.PartialYears, err = stats.PartialYears(checks); err != nil {
		return nil, errors.Wrap(err, "coverage")
	}

	if len(res.PartialYears) > 0 {
		logger.Info("years with partial data left out of the annual totals", slog.Any("years", res.PartialYears))
	}

	if res.Annual, err = stats.FullYearTotals(checks); err != nil {
		return nil, errors.Wrap(err, "annual totals")
	}

	return res, nil
}
