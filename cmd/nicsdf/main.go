// Command nicsdf reconciles the NICS background checks with the census state facts and writes the
// analysis tables.
//
//	nicsdf -config nicsdf.yaml -nics data/gun_data.csv -census data/us_census_data.csv -out output
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/invertedv/nicsdf/config"
	"github.com/invertedv/nicsdf/logging"
	"github.com/invertedv/nicsdf/pipeline"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configFile = flag.String("config", "", "YAML config file")
		nicsURL    = flag.String("nics", "", "NICS checks source, overrides the config")
		censusURL  = flag.String("census", "", "census facts source, overrides the config")
		outDir     = flag.String("out", "", "output directory, overrides the config")
		xlsx       = flag.Bool("xlsx", false, "also write an xlsx workbook")
		plots      = flag.Bool("plots", false, "also write HTML plots")
	)
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		return err
	}

	if *nicsURL != "" {
		cfg.Input.NicsURL = *nicsURL
	}

	if *censusURL != "" {
		cfg.Input.CensusURL = *censusURL
	}

	if *outDir != "" {
		cfg.Output.Dir = *outDir
	}

	cfg.Output.XLSX = cfg.Output.XLSX || *xlsx
	cfg.Output.Plots = cfg.Output.Plots || *plots

	logger, runID, closeLog, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = closeLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger.Info("run started", slog.String("nics", cfg.Input.NicsURL), slog.String("census", cfg.Input.CensusURL),
		slog.Int("year_a", cfg.Years.A), slog.Int("year_b", cfg.Years.B))

	res, err := pipeline.Run(ctx, cfg, logger)
	if err != nil {
		logger.Error("run failed", slog.String("error", err.Error()))
		return err
	}

	fmt.Printf("run %s: %d states reconciled, %d dropped\n", runID, res.Reconciled.Table.RowCount(), len(res.Reconciled.Dropped))
	for _, dr := range res.Reconciled.Dropped {
		fmt.Printf("  dropped %s: missing from %v\n", dr.State, dr.MissingFrom)
	}

	fmt.Println(res.Correlations)

	return nil
}
