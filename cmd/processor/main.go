// Command processor ingests transaction files from the local filesystem
// without running the HTTP server. It shares the service pipeline with
// the web binary, so deduplication, validation, and log accounting
// behave identically.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shoppulse/internal/app"
	"shoppulse/internal/config"
	"shoppulse/internal/dataprocessing"
	"shoppulse/internal/exporter"
	"shoppulse/internal/validation"
	"shoppulse/pkg/contracts/domain"
)

func main() {
	configFile := flag.String("config", "", "config file path (defaults to SHOPPULSE_CONFIG_FILE or config.yaml)")
	showOverview := flag.Bool("overview", false, "print the analytics overview after ingestion")
	exportDir := flag.String("export", "", "write per-day CSV exports of stored records to this directory")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: processor [flags] file.csv [file.xlsx ...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	var (
		cfg *config.Config
		err error
	)
	if *configFile != "" {
		cfg, err = config.LoadFromFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		slog.Error("Failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	application, err := app.NewApplicationWithConfig(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", slog.String("error", err.Error()))
		os.Exit(1)
	}

	validator := validation.NewFileValidator(application.Logger)

	ctx := context.Background()
	failed := false
	for _, path := range flag.Args() {
		outcome, err := ingestFile(ctx, application, validator, path)
		if err != nil {
			failed = true
		}
		printOutcome(path, outcome)
	}

	if *exportDir != "" {
		if err := exportRecords(ctx, application, validator, *exportDir); err != nil {
			slog.Error("Export failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	if *showOverview {
		snapshot, err := application.DataService.AnalyticsOverview(ctx)
		if err != nil {
			slog.Error("Failed to compute analytics overview", slog.String("error", err.Error()))
			os.Exit(1)
		}
		printOverview(snapshot)
	}

	if failed {
		os.Exit(1)
	}
}

func ingestFile(ctx context.Context, application *app.Application, validator *validation.FileValidator, path string) (domain.ProcessingLog, error) {
	name := filepath.Base(path)

	if err := validator.ValidateFile(path); err != nil {
		return application.DataService.FailBatch(ctx, name, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return application.DataService.FailBatch(ctx, name, err)
	}
	defer f.Close()

	rows, err := dataprocessing.ReadRows(name, f)
	if err != nil {
		return application.DataService.FailBatch(ctx, name, err)
	}

	return application.DataService.SubmitBatch(ctx, name, rows)
}

func exportRecords(ctx context.Context, application *app.Application, validator *validation.FileValidator, dir string) error {
	if err := validator.ValidateOutputDirectory(dir); err != nil {
		return err
	}
	records, err := application.DataService.ExportRecords(ctx)
	if err != nil {
		return err
	}
	paths, err := exporter.NewDailyExporter(exporter.WriteOptions{BOMPrefix: true}).Export(records, dir)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Printf("wrote %s\n", p)
	}
	return nil
}

func printOutcome(path string, outcome domain.ProcessingLog) {
	fmt.Printf("%s: %s (processed=%d failed=%d in %.3fs)\n",
		path, outcome.Status, outcome.RecordsProcessed, outcome.RecordsFailed, outcome.ProcessingTime)
	for _, msg := range outcome.Errors {
		fmt.Printf("  %s\n", msg)
	}
}

func printOverview(s domain.AnalyticsSnapshot) {
	fmt.Printf("\nOverview: %d records, revenue %s, %d customers, %d products\n",
		s.TotalRecords, s.TotalRevenue.StringFixed(2), s.UniqueCustomers, s.UniqueProducts)
	if s.DateRange != nil {
		fmt.Printf("Date range: %s .. %s\n",
			s.DateRange.Start.Format("2006-01-02"), s.DateRange.End.Format("2006-01-02"))
	}
	for _, p := range s.TopProducts {
		fmt.Printf("  product %-12s revenue=%s qty=%d orders=%d\n",
			p.ProductID, p.TotalRevenue.StringFixed(2), p.TotalQuantity, p.OrderCount)
	}
	for _, c := range s.TopCustomers {
		fmt.Printf("  customer %-12s spent=%s orders=%d\n",
			c.CustomerID, c.TotalSpent.StringFixed(2), c.OrderCount)
	}
}
