// seed-directory merges raw portal exports into the gallery directory.
//
// Usage:
//
//	seed-directory [-db URL] [-report merges.xlsx] [-dry-run] google.json naver.json ...
//
// Each file is a JSON array of raw records; records without a sourcePortal
// are tagged with the file name. With -dry-run nothing is written to
// Postgres and the merged directory is kept in memory only, which is handy
// together with -report to review merges before seeding.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"artfair/curation-service/internal/db"
	"artfair/curation-service/internal/directory"
	"artfair/curation-service/internal/model"
	"artfair/curation-service/internal/portal"
	"artfair/curation-service/internal/report"
)

type options struct {
	databaseURL string
	reportPath  string
	dryRun      bool
	files       []string
}

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	var opts options
	flag.StringVar(&opts.databaseURL, "db", os.Getenv("DATABASE_URL"), "Postgres URL. Env: DATABASE_URL")
	flag.StringVar(&opts.reportPath, "report", "", "write a merge review workbook (.xlsx) to this path")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "merge in memory without writing to Postgres")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] records.json...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	opts.files = flag.Args()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		slog.Error("seed failed", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	if len(opts.files) == 0 {
		flag.Usage()
		return fmt.Errorf("no input files")
	}
	if !opts.dryRun && opts.databaseURL == "" {
		return fmt.Errorf("-db or DATABASE_URL is required unless -dry-run is set")
	}

	sources := make([]portal.Source, 0, len(opts.files))
	for _, f := range opts.files {
		sources = append(sources, portal.FileSource{Path: f})
	}
	raw, failed := portal.Collect(ctx, sources...)
	if len(failed) == len(sources) {
		return fmt.Errorf("every input file failed to load")
	}

	galleries, traces := directory.CanonicalizeWithTrace(raw)
	slog.Info("canonicalized", "raw", len(raw), "canonical", len(galleries), "failed_sources", len(failed))

	if opts.reportPath != "" {
		if err := writeReport(opts.reportPath, galleries, traces, raw); err != nil {
			return err
		}
		slog.Info("merge report written", "path", opts.reportPath)
	}

	var store directory.Store = directory.NewMemoryStore()
	if !opts.dryRun {
		pool, err := db.NewPostgresPool(ctx, opts.databaseURL, 4)
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pool.Close()
		pg := directory.NewPostgresStore(pool)
		if err := pg.EnsureSchema(ctx); err != nil {
			return err
		}
		store = pg
	}

	n, err := store.Upsert(ctx, galleries)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	slog.Info("directory seeded", "upserted", n, "dry_run", opts.dryRun)
	return nil
}

func writeReport(path string, galleries []model.CanonicalGallery, traces []directory.MergeTrace, raw []model.RawDirectoryRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteMergeReport(f, galleries, traces, raw); err != nil {
		f.Close()
		return fmt.Errorf("write report: %w", err)
	}
	return f.Close()
}
