// Command prepare-kostra downloads the KOSTRA-DWD-2020 precipitation grids
// and converts each duration × return-period scenario to a Cloud Optimized
// GeoTIFF for heavy-rain risk visualization. Scenarios are processed one at a
// time; the run exits non-zero when any scenario fails.
//
// Usage:
//
//	prepare-kostra [--output-dir DIR] [--source-srs CODE] [--dry-run] [--mock] [--force-download]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"

	kafkaadapter "github.com/neotopiaGbR/neotopia-navigator/internal/adapter/kafka"
	"github.com/neotopiaGbR/neotopia-navigator/internal/config"
	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
	"github.com/neotopiaGbR/neotopia-navigator/internal/domain"
	"github.com/neotopiaGbR/neotopia-navigator/internal/fetch"
	"github.com/neotopiaGbR/neotopia-navigator/internal/observability"
	"github.com/neotopiaGbR/neotopia-navigator/internal/pipeline"
	"github.com/neotopiaGbR/neotopia-navigator/internal/toolchain"
)

func main() {
	os.Exit(run())
}

func run() int {
	spec := dataset.Kostra()

	outputDir := flag.String("output-dir", "./data/kostra", "output directory for COG files")
	sourceSRS := flag.String("source-srs", spec.SourceSRS, "source CRS for KOSTRA grids")
	dryRun := flag.Bool("dry-run", false, "print planned operations without downloading")
	mock := flag.Bool("mock", false, "write placeholder rasters without downloading")
	force := flag.Bool("force-download", false, "regenerate even if outputs exist")
	flag.Parse()

	banner("KOSTRA-DWD-2020 Data Preparation")

	if *dryRun {
		printPlan(spec)
		return 0
	}

	settings, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		return 1
	}

	logger := observability.NewLogger(settings.LogLevel, settings.LogFormat).
		With("pipeline", spec.Name, "run_id", uuid.NewString())
	metrics := observability.NewMetrics()
	runner := toolchain.NewExecRunner(logger, metrics)
	fetcher := fetch.NewClient(settings.ProbeTimeout, settings.DownloadTimeout, logger, metrics)

	opts := pipeline.Options{Mock: *mock, ForceRefresh: *force}
	batch := pipeline.NewRasterBatch(spec, *outputDir, *sourceSRS, opts, runner, fetcher, logger, metrics)

	ctx := context.Background()
	results, err := batch.Run(ctx)
	if err != nil {
		if errors.Is(err, toolchain.ErrToolMissing) {
			fmt.Fprintln(os.Stderr, "ERROR: GDAL tools not found!")
			fmt.Fprintln(os.Stderr, "  Install with: apt install gdal-bin (Linux) or brew install gdal (macOS)")
			fmt.Fprintln(os.Stderr, "  Or use --mock to create placeholder rasters")
		} else {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		return 1
	}

	failed := printSummary(spec, results, *mock, *outputDir)
	notify(ctx, settings, spec, results, logger)

	if failed > 0 {
		return 1
	}
	return 0
}

func printPlan(spec dataset.Raster) {
	fmt.Println("[DRY RUN] Would process the following scenarios:")
	for _, sc := range spec.Scenarios() {
		fmt.Printf("  %s → %s\n", spec.SourceFile(sc), spec.OutputFile(sc))
	}
}

func printSummary(spec dataset.Raster, results []pipeline.ScenarioResult, mock bool, outputDir string) int {
	var failed int
	for _, r := range results {
		if r.Failed(mock) {
			failed++
		}
	}

	banner("")
	fmt.Printf("COMPLETE: %d/%d scenarios processed\n", len(results)-failed, len(results))
	fmt.Printf("Output: %s\n", outputDir)
	banner("")

	if failed > 0 {
		fmt.Println("WARNING: Some scenarios failed. Check logs above.")
	}
	return failed
}

func notify(ctx context.Context, settings *config.Settings, spec dataset.Raster, results []pipeline.ScenarioResult, logger *slog.Logger) {
	if !settings.NotifyEnabled() {
		return
	}
	n := kafkaadapter.NewNotifier(settings.NotifyBrokers, settings.NotifyTopic, logger)
	defer n.Close()

	for _, r := range results {
		if r.Err != nil || r.Outcome.Skipped {
			continue
		}
		version := spec.Version
		if r.Outcome.FellBack {
			version = domain.MockVersion
		}
		err := n.Publish(ctx, domain.ArtifactEvent{
			Dataset:    spec.Name,
			Path:       r.Outcome.ArtifactPath,
			Version:    version,
			Mock:       r.Outcome.FellBack,
			ProducedAt: domain.Now(),
		})
		if err != nil {
			logger.Warn("artifact notification failed", "error", err)
		}
	}
}

func banner(title string) {
	fmt.Println(strings.Repeat("=", 60))
	if title != "" {
		fmt.Println(title)
		fmt.Println(strings.Repeat("=", 60))
	}
}
