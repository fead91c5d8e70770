// Command prepare-catrare downloads the DWD CatRaRE heavy-rainfall event
// catalogue and prepares it for the map frontend: filtered, reprojected
// GeoJSON plus a packed vector-tile archive. When any stage cannot complete,
// a mock dataset is written instead so the frontend always has data to load.
//
// Usage:
//
//	prepare-catrare [--output-dir DIR] [--years N] [--mock] [--force-download] [--geojson-only]
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
	spec := dataset.Catrare()

	outputDir := flag.String("output-dir", "./data/catrare", "output directory")
	years := flag.Int("years", spec.DefaultYears, "number of recent years to include")
	mock := flag.Bool("mock", false, "create mock data without downloading")
	force := flag.Bool("force-download", false, "regenerate even if output exists")
	geojsonOnly := flag.Bool("geojson-only", false, "skip vector-tile packaging")
	flag.Parse()

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

	stages := pipeline.NewVectorStages(spec, *outputDir, *years, *geojsonOnly, runner, fetcher, logger)
	p := pipeline.New(stages, pipeline.Options{Mock: *mock, ForceRefresh: *force}, logger, metrics)

	banner("CatRaRE Data Preparation")

	ctx := context.Background()
	outcome, err := p.Run(ctx)
	if err != nil {
		if errors.Is(err, toolchain.ErrToolMissing) {
			fmt.Fprintln(os.Stderr, "ERROR: ogr2ogr (GDAL) not found!")
			fmt.Fprintln(os.Stderr, "  Install with: apt install gdal-bin (Linux) or brew install gdal (macOS)")
			fmt.Fprintln(os.Stderr, "  Or use --mock to create mock data for development")
		} else {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		}
		return 1
	}

	printSummary(outcome)
	notify(ctx, settings, spec, outcome, logger)
	return 0
}

func printSummary(outcome pipeline.Outcome) {
	banner("")
	switch {
	case outcome.Skipped:
		fmt.Printf("UP TO DATE: %s\n", outcome.ArtifactPath)
		fmt.Println("  Use --force-download to regenerate")
	case outcome.FellBack && outcome.FailedStage != "":
		fmt.Printf("DEGRADED (%s failed): mock data written to %s\n", outcome.FailedStage, outcome.ArtifactPath)
		fmt.Printf("  Reason: %s\n", outcome.Reason)
	case outcome.FellBack:
		fmt.Printf("MOCK: %s\n", outcome.ArtifactPath)
	default:
		fmt.Printf("COMPLETE: %s\n", outcome.ArtifactPath)
	}
	banner("")
}

func notify(ctx context.Context, settings *config.Settings, spec dataset.Vector, outcome pipeline.Outcome, logger *slog.Logger) {
	if !settings.NotifyEnabled() || outcome.Skipped {
		return
	}
	n := kafkaadapter.NewNotifier(settings.NotifyBrokers, settings.NotifyTopic, logger)
	defer n.Close()

	version := spec.Version
	if outcome.FellBack {
		version = domain.MockVersion
	}
	err := n.Publish(ctx, domain.ArtifactEvent{
		Dataset:    spec.Name,
		Path:       outcome.ArtifactPath,
		Version:    version,
		Mock:       outcome.FellBack,
		ProducedAt: domain.Now(),
	})
	if err != nil {
		logger.Warn("artifact notification failed", "error", err)
	}
}

func banner(title string) {
	fmt.Println(strings.Repeat("=", 60))
	if title != "" {
		fmt.Println(title)
		fmt.Println(strings.Repeat("=", 60))
	}
}
