package pipeline

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/neotopiaGbR/neotopia-navigator/internal/archive"
	"github.com/neotopiaGbR/neotopia-navigator/internal/convert"
	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
	"github.com/neotopiaGbR/neotopia-navigator/internal/fallback"
	"github.com/neotopiaGbR/neotopia-navigator/internal/fetch"
	"github.com/neotopiaGbR/neotopia-navigator/internal/observability"
	"github.com/neotopiaGbR/neotopia-navigator/internal/tiles"
	"github.com/neotopiaGbR/neotopia-navigator/internal/toolchain"
)

// RasterStages implements the KOSTRA preparation for one scenario: gzipped
// ASCII grid in, reprojected COG out.
type RasterStages struct {
	spec      dataset.Raster
	scenario  dataset.Scenario
	outputDir string
	sourceSRS string

	runner    toolchain.Runner
	fetcher   *fetch.Client
	converter *convert.RasterConverter
	validator *tiles.COGValidator
	logger    *slog.Logger
}

// NewRasterStages wires the stage implementations for one scenario.
func NewRasterStages(
	spec dataset.Raster,
	scenario dataset.Scenario,
	outputDir, sourceSRS string,
	runner toolchain.Runner,
	fetcher *fetch.Client,
	logger *slog.Logger,
) *RasterStages {
	logger = logger.With("duration", scenario.Duration.Label, "period", scenario.Period.Label)
	return &RasterStages{
		spec:      spec,
		scenario:  scenario,
		outputDir: outputDir,
		sourceSRS: sourceSRS,
		runner:    runner,
		fetcher:   fetcher,
		converter: convert.NewRasterConverter(runner, spec, logger),
		validator: tiles.NewCOGValidator(runner, spec.BlockSize, logger),
		logger:    logger,
	}
}

func (s *RasterStages) Name() string { return s.spec.Name }

func (s *RasterStages) ArtifactPath() string {
	return filepath.Join(s.outputDir, s.spec.OutputFile(s.scenario))
}

// CheckDependencies requires both GDAL conversion tools. The inspection tool
// is optional diagnostics; its absence only skips validation.
func (s *RasterStages) CheckDependencies(_ context.Context) error {
	for _, tool := range s.converter.RequiredTools() {
		if err := toolchain.Require(s.runner, tool); err != nil {
			return err
		}
	}
	if !s.validator.Available() {
		s.logger.Info("gdalinfo not installed, structure validation will be skipped")
	}
	return nil
}

func (s *RasterStages) Locate(ctx context.Context) (string, error) {
	return s.fetcher.Resolve(ctx, []string{s.spec.SourceURL(s.scenario)})
}

func (s *RasterStages) Fetch(ctx context.Context, url, workDir string) (string, error) {
	dest := filepath.Join(workDir, s.spec.SourceFile(s.scenario))
	if err := s.fetcher.Download(ctx, url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (s *RasterStages) Extract(_ context.Context, archivePath, _ string) (string, error) {
	asc := strings.TrimSuffix(archivePath, ".gz")
	if err := archive.Decompress(archivePath, asc); err != nil {
		return "", err
	}
	return asc, nil
}

func (s *RasterStages) Convert(ctx context.Context, payloadPath, _ string) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", err
	}
	if err := s.converter.Convert(ctx, payloadPath, s.ArtifactPath(), s.sourceSRS); err != nil {
		return "", err
	}
	return s.ArtifactPath(), nil
}

// Package performs the post-hoc structure check. Mismatches are logged as
// warnings; the artifact stays usable either way.
func (s *RasterStages) Package(ctx context.Context, convertedPath string) (string, error) {
	if s.validator.Available() {
		for _, w := range s.validator.Validate(ctx, convertedPath) {
			s.logger.Warn("COG structure mismatch", "warning", w)
		}
	}
	return convertedPath, nil
}

func (s *RasterStages) Fallback(_ context.Context) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", err
	}
	nodata, err := strconv.ParseFloat(s.spec.NoData, 64)
	if err != nil {
		nodata = -999
	}
	if err := fallback.WriteRasterPlaceholder(s.ArtifactPath(), nodata); err != nil {
		return "", err
	}
	return s.ArtifactPath(), nil
}

// ScenarioResult pairs a scenario with its run outcome.
type ScenarioResult struct {
	Scenario dataset.Scenario
	Outcome  Outcome
	Err      error
}

// Failed reports whether the scenario counts against the batch exit code:
// fatal errors always, degraded runs only outside mock mode.
func (r ScenarioResult) Failed(mock bool) bool {
	if r.Err != nil {
		return true
	}
	return r.Outcome.FellBack && !mock
}

// RasterBatch processes every duration × return-period scenario one at a
// time, end to end, before the next begins.
type RasterBatch struct {
	spec      dataset.Raster
	outputDir string
	sourceSRS string
	opts      Options

	runner  toolchain.Runner
	fetcher *fetch.Client
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewRasterBatch creates the sequential scenario driver.
func NewRasterBatch(
	spec dataset.Raster,
	outputDir, sourceSRS string,
	opts Options,
	runner toolchain.Runner,
	fetcher *fetch.Client,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *RasterBatch {
	return &RasterBatch{
		spec:      spec,
		outputDir: outputDir,
		sourceSRS: sourceSRS,
		opts:      opts,
		runner:    runner,
		fetcher:   fetcher,
		logger:    logger,
		metrics:   metrics,
	}
}

// Run executes all scenarios sequentially. A required tool missing in a real
// run aborts the whole batch before any network access; other failures are
// per-scenario.
func (b *RasterBatch) Run(ctx context.Context) ([]ScenarioResult, error) {
	if !b.opts.Mock {
		probe := NewRasterStages(b.spec, dataset.Scenario{}, b.outputDir, b.sourceSRS, b.runner, b.fetcher, b.logger)
		if err := probe.CheckDependencies(ctx); err != nil {
			return nil, err
		}
	}

	scenarios := b.spec.Scenarios()
	results := make([]ScenarioResult, 0, len(scenarios))
	for _, sc := range scenarios {
		stages := NewRasterStages(b.spec, sc, b.outputDir, b.sourceSRS, b.runner, b.fetcher, b.logger)
		outcome, err := New(stages, b.opts, stages.logger, b.metrics).Run(ctx)
		results = append(results, ScenarioResult{Scenario: sc, Outcome: outcome, Err: err})
		if err != nil {
			b.logger.Error("scenario failed", "error", err,
				"duration", sc.Duration.Label, "period", sc.Period.Label)
		}
	}
	return results, nil
}
