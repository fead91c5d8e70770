package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/neotopiaGbR/neotopia-navigator/internal/archive"
	"github.com/neotopiaGbR/neotopia-navigator/internal/convert"
	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
	"github.com/neotopiaGbR/neotopia-navigator/internal/domain"
	"github.com/neotopiaGbR/neotopia-navigator/internal/fallback"
	"github.com/neotopiaGbR/neotopia-navigator/internal/fetch"
	"github.com/neotopiaGbR/neotopia-navigator/internal/tiles"
	"github.com/neotopiaGbR/neotopia-navigator/internal/toolchain"
)

// VectorStages implements the CatRaRE preparation: zipped shapefile in,
// filtered GeoJSON and a packed vector-tile archive out.
type VectorStages struct {
	spec      dataset.Vector
	outputDir string

	// years of history to keep; the DATUM cutoff is currentYear - years.
	years int

	// geojsonOnly skips the tile-packaging stage.
	geojsonOnly bool

	runner    toolchain.Runner
	fetcher   *fetch.Client
	converter *convert.VectorConverter
	packager  *tiles.Packager
	logger    *slog.Logger
}

// NewVectorStages wires the CatRaRE stage implementations.
func NewVectorStages(
	spec dataset.Vector,
	outputDir string,
	years int,
	geojsonOnly bool,
	runner toolchain.Runner,
	fetcher *fetch.Client,
	logger *slog.Logger,
) *VectorStages {
	return &VectorStages{
		spec:        spec,
		outputDir:   outputDir,
		years:       years,
		geojsonOnly: geojsonOnly,
		runner:      runner,
		fetcher:     fetcher,
		converter:   convert.NewVectorConverter(runner, spec, logger),
		packager:    tiles.NewPackager(runner, spec, logger),
		logger:      logger,
	}
}

func (s *VectorStages) Name() string { return s.spec.Name }

// ArtifactPath is the optimized GeoJSON record set; the tile archive is
// written alongside it.
func (s *VectorStages) ArtifactPath() string {
	return filepath.Join(s.outputDir, s.spec.OutputName)
}

// TilesetPath is the packed vector-tile archive location.
func (s *VectorStages) TilesetPath() string {
	return filepath.Join(s.outputDir, s.spec.TilesetName)
}

// CheckDependencies requires ogr2ogr. A missing tippecanoe only disables
// packaging, it does not block the run.
func (s *VectorStages) CheckDependencies(_ context.Context) error {
	if err := toolchain.Require(s.runner, s.converter.RequiredTool()); err != nil {
		return err
	}
	if !s.geojsonOnly && !s.packager.Available() {
		s.logger.Warn("tippecanoe not installed, tile packaging will be skipped")
	}
	return nil
}

func (s *VectorStages) Locate(ctx context.Context) (string, error) {
	return s.fetcher.Resolve(ctx, s.spec.URLPatterns)
}

func (s *VectorStages) Fetch(ctx context.Context, url, workDir string) (string, error) {
	dest := filepath.Join(workDir, s.spec.Name+".zip")
	if err := s.fetcher.Download(ctx, url, dest); err != nil {
		return "", err
	}
	return dest, nil
}

func (s *VectorStages) Extract(_ context.Context, archivePath, workDir string) (string, error) {
	dir := filepath.Join(workDir, "extracted")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return archive.ExtractPayload(archivePath, dir, s.spec.PayloadExt)
}

// Convert filters and reprojects the shapefile, then optimizes the GeoJSON
// into the output directory. When optimization itself fails the unoptimized
// conversion is copied through so a valid artifact still lands.
func (s *VectorStages) Convert(ctx context.Context, payloadPath, workDir string) (string, error) {
	minYear := domain.Now().Year() - s.years
	s.logger.Info("filtering events", "min_year", minYear, "years", s.years)

	intermediate := filepath.Join(workDir, "intermediate.json")
	if err := s.converter.Convert(ctx, payloadPath, intermediate, minYear); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", err
	}

	meta := domain.NewMetadata(s.spec.Source, s.spec.Version, s.spec.Attribution, s.spec.License, s.spec.BaseURL)
	if _, err := convert.Optimize(intermediate, s.ArtifactPath(), meta, s.logger); err != nil {
		s.logger.Warn("optimization failed, copying unoptimized output", "error", err)
		if err := copyFile(intermediate, s.ArtifactPath()); err != nil {
			return "", err
		}
	}
	return s.ArtifactPath(), nil
}

// Package tiles the GeoJSON into the pmtiles archive. Skipped in
// geojson-only mode or when the tool is absent.
func (s *VectorStages) Package(ctx context.Context, convertedPath string) (string, error) {
	if s.geojsonOnly {
		s.logger.Info("geojson-only mode, skipping tile packaging")
		return convertedPath, nil
	}
	if !s.packager.Available() {
		return convertedPath, nil
	}
	if err := s.packager.Package(ctx, convertedPath, s.TilesetPath()); err != nil {
		return "", err
	}
	return convertedPath, nil
}

// Fallback writes the mock record set and, when the packaging tool happens
// to be installed, also packages it so the frontend's expected file set stays
// complete. The secondary packaging attempt is best-effort.
func (s *VectorStages) Fallback(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.outputDir, 0o755); err != nil {
		return "", err
	}
	if err := fallback.WriteVector(s.ArtifactPath(), s.spec); err != nil {
		return "", err
	}
	if !s.geojsonOnly && s.packager.Available() {
		if err := s.packager.Package(ctx, s.ArtifactPath(), s.TilesetPath()); err != nil {
			s.logger.Warn("packaging mock data failed", "error", err)
		}
	}
	return s.ArtifactPath(), nil
}

func copyFile(src, dest string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("read %s: %w", src, err)
	}
	return os.WriteFile(dest, data, 0o644)
}
