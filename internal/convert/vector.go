package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
	"github.com/neotopiaGbR/neotopia-navigator/internal/domain"
	"github.com/neotopiaGbR/neotopia-navigator/internal/toolchain"
)

// Tool names invoked by the vector strategy.
const ogrTool = "ogr2ogr"

// VectorConverter converts the CatRaRE shapefile to filtered, reprojected
// GeoJSON in a single ogr2ogr invocation: attribute selection, DATUM range
// filter, WGS84 transform, and coordinate precision reduction.
type VectorConverter struct {
	runner toolchain.Runner
	spec   dataset.Vector
	logger *slog.Logger
}

// NewVectorConverter creates the CatRaRE conversion strategy.
func NewVectorConverter(runner toolchain.Runner, spec dataset.Vector, logger *slog.Logger) *VectorConverter {
	return &VectorConverter{runner: runner, spec: spec, logger: logger}
}

// RequiredTool names the tool that must be installed for real runs.
func (c *VectorConverter) RequiredTool() string { return ogrTool }

// Convert writes filtered GeoJSON for events dated minYear-01-01 or later.
func (c *VectorConverter) Convert(ctx context.Context, shpPath, outPath string, minYear int) error {
	minDate := domain.DatumFloor(minYear)

	args := []string{
		"-f", "GeoJSON",
		"-t_srs", c.spec.TargetSRS,
		"-where", fmt.Sprintf("DATUM >= %d", minDate),
		"-select", strings.Join(c.spec.Columns, ","),
		"-lco", fmt.Sprintf("COORDINATE_PRECISION=%d", c.spec.CoordPrecision),
		outPath,
		shpPath,
	}

	c.logger.Info("converting shapefile", "min_date", minDate, "columns", len(c.spec.Columns))
	res, err := c.runner.Run(ctx, ogrTool, args...)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", ogrTool, err)
	}
	if !res.Success() {
		return &ToolError{Tool: ogrTool, ExitCode: res.ExitCode, Stderr: strings.TrimSpace(res.Stderr)}
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("%s reported success but output is missing: %w", ogrTool, err)
	}
	c.logger.Info("conversion complete", "output", outPath, "bytes", info.Size())
	return nil
}
