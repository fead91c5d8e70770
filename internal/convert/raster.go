package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
	"github.com/neotopiaGbR/neotopia-navigator/internal/toolchain"
)

// Tool names invoked by the raster strategy.
const (
	translateTool = "gdal_translate"
	warpTool      = "gdalwarp"
)

// RasterConverter converts a KOSTRA ASCII grid to a Cloud Optimized GeoTIFF
// in two steps: gdal_translate assigns the source CRS and nodata sentinel
// (the .asc format carries neither), then gdalwarp reprojects to WGS84 while
// emitting the tiled, compressed, overview-pyramided output.
type RasterConverter struct {
	runner toolchain.Runner
	spec   dataset.Raster
	logger *slog.Logger
}

// NewRasterConverter creates the KOSTRA conversion strategy.
func NewRasterConverter(runner toolchain.Runner, spec dataset.Raster, logger *slog.Logger) *RasterConverter {
	return &RasterConverter{runner: runner, spec: spec, logger: logger}
}

// RequiredTools names the tools that must be installed for real runs.
func (c *RasterConverter) RequiredTools() []string {
	return []string{translateTool, warpTool}
}

// Convert reprojects ascPath into a COG at outPath. sourceSRS overrides the
// spec default when non-empty (the --source-srs flag). The intermediate
// GeoTIFF is removed whether or not the warp succeeds.
func (c *RasterConverter) Convert(ctx context.Context, ascPath, outPath, sourceSRS string) error {
	if sourceSRS == "" {
		sourceSRS = c.spec.SourceSRS
	}

	intermediate := ascPath + ".tmp.tif"
	defer os.Remove(intermediate)

	if err := c.translate(ctx, ascPath, intermediate, sourceSRS); err != nil {
		return err
	}
	if err := c.warp(ctx, intermediate, outPath, sourceSRS); err != nil {
		return err
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("%s reported success but output is missing: %w", warpTool, err)
	}
	c.logger.Info("created COG", "output", outPath, "bytes", info.Size())
	return nil
}

func (c *RasterConverter) translate(ctx context.Context, in, out, sourceSRS string) error {
	args := []string{
		"-of", "GTiff",
		"-a_srs", sourceSRS,
		"-a_nodata", c.spec.NoData,
		in,
		out,
	}
	res, err := c.runner.Run(ctx, translateTool, args...)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", translateTool, err)
	}
	if !res.Success() {
		return &ToolError{Tool: translateTool, ExitCode: res.ExitCode, Stderr: strings.TrimSpace(res.Stderr)}
	}
	return nil
}

func (c *RasterConverter) warp(ctx context.Context, in, out, sourceSRS string) error {
	args := []string{
		"-s_srs", sourceSRS,
		"-t_srs", c.spec.TargetSRS,
		"-r", c.spec.Resampling,
		"-of", "COG",
		"-co", "COMPRESS=" + c.spec.Compression,
		"-co", "PREDICTOR=" + strconv.Itoa(c.spec.Predictor),
		"-co", "BLOCKSIZE=" + strconv.Itoa(c.spec.BlockSize),
		"-co", "BIGTIFF=IF_SAFER",
		"-overwrite",
		in,
		out,
	}
	res, err := c.runner.Run(ctx, warpTool, args...)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", warpTool, err)
	}
	if !res.Success() {
		return &ToolError{Tool: warpTool, ExitCode: res.ExitCode, Stderr: strings.TrimSpace(res.Stderr)}
	}
	return nil
}
