// Package tiles produces and inspects the web-streamable tile artifacts:
// packed vector-tile archives via tippecanoe, and the internal structure of
// produced COGs via gdalinfo.
package tiles

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

const tippecanoeTool = "tippecanoe"

// Packager packs GeoJSON into a single vector-tile archive addressable by
// byte-range reads.
type Packager struct {
	runner toolchain.Runner
	spec   dataset.Vector
	logger *slog.Logger
}

// NewPackager creates a tippecanoe-backed packager.
func NewPackager(runner toolchain.Runner, spec dataset.Vector, logger *slog.Logger) *Packager {
	return &Packager{runner: runner, spec: spec, logger: logger}
}

// Available reports whether the packaging tool is installed. Packaging is
// skipped, not failed, when it is not.
func (p *Packager) Available() bool {
	return p.runner.LookPath(tippecanoeTool)
}

// Package tiles geojsonPath into outPath. Feature density is thinned per
// zoom level, with the zoom range extended automatically when thinning alone
// is not enough.
func (p *Packager) Package(ctx context.Context, geojsonPath, outPath string) error {
	args := []string{
		"-o", outPath,
		"-Z", strconv.Itoa(p.spec.MinZoom),
		"-z", strconv.Itoa(p.spec.MaxZoom),
		"--drop-densest-as-needed",
		"--extend-zooms-if-still-dropping",
		"-l", p.spec.Layer,
		"--attribution", p.spec.Attribution,
		"--force",
		geojsonPath,
	}

	p.logger.Info("packaging vector tiles", "layer", p.spec.Layer, "zooms", fmt.Sprintf("%d-%d", p.spec.MinZoom, p.spec.MaxZoom))
	res, err := p.runner.Run(ctx, tippecanoeTool, args...)
	if err != nil {
		return fmt.Errorf("invoke %s: %w", tippecanoeTool, err)
	}
	if !res.Success() {
		return fmt.Errorf("%s failed (exit %d): %s", tippecanoeTool, res.ExitCode, strings.TrimSpace(res.Stderr))
	}

	info, err := os.Stat(outPath)
	if err != nil {
		return fmt.Errorf("%s reported success but output is missing: %w", tippecanoeTool, err)
	}
	p.logger.Info("packaged vector tiles", "output", outPath, "bytes", info.Size())
	return nil
}
