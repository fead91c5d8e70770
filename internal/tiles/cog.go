package tiles

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/neotopiaGbR/neotopia-navigator/internal/toolchain"
)

const infoTool = "gdalinfo"

// COGValidator reads back the tile structure of a produced raster and checks
// it against the configured block size. Findings are warnings, never
// failures: the artifact remains usable even when the layout is off.
type COGValidator struct {
	runner    toolchain.Runner
	blockSize int
	logger    *slog.Logger
}

// NewCOGValidator creates a gdalinfo-backed structure check.
func NewCOGValidator(runner toolchain.Runner, blockSize int, logger *slog.Logger) *COGValidator {
	return &COGValidator{runner: runner, blockSize: blockSize, logger: logger}
}

// Available reports whether the inspection tool is installed. The check is
// optional diagnostics; a missing tool means skip, not failure.
func (v *COGValidator) Available() bool {
	return v.runner.LookPath(infoTool)
}

// Validate inspects the raster and returns human-readable warnings for any
// structural mismatch. An empty slice means the layout checks out.
func (v *COGValidator) Validate(ctx context.Context, path string) []string {
	res, err := v.runner.Run(ctx, infoTool, "-json", path)
	if err != nil {
		return []string{fmt.Sprintf("inspection unavailable: %v", err)}
	}
	if !res.Success() {
		return []string{fmt.Sprintf("%s exited %d: %s", infoTool, res.ExitCode, res.Stderr)}
	}

	var info gdalInfo
	if err := json.Unmarshal([]byte(res.Stdout), &info); err != nil {
		return []string{fmt.Sprintf("unparseable %s output: %v", infoTool, err)}
	}
	if len(info.Bands) == 0 {
		return []string{"raster has no bands"}
	}

	var warnings []string
	for i, band := range info.Bands {
		if len(band.Block) != 2 {
			warnings = append(warnings, fmt.Sprintf("band %d: no block layout reported", i+1))
			continue
		}
		if band.Block[0] != v.blockSize || band.Block[1] != v.blockSize {
			warnings = append(warnings, fmt.Sprintf(
				"band %d: block size %dx%d, expected %dx%d",
				i+1, band.Block[0], band.Block[1], v.blockSize, v.blockSize,
			))
		}
	}
	if len(warnings) == 0 {
		v.logger.Debug("COG structure verified", "path", path, "block_size", v.blockSize)
	}
	return warnings
}

// gdalInfo is the subset of `gdalinfo -json` output the validator reads.
type gdalInfo struct {
	Bands []struct {
		Block []int `json:"block"`
	} `json:"bands"`
}
