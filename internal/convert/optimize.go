package convert

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/neotopiaGbR/neotopia-navigator/internal/domain"
)

// Optimize rewrites ogr2ogr's GeoJSON for web delivery: compact encoding and
// a provenance metadata block. Feature geometries pass through untouched.
// Returns the number of features for summary reporting.
func Optimize(inPath, outPath string, meta domain.Metadata, logger *slog.Logger) (int, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", inPath, err)
	}

	var fc domain.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return 0, fmt.Errorf("parse GeoJSON: %w", err)
	}
	fc.Metadata = &meta

	out, err := json.Marshal(fc)
	if err != nil {
		return 0, fmt.Errorf("encode GeoJSON: %w", err)
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return 0, fmt.Errorf("write %s: %w", outPath, err)
	}

	logger.Info("optimized GeoJSON",
		"features", len(fc.Features),
		"bytes_in", len(data),
		"bytes_out", len(out),
	)
	return len(fc.Features), nil
}
