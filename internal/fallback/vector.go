// Package fallback produces placeholder artifacts so downstream consumers
// always have something structurally valid to load when the real pipeline
// cannot complete. Placeholders are tagged as mock in their metadata.
package fallback

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
	"github.com/neotopiaGbR/neotopia-navigator/internal/domain"
)

// MockEvents returns the fixed set of example rainfall events: synthetic IDs,
// plausible magnitudes, and simple polygons over central Germany.
func MockEvents() []domain.Feature {
	return []domain.Feature{
		{
			Type: "Feature",
			Properties: domain.EventProperties{
				ID:         "MOCK001",
				Datum:      20230715,
				Anfang:     "1400",
				Ende:       "1800",
				DauerH:     4,
				NMax:       85.5,
				NSumme:     120.3,
				Warnstufe:  3,
				FlaecheKM2: 250.5,
			},
			Geometry: polygon("[[[10.0,51.0],[10.5,51.0],[10.5,51.5],[10.0,51.5],[10.0,51.0]]]"),
		},
		{
			Type: "Feature",
			Properties: domain.EventProperties{
				ID:         "MOCK002",
				Datum:      20220621,
				Anfang:     "1600",
				Ende:       "2100",
				DauerH:     5,
				NMax:       92.1,
				NSumme:     145.8,
				Warnstufe:  3,
				FlaecheKM2: 180.2,
			},
			Geometry: polygon("[[[8.5,50.0],[9.0,50.0],[9.0,50.3],[8.5,50.3],[8.5,50.0]]]"),
		},
	}
}

// WriteVector writes the mock feature collection to path. Pure in-memory
// construction plus one local write; it has no failure mode beyond the
// filesystem itself.
func WriteVector(path string, spec dataset.Vector) error {
	features := MockEvents()
	raw := make([]json.RawMessage, len(features))
	for i, f := range features {
		data, err := json.Marshal(f)
		if err != nil {
			return fmt.Errorf("encode mock feature: %w", err)
		}
		raw[i] = data
	}

	fc := domain.FeatureCollection{
		Type: "FeatureCollection",
		Metadata: &domain.Metadata{
			Source:      "Mock data for development",
			Version:     domain.MockVersion,
			Attribution: spec.Attribution + " (Mock)",
			License:     spec.License,
			Processed:   domain.Now().Format(time.RFC3339),
			Note:        "This is placeholder data. Run with --force-download for real data.",
		},
		Features: raw,
	}

	out, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode mock collection: %w", err)
	}
	return os.WriteFile(path, out, 0o644)
}

func polygon(coords string) domain.Geometry {
	return domain.Geometry{Type: "Polygon", Coordinates: json.RawMessage(coords)}
}
