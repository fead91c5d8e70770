// Command validate performs post-hoc integrity checks on prepared artifacts:
// the CatRaRE GeoJSON record set (schema, metadata, feature properties) and
// the KOSTRA raster artifact set (completeness, file signatures). It is run
// after the preparation pipelines, typically in CI, to catch artifacts that
// would break the frontend.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -catrare-json data/catrare/catrare_recent.json \
//	  -kostra-dir data/kostra
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
	"github.com/neotopiaGbR/neotopia-navigator/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	catrareJSON := flag.String("catrare-json", "", "path to prepared CatRaRE GeoJSON")
	kostraDir := flag.String("kostra-dir", "", "directory containing prepared KOSTRA rasters")
	flag.Parse()

	if *catrareJSON == "" && *kostraDir == "" {
		flag.Usage()
		os.Exit(1)
	}

	os.Exit(run(*catrareJSON, *kostraDir))
}

func run(catrareJSON, kostraDir string) int {
	fmt.Println("=== Prepared Artifact Validation ===")
	fmt.Println()

	var phases []*phase
	if catrareJSON != "" {
		phases = append(phases, validateCatrare(catrareJSON))
	}
	if kostraDir != "" {
		phases = append(phases, validateKostra(kostraDir))
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = "FAIL"
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func validateCatrare(path string) *phase {
	p := &phase{name: "CatRaRE GeoJSON schema"}

	data, err := os.ReadFile(path)
	if err != nil {
		p.errorf("read artifact: %v", err)
		return p
	}

	var fc domain.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		p.errorf("parse artifact: %v", err)
		return p
	}

	if fc.Type != "FeatureCollection" {
		p.errorf("type is %q, want FeatureCollection", fc.Type)
	}
	if len(fc.Features) == 0 {
		p.errorf("no features")
	}
	checkMetadata(p, fc.Metadata)

	for i, raw := range fc.Features {
		checkFeature(p, i, raw)
	}
	return p
}

func checkMetadata(p *phase, meta *domain.Metadata) {
	if meta == nil {
		p.errorf("metadata object missing")
		return
	}
	if meta.Source == "" {
		p.errorf("metadata.source empty")
	}
	if meta.Version == "" {
		p.errorf("metadata.version empty")
	}
	if meta.Attribution == "" {
		p.errorf("metadata.attribution empty")
	}
	if meta.IsMock() {
		fmt.Println("  Note: artifact is tagged MOCK (placeholder data)")
	}
}

// requiredProperties are the event attributes the frontend styling depends on.
var requiredProperties = []string{
	"ID", "DATUM", "ANFANG", "ENDE", "DAUER_H",
	"N_MAX", "N_SUMME", "WARNSTUFE", "FLAECHE_KM2",
}

func checkFeature(p *phase, i int, raw json.RawMessage) {
	var f struct {
		Type       string                     `json:"type"`
		Properties map[string]json.RawMessage `json:"properties"`
		Geometry   struct {
			Type string `json:"type"`
		} `json:"geometry"`
	}
	if err := json.Unmarshal(raw, &f); err != nil {
		p.errorf("feature %d: unparseable: %v", i, err)
		return
	}
	if f.Type != "Feature" {
		p.errorf("feature %d: type is %q", i, f.Type)
	}
	if f.Geometry.Type == "" {
		p.errorf("feature %d: missing geometry", i)
	}
	for _, prop := range requiredProperties {
		if _, ok := f.Properties[prop]; !ok {
			p.errorf("feature %d: missing property %s", i, prop)
		}
	}
}

func validateKostra(dir string) *phase {
	p := &phase{name: "KOSTRA raster artifact set"}
	spec := dataset.Kostra()

	for _, sc := range spec.Scenarios() {
		path := filepath.Join(dir, spec.OutputFile(sc))
		checkRaster(p, path)
	}
	return p
}

// tiffMagic are the little- and big-endian TIFF signatures.
var tiffMagic = [][]byte{
	{'I', 'I', 42, 0},
	{'M', 'M', 0, 42},
}

func checkRaster(p *phase, path string) {
	f, err := os.Open(path)
	if err != nil {
		p.errorf("%s: %v", filepath.Base(path), err)
		return
	}
	defer f.Close()

	header := make([]byte, 4)
	if _, err := f.Read(header); err != nil {
		p.errorf("%s: read header: %v", filepath.Base(path), err)
		return
	}
	for _, magic := range tiffMagic {
		if bytes.Equal(header, magic) {
			return
		}
	}
	p.errorf("%s: not a TIFF (header % x)", filepath.Base(path), header)
}
