// Package dataset defines the immutable conversion specs for the datasets
// this project prepares. One spec per dataset, constructed once and passed
// into pipeline components, so tests can substitute reduced variants.
package dataset

// Vector describes the CatRaRE-style shapefile-to-tiles conversion: where the
// archive lives, which attributes survive, and how the output is tiled.
type Vector struct {
	Name    string
	Version string
	BaseURL string

	// URLPatterns are probed in order; the first that answers a HEAD
	// request wins.
	URLPatterns []string

	// PayloadExt selects the payload inside the archive, e.g. ".shp".
	PayloadExt string

	// Columns to keep, in ogr2ogr -select order (geometry is implicit).
	Columns []string

	TargetSRS      string
	CoordPrecision int
	DefaultYears   int

	// Tiling parameters for the packed vector-tile archive.
	Layer   string
	MinZoom int
	MaxZoom int

	OutputName  string
	TilesetName string

	Source      string
	Attribution string
	License     string
}

// Catrare returns the spec for the DWD CatRaRE heavy-rainfall event catalogue.
func Catrare() Vector {
	const (
		baseURL = "https://opendata.dwd.de/climate_environment/CDC/grids_germany/hourly/radolan/CatRaRE/"
		version = "CatRaRE_W3_Eta_v2023.01"
	)
	return Vector{
		Name:    "catrare",
		Version: version,
		BaseURL: baseURL,
		URLPatterns: []string{
			baseURL + version + ".zip",
			baseURL + version + "/" + version + ".zip",
			baseURL + "latest.zip",
		},
		PayloadExt: ".shp",
		Columns: []string{
			"ID", "DATUM", "ANFANG", "ENDE", "DAUER_H",
			"N_MAX", "N_SUMME", "WARNSTUFE", "FLAECHE_KM2",
		},
		TargetSRS:      "EPSG:4326",
		CoordPrecision: 5,
		DefaultYears:   10,
		Layer:          "catrare",
		MinZoom:        4,
		MaxZoom:        12,
		OutputName:     "catrare_recent.json",
		TilesetName:    "catrare_recent.pmtiles",
		Source:         "DWD CatRaRE (Catalogue of Radar-based Heavy Rainfall Events)",
		Attribution:    "Quelle: DWD, CatRaRE v2023.01",
		License:        "CC BY 4.0",
	}
}
