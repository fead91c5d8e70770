package domain

import "encoding/json"

// EventProperties are the CatRaRE attributes retained for the frontend. Field
// names match the DWD column names verbatim because the map layer styling
// keys off them.
type EventProperties struct {
	ID         string  `json:"ID"`
	Datum      int     `json:"DATUM"`
	Anfang     string  `json:"ANFANG"`
	Ende       string  `json:"ENDE"`
	DauerH     float64 `json:"DAUER_H"`
	NMax       float64 `json:"N_MAX"`
	NSumme     float64 `json:"N_SUMME"`
	Warnstufe  int     `json:"WARNSTUFE"`
	FlaecheKM2 float64 `json:"FLAECHE_KM2"`
}

// Geometry is a GeoJSON geometry. Coordinates stay raw so pass-through never
// re-rounds what ogr2ogr already rounded.
type Geometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// Feature is a single CatRaRE event as a GeoJSON feature.
type Feature struct {
	Type       string          `json:"type"`
	Properties EventProperties `json:"properties"`
	Geometry   Geometry        `json:"geometry"`
}

// FeatureCollection is the GeoJSON document written by both the converter
// (via optimization) and the fallback generator. Features stay raw during
// optimization; typed features from the fallback generator are marshaled in.
type FeatureCollection struct {
	Type     string            `json:"type"`
	Name     string            `json:"name,omitempty"`
	CRS      json.RawMessage   `json:"crs,omitempty"`
	Metadata *Metadata         `json:"metadata,omitempty"`
	Features []json.RawMessage `json:"features"`
}

// DatumFloor returns the YYYYMMDD integer for January 1st of the given year,
// the cutoff used by the DATUM range filter.
func DatumFloor(year int) int {
	return year*10000 + 101
}
