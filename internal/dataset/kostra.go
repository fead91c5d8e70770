package dataset

import "fmt"

// Code pairs a human-facing label with the zero-padded code used in DWD
// filenames, e.g. {"60min", "060"} or {"10a", "010"}.
type Code struct {
	Label string
	Code  string
}

// Scenario is one duration × return-period combination, processed end to end
// before the next begins.
type Scenario struct {
	Duration Code
	Period   Code
}

// Raster describes the KOSTRA ASCII-grid-to-COG conversion.
type Raster struct {
	Name    string
	Version string
	BaseURL string

	// FilePattern builds the remote filename from duration and period codes.
	FilePattern string

	Durations     []Code
	ReturnPeriods []Code

	SourceSRS string
	TargetSRS string

	// NoData is the sentinel the grids use for cells without a value.
	NoData string

	Resampling  string
	Compression string
	Predictor   int

	// BlockSize is the internal tile edge length of the produced COG,
	// asserted post-hoc by the structure validation.
	BlockSize int

	OutputPrefix string

	Source      string
	Attribution string
	License     string
}

// Kostra returns the spec for the KOSTRA-DWD-2020 precipitation grids.
func Kostra() Raster {
	return Raster{
		Name:        "kostra",
		Version:     "KOSTRA_DWD_2020_v2021.01",
		BaseURL:     "https://opendata.dwd.de/climate_environment/CDC/grids_germany/return_periods/precipitation/KOSTRA/KOSTRA_DWD_2020_v2021.01/",
		FilePattern: "hN_D%sm_T%sa.asc.gz",
		Durations: []Code{
			{Label: "60min", Code: "060"},
			{Label: "12h", Code: "720"},
			{Label: "24h", Code: "1440"},
		},
		ReturnPeriods: []Code{
			{Label: "10a", Code: "010"},
			{Label: "100a", Code: "100"},
		},
		SourceSRS:    "EPSG:31467",
		TargetSRS:    "EPSG:4326",
		NoData:       "-999",
		Resampling:   "bilinear",
		Compression:  "LZW",
		Predictor:    2,
		BlockSize:    512,
		OutputPrefix: "kostra",
		Source:       "DWD KOSTRA-DWD-2020 (return-period precipitation grids)",
		Attribution:  "Quelle: DWD, KOSTRA-DWD-2020",
		License:      "CC BY 4.0",
	}
}

// Scenarios expands the duration × return-period grid in processing order.
func (r Raster) Scenarios() []Scenario {
	out := make([]Scenario, 0, len(r.Durations)*len(r.ReturnPeriods))
	for _, d := range r.Durations {
		for _, p := range r.ReturnPeriods {
			out = append(out, Scenario{Duration: d, Period: p})
		}
	}
	return out
}

// SourceFile returns the remote filename for a scenario.
func (r Raster) SourceFile(s Scenario) string {
	return fmt.Sprintf(r.FilePattern, s.Duration.Code, s.Period.Code)
}

// SourceURL returns the full download URL for a scenario.
func (r Raster) SourceURL(s Scenario) string {
	return r.BaseURL + r.SourceFile(s)
}

// OutputFile returns the deterministic artifact name for a scenario,
// e.g. kostra_d60min_t10a.tif.
func (r Raster) OutputFile(s Scenario) string {
	return fmt.Sprintf("%s_d%s_t%s.tif", r.OutputPrefix, s.Duration.Label, s.Period.Label)
}
