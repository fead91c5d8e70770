package dataset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
)

func TestCatrare_ProbeOrder(t *testing.T) {
	spec := dataset.Catrare()

	require.Len(t, spec.URLPatterns, 3)
	assert.Equal(t, spec.BaseURL+spec.Version+".zip", spec.URLPatterns[0])
	assert.Equal(t, spec.BaseURL+spec.Version+"/"+spec.Version+".zip", spec.URLPatterns[1])
	assert.Equal(t, spec.BaseURL+"latest.zip", spec.URLPatterns[2])
}

func TestCatrare_Columns(t *testing.T) {
	spec := dataset.Catrare()

	want := []string{
		"ID", "DATUM", "ANFANG", "ENDE", "DAUER_H",
		"N_MAX", "N_SUMME", "WARNSTUFE", "FLAECHE_KM2",
	}
	assert.Equal(t, want, spec.Columns)
	assert.Equal(t, ".shp", spec.PayloadExt)
	assert.Equal(t, "EPSG:4326", spec.TargetSRS)
}

func TestKostra_Scenarios(t *testing.T) {
	spec := dataset.Kostra()
	scenarios := spec.Scenarios()

	require.Len(t, scenarios, 6)

	// Durations vary in the outer loop, return periods inner, so the
	// processing order is stable across runs.
	wantFiles := []string{
		"hN_D060m_T010a.asc.gz",
		"hN_D060m_T100a.asc.gz",
		"hN_D720m_T010a.asc.gz",
		"hN_D720m_T100a.asc.gz",
		"hN_D1440m_T010a.asc.gz",
		"hN_D1440m_T100a.asc.gz",
	}
	wantOutputs := []string{
		"kostra_d60min_t10a.tif",
		"kostra_d60min_t100a.tif",
		"kostra_d12h_t10a.tif",
		"kostra_d12h_t100a.tif",
		"kostra_d24h_t10a.tif",
		"kostra_d24h_t100a.tif",
	}
	for i, s := range scenarios {
		assert.Equal(t, wantFiles[i], spec.SourceFile(s))
		assert.Equal(t, wantOutputs[i], spec.OutputFile(s))
		assert.Equal(t, spec.BaseURL+wantFiles[i], spec.SourceURL(s))
	}
}

func TestKostra_ConversionParameters(t *testing.T) {
	spec := dataset.Kostra()

	assert.Equal(t, "EPSG:31467", spec.SourceSRS)
	assert.Equal(t, "EPSG:4326", spec.TargetSRS)
	assert.Equal(t, "-999", spec.NoData)
	assert.Equal(t, "bilinear", spec.Resampling)
	assert.Equal(t, 512, spec.BlockSize)
}
