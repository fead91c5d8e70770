package fallback_test

import (
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neotopiaGbR/neotopia-navigator/internal/dataset"
	"github.com/neotopiaGbR/neotopia-navigator/internal/domain"
	"github.com/neotopiaGbR/neotopia-navigator/internal/fallback"
)

func TestMockEvents_Schema(t *testing.T) {
	events := fallback.MockEvents()
	require.Len(t, events, 2)

	assert.Equal(t, "MOCK001", events[0].Properties.ID)
	assert.Equal(t, 20230715, events[0].Properties.Datum)
	assert.Equal(t, "MOCK002", events[1].Properties.ID)

	for _, e := range events {
		assert.Equal(t, "Feature", e.Type)
		assert.Equal(t, "Polygon", e.Geometry.Type)
		assert.NotEmpty(t, e.Geometry.Coordinates)
		assert.Equal(t, 3, e.Properties.Warnstufe)
		assert.Positive(t, e.Properties.NMax)
		assert.Positive(t, e.Properties.FlaecheKM2)
	}
}

func TestWriteVector(t *testing.T) {
	frozen := time.Date(2026, time.August, 29, 12, 0, 0, 0, time.UTC)
	domain.SetClock(clockwork.NewFakeClockAt(frozen))
	t.Cleanup(func() { domain.SetClock(nil) })

	path := filepath.Join(t.TempDir(), "catrare_recent.json")
	require.NoError(t, fallback.WriteVector(path, dataset.Catrare()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var fc domain.FeatureCollection
	require.NoError(t, json.Unmarshal(data, &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	require.NotNil(t, fc.Metadata)
	assert.Equal(t, domain.MockVersion, fc.Metadata.Version)
	assert.True(t, fc.Metadata.IsMock())
	assert.Contains(t, fc.Metadata.Attribution, "(Mock)")
	assert.Contains(t, fc.Metadata.Note, "--force-download")
	assert.Equal(t, frozen.Format(time.RFC3339), fc.Metadata.Processed)

	// Every feature must carry the full attribute set real conversions
	// produce, so map styling works unchanged against placeholders.
	require.Len(t, fc.Features, 2)
	for _, raw := range fc.Features {
		var f struct {
			Properties map[string]any `json:"properties"`
			Geometry   map[string]any `json:"geometry"`
		}
		require.NoError(t, json.Unmarshal(raw, &f))
		for _, key := range []string{
			"ID", "DATUM", "ANFANG", "ENDE", "DAUER_H",
			"N_MAX", "N_SUMME", "WARNSTUFE", "FLAECHE_KM2",
		} {
			assert.Contains(t, f.Properties, key)
		}
		assert.NotNil(t, f.Geometry["coordinates"])
	}
}

// tiffEntry is one parsed IFD field.
type tiffEntry struct {
	typ   uint16
	count uint32
	value uint32
}

func parseTIFF(t *testing.T, data []byte) map[uint16]tiffEntry {
	t.Helper()
	le := binary.LittleEndian

	require.GreaterOrEqual(t, len(data), 8)
	require.Equal(t, "II", string(data[:2]), "little-endian byte order mark")
	require.Equal(t, uint16(42), le.Uint16(data[2:4]), "TIFF magic")

	ifdOff := le.Uint32(data[4:8])
	n := int(le.Uint16(data[ifdOff : ifdOff+2]))

	entries := make(map[uint16]tiffEntry, n)
	for i := 0; i < n; i++ {
		off := int(ifdOff) + 2 + i*12
		tag := le.Uint16(data[off : off+2])
		e := tiffEntry{
			typ:   le.Uint16(data[off+2 : off+4]),
			count: le.Uint32(data[off+4 : off+8]),
		}
		if e.typ == 3 && e.count == 1 { // SHORT inline
			e.value = uint32(le.Uint16(data[off+8 : off+10]))
		} else {
			e.value = le.Uint32(data[off+8 : off+12])
		}
		entries[tag] = e
	}
	return entries
}

func TestWriteRasterPlaceholder_Structure(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kostra_d60min_t10a.tif")
	require.NoError(t, fallback.WriteRasterPlaceholder(path, -999))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	entries := parseTIFF(t, data)
	le := binary.LittleEndian

	assert.Equal(t, uint32(64), entries[256].value, "ImageWidth")
	assert.Equal(t, uint32(64), entries[257].value, "ImageLength")
	assert.Equal(t, uint32(32), entries[258].value, "BitsPerSample")
	assert.Equal(t, uint32(64), entries[322].value, "TileWidth")
	assert.Equal(t, uint32(64), entries[323].value, "TileLength")
	assert.Equal(t, uint32(3), entries[339].value, "SampleFormat IEEE float")

	// Tile payload: 64*64 float32 at the recorded offset, inside the file.
	tileOff := entries[324].value
	tileBytes := entries[325].value
	require.Equal(t, uint32(64*64*4), tileBytes)
	require.Equal(t, int(tileOff+tileBytes), len(data), "tile data runs to end of file")

	// Corners carry the nodata sentinel, interior cells do not.
	first := math.Float32frombits(le.Uint32(data[tileOff : tileOff+4]))
	assert.Equal(t, float32(-999), first)
	interior := math.Float32frombits(le.Uint32(data[tileOff+4 : tileOff+8]))
	assert.Greater(t, interior, float32(0))

	// GDAL_NODATA is the NUL-terminated decimal sentinel.
	nd := entries[42113]
	require.NotZero(t, nd.count)
	str := string(data[nd.value : nd.value+nd.count-1])
	assert.Equal(t, "-999", str)
}

func TestWriteRasterPlaceholder_GeoKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "placeholder.tif")
	require.NoError(t, fallback.WriteRasterPlaceholder(path, -999))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	entries := parseTIFF(t, data)
	le := binary.LittleEndian

	geo, ok := entries[34735]
	require.True(t, ok, "GeoKeyDirectory present")

	keys := make([]uint16, geo.count)
	for i := range keys {
		keys[i] = le.Uint16(data[int(geo.value)+i*2:])
	}
	// Header row, then {key, location, count, value} rows.
	require.Equal(t, uint16(3), keys[3], "number of geokeys")

	find := func(key uint16) (uint16, bool) {
		for i := 4; i+3 < len(keys); i += 4 {
			if keys[i] == key {
				return keys[i+3], true
			}
		}
		return 0, false
	}

	model, ok := find(1024)
	require.True(t, ok)
	assert.Equal(t, uint16(2), model, "geographic model")

	epsg, ok := find(2048)
	require.True(t, ok)
	assert.Equal(t, uint16(4326), epsg)
}
