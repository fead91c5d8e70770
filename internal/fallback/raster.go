package fallback

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// Placeholder raster geometry: one 64x64 float32 tile covering roughly the
// German bounding box in WGS84.
const (
	placeholderSize = 64
	placeholderLonW = 5.5
	placeholderLonE = 15.5
	placeholderLatN = 55.0
	placeholderLatS = 47.0
)

// TIFF field types.
const (
	typeASCII  = 2
	typeShort  = 3
	typeLong   = 4
	typeDouble = 12
)

// WriteRasterPlaceholder writes a minimal, structurally valid tiled GeoTIFF:
// a single float32 tile, EPSG:4326 geokeys, and the given nodata sentinel in
// the GDAL_NODATA tag. It stands in for a real COG when conversion is not
// possible, so map clients still find a loadable raster.
func WriteRasterPlaceholder(path string, nodata float64) error {
	data, err := renderPlaceholderTIFF(float32(nodata))
	if err != nil {
		return fmt.Errorf("render placeholder raster: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

type ifdEntry struct {
	tag   uint16
	typ   uint16
	count uint32
	value uint32
}

func renderPlaceholderTIFF(nodata float32) ([]byte, error) {
	const (
		headerSize = 8
		entrySize  = 12
		numEntries = 15
	)
	tileBytes := placeholderSize * placeholderSize * 4

	// External value area follows the IFD; tile data follows the external
	// values, padded to a 4-byte boundary.
	extStart := uint32(headerSize + 2 + numEntries*entrySize + 4)

	var ext bytes.Buffer
	le := binary.LittleEndian

	// ModelPixelScale: degrees per pixel in x and y.
	scaleOff := extStart + uint32(ext.Len())
	for _, v := range []float64{
		(placeholderLonE - placeholderLonW) / placeholderSize,
		(placeholderLatN - placeholderLatS) / placeholderSize,
		0,
	} {
		binary.Write(&ext, le, v) //nolint:errcheck // bytes.Buffer cannot fail
	}

	// ModelTiepoint: raster origin (0,0) pinned to the north-west corner.
	tiepointOff := extStart + uint32(ext.Len())
	for _, v := range []float64{0, 0, 0, placeholderLonW, placeholderLatN, 0} {
		binary.Write(&ext, le, v) //nolint:errcheck
	}

	// GeoKeyDirectory: geographic model, pixel-is-area, EPSG:4326.
	geoKeyOff := extStart + uint32(ext.Len())
	geoKeys := []uint16{
		1, 1, 0, 3,
		1024, 0, 1, 2,
		1025, 0, 1, 1,
		2048, 0, 1, 4326,
	}
	for _, v := range geoKeys {
		binary.Write(&ext, le, v) //nolint:errcheck
	}

	// GDAL_NODATA is a NUL-terminated decimal string.
	nodataStr := fmt.Sprintf("%g", nodata)
	nodataOff := extStart + uint32(ext.Len())
	ext.WriteString(nodataStr)
	ext.WriteByte(0)

	for ext.Len()%4 != 0 {
		ext.WriteByte(0)
	}
	tileOff := extStart + uint32(ext.Len())

	entries := []ifdEntry{
		{256, typeShort, 1, placeholderSize}, // ImageWidth
		{257, typeShort, 1, placeholderSize}, // ImageLength
		{258, typeShort, 1, 32},              // BitsPerSample
		{259, typeShort, 1, 1},               // Compression: none
		{262, typeShort, 1, 1},               // Photometric: BlackIsZero
		{277, typeShort, 1, 1},               // SamplesPerPixel
		{322, typeShort, 1, placeholderSize}, // TileWidth
		{323, typeShort, 1, placeholderSize}, // TileLength
		{324, typeLong, 1, tileOff},          // TileOffsets
		{325, typeLong, 1, uint32(tileBytes)},
		{339, typeShort, 1, 3}, // SampleFormat: IEEE float
		{33550, typeDouble, 3, scaleOff},
		{33922, typeDouble, 6, tiepointOff},
		{34735, typeShort, uint32(len(geoKeys)), geoKeyOff},
		{42113, typeASCII, uint32(len(nodataStr) + 1), nodataOff},
	}
	if len(entries) != numEntries {
		return nil, fmt.Errorf("entry count drifted: %d", len(entries))
	}

	var out bytes.Buffer
	out.WriteString("II")
	binary.Write(&out, le, uint16(42))         //nolint:errcheck
	binary.Write(&out, le, uint32(headerSize)) //nolint:errcheck

	binary.Write(&out, le, uint16(numEntries)) //nolint:errcheck
	for _, e := range entries {
		binary.Write(&out, le, e.tag)   //nolint:errcheck
		binary.Write(&out, le, e.typ)   //nolint:errcheck
		binary.Write(&out, le, e.count) //nolint:errcheck
		if e.typ == typeShort && e.count == 1 {
			binary.Write(&out, le, uint16(e.value)) //nolint:errcheck
			binary.Write(&out, le, uint16(0))       //nolint:errcheck
			continue
		}
		binary.Write(&out, le, e.value) //nolint:errcheck
	}
	binary.Write(&out, le, uint32(0)) // no next IFD //nolint:errcheck

	out.Write(ext.Bytes())

	if uint32(out.Len()) != tileOff {
		return nil, fmt.Errorf("tile offset drifted: have %d, want %d", out.Len(), tileOff)
	}
	writeTile(&out, nodata)

	return out.Bytes(), nil
}

// writeTile fills the single tile with a gentle precipitation-like gradient;
// the corner cells carry the nodata sentinel so renderers exercise masking.
func writeTile(out *bytes.Buffer, nodata float32) {
	le := binary.LittleEndian
	last := placeholderSize - 1
	for row := 0; row < placeholderSize; row++ {
		for col := 0; col < placeholderSize; col++ {
			v := placeholderValue(row, col)
			if (row == 0 || row == last) && (col == 0 || col == last) {
				v = nodata
			}
			binary.Write(out, le, math.Float32bits(v)) //nolint:errcheck
		}
	}
}

func placeholderValue(row, col int) float32 {
	return 20 + float32(row)/4 + float32(col)/8
}
