// Package archive unpacks the compressed containers the DWD publishes:
// zipped shapefile sets for CatRaRE and gzipped ASCII grids for KOSTRA.
package archive

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidArchive indicates the container could not be opened at all.
var ErrInvalidArchive = errors.New("invalid archive")

// ErrPayloadNotFound indicates no entry matched the target extension.
var ErrPayloadNotFound = errors.New("payload not found")

// ExtractPayload extracts the whole ZIP into destDir and returns the path of
// the first entry matching ext. Everything is extracted, not just the match,
// because shapefile sidecars (.dbf, .shx, .prj) share the payload's base name
// and are required by the format. Multiple matches are not disambiguated;
// the first wins.
func ExtractPayload(archivePath, destDir, ext string) (string, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer r.Close()

	var payload string
	for _, f := range r.File {
		if payload == "" && strings.EqualFold(filepath.Ext(f.Name), ext) {
			payload = f.Name
		}
	}
	if payload == "" {
		return "", fmt.Errorf("%w: no %s entry among %d files", ErrPayloadNotFound, ext, len(r.File))
	}

	for _, f := range r.File {
		if err := extractEntry(f, destDir); err != nil {
			return "", fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}

	return filepath.Join(destDir, filepath.FromSlash(payload)), nil
}

func extractEntry(f *zip.File, destDir string) error {
	name := filepath.FromSlash(f.Name)
	if !filepath.IsLocal(name) {
		return fmt.Errorf("unsafe entry path %q", f.Name)
	}
	target := filepath.Join(destDir, name)

	if f.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}

	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
