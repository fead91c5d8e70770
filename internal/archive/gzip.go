package archive

import (
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

// Decompress inflates a gzip file to dest. A partially written file is
// removed on failure.
func Decompress(gzPath, dest string) error {
	in, err := os.Open(gzPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", gzPath, err)
	}
	defer in.Close()

	zr, err := gzip.NewReader(in)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArchive, err)
	}
	defer zr.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	_, err = io.Copy(out, zr)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dest)
		return fmt.Errorf("decompress %s: %w", gzPath, err)
	}
	return nil
}
