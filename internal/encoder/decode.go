package encoder

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/AnyUserName/dctscramble-cli/internal/grid"
	"github.com/disintegration/imaging"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads a grid from r. format "dcsg" selects the grid container;
// anything else is sniffed by the registered image decoders (png, jpeg,
// gif, bmp, tiff, webp). EXIF orientation is deliberately ignored: the
// block grid must line up identically on both passes.
func Decode(r io.Reader, format string) (*grid.Grid, error) {
	if NormalizeFormat(format) == "dcsg" {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, err
		}
		return UnmarshalGrid(data)
	}

	img, err := imaging.Decode(r)
	if err != nil {
		return nil, err
	}
	return grid.FromImage(img)
}

// DecodeBytes is Decode over an in-memory file.
func DecodeBytes(data []byte, format string) (*grid.Grid, error) {
	return Decode(bytes.NewReader(data), format)
}

// DecodeFile opens and decodes path, picking the container by extension.
func DecodeFile(path string) (*grid.Grid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	g, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return g, nil
}
