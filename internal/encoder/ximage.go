package encoder

import (
	"bytes"
	"fmt"

	"github.com/AnyUserName/dctscramble-cli/internal/grid"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// TIFFEncoder encodes grids to Deflate-compressed TIFF. Keeps 16-bit depth.
type TIFFEncoder struct{}

func (e *TIFFEncoder) Format() string    { return "tiff" }
func (e *TIFFEncoder) Extension() string { return "tiff" }
func (e *TIFFEncoder) Available() bool   { return true }
func (e *TIFFEncoder) Lossless() bool    { return true }

func (e *TIFFEncoder) Encode(g *grid.Grid, _ int) ([]byte, error) {
	img, err := grid.ToImage(g)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(g.Pix))
	if err := tiff.Encode(&buf, img, &tiff.Options{Compression: tiff.Deflate}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BMPEncoder encodes 8-bit RGB grids to uncompressed BMP. Gray grids come
// back paletted and alpha is not preserved, so only three channels are
// accepted.
type BMPEncoder struct{}

func (e *BMPEncoder) Format() string    { return "bmp" }
func (e *BMPEncoder) Extension() string { return "bmp" }
func (e *BMPEncoder) Available() bool   { return true }
func (e *BMPEncoder) Lossless() bool    { return true }

func (e *BMPEncoder) Encode(g *grid.Grid, _ int) ([]byte, error) {
	if g.Depth != 8 {
		return nil, fmt.Errorf("%w: bmp is 8-bit only, grid is %d-bit", ErrUnsupportedGrid, g.Depth)
	}
	if g.Channels != 3 {
		return nil, fmt.Errorf("%w: bmp holds 3 channels, grid has %d", ErrUnsupportedGrid, g.Channels)
	}
	img, err := grid.ToImage(g)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	buf.Grow(len(g.Pix) + 1024)
	if err := bmp.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
