package encoder

import (
	"bytes"
	"fmt"
	"image/jpeg"

	"github.com/AnyUserName/dctscramble-cli/internal/grid"
)

// JPEGEncoder encodes grids to JPEG using Go's standard library.
// Lossy: only valid for descrambled output, never for scrambled images.
type JPEGEncoder struct{}

func (e *JPEGEncoder) Format() string    { return "jpeg" }
func (e *JPEGEncoder) Extension() string { return "jpeg" }
func (e *JPEGEncoder) Available() bool   { return true }
func (e *JPEGEncoder) Lossless() bool    { return false }

func (e *JPEGEncoder) Encode(g *grid.Grid, quality int) ([]byte, error) {
	if g.Channels == 4 {
		return nil, fmt.Errorf("%w: jpeg has no alpha channel", ErrUnsupportedGrid)
	}
	if quality <= 0 || quality > 100 {
		quality = 92
	}
	img, err := grid.ToImage(g)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(256 * 1024)

	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
