package encoder

import (
	"bytes"
	"image/png"

	"github.com/AnyUserName/dctscramble-cli/internal/grid"
)

// PNGEncoder encodes grids to PNG using Go's standard library.
// Keeps 16-bit depth and alpha; the default output format.
type PNGEncoder struct{}

func (e *PNGEncoder) Format() string    { return "png" }
func (e *PNGEncoder) Extension() string { return "png" }
func (e *PNGEncoder) Available() bool   { return true }
func (e *PNGEncoder) Lossless() bool    { return true }

func (e *PNGEncoder) Encode(g *grid.Grid, _ int) ([]byte, error) {
	img, err := grid.ToImage(g)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(len(g.Pix)) // scrambled images barely compress

	enc := &png.Encoder{CompressionLevel: png.BestCompression}
	if err := enc.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
