// Package grid holds the sample grid shared by every stage of the scrambler:
// a (row, column, channel) array of integer samples at a fixed bit depth,
// plus the normalized float planes the block pipeline works on.
package grid

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidShape is returned when a grid would have a non-positive
// dimension or an unsupported sample depth.
var ErrInvalidShape = errors.New("grid: invalid shape")

// Grid is a sample grid. Pix is interleaved: the sample at (row, col, ch)
// lives at Pix[(row*Width+col)*Channels+ch].
type Grid struct {
	Height   int
	Width    int
	Channels int
	Depth    int // bits per sample, 8 or 16
	Pix      []uint16
}

// New allocates a zeroed grid.
func New(height, width, channels, depth int) (*Grid, error) {
	if height <= 0 || width <= 0 || channels <= 0 {
		return nil, fmt.Errorf("%w: %dx%dx%d", ErrInvalidShape, height, width, channels)
	}
	if depth != 8 && depth != 16 {
		return nil, fmt.Errorf("%w: depth %d", ErrInvalidShape, depth)
	}
	return &Grid{
		Height:   height,
		Width:    width,
		Channels: channels,
		Depth:    depth,
		Pix:      make([]uint16, height*width*channels),
	}, nil
}

// Max is the largest sample value representable at the grid's depth.
func (g *Grid) Max() uint16 {
	return uint16(1<<g.Depth - 1)
}

func (g *Grid) offset(row, col, ch int) int {
	return (row*g.Width+col)*g.Channels + ch
}

// At returns the sample at (row, col, ch).
func (g *Grid) At(row, col, ch int) uint16 {
	return g.Pix[g.offset(row, col, ch)]
}

// Set stores v at (row, col, ch). Values above Max are clamped.
func (g *Grid) Set(row, col, ch int, v uint16) {
	if m := g.Max(); v > m {
		v = m
	}
	g.Pix[g.offset(row, col, ch)] = v
}

// SameShape reports whether o has identical height, width, channel count
// and depth.
func (g *Grid) SameShape(o *Grid) bool {
	return g.Height == o.Height && g.Width == o.Width &&
		g.Channels == o.Channels && g.Depth == o.Depth
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	c := *g
	c.Pix = make([]uint16, len(g.Pix))
	copy(c.Pix, g.Pix)
	return &c
}

// String describes the grid shape, e.g. "640x480x3@8".
func (g *Grid) String() string {
	return fmt.Sprintf("%dx%dx%d@%d", g.Width, g.Height, g.Channels, g.Depth)
}

// Plane is one channel of a grid normalized to the unit range.
type Plane struct {
	Height int
	Width  int
	Data   []float64 // row-major, len Height*Width
}

// NewPlane allocates a zeroed plane.
func NewPlane(height, width int) *Plane {
	return &Plane{Height: height, Width: width, Data: make([]float64, height*width)}
}

// Clone returns a deep copy.
func (p *Plane) Clone() *Plane {
	c := &Plane{Height: p.Height, Width: p.Width, Data: make([]float64, len(p.Data))}
	copy(c.Data, p.Data)
	return c
}

// Plane extracts channel ch divided by Max, so every value is in [0, 1].
func (g *Grid) Plane(ch int) *Plane {
	p := NewPlane(g.Height, g.Width)
	inv := 1 / float64(g.Max())
	for i := range p.Data {
		p.Data[i] = float64(g.Pix[i*g.Channels+ch]) * inv
	}
	return p
}

// SetPlane writes p back into channel ch: each value is scaled by Max,
// clamped to [0, Max] and rounded to the nearest integer. It returns the
// number of samples that had to be clamped.
func (g *Grid) SetPlane(ch int, p *Plane) int {
	peak := float64(g.Max())
	clamped := 0
	for i, v := range p.Data {
		s := v * peak
		switch {
		case s < 0 || math.IsNaN(s):
			s = 0
			clamped++
		case s > peak:
			s = peak
			clamped++
		}
		g.Pix[i*g.Channels+ch] = uint16(math.Round(s))
	}
	return clamped
}
