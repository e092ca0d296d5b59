// Package mask generates the per-block ±1 sign masks that key the scramble.
//
// A Generator is reseeded once per image and then asked for exactly one
// mask per visited block, in block traversal order. Two generators built
// from the same key and asked for the same number of masks produce
// identical sequences; that reproducibility is the whole key mechanism.
package mask

import "github.com/AnyUserName/dctscramble-cli/internal/block"

// Mask is an 8x8 array whose entries are exactly +1 or -1.
type Mask [block.Size][block.Size]float64

// Negatives counts the -1 entries.
func (m *Mask) Negatives() int {
	n := 0
	for r := range m {
		for c := range m[r] {
			if m[r][c] < 0 {
				n++
			}
		}
	}
	return n
}

// Generator draws sign masks from an owned MT19937 stream.
type Generator struct {
	src   *MT19937
	draws int
}

// New returns a generator seeded with key.
func New(key uint32) *Generator {
	return &Generator{src: NewMT19937(key)}
}

// Reseed restarts the stream from key and resets the draw counter.
func (g *Generator) Reseed(key uint32) {
	g.src.Seed(key)
	g.draws = 0
}

// Next draws 64 uniforms in row-major order and maps each to -1 when the
// draw is below p and +1 otherwise, so every entry is -1 with probability p.
func (g *Generator) Next(p float64) Mask {
	var m Mask
	for r := 0; r < block.Size; r++ {
		for c := 0; c < block.Size; c++ {
			if g.src.Float64() < p {
				m[r][c] = -1
			} else {
				m[r][c] = 1
			}
		}
	}
	g.draws++
	return m
}

// Draws is the number of masks produced since the last reseed.
func (g *Generator) Draws() int {
	return g.draws
}

// Materialize draws the next count masks up front so blocks can be
// dispatched in any order while keeping the k-th block paired with the
// k-th mask.
func Materialize(g *Generator, count int, p float64) []Mask {
	masks := make([]Mask, count)
	for i := range masks {
		masks[i] = g.Next(p)
	}
	return masks
}
