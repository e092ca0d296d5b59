// Package block partitions a channel plane into 8x8 tiles and writes
// processed tiles back.
//
// Traversal order is part of the contract: Origins yields block origins in
// row-major order (block rows, then block columns), and callers pair the
// k-th origin with the k-th sign mask. Tiles that would extend past the
// plane boundary are never yielded, so a trailing partial strip is left
// exactly as it was.
package block

import (
	"iter"

	"github.com/AnyUserName/dctscramble-cli/internal/grid"
)

// Size is the edge length of a block.
const Size = 8

// Block is one 8x8 tile of a normalized plane.
type Block [Size][Size]float64

// Origin is the top-left corner of a block; both fields are multiples of Size.
type Origin struct {
	Row int
	Col int
}

// Origins returns the lazy sequence of full-block origins for an h×w plane.
// The sequence can be ranged over any number of times and always yields the
// same origins in the same order.
func Origins(h, w int) iter.Seq[Origin] {
	return func(yield func(Origin) bool) {
		for i := 0; i+Size <= h; i += Size {
			for j := 0; j+Size <= w; j += Size {
				if !yield(Origin{Row: i, Col: j}) {
					return
				}
			}
		}
	}
}

// Count is the number of origins Origins(h, w) yields.
func Count(h, w int) int {
	if h < Size || w < Size {
		return 0
	}
	return (h / Size) * (w / Size)
}

// Extract copies the block at o out of p.
func Extract(p *grid.Plane, o Origin) Block {
	var b Block
	for r := 0; r < Size; r++ {
		off := (o.Row+r)*p.Width + o.Col
		copy(b[r][:], p.Data[off:off+Size])
	}
	return b
}

// Store writes b into p at o.
func Store(p *grid.Plane, o Origin, b *Block) {
	for r := 0; r < Size; r++ {
		off := (o.Row+r)*p.Width + o.Col
		copy(p.Data[off:off+Size], b[r][:])
	}
}
