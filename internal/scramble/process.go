// Package scramble runs the keyed block-DCT scramble over a whole sample
// grid and its exact inverse.
//
// Traversal contract: one generator is seeded from Params.Seed per call.
// Channels are visited 0, 1, 2, …; within a channel blocks are visited in
// block.Origins order, and each visited block consumes exactly one mask,
// even when the scramble region is empty. Descrambling with the same
// parameters therefore meets the same masks on the same blocks.
//
// Precondition: the scrambled grid must reach Process unchanged. Lossy
// re-encoding, resizing or any edit between passes is amplified by the
// sign flips and descrambles to noise; no error is reported for it.
package scramble

import (
	"fmt"
	"runtime"
	"slices"

	"github.com/AnyUserName/dctscramble-cli/internal/block"
	"github.com/AnyUserName/dctscramble-cli/internal/grid"
	"github.com/AnyUserName/dctscramble-cli/internal/mask"
	"github.com/AnyUserName/dctscramble-cli/internal/transform"
	"golang.org/x/sync/errgroup"
)

// Params controls one Process call.
type Params struct {
	Seed uint32  // key for the mask stream
	P    float64 // probability that a mask entry is -1, in [0, 1]
	N    int     // scramble region bound, in [0, 8)
	Mode Mode

	// Workers > 1 processes the blocks of a channel concurrently. The
	// output is identical to the sequential one. 0 or 1 means sequential;
	// a negative value means runtime.NumCPU().
	Workers int
}

// Validate checks the parameter ranges.
func (p Params) Validate() error {
	if !p.Mode.Valid() {
		return fmt.Errorf("%w: %v", ErrInvalidMode, p.Mode)
	}
	if !(p.P >= 0 && p.P <= 1) {
		return fmt.Errorf("%w: p=%v outside [0, 1]", ErrInvalidParameter, p.P)
	}
	if p.N < 0 || p.N >= block.Size {
		return fmt.Errorf("%w: n=%d outside [0, %d)", ErrInvalidParameter, p.N, block.Size)
	}
	return nil
}

// Stats reports what a Process call did.
type Stats struct {
	Blocks  int // blocks transformed, over all channels
	Masks   int // masks drawn from the stream
	Clamped int // samples clamped to the valid range on requantization
}

// Process scrambles or descrambles g and returns a new grid of the same
// shape and depth. g is not modified.
func Process(g *grid.Grid, params Params) (*grid.Grid, error) {
	out, _, err := ProcessWithStats(g, params)
	return out, err
}

// ProcessWithStats is Process plus run statistics.
func ProcessWithStats(g *grid.Grid, params Params) (*grid.Grid, Stats, error) {
	if g == nil || len(g.Pix) != g.Height*g.Width*g.Channels {
		return nil, Stats{}, fmt.Errorf("%w: malformed grid", ErrInvalidParameter)
	}
	planes := make([]*grid.Plane, g.Channels)
	for ch := range planes {
		planes[ch] = g.Plane(ch)
	}

	processed, st, err := ProcessPlanes(planes, params)
	if err != nil {
		return nil, st, err
	}

	out := g.Clone()
	for ch, p := range processed {
		st.Clamped += out.SetPlane(ch, p)
	}
	return out, st, nil
}

// ProcessPlanes runs the block pipeline over normalized channel planes,
// visited in slice order, and returns new planes without clamping or
// requantizing. The inputs are not modified.
func ProcessPlanes(planes []*grid.Plane, params Params) ([]*grid.Plane, Stats, error) {
	var st Stats
	if err := params.Validate(); err != nil {
		return nil, st, err
	}

	workers := params.Workers
	if workers < 0 {
		workers = runtime.NumCPU()
	}

	gen := mask.New(params.Seed)
	tr := transform.Acquire()
	defer transform.Release(tr)
	out := make([]*grid.Plane, len(planes))

	for ch, src := range planes {
		// Samples outside full blocks pass through from this copy.
		dst := src.Clone()

		var blocks int
		var err error
		if workers > 1 {
			blocks, err = processPlaneParallel(src, dst, gen, params, workers)
		} else {
			blocks, err = processPlane(tr, src, dst, gen, params)
		}
		if err != nil {
			return nil, st, fmt.Errorf("channel %d: %w", ch, err)
		}
		st.Blocks += blocks
		out[ch] = dst
	}
	st.Masks = gen.Draws()
	return out, st, nil
}

func processPlane(tr *transform.Transformer, src, dst *grid.Plane, gen *mask.Generator, params Params) (int, error) {
	blocks := 0
	for o := range block.Origins(src.Height, src.Width) {
		m := gen.Next(params.P)
		if err := processBlock(tr, src, dst, o, &m, params); err != nil {
			return blocks, err
		}
		blocks++
	}
	return blocks, nil
}

func processPlaneParallel(src, dst *grid.Plane, gen *mask.Generator, params Params, workers int) (int, error) {
	origins := slices.Collect(block.Origins(src.Height, src.Width))
	masks := mask.Materialize(gen, len(origins), params.P)
	if len(origins) == 0 {
		return 0, nil
	}

	chunk := (len(origins) + workers - 1) / workers
	var eg errgroup.Group
	eg.SetLimit(workers)
	for start := 0; start < len(origins); start += chunk {
		end := min(start+chunk, len(origins))
		eg.Go(func() error {
			tr := transform.Acquire()
			defer transform.Release(tr)
			for k := start; k < end; k++ {
				// Blocks own disjoint regions of dst.
				if err := processBlock(tr, src, dst, origins[k], &masks[k], params); err != nil {
					return err
				}
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return 0, err
	}
	return len(origins), nil
}

func processBlock(tr *transform.Transformer, src, dst *grid.Plane, o block.Origin, m *mask.Mask, params Params) error {
	b := block.Extract(src, o)
	c := tr.Forward(&b)
	if err := Perturb(&c, m, params.N, params.Mode); err != nil {
		return err
	}
	r := tr.Inverse(&c)
	block.Store(dst, o, &r)
	return nil
}
