// Package transform implements the orthonormal 8x8 DCT-II and its inverse.
//
// The 1-D basis is
//
//	C[k][i] = s(k) · cos(π·k·(2i+1) / 16),  s(0) = √(1/8),  s(k>0) = √(2/8)
//
// which is orthogonal (C·Cᵀ = I). The 2-D transform is separable, so the
// forward transform of a block X is C·X·Cᵀ and the inverse is Cᵀ·Y·C.
// Forward and Inverse are exact adjoints: any change made to a coefficient
// is undone exactly by making the inverse change before inverting.
package transform

import (
	"math"
	"sync"

	"github.com/AnyUserName/dctscramble-cli/internal/block"
	"gonum.org/v1/gonum/mat"
)

// Coeffs is an 8x8 coefficient array, frequency increasing along each axis.
type Coeffs [block.Size][block.Size]float64

var basis = newBasis(block.Size)

func newBasis(n int) *mat.Dense {
	c := mat.NewDense(n, n, nil)
	s0 := math.Sqrt(1 / float64(n))
	sk := math.Sqrt(2 / float64(n))
	for k := 0; k < n; k++ {
		s := sk
		if k == 0 {
			s = s0
		}
		for i := 0; i < n; i++ {
			c.Set(k, i, s*math.Cos(math.Pi*float64(k)*float64(2*i+1)/float64(2*n)))
		}
	}
	return c
}

// Transformer owns scratch matrices for repeated transforms. It is not safe
// for concurrent use; give each goroutine its own.
type Transformer struct {
	in, tmp, out *mat.Dense
}

// NewTransformer allocates a Transformer.
func NewTransformer() *Transformer {
	return &Transformer{
		in:  mat.NewDense(block.Size, block.Size, nil),
		tmp: mat.NewDense(block.Size, block.Size, nil),
		out: mat.NewDense(block.Size, block.Size, nil),
	}
}

// Forward returns the DCT-II coefficients of b.
func (t *Transformer) Forward(b *block.Block) Coeffs {
	load(t.in, (*[block.Size][block.Size]float64)(b))
	t.tmp.Mul(basis, t.in)
	t.out.Mul(t.tmp, basis.T())
	var c Coeffs
	unload((*[block.Size][block.Size]float64)(&c), t.out)
	return c
}

// Inverse returns the block whose coefficients are c.
func (t *Transformer) Inverse(c *Coeffs) block.Block {
	load(t.in, (*[block.Size][block.Size]float64)(c))
	t.tmp.Mul(basis.T(), t.in)
	t.out.Mul(t.tmp, basis)
	var b block.Block
	unload((*[block.Size][block.Size]float64)(&b), t.out)
	return b
}

func load(dst *mat.Dense, src *[block.Size][block.Size]float64) {
	raw := dst.RawMatrix()
	for r := 0; r < block.Size; r++ {
		copy(raw.Data[r*raw.Stride:r*raw.Stride+block.Size], src[r][:])
	}
}

func unload(dst *[block.Size][block.Size]float64, src *mat.Dense) {
	raw := src.RawMatrix()
	for r := 0; r < block.Size; r++ {
		copy(dst[r][:], raw.Data[r*raw.Stride:r*raw.Stride+block.Size])
	}
}

var pool = sync.Pool{New: func() any { return NewTransformer() }}

// Acquire returns a Transformer from a shared pool. Hand it back with
// Release once the goroutine is done with it.
func Acquire() *Transformer {
	return pool.Get().(*Transformer)
}

// Release returns t to the pool.
func Release(t *Transformer) {
	pool.Put(t)
}

// Forward transforms b using a pooled Transformer.
func Forward(b *block.Block) Coeffs {
	t := Acquire()
	defer Release(t)
	return t.Forward(b)
}

// Inverse inverts c using a pooled Transformer.
func Inverse(c *Coeffs) block.Block {
	t := Acquire()
	defer Release(t)
	return t.Inverse(c)
}
