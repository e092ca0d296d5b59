package metric

import (
	"math"
	"testing"

	"github.com/AnyUserName/dctscramble-cli/internal/grid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(t *testing.T, h, w, c, depth int, v uint16) *grid.Grid {
	t.Helper()
	g, err := grid.New(h, w, c, depth)
	require.NoError(t, err)
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

func TestCompare_Identical(t *testing.T) {
	g := filled(t, 8, 8, 3, 8, 0)
	for i := range g.Pix {
		g.Pix[i] = uint16(i % 256)
	}
	r, err := Compare(g, g.Clone())
	require.NoError(t, err)
	assert.Zero(t, r.MSE)
	assert.True(t, math.IsInf(r.PSNR, 1))
	assert.True(t, r.Identical())
}

func TestCompare_MaximumDeviation(t *testing.T) {
	white := filled(t, 4, 6, 3, 8, 255)
	black := filled(t, 4, 6, 3, 8, 0)

	r, err := Compare(white, black)
	require.NoError(t, err)
	assert.InDelta(t, 255.0*255.0, r.MSE, 1e-6)
	assert.InDelta(t, 0, r.PSNR, 1e-9)
	assert.False(t, math.IsInf(r.PSNR, 0))
}

func TestCompare_KnownValue(t *testing.T) {
	a := filled(t, 2, 2, 1, 8, 100)
	b := filled(t, 2, 2, 1, 8, 100)
	b.Pix[0] = 110 // one sample off by 10 → MSE = 100/4 = 25

	r, err := Compare(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 25, r.MSE, 1e-12)
	assert.InDelta(t, 20*math.Log10(255.0/5), r.PSNR, 1e-9)
}

func TestCompare_UsesDepthPeak(t *testing.T) {
	a := filled(t, 1, 1, 1, 16, 0)
	b := filled(t, 1, 1, 1, 16, 65535)
	r, err := Compare(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 0, r.PSNR, 1e-9)
}

func TestCompare_ShapeMismatch(t *testing.T) {
	a := filled(t, 8, 8, 3, 8, 0)
	for _, b := range []*grid.Grid{
		filled(t, 8, 9, 3, 8, 0),
		filled(t, 9, 8, 3, 8, 0),
		filled(t, 8, 8, 1, 8, 0),
		filled(t, 8, 8, 3, 16, 0),
	} {
		_, err := Compare(a, b)
		assert.ErrorIs(t, err, ErrShapeMismatch, "vs %s", b)
	}
	_, err := Compare(a, nil)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestResultString(t *testing.T) {
	assert.Contains(t, Result{PSNR: math.Inf(1)}.String(), "identical")
	assert.Equal(t, "MSE 25.0000, PSNR 34.15 dB", Result{MSE: 25, PSNR: 34.1514}.String())
}
