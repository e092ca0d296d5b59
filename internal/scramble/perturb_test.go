package scramble

import (
	"math/rand"
	"testing"

	"github.com/AnyUserName/dctscramble-cli/internal/block"
	"github.com/AnyUserName/dctscramble-cli/internal/mask"
	"github.com/AnyUserName/dctscramble-cli/internal/transform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func randomCoeffs(seed int64) transform.Coeffs {
	rng := rand.New(rand.NewSource(seed))
	var c transform.Coeffs
	for r := range c {
		for col := range c[r] {
			c[r][col] = rng.NormFloat64()
		}
	}
	return c
}

func allNegative() mask.Mask {
	var m mask.Mask
	for r := range m {
		for c := range m[r] {
			m[r][c] = -1
		}
	}
	return m
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("scramble")
	require.NoError(t, err)
	assert.Equal(t, ModeScramble, m)

	m, err = ParseMode(" Descramble ")
	require.NoError(t, err)
	assert.Equal(t, ModeDescramble, m)

	_, err = ParseMode("encrypt")
	assert.ErrorIs(t, err, ErrInvalidMode)
}

func TestPerturb_InvalidMode(t *testing.T) {
	c := randomCoeffs(1)
	m := allNegative()
	before := c

	err := Perturb(&c, &m, 0, Mode(0))
	require.ErrorIs(t, err, ErrInvalidMode)
	assert.Equal(t, before, c, "failed perturbation must not modify coefficients")

	assert.ErrorIs(t, Perturb(&c, &m, 0, Mode(7)), ErrInvalidMode)
}

func TestPerturb_InvalidRegion(t *testing.T) {
	c := randomCoeffs(1)
	m := allNegative()
	assert.ErrorIs(t, Perturb(&c, &m, -1, ModeScramble), ErrInvalidParameter)
	assert.ErrorIs(t, Perturb(&c, &m, 9, ModeScramble), ErrInvalidParameter)
}

func TestPerturb_RegionIsolation(t *testing.T) {
	m := allNegative()
	for n := 0; n <= block.Size; n++ {
		orig := randomCoeffs(int64(n))
		c := orig
		require.NoError(t, Perturb(&c, &m, n, ModeScramble))

		for r := 0; r < block.Size; r++ {
			for col := 0; col < block.Size; col++ {
				if r >= n && col >= n {
					assert.Equal(t, -orig[r][col], c[r][col], "n=%d (%d,%d) flipped", n, r, col)
				} else {
					assert.Equal(t, orig[r][col], c[r][col], "n=%d (%d,%d) untouched", n, r, col)
				}
			}
		}
	}
}

func TestPerturb_ScrambleDescrambleExact(t *testing.T) {
	g := mask.New(11)
	for i := 0; i < 20; i++ {
		m := g.Next(0.5)
		orig := randomCoeffs(int64(i))
		c := orig
		require.NoError(t, Perturb(&c, &m, 1, ModeScramble))
		require.NoError(t, Perturb(&c, &m, 1, ModeDescramble))
		require.Equal(t, orig, c)
	}
}

func TestPerturb_NEightTouchesNothing(t *testing.T) {
	m := allNegative()
	orig := randomCoeffs(5)
	c := orig
	require.NoError(t, Perturb(&c, &m, block.Size, ModeScramble))
	assert.Equal(t, orig, c)
}
