package mask

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMT19937_ReferenceOutputs(t *testing.T) {
	// First output of the reference implementation's default seed.
	mt := NewMT19937(5489)
	assert.Equal(t, uint32(3499211612), mt.Uint32())
	assert.Equal(t, uint32(581869302), mt.Uint32())
}

func TestMT19937_ReferenceDoubles(t *testing.T) {
	mt := NewMT19937(0)
	assert.InDelta(t, 0.5488135039273248, mt.Float64(), 1e-16)

	mt.Seed(42)
	assert.InDelta(t, 0.3745401188473625, mt.Float64(), 1e-16)
	assert.InDelta(t, 0.9507143064099162, mt.Float64(), 1e-16)
}

func TestMT19937_FloatRange(t *testing.T) {
	mt := NewMT19937(123)
	for i := 0; i < 10000; i++ {
		v := mt.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}

func TestNext_EntriesAreSigns(t *testing.T) {
	g := New(1)
	for i := 0; i < 50; i++ {
		m := g.Next(0.5)
		for r := range m {
			for c := range m[r] {
				v := m[r][c]
				require.True(t, v == 1 || v == -1, "entry %v", v)
			}
		}
	}
	assert.Equal(t, 50, g.Draws())
}

func TestNext_ProbabilityExtremes(t *testing.T) {
	g := New(9)
	m := g.Next(0)
	assert.Zero(t, m.Negatives(), "p=0 must never flip")

	m = g.Next(1)
	assert.Equal(t, 64, m.Negatives(), "p=1 must always flip")
}

func TestNext_ProbabilityIsNegativeRate(t *testing.T) {
	g := New(2024)
	const masks = 500
	neg := 0
	for i := 0; i < masks; i++ {
		m := g.Next(0.1)
		neg += m.Negatives()
	}
	rate := float64(neg) / (masks * 64)
	assert.InDelta(t, 0.1, rate, 0.01)
}

func TestReproducibility(t *testing.T) {
	a := New(423333)
	b := New(423333)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Next(0.3), b.Next(0.3), "mask %d", i)
	}
}

func TestReseed_RestartsSequence(t *testing.T) {
	g := New(77)
	first := Materialize(g, 5, 0.5)
	assert.Equal(t, 5, g.Draws())

	g.Reseed(77)
	assert.Zero(t, g.Draws())
	assert.Equal(t, first, Materialize(g, 5, 0.5))
}

func TestDifferentKeysDiffer(t *testing.T) {
	a := Materialize(New(1), 4, 0.5)
	b := Materialize(New(2), 4, 0.5)
	assert.NotEqual(t, a, b)
}

// Every mask consumes exactly 128 outputs, whatever p is, so the stream
// position only depends on how many masks were drawn.
func TestNext_ConsumptionIndependentOfP(t *testing.T) {
	a := New(5)
	b := New(5)
	a.Next(0)
	b.Next(0.9)
	assert.Equal(t, a.Next(0.5), b.Next(0.5))
}
