package profile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_Default(t *testing.T) {
	p, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, DefaultName, p.Name)
	assert.Equal(t, 0.1, p.P)
	assert.Equal(t, 1, p.N)
}

func TestGet_CaseInsensitive(t *testing.T) {
	p, err := Get("STRONG")
	require.NoError(t, err)
	assert.Equal(t, 0, p.N)
}

func TestGet_Unknown(t *testing.T) {
	_, err := Get("paranoid")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "balanced")
}

func TestProfilesAreValid(t *testing.T) {
	assert.Equal(t, []string{"balanced", "light", "strong"}, Names())
	for _, name := range Names() {
		p, err := Get(name)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, p.P, 0.0, name)
		assert.LessOrEqual(t, p.P, 1.0, name)
		assert.GreaterOrEqual(t, p.N, 0, name)
		assert.Less(t, p.N, 8, name)
		assert.NotEmpty(t, p.Format, name)
	}
}
