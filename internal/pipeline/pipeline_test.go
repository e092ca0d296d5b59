package pipeline

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/AnyUserName/dctscramble-cli/internal/encoder"
	"github.com/AnyUserName/dctscramble-cli/internal/grid"
	"github.com/AnyUserName/dctscramble-cli/internal/hasher"
	"github.com/AnyUserName/dctscramble-cli/internal/scramble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smoothGrid(t *testing.T, h, w int) *grid.Grid {
	t.Helper()
	g, err := grid.New(h, w, 3, 8)
	require.NoError(t, err)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for ch := 0; ch < 3; ch++ {
				v := 0.5 + 0.12*math.Sin(float64(x+ch)/5)*math.Cos(float64(y)/7)
				g.Set(y, x, ch, uint16(math.Round(v*255)))
			}
		}
	}
	return g
}

func writePNG(t *testing.T, path string, g *grid.Grid) {
	t.Helper()
	data, err := (&encoder.PNGEncoder{}).Encode(g, 0)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func maxAbsDiff(a, b *grid.Grid) int {
	m := 0
	for i := range a.Pix {
		d := int(a.Pix[i]) - int(b.Pix[i])
		if d < 0 {
			d = -d
		}
		m = max(m, d)
	}
	return m
}

func TestScanImages(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.png", "sub/b.JPG", "sub/c.tif", "d.dcsg", "notes.txt", ".hidden/e.png"} {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	sources, err := ScanImages(dir)
	require.NoError(t, err)

	got := map[string]Source{}
	for _, s := range sources {
		got[s.RelPath] = s
	}
	assert.Len(t, got, 4)
	assert.Equal(t, "jpeg", got["sub/b.JPG"].Format)
	assert.Equal(t, "sub/b", got["sub/b.JPG"].Key)
	assert.Equal(t, "tiff", got["sub/c.tif"].Format)
	assert.Equal(t, "dcsg", got["d.dcsg"].Format)
	assert.NotContains(t, got, ".hidden/e.png")
}

func TestScanImages_ExcludesOutputDir(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "a.png"), smoothGrid(t, 8, 8))
	writePNG(t, filepath.Join(dir, "out", "a.png"), smoothGrid(t, 8, 8))

	sources, err := ScanImages(dir, filepath.Join(dir, "out"))
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "a.png", sources[0].RelPath)
}

func TestProcessOne_WritesHashedOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.png")
	out := filepath.Join(dir, "nested", "out.png")
	writePNG(t, in, smoothGrid(t, 16, 24))

	rec, err := ProcessOne(Job{
		InPath:  in,
		OutPath: out,
		Params:  scramble.Params{Seed: 7, P: 0.5, N: 1, Mode: scramble.ModeScramble},
		Encoder: &encoder.PNGEncoder{},
		Metric:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, 16, rec.Source.Height)
	assert.Equal(t, 24, rec.Source.Width)
	assert.Equal(t, 3, rec.Source.Channels)
	assert.Equal(t, 3*2*3, rec.Blocks)
	assert.Equal(t, rec.Blocks, rec.Masks)
	require.NotNil(t, rec.Metric)
	assert.False(t, rec.Metric.Identical)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	h, err := hasher.ContentHashReader(f, 16)
	require.NoError(t, err)
	assert.Equal(t, rec.Output.Hash, h)
}

func TestPipeline_RoundTrip(t *testing.T) {
	root := t.TempDir()
	in := filepath.Join(root, "in")
	scrambled := filepath.Join(root, "scrambled")
	restored := filepath.Join(root, "restored")

	src := map[string]*grid.Grid{
		"a.png":           smoothGrid(t, 48, 64),
		"deep/nest/b.png": smoothGrid(t, 21, 35),
	}
	for name, g := range src {
		writePNG(t, filepath.Join(in, filepath.FromSlash(name)), g)
	}

	params := scramble.Params{Seed: 423333, P: 0.1, N: 1, Mode: scramble.ModeScramble}
	m, err := New(Config{
		InputDir: in, OutputDir: scrambled, Params: params,
		Profile: "light", Format: "png", Workers: 2, Metric: true,
	}).Run()
	require.NoError(t, err)
	assert.Equal(t, "scramble", m.Mode)
	assert.Equal(t, 2, m.Stats.TotalFiles)
	assert.Zero(t, m.Stats.Failed)
	assert.Equal(t, 3*6*8+3*2*4, m.Stats.TotalBlocks)

	params.Mode = scramble.ModeDescramble
	params.Workers = 4
	m2, err := New(Config{
		InputDir: scrambled, OutputDir: restored, Params: params, Format: "png",
	}).Run()
	require.NoError(t, err)
	assert.Equal(t, 4, m2.BuildInfo.BlockWorkers)

	for name, want := range src {
		got, err := encoder.DecodeFile(filepath.Join(restored, filepath.FromSlash(name)))
		require.NoError(t, err, name)
		require.True(t, got.SameShape(want), name)
		assert.LessOrEqual(t, maxAbsDiff(want, got), 2, name)
	}
}

func TestPipeline_LossyScrambleRefused(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), smoothGrid(t, 8, 8))

	_, err := New(Config{
		InputDir: in, OutputDir: t.TempDir(), Format: "jpeg",
		Params: scramble.Params{Seed: 1, P: 0.5, N: 1, Mode: scramble.ModeScramble},
	}).Run()
	assert.ErrorIs(t, err, encoder.ErrLossyOutput)
}

func TestPipeline_PartialFailure(t *testing.T) {
	in := t.TempDir()
	out := t.TempDir()
	writePNG(t, filepath.Join(in, "good.png"), smoothGrid(t, 8, 8))
	require.NoError(t, os.WriteFile(filepath.Join(in, "bad.png"), []byte("not a png"), 0o644))

	cfg := Config{
		InputDir: in, OutputDir: out, Format: "png",
		Params: scramble.Params{Seed: 1, P: 0.5, N: 1, Mode: scramble.ModeScramble},
	}
	m, err := New(cfg).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, m.Stats.TotalFiles)
	assert.Equal(t, 1, m.Stats.Failed)
	assert.Contains(t, m.Files, "good.png")

	require.NoError(t, os.Remove(filepath.Join(in, "good.png")))
	_, err = New(cfg).Run()
	assert.ErrorContains(t, err, "all 1 images failed")
}

func TestPipeline_OutputCollision(t *testing.T) {
	in := t.TempDir()
	writePNG(t, filepath.Join(in, "a.png"), smoothGrid(t, 8, 8))
	data, err := encoder.MarshalGrid(smoothGrid(t, 8, 8))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(in, "a.dcsg"), data, 0o644))

	m, err := New(Config{
		InputDir: in, OutputDir: t.TempDir(), Format: "png",
		Params: scramble.Params{Seed: 1, P: 0.5, N: 1, Mode: scramble.ModeScramble},
	}).Run()
	require.NoError(t, err)
	assert.Equal(t, 1, m.Stats.TotalFiles)
	assert.Equal(t, 1, m.Stats.Failed)
}

func TestPipeline_InvalidParams(t *testing.T) {
	_, err := New(Config{
		InputDir: t.TempDir(), OutputDir: t.TempDir(),
		Params: scramble.Params{Seed: 1, P: 1.5, N: 1, Mode: scramble.ModeScramble},
	}).Run()
	assert.ErrorIs(t, err, scramble.ErrInvalidParameter)
}

func TestProcessOne_RefusesShapeLosingOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "gray.png")
	g, err := grid.New(16, 16, 1, 8)
	require.NoError(t, err)
	for i := range g.Pix {
		g.Pix[i] = uint16(i % 256)
	}
	writePNG(t, in, g)

	out := filepath.Join(dir, "gray.bmp")
	_, err = ProcessOne(Job{
		InPath:  in,
		OutPath: out,
		Params:  scramble.Params{Seed: 1, P: 0.5, N: 1, Mode: scramble.ModeScramble},
		Encoder: &encoder.BMPEncoder{},
	})
	assert.ErrorIs(t, err, encoder.ErrUnsupportedGrid)
	assert.NoFileExists(t, out)
}

func TestProcessOne_VerifiesScrambledOutput(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.dcsg")
	// Alpha that is already fully opaque and stays so under p=0 is written
	// by png as plain RGB.
	g, err := grid.New(16, 16, 4, 8)
	require.NoError(t, err)
	for i := range g.Pix {
		g.Pix[i] = 200
		if i%4 == 3 {
			g.Pix[i] = 255
		}
	}
	data, err := encoder.MarshalGrid(g)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(in, data, 0o644))

	out := filepath.Join(dir, "out.png")
	_, err = ProcessOne(Job{
		InPath:  in,
		OutPath: out,
		Params:  scramble.Params{Seed: 1, P: 0, N: 1, Mode: scramble.ModeScramble},
		Encoder: &encoder.PNGEncoder{},
	})
	assert.ErrorIs(t, err, encoder.ErrRoundTrip)
	assert.NoFileExists(t, out)

	// The container keeps all four channels.
	_, err = ProcessOne(Job{
		InPath:  in,
		OutPath: filepath.Join(dir, "out.dcsg"),
		Params:  scramble.Params{Seed: 1, P: 0, N: 1, Mode: scramble.ModeScramble},
		Encoder: &encoder.GridEncoder{},
	})
	assert.NoError(t, err)
}
