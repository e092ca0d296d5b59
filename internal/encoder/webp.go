package encoder

import (
	"fmt"
	"image/png"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"

	"github.com/AnyUserName/dctscramble-cli/internal/grid"
)

// Atomic counter for unique temp file names across goroutines.
var tempCounter atomic.Int64

// WebPEncoder encodes grids to lossless WebP by shelling out to cwebp.
// This approach avoids CGO; decoding goes through golang.org/x/image/webp.
// Install: brew install webp / apt install webp
type WebPEncoder struct {
	once      sync.Once
	available bool
	cwebpPath string
}

func (e *WebPEncoder) Format() string    { return "webp" }
func (e *WebPEncoder) Extension() string { return "webp" }
func (e *WebPEncoder) Lossless() bool    { return true }

func (e *WebPEncoder) Available() bool {
	e.once.Do(func() {
		path, err := exec.LookPath("cwebp")
		if err == nil {
			e.available = true
			e.cwebpPath = path
		}
	})
	return e.available
}

func (e *WebPEncoder) Encode(g *grid.Grid, _ int) ([]byte, error) {
	if err := checkRGB8("webp", g); err != nil {
		return nil, err
	}
	if !e.Available() {
		return nil, fmt.Errorf("%w: cwebp not found in PATH; install with: brew install webp", ErrUnavailable)
	}

	// -exact keeps RGB under transparent pixels, which the scramble needs.
	return runExternal("webp", "webp", func(src, dst string) *exec.Cmd {
		return exec.Command(e.cwebpPath,
			"-lossless",
			"-exact",
			"-z", "9", // lossless effort (0=fast, 9=best)
			"-mt",
			"-quiet",
			src,
			"-o", dst,
		)
	}, g)
}

// AVIFEncoder encodes grids to lossless AVIF by shelling out to avifenc.
// There is no pure-Go AVIF decoder, so its output is for delivery only and
// cannot be fed back into descramble.
// Install: brew install libavif / apt install libavif-bin
type AVIFEncoder struct {
	once        sync.Once
	available   bool
	avifencPath string
}

func (e *AVIFEncoder) Format() string    { return "avif" }
func (e *AVIFEncoder) Extension() string { return "avif" }
func (e *AVIFEncoder) Lossless() bool    { return true }

func (e *AVIFEncoder) Available() bool {
	e.once.Do(func() {
		path, err := exec.LookPath("avifenc")
		if err == nil {
			e.available = true
			e.avifencPath = path
		}
	})
	return e.available
}

func (e *AVIFEncoder) Encode(g *grid.Grid, _ int) ([]byte, error) {
	if err := checkRGB8("avif", g); err != nil {
		return nil, err
	}
	if !e.Available() {
		return nil, fmt.Errorf("%w: avifenc not found in PATH; install with: brew install libavif", ErrUnavailable)
	}

	speed := 6 // 0=slowest, 10=fastest
	return runExternal("avif", "avif", func(src, dst string) *exec.Cmd {
		return exec.Command(e.avifencPath,
			"--lossless",
			"--speed", fmt.Sprintf("%d", speed),
			"-j", "all",
			src,
			dst,
		)
	}, g)
}

// checkRGB8 accepts the grids the external codecs hand back unchanged: 8-bit
// RGB or RGBA. Gray input would decode as three channels.
func checkRGB8(format string, g *grid.Grid) error {
	if g.Depth != 8 {
		return fmt.Errorf("%w: %s is 8-bit only, grid is %d-bit", ErrUnsupportedGrid, format, g.Depth)
	}
	if g.Channels != 3 && g.Channels != 4 {
		return fmt.Errorf("%w: %s holds 3 or 4 channels, grid has %d", ErrUnsupportedGrid, format, g.Channels)
	}
	return nil
}

// runExternal writes g as a temporary PNG, runs the command built by mk on
// it and returns the bytes the tool wrote.
func runExternal(tag, ext string, mk func(src, dst string) *exec.Cmd, g *grid.Grid) ([]byte, error) {
	img, err := grid.ToImage(g)
	if err != nil {
		return nil, err
	}

	// Use atomic counter to ensure unique filenames across goroutines.
	id := tempCounter.Add(1)
	srcFile, err := os.CreateTemp("", fmt.Sprintf("dctscramble_%s_src_%d_*.png", tag, id))
	if err != nil {
		return nil, fmt.Errorf("create temp: %w", err)
	}
	srcPath := srcFile.Name()
	defer os.Remove(srcPath)

	dstFile, err := os.CreateTemp("", fmt.Sprintf("dctscramble_%s_dst_%d_*.%s", tag, id, ext))
	if err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("create temp: %w", err)
	}
	dstPath := dstFile.Name()
	dstFile.Close()
	defer os.Remove(dstPath)

	if err := png.Encode(srcFile, img); err != nil {
		srcFile.Close()
		return nil, fmt.Errorf("encode temp png: %w", err)
	}
	srcFile.Close()

	cmd := mk(srcPath, dstPath)
	if out, err := cmd.CombinedOutput(); err != nil {
		return nil, fmt.Errorf("%s: %w: %s", cmd.Path, err, string(out))
	}

	return os.ReadFile(dstPath)
}
