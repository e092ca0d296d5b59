package grid

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// FromImage converts a decoded image into a grid.
//
// Gray images become one channel, everything else three (RGB) or four
// (RGBA, only when some pixel is not fully opaque). 16-bit sources keep
// their depth; all other sources are read as 8-bit non-premultiplied
// samples.
func FromImage(img image.Image) (*Grid, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image %v", ErrInvalidShape, b)
	}

	switch src := img.(type) {
	case *image.Gray:
		g := mustNew(h, w, 1, 8)
		for y := 0; y < h; y++ {
			off := (b.Min.Y-src.Rect.Min.Y+y)*src.Stride + (b.Min.X - src.Rect.Min.X)
			row := g.Pix[y*w : (y+1)*w]
			for x := range row {
				row[x] = uint16(src.Pix[off+x])
			}
		}
		return g, nil
	case *image.Gray16:
		g := mustNew(h, w, 1, 16)
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				g.Pix[y*w+x] = src.Gray16At(b.Min.X+x, b.Min.Y+y).Y
			}
		}
		return g, nil
	case *image.NRGBA64, *image.RGBA64:
		return fromImage16(img, HasAlpha(img)), nil
	}

	// 8-bit fast path: imaging.Clone always yields a tightly packed NRGBA
	// anchored at (0, 0).
	nrgba := imaging.Clone(img)
	alpha := HasAlpha(nrgba)
	channels := 3
	if alpha {
		channels = 4
	}
	g := mustNew(h, w, channels, 8)
	pix := nrgba.Pix
	di := 0
	for y := 0; y < h; y++ {
		off := y * nrgba.Stride
		for x := 0; x < w; x++ {
			g.Pix[di] = uint16(pix[off])
			g.Pix[di+1] = uint16(pix[off+1])
			g.Pix[di+2] = uint16(pix[off+2])
			if alpha {
				g.Pix[di+3] = uint16(pix[off+3])
			}
			off += 4
			di += channels
		}
	}
	return g, nil
}

func fromImage16(img image.Image, alpha bool) *Grid {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	channels := 3
	if alpha {
		channels = 4
	}
	g := mustNew(h, w, channels, 16)
	di := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
			g.Pix[di] = c.R
			g.Pix[di+1] = c.G
			g.Pix[di+2] = c.B
			if alpha {
				g.Pix[di+3] = c.A
			}
			di += channels
		}
	}
	return g
}

// ToImage converts a grid with 1, 3 or 4 channels back into an image:
// Gray/Gray16 for one channel, NRGBA/NRGBA64 otherwise.
func ToImage(g *Grid) (image.Image, error) {
	rect := image.Rect(0, 0, g.Width, g.Height)
	switch {
	case g.Channels == 1 && g.Depth == 8:
		img := image.NewGray(rect)
		for i, v := range g.Pix {
			img.Pix[i] = uint8(v)
		}
		return img, nil
	case g.Channels == 1 && g.Depth == 16:
		img := image.NewGray16(rect)
		for i, v := range g.Pix {
			img.Pix[2*i] = uint8(v >> 8)
			img.Pix[2*i+1] = uint8(v)
		}
		return img, nil
	case (g.Channels == 3 || g.Channels == 4) && g.Depth == 8:
		img := image.NewNRGBA(rect)
		for i, di := 0, 0; i < len(g.Pix); i += g.Channels {
			img.Pix[di] = uint8(g.Pix[i])
			img.Pix[di+1] = uint8(g.Pix[i+1])
			img.Pix[di+2] = uint8(g.Pix[i+2])
			img.Pix[di+3] = 0xff
			if g.Channels == 4 {
				img.Pix[di+3] = uint8(g.Pix[i+3])
			}
			di += 4
		}
		return img, nil
	case (g.Channels == 3 || g.Channels == 4) && g.Depth == 16:
		img := image.NewNRGBA64(rect)
		for i, di := 0, 0; i < len(g.Pix); i += g.Channels {
			a := uint16(0xffff)
			if g.Channels == 4 {
				a = g.Pix[i+3]
			}
			img.SetNRGBA64(di%g.Width, di/g.Width, color.NRGBA64{
				R: g.Pix[i], G: g.Pix[i+1], B: g.Pix[i+2], A: a,
			})
			di++
		}
		return img, nil
	}
	return nil, fmt.Errorf("%w: %d channels at depth %d has no image representation",
		ErrInvalidShape, g.Channels, g.Depth)
}

// HasAlpha reports whether any pixel of img is not fully opaque.
func HasAlpha(img image.Image) bool {
	switch src := img.(type) {
	case *image.NRGBA:
		for i := 3; i < len(src.Pix); i += 4 {
			if src.Pix[i] < 255 {
				return true
			}
		}
		return false
	case *image.RGBA:
		for i := 3; i < len(src.Pix); i += 4 {
			if src.Pix[i] < 255 {
				return true
			}
		}
		return false
	case *image.YCbCr, *image.Gray, *image.Gray16:
		return false
	default:
		bounds := img.Bounds()
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				_, _, _, a := img.At(x, y).RGBA()
				if a < 65535 {
					return true
				}
			}
		}
		return false
	}
}

func mustNew(h, w, c, depth int) *Grid {
	g, err := New(h, w, c, depth)
	if err != nil {
		panic(err)
	}
	return g
}
