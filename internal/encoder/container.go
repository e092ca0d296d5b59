package encoder

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/AnyUserName/dctscramble-cli/internal/grid"
	"github.com/klauspost/compress/zstd"
)

// Grid container layout (big endian):
//
//	magic "DCSG" | version u8 | height u32 | width u32 | channels u8 | depth u8 | zstd(samples)
//
// Samples are interleaved (row, col, channel), one byte each at depth 8 and
// two bytes each at depth 16.
const (
	containerMagic   = "DCSG"
	containerVersion = 1
	headerSize       = len(containerMagic) + 1 + 4 + 4 + 1 + 1

	maxSamples = 1 << 30
)

var (
	ErrInvalidMagic       = errors.New("container: invalid magic")
	ErrUnsupportedVersion = errors.New("container: unsupported version")
	ErrCorruptContainer   = errors.New("container: corrupt payload")
)

// GridEncoder writes the raw grid container. It preserves every channel
// count and depth exactly, including grids no image format can hold.
type GridEncoder struct{}

func (e *GridEncoder) Format() string    { return "dcsg" }
func (e *GridEncoder) Extension() string { return "dcsg" }
func (e *GridEncoder) Available() bool   { return true }
func (e *GridEncoder) Lossless() bool    { return true }

func (e *GridEncoder) Encode(g *grid.Grid, _ int) ([]byte, error) {
	return MarshalGrid(g)
}

func mustNewZstdEncoder() *zstd.Encoder {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		panic(err)
	}
	return enc
}

func mustNewZstdDecoder() *zstd.Decoder {
	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
	)
	if err != nil {
		panic(err)
	}
	return dec
}

var zstdEncPool = sync.Pool{New: func() any { return mustNewZstdEncoder() }}

var zstdDecPool = sync.Pool{New: func() any { return mustNewZstdDecoder() }}

// MarshalGrid serializes g into the container format.
func MarshalGrid(g *grid.Grid) ([]byte, error) {
	if g.Channels > 255 || (g.Depth != 8 && g.Depth != 16) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGrid, g)
	}
	if len(g.Pix) != g.Height*g.Width*g.Channels {
		return nil, fmt.Errorf("%w: %s has %d samples", ErrUnsupportedGrid, g, len(g.Pix))
	}

	bps := g.Depth / 8
	raw := make([]byte, len(g.Pix)*bps)
	if bps == 1 {
		for i, v := range g.Pix {
			raw[i] = byte(v)
		}
	} else {
		for i, v := range g.Pix {
			binary.BigEndian.PutUint16(raw[2*i:], v)
		}
	}

	out := make([]byte, 0, headerSize+len(raw)/2)
	out = append(out, containerMagic...)
	out = append(out, containerVersion)
	out = binary.BigEndian.AppendUint32(out, uint32(g.Height))
	out = binary.BigEndian.AppendUint32(out, uint32(g.Width))
	out = append(out, byte(g.Channels), byte(g.Depth))

	enc := zstdEncPool.Get().(*zstd.Encoder)
	out = enc.EncodeAll(raw, out)
	zstdEncPool.Put(enc)
	return out, nil
}

// UnmarshalGrid parses a container produced by MarshalGrid.
func UnmarshalGrid(data []byte) (*grid.Grid, error) {
	if len(data) < headerSize || string(data[:len(containerMagic)]) != containerMagic {
		return nil, ErrInvalidMagic
	}
	p := data[len(containerMagic):]
	if p[0] != containerVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, p[0])
	}
	h := int(binary.BigEndian.Uint32(p[1:5]))
	w := int(binary.BigEndian.Uint32(p[5:9]))
	c := int(p[9])
	depth := int(p[10])
	if uint64(h)*uint64(w)*uint64(c) > maxSamples {
		return nil, fmt.Errorf("%w: %dx%dx%d exceeds sample limit", ErrCorruptContainer, w, h, c)
	}

	g, err := grid.New(h, w, c, depth)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptContainer, err)
	}

	dec := zstdDecPool.Get().(*zstd.Decoder)
	raw, err := dec.DecodeAll(data[headerSize:], make([]byte, 0, len(g.Pix)*depth/8))
	zstdDecPool.Put(dec)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptContainer, err)
	}
	if len(raw) != len(g.Pix)*depth/8 {
		return nil, fmt.Errorf("%w: got %d payload bytes, want %d",
			ErrCorruptContainer, len(raw), len(g.Pix)*depth/8)
	}

	if depth == 8 {
		for i := range g.Pix {
			g.Pix[i] = uint16(raw[i])
		}
	} else {
		for i := range g.Pix {
			g.Pix[i] = binary.BigEndian.Uint16(raw[2*i:])
		}
	}
	return g, nil
}
