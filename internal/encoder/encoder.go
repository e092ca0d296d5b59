package encoder

import (
	"errors"

	"github.com/AnyUserName/dctscramble-cli/internal/grid"
)

var (
	// ErrUnknownFormat is returned for a format no registered encoder handles.
	ErrUnknownFormat = errors.New("unknown output format")
	// ErrUnavailable is returned when the encoder exists but its external
	// tool is not installed.
	ErrUnavailable = errors.New("encoder unavailable")
	// ErrLossyOutput is returned when a lossy format is requested where the
	// samples must survive exactly (scrambled output).
	ErrLossyOutput = errors.New("lossy output format")
	// ErrUnsupportedGrid is returned when a format cannot represent the
	// grid's channel count or depth.
	ErrUnsupportedGrid = errors.New("grid not representable in format")
)

// Encoder serializes a sample grid to a file format.
type Encoder interface {
	// Format returns the format name (e.g. "png", "tiff", "jpeg", "dcsg").
	Format() string

	// Encode converts the grid to bytes. quality (1-100) only matters for
	// lossy formats.
	Encode(g *grid.Grid, quality int) ([]byte, error)

	// Available returns true if the encoder is ready to use.
	// External encoders (cwebp, avifenc) may not be installed.
	Available() bool

	// Lossless reports whether decoding the output yields the exact samples.
	Lossless() bool

	// Extension returns the file extension without dot.
	Extension() string
}
