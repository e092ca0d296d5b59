package encoder

import (
	"errors"
	"fmt"
	"slices"

	"github.com/AnyUserName/dctscramble-cli/internal/grid"
)

// ErrRoundTrip is returned by Verify when encoded bytes do not decode back
// to the samples they were made from.
var ErrRoundTrip = errors.New("output does not decode to the same grid")

// Verify decodes data as format and checks that it reproduces want sample
// for sample. Formats without a decoder (avif) are not checked.
//
// Encoders already refuse shapes they cannot hold; this catches the rest,
// e.g. a four-channel grid whose alpha came out fully opaque, which png and
// tiff decode as three channels.
func Verify(format string, data []byte, want *grid.Grid) error {
	format = NormalizeFormat(format)
	if format == "avif" {
		return nil
	}
	got, err := DecodeBytes(data, format)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrRoundTrip, err)
	}
	if !got.SameShape(want) {
		return fmt.Errorf("%w: %s wrote %s, reads back %s", ErrRoundTrip, format, want, got)
	}
	if !slices.Equal(got.Pix, want.Pix) {
		return fmt.Errorf("%w: %s changed sample values", ErrRoundTrip, format)
	}
	return nil
}
