package encoder

import (
	"fmt"
	"path/filepath"
	"strings"
)

// priority is the order Available reports formats in.
var priority = []string{"png", "tiff", "bmp", "webp", "avif", "dcsg", "jpeg"}

// Registry holds all available encoders keyed by format.
type Registry struct {
	encoders map[string]Encoder
}

// NewRegistry creates a registry, probing all encoders for availability.
func NewRegistry() *Registry {
	r := &Registry{
		encoders: make(map[string]Encoder),
	}

	// Register all encoders. Only available ones will be used.
	all := []Encoder{
		&PNGEncoder{},
		&TIFFEncoder{},
		&BMPEncoder{},
		&WebPEncoder{},
		&AVIFEncoder{},
		&GridEncoder{},
		&JPEGEncoder{},
	}

	for _, enc := range all {
		if enc.Available() {
			r.encoders[enc.Format()] = enc
		}
	}

	return r
}

// NormalizeFormat lowercases a format or extension name and folds aliases
// (jpg → jpeg, tif → tiff).
func NormalizeFormat(format string) string {
	f := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(format)), ".")
	switch f {
	case "jpg":
		return "jpeg"
	case "tif":
		return "tiff"
	}
	return f
}

// FormatFromPath returns the normalized format implied by path's extension.
func FormatFromPath(path string) string {
	return NormalizeFormat(filepath.Ext(path))
}

// Get returns an encoder for the given format, or nil if unavailable.
func (r *Registry) Get(format string) Encoder {
	return r.encoders[NormalizeFormat(format)]
}

// Available returns all available format names.
func (r *Registry) Available() []string {
	var result []string
	// Maintain priority order.
	for _, f := range priority {
		if _, ok := r.encoders[f]; ok {
			result = append(result, f)
		}
	}
	return result
}

// Resolve returns the encoder for format. With requireLossless set, lossy
// encoders are refused: scrambled output must reach descramble bit-exact.
func (r *Registry) Resolve(format string, requireLossless bool) (Encoder, error) {
	f := NormalizeFormat(format)
	enc, ok := r.encoders[f]
	if !ok {
		for _, known := range priority {
			if known == f {
				return nil, fmt.Errorf("%w: %s", ErrUnavailable, f)
			}
		}
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if requireLossless && !enc.Lossless() {
		return nil, fmt.Errorf("%w: %s would corrupt scrambled samples; use one of %s",
			ErrLossyOutput, f, strings.Join(r.LosslessFormats(), ", "))
	}
	return enc, nil
}

// LosslessFormats lists the available lossless formats in priority order.
func (r *Registry) LosslessFormats() []string {
	var out []string
	for _, f := range r.Available() {
		if r.encoders[f].Lossless() {
			out = append(out, f)
		}
	}
	return out
}

// String returns a summary of available encoders.
func (r *Registry) String() string {
	avail := r.Available()
	if len(avail) == 0 {
		return "no encoders available"
	}
	return fmt.Sprintf("encoders: %s", strings.Join(avail, ", "))
}
