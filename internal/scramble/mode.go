package scramble

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidMode is returned for any mode other than scramble or descramble.
	ErrInvalidMode = errors.New("invalid mode")
	// ErrInvalidParameter is returned when p or n is out of range.
	ErrInvalidParameter = errors.New("invalid parameter")
)

// Mode selects the direction of the coefficient perturbation.
type Mode int

const (
	ModeScramble Mode = iota + 1
	ModeDescramble
)

// ParseMode accepts "scramble" and "descramble" (case-insensitive).
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "scramble":
		return ModeScramble, nil
	case "descramble":
		return ModeDescramble, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

func (m Mode) String() string {
	switch m {
	case ModeScramble:
		return "scramble"
	case ModeDescramble:
		return "descramble"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Valid reports whether m is one of the two defined modes.
func (m Mode) Valid() bool {
	return m == ModeScramble || m == ModeDescramble
}
