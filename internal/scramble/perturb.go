package scramble

import (
	"fmt"

	"github.com/AnyUserName/dctscramble-cli/internal/block"
	"github.com/AnyUserName/dctscramble-cli/internal/mask"
	"github.com/AnyUserName/dctscramble-cli/internal/transform"
)

// Perturb applies m to the scramble region of c: every coefficient with
// row >= n and col >= n is multiplied by the mask entry when scrambling and
// divided by it when descrambling. Everything else is left untouched.
// n = 0 covers the whole block including the DC term; n = 8 covers nothing.
//
// Mask entries are exactly ±1, so the division never sees zero and the two
// modes undo each other without adding rounding error.
func Perturb(c *transform.Coeffs, m *mask.Mask, n int, mode Mode) error {
	if n < 0 || n > block.Size {
		return fmt.Errorf("%w: region bound n=%d outside [0, %d]", ErrInvalidParameter, n, block.Size)
	}
	switch mode {
	case ModeScramble:
		for r := n; r < block.Size; r++ {
			for col := n; col < block.Size; col++ {
				c[r][col] *= m[r][col]
			}
		}
	case ModeDescramble:
		for r := n; r < block.Size; r++ {
			for col := n; col < block.Size; col++ {
				c[r][col] /= m[r][col]
			}
		}
	default:
		return fmt.Errorf("%w: %v", ErrInvalidMode, mode)
	}
	return nil
}
