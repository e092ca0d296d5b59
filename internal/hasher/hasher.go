package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// ErrEmptyKey is returned by SeedFromKey for an empty or blank key.
var ErrEmptyKey = errors.New("empty key")

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to the given length. The manifest records 16 hex chars (64
// bits) per output file so validate can detect edits between passes.
func ContentHash(data []byte, hexLen int) string {
	return truncHex(xxhash.Sum64(data), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return truncHex(h.Sum64(), hexLen), nil
}

// SeedFromKey maps a user key to the 32-bit seed of the mask stream.
// A decimal integer in [0, 2^32) is used as is, so numeric seeds behave
// exactly like passing the number directly. Any other string is hashed with
// xxHash64 and folded to 32 bits. There is no stretching: the key is an
// obfuscation handle, not a password.
func SeedFromKey(key string) (uint32, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return 0, ErrEmptyKey
	}
	if v, err := strconv.ParseUint(key, 10, 32); err == nil {
		return uint32(v), nil
	} else if isDecimal(key) {
		return 0, fmt.Errorf("numeric key %s does not fit in 32 bits", key)
	}
	h := xxhash.Sum64String(key)
	return uint32(h) ^ uint32(h>>32), nil
}

func isDecimal(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func truncHex(v uint64, hexLen int) string {
	full := hex.EncodeToString(binary.BigEndian.AppendUint64(nil, v))
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}
