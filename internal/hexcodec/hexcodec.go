// internal/hexcodec/hexcodec.go

// Package hexcodec converts between raw bytes and the textual form used
// on the control surface: two-character hex tokens separated by
// whitespace ("01 02 ff").
package hexcodec

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// ErrFormat is returned for any malformed token.
var ErrFormat = errors.New("hexcodec: invalid format")

// Decode parses whitespace-separated two-character hex tokens.
// Upper and lower case digits are accepted. An empty or blank input
// decodes to an empty slice.
func Decode(s string) ([]byte, error) {
	tokens := strings.Fields(s)
	out := make([]byte, 0, len(tokens))

	for i, tok := range tokens {
		if len(tok) != 2 {
			return nil, fmt.Errorf("%w: token %d %q is not two characters", ErrFormat, i, tok)
		}
		var b [1]byte
		if _, err := hex.Decode(b[:], []byte(tok)); err != nil {
			return nil, fmt.Errorf("%w: token %d %q: %v", ErrFormat, i, tok, err)
		}
		out = append(out, b[0])
	}

	return out, nil
}

// Encode renders bytes as lowercase two-digit tokens joined by single spaces.
func Encode(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	var sb strings.Builder
	sb.Grow(len(data)*3 - 1)

	var pair [2]byte
	for i, b := range data {
		if i > 0 {
			sb.WriteByte(' ')
		}
		hex.Encode(pair[:], []byte{b})
		sb.Write(pair[:])
	}
	return sb.String()
}

// Valid reports whether s decodes without error.
func Valid(s string) bool {
	_, err := Decode(s)
	return err == nil
}
