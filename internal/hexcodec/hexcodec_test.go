// internal/hexcodec/hexcodec_test.go

package hexcodec

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRoundTripBytes(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for n := 0; n <= 64; n++ {
		data := make([]byte, n)
		rng.Read(data)

		got, err := Decode(Encode(data))
		require.NoError(t, err, "len=%d", n)
		require.Equal(t, data, got, "len=%d", n)
	}
}

func TestRoundTripText(t *testing.T) {
	for _, s := range []string{"", "00", "01 02", "aa bb cc dd", "ff 7f 80 00"} {
		data, err := Decode(s)
		require.NoError(t, err)
		require.Equal(t, s, Encode(data))
	}
}

func TestDecodeAcceptsUpperCaseAndExtraWhitespace(t *testing.T) {
	got, err := Decode("  AA\tbB \n01 ")
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa, 0xbb, 0x01}, got)
}

func TestDecodeRejectsMalformed(t *testing.T) {
	cases := []string{
		"zz ff",
		"1",
		"001",
		"0x01",
		"01,02",
		"g0",
	}
	for _, s := range cases {
		_, err := Decode(s)
		require.Error(t, err, "input %q", s)
		require.True(t, errors.Is(err, ErrFormat), "input %q", s)
		require.False(t, Valid(s))
	}
}

func TestEncodeEmpty(t *testing.T) {
	require.Equal(t, "", Encode(nil))
	require.Equal(t, "", Encode([]byte{}))
}
