package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeNameRoundTrip(t *testing.T) {
	cases := []string{
		"example.com",
		"a.b.example.com",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa.example.com",
	}
	for _, in := range cases {
		enc, err := EncodeName(in)
		require.NoError(t, err)
		off := 0
		dec, err := DecodeName(enc, &off)
		require.NoError(t, err)
		assert.Equal(t, in, dec)
		assert.Equal(t, len(enc), off)
	}
}

func TestEncodeNameRejectsOversizedLabel(t *testing.T) {
	oversized := make([]byte, MaxLabelSize+1)
	for i := range oversized {
		oversized[i] = 'a'
	}
	_, err := EncodeName(string(oversized) + ".example.com")
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeNameRejectsCompressionPointer(t *testing.T) {
	msg := []byte{0xC0, 0x00}
	_, err := DecodeName(msg, new(int))
	require.ErrorIs(t, err, ErrMalformed)
}

func TestDecodeNameTruncated(t *testing.T) {
	msg := []byte{5, 'a', 'b'}
	_, err := DecodeName(msg, new(int))
	require.ErrorIs(t, err, ErrMalformed)
}
