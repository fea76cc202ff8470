package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeByteRange(t *testing.T) {
	for b := 0; b <= 0xFF; b++ {
		hi, lo := EncodeByte(byte(b))
		assert.GreaterOrEqual(t, hi, byte('a'))
		assert.LessOrEqual(t, hi, byte('p'))
		assert.GreaterOrEqual(t, lo, byte('a'))
		assert.LessOrEqual(t, lo, byte('p'))
	}
}

func TestEncodeDecodeByteRoundTrip(t *testing.T) {
	for b := 0; b <= 0xFF; b++ {
		hi, lo := EncodeByte(byte(b))
		got, err := DecodePair(hi, lo)
		require.NoError(t, err)
		assert.Equal(t, byte(b), got)
	}
}

func TestDecodePairRejectsOutOfRange(t *testing.T) {
	_, err := DecodePair('z', 'a')
	require.ErrorIs(t, err, ErrInvalidChar)

	_, err = DecodePair('a', '0')
	require.ErrorIs(t, err, ErrInvalidChar)
}

func TestEncodeDecodeBytesRoundTrip(t *testing.T) {
	src := []byte("the quick brown fox jumps over the lazy dog\x00\xff\x01")
	enc := EncodeBytes(src)
	assert.Len(t, enc, len(src)*2)
	dec, err := DecodeBytes(enc)
	require.NoError(t, err)
	assert.Equal(t, src, dec)
}

func TestDecodeBytesRejectsOddLength(t *testing.T) {
	_, err := DecodeBytes([]byte{'a'})
	require.ErrorIs(t, err, ErrInvalidChar)
}

func TestEncodeDecodeEmpty(t *testing.T) {
	enc := EncodeBytes(nil)
	assert.Empty(t, enc)
	dec, err := DecodeBytes(nil)
	require.NoError(t, err)
	assert.Empty(t, dec)
}
