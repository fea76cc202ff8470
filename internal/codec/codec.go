// Package codec implements the payload encoding this tunnel uses to pack
// arbitrary bytes into DNS-label-safe characters: each byte's high and
// low nibble are each mapped onto the range 'a'..'p', guaranteeing every
// emitted character is a plain ASCII letter regardless of payload
// content.
//
// Grounded on the original implementation's char_base16_encode /
// char_base16_decode: encode maps nibble n to byte('a'+n); decode is
// its inverse.
package codec

import (
	"errors"
	"fmt"
)

// alphabetBase is the first character of the encoding range. Valid encoded
// characters are 'a' through 'p' inclusive (16 values).
const alphabetBase = 'a'

// ErrInvalidChar is returned when DecodePair receives a byte outside the
// 'a'..'p' range.
var ErrInvalidChar = errors.New("codec: character outside 'a'..'p' range")

// EncodeByte splits b into its high and low nibble and maps each onto
// 'a'..'p', returning the two encoded characters in high, low order.
func EncodeByte(b byte) (hi, lo byte) {
	hi = byte(b>>4) + alphabetBase
	lo = byte(b&0x0F) + alphabetBase
	return hi, lo
}

// DecodePair reverses EncodeByte, reconstructing the original byte from
// its two encoded nibble characters.
func DecodePair(hi, lo byte) (byte, error) {
	hn, err := nibble(hi)
	if err != nil {
		return 0, err
	}
	ln, err := nibble(lo)
	if err != nil {
		return 0, err
	}
	return hn<<4 | ln, nil
}

func nibble(c byte) (byte, error) {
	if c < 'a' || c > 'p' {
		return 0, fmt.Errorf("%w: %q", ErrInvalidChar, c)
	}
	return c - alphabetBase, nil
}

// EncodeBytes encodes a full buffer, each input byte becoming two output
// characters.
func EncodeBytes(src []byte) []byte {
	out := make([]byte, 0, len(src)*2)
	for _, b := range src {
		hi, lo := EncodeByte(b)
		out = append(out, hi, lo)
	}
	return out
}

// DecodeBytes decodes a full buffer of encoded character pairs. len(src)
// must be even.
func DecodeBytes(src []byte) ([]byte, error) {
	if len(src)%2 != 0 {
		return nil, fmt.Errorf("%w: odd-length encoded buffer (%d bytes)", ErrInvalidChar, len(src))
	}
	out := make([]byte, 0, len(src)/2)
	for i := 0; i < len(src); i += 2 {
		b, err := DecodePair(src[i], src[i+1])
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
