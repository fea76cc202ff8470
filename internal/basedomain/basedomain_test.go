package basedomain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValid(t *testing.T) {
	d, err := Parse("tunnel.example.com")
	require.NoError(t, err)
	assert.Equal(t, "tunnel.example.com", d.Dotted())
	assert.Equal(t, ".tunnel.example.com", d.WithLeadingDot())
	assert.True(t, d.HasSuffix("abcd.tunnel.example.com"))
	assert.True(t, d.HasSuffix("TUNNEL.EXAMPLE.COM"))
	assert.False(t, d.HasSuffix("eviltunnel.example.com"))
}

func TestParseRejectsEmpty(t *testing.T) {
	_, err := Parse("")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParseRejectsInvalidChar(t *testing.T) {
	_, err := Parse("tun nel.example.com")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParseRejectsOversizedLabel(t *testing.T) {
	_, err := Parse(strings.Repeat("a", 64) + ".example.com")
	require.ErrorIs(t, err, ErrInvalid)
}

func TestParseRejectsOversizedTotal(t *testing.T) {
	label := strings.Repeat("a", 63)
	long := strings.Join([]string{label, label, label, label, label}, ".")
	_, err := Parse(long)
	require.ErrorIs(t, err, ErrInvalid)
}

func TestTrimSuffix(t *testing.T) {
	d, err := Parse("tunnel.example.com")
	require.NoError(t, err)
	assert.Equal(t, "abcd", d.TrimSuffix("abcd.tunnel.example.com"))
}
