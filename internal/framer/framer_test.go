package framer_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/dnscovert/dnstun/internal/basedomain"
	"github.com/dnscovert/dnstun/internal/framer"
	"github.com/dnscovert/dnstun/internal/reassembler"
	"github.com/dnscovert/dnstun/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBase(t *testing.T, s string) basedomain.Domain {
	t.Helper()
	d, err := basedomain.Parse(s)
	require.NoError(t, err)
	return d
}

func TestHeaderAndTerminatorFrames(t *testing.T) {
	base := mustBase(t, "tunnel.example.com")

	hf := framer.HeaderFrame(base, "report.bin")
	assert.Equal(t, uint16(0), hf.ChunkID)
	assert.Equal(t, "report.bin.tunnel.example.com", hf.QName)

	tf := framer.TerminatorFrame(base, 42)
	assert.Equal(t, "x.tunnel.example.com", tf.QName)
}

func TestFramerRoundTripsArbitraryContent(t *testing.T) {
	base := mustBase(t, "tunnel.example.com")
	content := bytes.Repeat([]byte("the quick brown fox jumps over the lazy dog. "), 50)

	f, err := framer.New(base, bytes.NewReader(content), 1)
	require.NoError(t, err)

	var decoded bytes.Buffer
	var lastID uint16
	count := 0
	for {
		frame, err := f.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		count++
		lastID = frame.ChunkID

		_, err = wire.EncodeName(frame.QName)
		require.NoError(t, err, "frame QName must be wire-encodable")

		parsed, err := reassembler.Parse(base, frame.QName)
		require.NoError(t, err)
		require.False(t, parsed.IsTerminator)

		data, err := reassembler.DecodeData(parsed.Variable)
		require.NoError(t, err)
		decoded.Write(data)
	}

	require.Greater(t, count, 1, "content should span multiple packets")
	assert.Equal(t, content, decoded.Bytes())
	assert.Equal(t, uint16(count), lastID)
}

func TestFramerEmptySourceProducesNoDataFrames(t *testing.T) {
	base := mustBase(t, "tunnel.example.com")
	f, err := framer.New(base, strings.NewReader(""), 1)
	require.NoError(t, err)

	_, err = f.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestFramerRespectsQNameCapacity(t *testing.T) {
	base := mustBase(t, "tunnel.example.com")
	content := bytes.Repeat([]byte{0xAB}, 1000)
	f, err := framer.New(base, bytes.NewReader(content), 1)
	require.NoError(t, err)

	for {
		frame, err := f.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		enc, err := wire.EncodeName(frame.QName)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(enc), wire.MaxQNameSize)
	}
}
