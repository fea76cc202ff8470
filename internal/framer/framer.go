// Package framer implements the sender-side chunking of a source file
// into a sequence of QNAMEs: a header frame carrying the destination
// filename, a run of data frames carrying base16-encoded file content,
// and a terminator frame.
//
// Grounded on the original implementation's send_first_info_packet,
// send_packets and send_last_info_packet, restructured around an
// explicit label-length cursor instead of manual pointer arithmetic
// (see SPEC_FULL.md §9's re-architecture note).
package framer

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dnscovert/dnstun/internal/basedomain"
	"github.com/dnscovert/dnstun/internal/codec"
)

// ErrOversizedDomain is returned when the base domain leaves no room for
// even a single encoded byte pair in a QNAME.
var ErrOversizedDomain = errors.New("framer: base domain too long to carry data")

// TerminatorLabel is the single-character label that marks the
// terminator frame, matching the original implementation's 'x' sentinel.
const TerminatorLabel = "x"

// HeaderChunkID is the chunk identifier carried by the header frame.
const HeaderChunkID uint16 = 0

// Frame is one packet's worth of sender output: a chunk identifier and
// the fully-qualified dotted QNAME to send.
type Frame struct {
	ChunkID uint16
	QName   string
}

// HeaderFrame builds the session's first frame, carrying the
// destination filename.
func HeaderFrame(base basedomain.Domain, filename string) Frame {
	return Frame{ChunkID: HeaderChunkID, QName: joinWithBase(filename, base)}
}

// TerminatorFrame builds the session's closing frame.
func TerminatorFrame(base basedomain.Domain, chunkID uint16) Frame {
	return Frame{ChunkID: chunkID, QName: joinWithBase(TerminatorLabel, base)}
}

func joinWithBase(variable string, base basedomain.Domain) string {
	if variable == "" {
		return base.Dotted()
	}
	return variable + "." + base.Dotted()
}

// Framer reads a source and yields a sequence of data Frames, each
// packing as many base16-encoded byte pairs as will fit in a 255-byte
// QNAME without splitting an encoded pair across two packets.
type Framer struct {
	base     basedomain.Domain
	r        *bufio.Reader
	chunkID  uint16
	capacity int
}

// New creates a Framer reading from src. firstChunkID is the identifier of
// the first data frame it will produce (the session driver assigns
// successive ids mod 2^16).
func New(base basedomain.Domain, src io.Reader, firstChunkID uint16) (*Framer, error) {
	capacity := maxQNameSize - base.PrefixedLen() - 1
	// One encoded pair in a fresh label costs 3 wire bytes: the length
	// prefix plus two characters.
	if capacity < 3 {
		return nil, fmt.Errorf("%w: only %d bytes available for data", ErrOversizedDomain, capacity)
	}
	return &Framer{base: base, r: bufio.NewReader(src), chunkID: firstChunkID, capacity: capacity}, nil
}

const maxQNameSize = 255

// Next produces the next data frame. It returns io.EOF (with a zero
// Frame) once the source is exhausted and no bytes remain to pack.
func (f *Framer) Next() (Frame, error) {
	var labels []string
	var cur strings.Builder
	labelLen := 0
	used := 0
	packed := false

	for {
		b, err := f.r.ReadByte()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Frame{}, err
		}

		hi, lo := codec.EncodeByte(b)
		cost := pairCost(labelLen, hi, lo)
		if used+cost > f.capacity {
			// Would split this byte's encoded pair across packets: push
			// the byte back and stop packing this frame.
			_ = f.r.UnreadByte()
			break
		}

		appendChar(&cur, &labels, &labelLen, hi)
		appendChar(&cur, &labels, &labelLen, lo)
		used += cost
		packed = true
	}

	if !packed {
		return Frame{}, io.EOF
	}
	if cur.Len() > 0 {
		labels = append(labels, cur.String())
	}

	id := f.chunkID
	f.chunkID++
	return Frame{ChunkID: id, QName: joinWithBase(strings.Join(labels, "."), f.base)}, nil
}

// pairCost returns the number of wire bytes consumed by appending hi and
// lo to a QNAME whose current (open, unterminated) label already holds
// labelLen bytes. It mirrors appendChar's own rollover so the two stay
// in lockstep without sharing state.
func pairCost(labelLen int, hi, lo byte) (cost int) {
	ll := labelLen
	for range [2]byte{hi, lo} {
		if ll == 0 {
			cost++ // a new label needs its length-prefix byte
		}
		cost++
		ll++
		if ll == maxLabelSize {
			ll = 0
		}
	}
	return cost
}

const maxLabelSize = 63

func appendChar(cur *strings.Builder, labels *[]string, labelLen *int, c byte) {
	if *labelLen == maxLabelSize {
		*labels = append(*labels, cur.String())
		cur.Reset()
		*labelLen = 0
	}
	cur.WriteByte(c)
	*labelLen++
}
