package wire

import (
	"encoding/binary"
	"fmt"
)

// HeaderSize is the fixed size of a DNS message header in bytes.
const HeaderSize = 12

// RCodeNXDomain is the response code this protocol repurposes as an
// acknowledgement: a receiver signals "chunk accepted" by replying with
// RCODE=3 rather than an actual negative-caching result.
const RCodeNXDomain uint16 = 3

const qrFlag uint16 = 0x8000

// Header is the 12-byte DNS message header (RFC 1035 §4.1.1), narrowed
// to the fields this protocol inspects: transaction ID, query/response
// bit, response code, and section counts.
type Header struct {
	ID        uint16
	IsQuery   bool
	RCode     uint16
	QDCount   uint16
	ANCount   uint16
	NSCount   uint16
	ARCount   uint16
}

// AnswerSum returns the combined answer, authority and additional record
// count. The reliable-request engine treats any nonzero sum as a
// malformed acknowledgement.
func (h Header) AnswerSum() uint16 {
	return h.ANCount + h.NSCount + h.ARCount
}

func (h Header) flags() uint16 {
	f := h.RCode & 0x000F
	if !h.IsQuery {
		f |= qrFlag
	}
	return f
}

// Marshal serializes the header to wire format (big-endian, 12 bytes).
func (h Header) Marshal() []byte {
	b := make([]byte, HeaderSize)
	binary.BigEndian.PutUint16(b[0:2], h.ID)
	binary.BigEndian.PutUint16(b[2:4], h.flags())
	binary.BigEndian.PutUint16(b[4:6], h.QDCount)
	binary.BigEndian.PutUint16(b[6:8], h.ANCount)
	binary.BigEndian.PutUint16(b[8:10], h.NSCount)
	binary.BigEndian.PutUint16(b[10:12], h.ARCount)
	return b
}

// ParseHeader parses a DNS header from msg at *off, advancing *off by
// HeaderSize on success.
func ParseHeader(msg []byte, off *int) (Header, error) {
	if *off+HeaderSize > len(msg) {
		return Header{}, fmt.Errorf("%w: unexpected EOF reading header", ErrMalformed)
	}
	flags := binary.BigEndian.Uint16(msg[*off+2 : *off+4])
	h := Header{
		ID:      binary.BigEndian.Uint16(msg[*off : *off+2]),
		IsQuery: flags&qrFlag == 0,
		RCode:   flags & 0x000F,
		QDCount: binary.BigEndian.Uint16(msg[*off+4 : *off+6]),
		ANCount: binary.BigEndian.Uint16(msg[*off+6 : *off+8]),
		NSCount: binary.BigEndian.Uint16(msg[*off+8 : *off+10]),
		ARCount: binary.BigEndian.Uint16(msg[*off+10 : *off+12]),
	}
	*off += HeaderSize
	return h, nil
}

// NewQuery builds a header for an outgoing query: QR=0, one question,
// zero answers.
func NewQuery(id uint16) Header {
	return Header{ID: id, IsQuery: true, QDCount: 1}
}

// NewAck builds a header for an acknowledgement response: QR=1,
// RCODE=RCodeNXDomain, a question count of 1 and zero
// answer/authority/additional counts.
func NewAck(id uint16) Header {
	return Header{ID: id, IsQuery: false, RCode: RCodeNXDomain, QDCount: 1}
}
