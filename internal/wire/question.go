package wire

import (
	"encoding/binary"
	"fmt"
)

// TypeA and ClassIN are the only question type/class this protocol ever
// sends or expects: every query asks for an A record in the Internet
// class, regardless of what the QNAME actually encodes.
const (
	TypeA   uint16 = 1
	ClassIN uint16 = 1
)

// Question is a DNS question-section entry: the QNAME carrying this
// protocol's encoded payload, plus QTYPE/QCLASS.
type Question struct {
	Name  string
	Type  uint16
	Class uint16
}

// Marshal serializes the question to wire format.
func (q Question) Marshal() ([]byte, error) {
	name, err := EncodeName(q.Name)
	if err != nil {
		return nil, err
	}
	b := make([]byte, len(name)+4)
	copy(b, name)
	binary.BigEndian.PutUint16(b[len(name):len(name)+2], q.Type)
	binary.BigEndian.PutUint16(b[len(name)+2:len(name)+4], q.Class)
	return b, nil
}

// ParseQuestion parses a question from msg at *off, advancing *off past it.
func ParseQuestion(msg []byte, off *int) (Question, error) {
	name, err := DecodeName(msg, off)
	if err != nil {
		return Question{}, err
	}
	if *off+4 > len(msg) {
		return Question{}, fmt.Errorf("%w: unexpected EOF reading question trailer", ErrMalformed)
	}
	q := Question{
		Name:  name,
		Type:  binary.BigEndian.Uint16(msg[*off : *off+2]),
		Class: binary.BigEndian.Uint16(msg[*off+2 : *off+4]),
	}
	*off += 4
	return q, nil
}
