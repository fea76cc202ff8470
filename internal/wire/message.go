package wire

// Message is a full packet on this channel: a header plus exactly one
// question. No resource records are ever carried.
type Message struct {
	Header   Header
	Question Question
}

// Marshal serializes the message to wire format.
func (m Message) Marshal() ([]byte, error) {
	q, err := m.Question.Marshal()
	if err != nil {
		return nil, err
	}
	h := m.Header
	h.QDCount = 1
	b := make([]byte, 0, HeaderSize+len(q))
	b = append(b, h.Marshal()...)
	b = append(b, q...)
	return b, nil
}

// ParseMessage parses a full message from msg.
func ParseMessage(msg []byte) (Message, error) {
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Message{}, err
	}
	q, err := ParseQuestion(msg, &off)
	if err != nil {
		return Message{}, err
	}
	return Message{Header: h, Question: q}, nil
}
