package transport

import (
	"fmt"
	"net"
	"time"
)

// PacketPipe is an in-memory test double standing in for a pair of real
// UDP sockets. It lets tests deterministically drop packets in either
// direction and mutate acks, exercising the reliable-request engine's retry
// behavior (SPEC_FULL.md §8, scenarios 5 and 6) without a real network.
type PacketPipe struct {
	toReceiver   chan pipePacket
	toSender     chan pipePacket
	senderAddr   *net.UDPAddr
	receiverAddr *net.UDPAddr

	// DropQuery, when non-nil, is called with the 0-based index of each
	// query sent to the receiver; returning true drops that packet.
	DropQuery func(index int) bool
	// DropAck, when non-nil, is called with the 0-based index of each
	// ack sent to the sender; returning true drops that packet.
	DropAck func(index int) bool
	// MutateAck, when non-nil, transforms an ack's bytes before delivery
	// (e.g. to corrupt its transaction id), simulating an off-path
	// responder or bit error.
	MutateAck func(index int, msg []byte) []byte

	queryCount int
	ackCount   int
}

type pipePacket struct {
	data []byte
}

// NewPacketPipe creates a connected pair of endpoints with a generous
// in-memory buffer depth (retries mean more than one packet may be in
// flight at once from the test's point of view).
func NewPacketPipe() *PacketPipe {
	return &PacketPipe{
		toReceiver:   make(chan pipePacket, 64),
		toSender:     make(chan pipePacket, 64),
		senderAddr:   &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 40000},
		receiverAddr: &net.UDPAddr{IP: net.ParseIP("127.0.0.1"), Port: 53},
	}
}

// SenderSide returns the sender-facing half of the pipe.
func (p *PacketPipe) SenderSide() *PipeSenderEndpoint {
	return &PipeSenderEndpoint{pipe: p}
}

// ReceiverSide returns the receiver-facing half of the pipe.
func (p *PacketPipe) ReceiverSide() *PipeReceiverEndpoint {
	return &PipeReceiverEndpoint{pipe: p}
}

// PipeSenderEndpoint implements the same interface as SenderEndpoint,
// backed by a PacketPipe.
type PipeSenderEndpoint struct{ pipe *PacketPipe }

func (e *PipeSenderEndpoint) Send(msg []byte) error {
	idx := e.pipe.queryCount
	e.pipe.queryCount++
	if e.pipe.DropQuery != nil && e.pipe.DropQuery(idx) {
		return nil
	}
	cp := append([]byte(nil), msg...)
	e.pipe.toReceiver <- pipePacket{data: cp}
	return nil
}

func (e *PipeSenderEndpoint) Receive(timeout time.Duration) ([]byte, error) {
	select {
	case pkt := <-e.pipe.toSender:
		return pkt.data, nil
	case <-time.After(timeout):
		return nil, fmt.Errorf("%w: no ack within %s", ErrTimeout, timeout)
	}
}

func (e *PipeSenderEndpoint) Close() error { return nil }

// PipeReceiverEndpoint implements the same interface as
// ReceiverEndpoint, backed by a PacketPipe.
type PipeReceiverEndpoint struct{ pipe *PacketPipe }

func (e *PipeReceiverEndpoint) Receive(timeout time.Duration) ([]byte, *net.UDPAddr, error) {
	select {
	case pkt := <-e.pipe.toReceiver:
		return pkt.data, e.pipe.senderAddr, nil
	case <-time.After(timeout):
		return nil, nil, fmt.Errorf("%w: no query within %s", ErrTimeout, timeout)
	}
}

func (e *PipeReceiverEndpoint) Reply(msg []byte, _ *net.UDPAddr) error {
	idx := e.pipe.ackCount
	e.pipe.ackCount++
	if e.pipe.DropAck != nil && e.pipe.DropAck(idx) {
		return nil
	}
	out := append([]byte(nil), msg...)
	if e.pipe.MutateAck != nil {
		out = e.pipe.MutateAck(idx, out)
	}
	e.pipe.toSender <- pipePacket{data: out}
	return nil
}

func (e *PipeReceiverEndpoint) Close() error { return nil }
