// Package transport wraps the single UDP socket each side of this
// channel uses: the sender dials the upstream resolver, the receiver
// binds the well-known DNS port. Every exchange is synchronous —
// exactly one send/receive pair in flight at a time, per SPEC_FULL.md
// §5's single-threaded core requirement.
//
// Grounded on internal/server/udp_server.go's socket-option pattern,
// narrowed from SO_REUSEPORT multi-socket fan-out to a single
// SO_REUSEADDR-enabled bound socket, and cmd/dnsquery/main.go's
// synchronous DialUDP + SetDeadline client pattern. The read-buffer
// reuse below is grounded on internal/pool.Pool, the teacher's generic
// sync.Pool wrapper.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/dnscovert/dnstun/internal/pool"
)

// ErrTimeout wraps every deadline-exceeded error this package returns,
// so callers can distinguish "no response in time" from other
// transport failures without depending on net.Error directly.
var ErrTimeout = errors.New("transport: timed out")

// MaxMessageSize bounds a single read; every packet on this channel fits
// well within a standard UDP datagram.
const MaxMessageSize = 512

// scratchBuffers pools the read-side scratch buffers used below. Each
// Receive reads into a pooled buffer and copies out only the bytes
// actually used before returning it to the pool, so the channel's
// always-on receive loop doesn't allocate a fresh 512-byte buffer per
// packet.
var scratchBuffers = pool.New(func() []byte { return make([]byte, MaxMessageSize) })

// SenderEndpoint is a UDP socket connected to a single upstream peer, as
// used by the sending side of the channel.
type SenderEndpoint struct {
	conn *net.UDPConn
}

// DialSender opens a UDP socket connected to addr (host or host:port;
// a bare host is dialed on port 53).
func DialSender(addr string) (*SenderEndpoint, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		addr = net.JoinHostPort(addr, "53")
	}
	raddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: resolve %s: %w", addr, err)
	}
	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("transport: dial %s: %w", addr, err)
	}
	return &SenderEndpoint{conn: conn}, nil
}

// Send writes msg to the connected peer.
func (e *SenderEndpoint) Send(msg []byte) error {
	if _, err := e.conn.Write(msg); err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	return nil
}

// Receive blocks until a reply arrives from the peer or timeout elapses.
func (e *SenderEndpoint) Receive(timeout time.Duration) ([]byte, error) {
	if err := e.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, fmt.Errorf("transport: set deadline: %w", err)
	}
	buf := scratchBuffers.Get()
	defer scratchBuffers.Put(buf)

	n, err := e.conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("transport: receive: %w", err)
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, nil
}

// Close releases the underlying socket.
func (e *SenderEndpoint) Close() error {
	return e.conn.Close()
}

// ReceiverEndpoint is a bound UDP socket the receiving side uses to
// accept queries from any sender and reply to whichever peer last sent
// one.
type ReceiverEndpoint struct {
	conn *net.UDPConn
}

// ListenReceiver binds a UDP socket at addr (host:port, typically
// ":53"), with SO_REUSEADDR set so a recently-exited receiver can rebind
// immediately without waiting out TIME_WAIT.
func ListenReceiver(ctx context.Context, addr string) (*ReceiverEndpoint, error) {
	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			var ctrlErr error
			err := c.Control(func(fd uintptr) {
				ctrlErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
			})
			if err != nil {
				return err
			}
			return ctrlErr
		},
	}
	pc, err := lc.ListenPacket(ctx, "udp", addr)
	if err != nil {
		return nil, fmt.Errorf("transport: listen %s: %w", addr, err)
	}
	return &ReceiverEndpoint{conn: pc.(*net.UDPConn)}, nil
}

// Receive blocks until a packet arrives or timeout elapses, returning
// the packet bytes and the sender's address.
func (e *ReceiverEndpoint) Receive(timeout time.Duration) ([]byte, *net.UDPAddr, error) {
	if err := e.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, nil, fmt.Errorf("transport: set deadline: %w", err)
	}
	buf := scratchBuffers.Get()
	defer scratchBuffers.Put(buf)

	n, from, err := e.conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return nil, nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, nil, fmt.Errorf("transport: receive: %w", err)
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, from, nil
}

// Reply sends msg back to dst.
func (e *ReceiverEndpoint) Reply(msg []byte, dst *net.UDPAddr) error {
	if _, err := e.conn.WriteToUDP(msg, dst); err != nil {
		return fmt.Errorf("transport: reply: %w", err)
	}
	return nil
}

// Close releases the underlying socket. Closing it unblocks any
// in-flight Receive call, which is how the receiver's graceful shutdown
// interrupts a blocked read on SIGINT.
func (e *ReceiverEndpoint) Close() error {
	return e.conn.Close()
}
