package session

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/dnscovert/dnstun/internal/basedomain"
	"github.com/dnscovert/dnstun/internal/events"
	"github.com/dnscovert/dnstun/internal/reassembler"
	"github.com/dnscovert/dnstun/internal/transport"
	"github.com/dnscovert/dnstun/internal/wire"
)

// acceptTimeout bounds how long the receiver waits for a brand-new
// session's header packet. It is intentionally large: idle listening has
// no protocol deadline, so the only practical way to unblock it is
// closing the socket on shutdown.
const acceptTimeout = 24 * time.Hour

// Receiver drives the receiving side of the channel: it loops accepting
// sessions, each a header packet, a run of data packets and a
// terminator, writing decoded payload bytes into destDir.
type Receiver struct {
	transport      ReceiverTransport
	base           basedomain.Domain
	destDir        string
	observer       events.Observer
	sessionTimeout time.Duration
}

// NewReceiver constructs a Receiver. A zero sessionTimeout selects the
// package default.
func NewReceiver(t ReceiverTransport, base basedomain.Domain, destDir string, observer events.Observer, sessionTimeout time.Duration) *Receiver {
	if sessionTimeout <= 0 {
		sessionTimeout = DefaultSessionTimeout
	}
	if observer == nil {
		observer = events.Noop{}
	}
	return &Receiver{transport: t, base: base, destDir: destDir, observer: observer, sessionTimeout: sessionTimeout}
}

// Serve loops accepting sessions until ctx is cancelled, at which point
// it closes the underlying transport (unblocking any in-flight receive)
// and returns ctx.Err().
func (r *Receiver) Serve(ctx context.Context) error {
	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = r.transport.Close()
		case <-stop:
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := r.runSession(); err != nil && ctx.Err() != nil {
			return ctx.Err()
		}
		// Any other error (foreign packet, session timeout, decode
		// failure) is non-fatal: resume listening for the next session.
	}
}

func (r *Receiver) runSession() error {
	raw, msg, peer, err := r.recvMessage(acceptTimeout)
	if err != nil {
		return err
	}
	parsed, err := reassembler.Parse(r.base, msg.Question.Name)
	if err != nil || parsed.IsTerminator || parsed.Variable == "" {
		return nil // not a header packet for this channel; keep listening
	}
	filename := parsed.Variable

	if err := r.ack(raw, msg.Header.ID, peer); err != nil {
		return err
	}
	r.observer.TransferInit(filename)

	path := filepath.Join(r.destDir, filepath.Base(filename))
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("session: create %s: %w", path, err)
	}
	defer file.Close()

	var total int64
	var lastChunkID uint16
	haveLast := false

	for {
		raw, msg, peer, err := r.recvMessage(r.sessionTimeout)
		if err != nil {
			if errors.Is(err, transport.ErrTimeout) {
				return fmt.Errorf("%w: %s", errSessionTimeout, filename)
			}
			return err
		}

		parsed, err := reassembler.Parse(r.base, msg.Question.Name)
		if err != nil {
			continue // foreign packet mid-session: ignore, no ack
		}
		r.observer.QueryParsed(msg.Header.ID, parsed.Variable)

		if parsed.IsTerminator {
			if err := r.ack(raw, msg.Header.ID, peer); err != nil {
				return err
			}
			r.observer.TransferCompleted(filename, total)
			return nil
		}

		duplicate := haveLast && msg.Header.ID == lastChunkID
		if !duplicate {
			data, decErr := reassembler.DecodeData(parsed.Variable)
			if decErr != nil {
				return fmt.Errorf("session: decode %s chunk %d: %w", filename, msg.Header.ID, decErr)
			}
			if _, err := file.Write(data); err != nil {
				return fmt.Errorf("session: write %s: %w", path, err)
			}
			total += int64(len(data))
			r.observer.ChunkReceived(msg.Header.ID, len(data))
			lastChunkID = msg.Header.ID
			haveLast = true
		}

		if err := r.ack(raw, msg.Header.ID, peer); err != nil {
			return err
		}
	}
}

func (r *Receiver) recvMessage(timeout time.Duration) (raw []byte, msg wire.Message, peer *net.UDPAddr, err error) {
	raw, peer, err = r.transport.Receive(timeout)
	if err != nil {
		return nil, wire.Message{}, nil, err
	}
	msg, err = wire.ParseMessage(raw)
	if err != nil {
		return nil, wire.Message{}, nil, err
	}
	return raw, msg, peer, nil
}

// ack replies to a query by overwriting only its header bytes in place
// (ID preserved, QR and RCODE flipped to the acknowledgement form) and
// echoing the rest of the packet unmodified, matching the original
// implementation's approach of acking by mutating the received buffer
// rather than re-encoding the question.
func (r *Receiver) ack(raw []byte, id uint16, peer *net.UDPAddr) error {
	out := append([]byte(nil), raw...)
	copy(out[:wire.HeaderSize], wire.NewAck(id).Marshal())
	return r.transport.Reply(out, peer)
}
