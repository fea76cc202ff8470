package session

import (
	"fmt"
	"io"
	"time"

	"github.com/dnscovert/dnstun/internal/basedomain"
	"github.com/dnscovert/dnstun/internal/events"
	"github.com/dnscovert/dnstun/internal/framer"
	"github.com/dnscovert/dnstun/internal/wire"
)

// Sender drives the sending side of one file transfer: build the header
// frame, stream data frames from src, then send the terminator — each
// frame sent reliably via SendAndWait before advancing to the next.
type Sender struct {
	transport   SenderTransport
	base        basedomain.Domain
	observer    events.Observer
	timeout     time.Duration
	maxAttempts int
}

// NewSender constructs a Sender. A zero timeout or maxAttempts selects
// the package defaults.
func NewSender(t SenderTransport, base basedomain.Domain, observer events.Observer, timeout time.Duration, maxAttempts int) *Sender {
	if timeout <= 0 {
		timeout = DefaultSendTimeout
	}
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	if observer == nil {
		observer = events.Noop{}
	}
	return &Sender{transport: t, base: base, observer: observer, timeout: timeout, maxAttempts: maxAttempts}
}

// Send transmits src to the receiver under destFilename.
func (s *Sender) Send(destFilename string, src io.Reader) error {
	s.observer.TransferInit(destFilename)

	header := framer.HeaderFrame(s.base, destFilename)
	if err := s.sendFrame(header); err != nil {
		return fmt.Errorf("session: send header: %w", err)
	}

	f, err := framer.New(s.base, src, framer.HeaderChunkID+1)
	if err != nil {
		return fmt.Errorf("session: %w", err)
	}

	nextChunkID := framer.HeaderChunkID + 1
	for {
		frame, err := f.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("session: read source: %w", err)
		}

		s.observer.ChunkEncoded(frame.ChunkID, len(frame.QName))
		if err := s.sendFrame(frame); err != nil {
			return fmt.Errorf("session: send chunk %d: %w", frame.ChunkID, err)
		}
		s.observer.ChunkSent(frame.ChunkID)
		nextChunkID = frame.ChunkID + 1
	}

	term := framer.TerminatorFrame(s.base, nextChunkID)
	if err := s.sendFrame(term); err != nil {
		return fmt.Errorf("session: send terminator: %w", err)
	}
	return nil
}

func (s *Sender) sendFrame(f framer.Frame) error {
	msg := wire.Message{
		Header:   wire.NewQuery(f.ChunkID),
		Question: wire.Question{Name: f.QName, Type: wire.TypeA, Class: wire.ClassIN},
	}
	raw, err := msg.Marshal()
	if err != nil {
		return err
	}
	_, err = SendAndWait(s.transport, raw, f.ChunkID, s.timeout, s.maxAttempts)
	return err
}
