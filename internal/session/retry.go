package session

import (
	"fmt"
	"time"

	"github.com/dnscovert/dnstun/internal/wire"
)

// SendAndWait sends query (already wire-marshaled) and waits for a valid
// acknowledgement, retrying up to maxAttempts times total. A validation
// mismatch consumes an attempt exactly like a timeout does, grounded on
// the original implementation's send_and_wait, which retries on
// inv_response the same way it retries on a receive timeout.
func SendAndWait(t SenderTransport, query []byte, id uint16, timeout time.Duration, maxAttempts int) (wire.Message, error) {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := t.Send(query); err != nil {
			lastErr = fmt.Errorf("send: %w", err)
			continue
		}

		raw, err := t.Receive(timeout)
		if err != nil {
			lastErr = fmt.Errorf("receive: %w", err)
			continue
		}

		msg, err := wire.ParseMessage(raw)
		if err != nil {
			lastErr = fmt.Errorf("parse ack: %w", err)
			continue
		}

		if err := validateAck(msg, id); err != nil {
			lastErr = err
			continue
		}

		return msg, nil
	}
	return wire.Message{}, fmt.Errorf("%w: %v", ErrRetriesExhausted, lastErr)
}

// validateAck checks that msg is a well-formed acknowledgement for the
// query identified by id: matching transaction ID, response bit set,
// RCODE=NXDOMAIN (this channel's repurposed ack code), and zero
// answer/authority/additional records.
func validateAck(msg wire.Message, id uint16) error {
	if msg.Header.ID != id {
		return fmt.Errorf("ack id mismatch: got %d want %d", msg.Header.ID, id)
	}
	if msg.Header.IsQuery {
		return fmt.Errorf("ack has query bit set")
	}
	if msg.Header.RCode != wire.RCodeNXDomain {
		return fmt.Errorf("ack rcode %d, want %d (NXDOMAIN)", msg.Header.RCode, wire.RCodeNXDomain)
	}
	if msg.Header.AnswerSum() != 0 {
		return fmt.Errorf("ack carries %d records, want 0", msg.Header.AnswerSum())
	}
	return nil
}
