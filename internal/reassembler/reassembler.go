// Package reassembler implements the receiver-side inverse of framer:
// given a decoded QNAME, determine whether it belongs to this channel,
// whether it is the terminator, or what raw payload bytes its data
// labels decode to.
//
// Grounded on the original implementation's convert_from_dns_format,
// check_base_host_suffix and get_data_from_packet.
package reassembler

import (
	"errors"
	"strings"

	"github.com/dnscovert/dnstun/internal/basedomain"
	"github.com/dnscovert/dnstun/internal/codec"
	"github.com/dnscovert/dnstun/internal/framer"
)

// ErrForeignPacket is returned by Parse when the QNAME does not carry
// this channel's base domain suffix. Callers must treat this as
// "silently ignore" per the protocol's design: no acknowledgement is
// sent for packets that fail this check.
var ErrForeignPacket = errors.New("reassembler: qname does not match base domain")

// Parsed is the result of decomposing one incoming QNAME.
type Parsed struct {
	// Variable is the dotted label portion preceding the base domain
	// (e.g. the filename on a header packet, or the encoded data labels
	// joined with dots on a data packet).
	Variable string
	// IsTerminator is true when Variable is exactly the terminator
	// sentinel label.
	IsTerminator bool
}

// Parse strips base from dottedQName and classifies what remains.
func Parse(base basedomain.Domain, dottedQName string) (Parsed, error) {
	if !base.HasSuffix(dottedQName) {
		return Parsed{}, ErrForeignPacket
	}
	variable := base.TrimSuffix(dottedQName)
	return Parsed{
		Variable:     variable,
		IsTerminator: variable == framer.TerminatorLabel,
	}, nil
}

// DecodeData reassembles the raw payload bytes a data packet's Variable
// encodes: its dot-separated labels are concatenated (dots are framing
// artifacts, not payload) and base16-decoded.
func DecodeData(variable string) ([]byte, error) {
	joined := strings.ReplaceAll(variable, ".", "")
	return codec.DecodeBytes([]byte(joined))
}
