// Package basedomain validates and normalizes the shared "base host"
// both sender and receiver are configured with: the suffix every tunnel
// QNAME carries, which the receiver uses to recognize packets belonging
// to this channel.
//
// Grounded on the original implementation's check_base_host, shared
// between sender and receiver.
package basedomain

import (
	"errors"
	"fmt"
	"strings"
)

// MaxPrefixedLen is the maximum length of the base domain's wire form
// that still leaves room in a 255-byte QNAME for at least one data
// label and the terminating zero byte.
const MaxPrefixedLen = 252

// ErrInvalid is the sentinel wrapped by every base domain validation error.
var ErrInvalid = errors.New("basedomain: invalid base host")

// Domain is a validated, normalized base host, precomputed into both its
// dotted and length-prefixed wire forms so per-packet framing never
// re-validates it. The framer uses the wire form only for its length;
// each packet's QNAME, base domain included, is encoded when the
// packet is marshaled.
type Domain struct {
	dotted    string
	prefixed  []byte
}

// Parse validates raw as a base host: ASCII letters, digits, '-' and '.'
// only, non-empty labels each at most 63 bytes, and a wire-encoded form
// no longer than MaxPrefixedLen.
func Parse(raw string) (Domain, error) {
	dotted := strings.TrimSuffix(strings.TrimPrefix(raw, "."), ".")
	if dotted == "" {
		return Domain{}, fmt.Errorf("%w: empty", ErrInvalid)
	}

	labels := strings.Split(dotted, ".")
	for _, label := range labels {
		if label == "" {
			return Domain{}, fmt.Errorf("%w: empty label in %q", ErrInvalid, raw)
		}
		if len(label) > 63 {
			return Domain{}, fmt.Errorf("%w: label too long in %q", ErrInvalid, raw)
		}
		for i := 0; i < len(label); i++ {
			c := label[i]
			switch {
			case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-':
			default:
				return Domain{}, fmt.Errorf("%w: invalid character %q in %q", ErrInvalid, c, raw)
			}
		}
	}

	prefixed := make([]byte, 0, len(dotted)+2)
	for _, label := range labels {
		prefixed = append(prefixed, byte(len(label)))
		prefixed = append(prefixed, label...)
	}
	if len(prefixed) > MaxPrefixedLen {
		return Domain{}, fmt.Errorf("%w: too long (%d > %d wire bytes): %q", ErrInvalid, len(prefixed), MaxPrefixedLen, raw)
	}

	return Domain{dotted: strings.ToLower(dotted), prefixed: prefixed}, nil
}

// Dotted returns the normalized dotted form, e.g. "tunnel.example.com".
func (d Domain) Dotted() string { return d.dotted }

// WithLeadingDot returns the dotted form prefixed with a '.', the form
// used when concatenating a data prefix directly in front of it.
func (d Domain) WithLeadingDot() string { return "." + d.dotted }

// PrefixedLen returns the length in bytes of the base domain's
// length-prefixed wire form (excluding the terminating zero byte),
// used by the framer to compute remaining QNAME capacity.
func (d Domain) PrefixedLen() int { return len(d.prefixed) }

// HasSuffix reports whether dottedName ends in this base domain,
// case-insensitively, on a label boundary.
func (d Domain) HasSuffix(dottedName string) bool {
	name := strings.ToLower(dottedName)
	if name == d.dotted {
		return true
	}
	return strings.HasSuffix(name, "."+d.dotted)
}

// TrimSuffix removes this base domain (and its separating dot) from the
// end of dottedName. It assumes HasSuffix(dottedName) is true.
func (d Domain) TrimSuffix(dottedName string) string {
	name := strings.ToLower(dottedName)
	trimmed := strings.TrimSuffix(name, d.dotted)
	return strings.TrimSuffix(trimmed, ".")
}
