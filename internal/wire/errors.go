// Package wire implements the narrow DNS wire-format subset this tunnel
// needs: a 12-byte header, a single question section, and QNAME
// conversion between dotted and length-prefixed label form. It never
// emits or follows compression pointers and never encodes resource
// records — every packet on this channel carries exactly one question
// and zero answers, authorities and additionals.
package wire

import "errors"

// ErrMalformed is the sentinel wrapped by every wire parsing error.
var ErrMalformed = errors.New("dns wire error")
