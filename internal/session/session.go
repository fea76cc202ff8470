// Package session drives the three-phase session protocol (header,
// data, terminator) on both the sending and receiving side, and
// implements the reliable-request retry engine the sender uses to wait
// for each chunk's acknowledgement.
//
// Grounded on the original implementation's dns_sender.c (send_packets,
// send_first_info_packet, send_last_info_packet), dns_receiver.c (main
// session loop) and common.c (send_and_wait), restructured per
// SPEC_FULL.md §9 around an explicit session value and a retry loop with
// a counter instead of the source's goto-based control flow.
package session

import (
	"errors"
	"net"
	"time"
)

// Default tunables, matching the original implementation's SND_TO_S,
// REC_TO_S and RETRY_N constants.
const (
	DefaultSendTimeout    = 4 * time.Second
	DefaultSessionTimeout = 10 * time.Second
	DefaultMaxAttempts    = 3
)

// ErrRetriesExhausted is returned by the retry engine once every attempt
// within the configured budget has failed, whether by timeout or by a
// validation mismatch.
var ErrRetriesExhausted = errors.New("session: retries exhausted")

// errSessionTimeout signals that a receiver session received no packet
// within its per-session timeout; this is not propagated to the caller
// as a hard failure — SPEC_FULL.md §7 treats it as abandon-and-resume.
var errSessionTimeout = errors.New("session: session timed out waiting for next packet")

// SenderTransport is the subset of transport.SenderEndpoint the
// reliable-request engine needs. transport.SenderEndpoint and
// transport.PipeSenderEndpoint both satisfy it.
type SenderTransport interface {
	Send(msg []byte) error
	Receive(timeout time.Duration) ([]byte, error)
	Close() error
}

// ReceiverTransport is the subset of transport.ReceiverEndpoint the
// session driver needs. transport.ReceiverEndpoint and
// transport.PipeReceiverEndpoint both satisfy it.
type ReceiverTransport interface {
	Receive(timeout time.Duration) ([]byte, *net.UDPAddr, error)
	Reply(msg []byte, dst *net.UDPAddr) error
	Close() error
}
