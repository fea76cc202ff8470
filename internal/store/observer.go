package store

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// TransferObserver implements events.Observer by logging each transfer
// into the Store's transfer table. It is the bridge between the
// protocol-agnostic session callbacks and the admin API's history view.
//
// It is declared without importing internal/events to avoid a direct
// dependency from store on session plumbing; session.NewReceiver and
// session.NewSender accept it as their observer because it satisfies
// the same method set structurally.
type TransferObserver struct {
	store     *Store
	peer      string
	direction Direction
	logger    *slog.Logger

	id         int64
	filename   string
	chunkCount int
}

// NewTransferObserver returns an observer that records transfers of the
// given direction, attributed to peer, into s.
func NewTransferObserver(s *Store, peer string, direction Direction, logger *slog.Logger) *TransferObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &TransferObserver{store: s, peer: peer, direction: direction, logger: logger}
}

func (o *TransferObserver) TransferInit(filename string) {
	o.filename = filename
	o.chunkCount = 0
	id, err := o.store.BeginTransfer(context.Background(), filename, o.peer, o.direction, time.Now().UTC())
	if err != nil {
		o.logger.Warn("store: failed to log transfer start", "filename", filename, "error", err)
		return
	}
	o.id = id
}

func (o *TransferObserver) ChunkEncoded(uint16, int) {}

func (o *TransferObserver) ChunkSent(uint16) {
	o.chunkCount++
}

func (o *TransferObserver) QueryParsed(uint16, string) {}

func (o *TransferObserver) ChunkReceived(_ uint16, _ int) {
	o.chunkCount++
}

func (o *TransferObserver) TransferCompleted(filename string, totalBytes int64) {
	if o.id == 0 {
		return
	}
	if err := o.store.CompleteTransfer(context.Background(), o.id, totalBytes, o.chunkCount, time.Now().UTC()); err != nil {
		o.logger.Warn("store: failed to log transfer completion", "filename", filename, "error", err)
	}
}

// Fail records a transfer as failed. Unlike the other methods this is
// not part of events.Observer, which has no failure callback, so no
// session invokes it; it takes effect only when called directly.
func (o *TransferObserver) Fail(cause error) {
	if o.id == 0 || cause == nil {
		return
	}
	if errors.Is(cause, context.Canceled) {
		return
	}
	if err := o.store.FailTransfer(context.Background(), o.id, cause, time.Now().UTC()); err != nil {
		o.logger.Warn("store: failed to log transfer failure", "error", err)
	}
}
