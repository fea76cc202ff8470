package main

import "log/slog"

// loggingObserver logs each session callback at debug level, except
// TransferCompleted, which it logs at info level; it is the
// CLI's stand-in for a richer observer (the admin API side uses
// store.TransferObserver instead).
type loggingObserver struct {
	logger *slog.Logger
}

func (o *loggingObserver) TransferInit(filename string) {
	o.logger.Debug("transfer init", "filename", filename)
}

func (o *loggingObserver) ChunkEncoded(chunkID uint16, encodedLen int) {
	o.logger.Debug("chunk encoded", "chunk_id", chunkID, "encoded_len", encodedLen)
}

func (o *loggingObserver) ChunkSent(chunkID uint16) {
	o.logger.Debug("chunk sent", "chunk_id", chunkID)
}

func (o *loggingObserver) QueryParsed(chunkID uint16, rawLabel string) {
	o.logger.Debug("query parsed", "chunk_id", chunkID, "label", rawLabel)
}

func (o *loggingObserver) ChunkReceived(chunkID uint16, decodedLen int) {
	o.logger.Debug("chunk received", "chunk_id", chunkID, "decoded_len", decodedLen)
}

func (o *loggingObserver) TransferCompleted(filename string, totalBytes int64) {
	o.logger.Info("transfer completed", "filename", filename, "total_bytes", totalBytes)
}
