package session_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dnscovert/dnstun/internal/basedomain"
	"github.com/dnscovert/dnstun/internal/session"
	"github.com/dnscovert/dnstun/internal/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustBase(t *testing.T) basedomain.Domain {
	t.Helper()
	d, err := basedomain.Parse("tunnel.example.com")
	require.NoError(t, err)
	return d
}

func runReceiver(t *testing.T, r *session.Receiver) (stop func()) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = r.Serve(ctx)
		close(done)
	}()
	return func() {
		cancel()
		<-done
	}
}

func TestEndToEndTransfer(t *testing.T) {
	base := mustBase(t)
	pipe := transport.NewPacketPipe()
	destDir := t.TempDir()

	recv := session.NewReceiver(pipe.ReceiverSide(), base, destDir, nil, 2*time.Second)
	stop := runReceiver(t, recv)
	defer stop()

	send := session.NewSender(pipe.SenderSide(), base, nil, time.Second, 3)
	content := strings.Repeat("the quick brown fox jumps over the lazy dog. ", 100)
	require.NoError(t, send.Send("fox.txt", strings.NewReader(content)))

	got, err := os.ReadFile(filepath.Join(destDir, "fox.txt"))
	require.NoError(t, err)
	assert.Equal(t, content, string(got))
}

func TestSenderRetriesOnDroppedAck(t *testing.T) {
	base := mustBase(t)
	pipe := transport.NewPacketPipe()
	destDir := t.TempDir()

	dropped := false
	pipe.DropAck = func(index int) bool {
		if index == 0 {
			dropped = true
			return true
		}
		return false
	}

	recv := session.NewReceiver(pipe.ReceiverSide(), base, destDir, nil, 2*time.Second)
	stop := runReceiver(t, recv)
	defer stop()

	send := session.NewSender(pipe.SenderSide(), base, nil, 200*time.Millisecond, 3)
	require.NoError(t, send.Send("small.txt", strings.NewReader("hi")))
	assert.True(t, dropped, "the harness should have dropped the first ack")

	got, err := os.ReadFile(filepath.Join(destDir, "small.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hi", string(got))
}

func TestSenderExhaustsRetries(t *testing.T) {
	base := mustBase(t)
	pipe := transport.NewPacketPipe()
	pipe.DropAck = func(int) bool { return true }

	destDir := t.TempDir()
	recv := session.NewReceiver(pipe.ReceiverSide(), base, destDir, nil, time.Second)
	stop := runReceiver(t, recv)
	defer stop()

	send := session.NewSender(pipe.SenderSide(), base, nil, 50*time.Millisecond, 3)
	err := send.Send("never.txt", strings.NewReader("x"))
	require.ErrorIs(t, err, session.ErrRetriesExhausted)
}

func TestReceiverSuppressesDuplicateChunks(t *testing.T) {
	base := mustBase(t)
	pipe := transport.NewPacketPipe()
	destDir := t.TempDir()

	// Drop the ack for the first data chunk (index 1: header=0, data=1)
	// so the sender retransmits it; the receiver must not double-write.
	pipe.DropAck = func(index int) bool { return index == 1 }

	recv := session.NewReceiver(pipe.ReceiverSide(), base, destDir, nil, 2*time.Second)
	stop := runReceiver(t, recv)
	defer stop()

	send := session.NewSender(pipe.SenderSide(), base, nil, 200*time.Millisecond, 3)
	require.NoError(t, send.Send("dup.txt", strings.NewReader("ab")))

	got, err := os.ReadFile(filepath.Join(destDir, "dup.txt"))
	require.NoError(t, err)
	assert.Equal(t, "ab", string(got), "retransmitted chunk must not be appended twice")
}
