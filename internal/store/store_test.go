package store_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/dnscovert/dnstun/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dnstun.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestBeginCompleteTransfer(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	start := time.Now().UTC().Truncate(time.Second)
	id, err := s.BeginTransfer(ctx, "fox.txt", "10.0.0.5:53", store.DirectionReceive, start)
	require.NoError(t, err)
	require.NotZero(t, id)

	require.NoError(t, s.CompleteTransfer(ctx, id, 4096, 32, start.Add(2*time.Second)))

	records, err := s.RecentTransfers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "fox.txt", records[0].Filename)
	assert.Equal(t, store.StatusCompleted, records[0].Status)
	assert.Equal(t, int64(4096), records[0].Bytes)
	require.NotNil(t, records[0].CompletedAt)
}

func TestFailTransferRecordsError(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	start := time.Now().UTC()
	id, err := s.BeginTransfer(ctx, "broken.bin", "peer", store.DirectionSend, start)
	require.NoError(t, err)

	require.NoError(t, s.FailTransfer(ctx, id, errors.New("session timeout"), start.Add(time.Second)))

	records, err := s.RecentTransfers(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, store.StatusFailed, records[0].Status)
	assert.Equal(t, "session timeout", records[0].Error)
}

func TestRecentTransfersOrderedAndLimited(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		_, err := s.BeginTransfer(ctx, "f", "peer", store.DirectionSend, base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
	}

	records, err := s.RecentTransfers(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.True(t, records[0].StartedAt.After(records[1].StartedAt) || records[0].StartedAt.Equal(records[1].StartedAt))
}

func TestCountByStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()
	id1, err := s.BeginTransfer(ctx, "a", "peer", store.DirectionSend, now)
	require.NoError(t, err)
	require.NoError(t, s.CompleteTransfer(ctx, id1, 10, 1, now))

	_, err = s.BeginTransfer(ctx, "b", "peer", store.DirectionReceive, now)
	require.NoError(t, err)

	counts, err := s.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[store.StatusCompleted])
	assert.Equal(t, int64(1), counts[store.StatusInProgress])
}

func TestHealth(t *testing.T) {
	s := openTestStore(t)
	assert.NoError(t, s.Health())
}
