package adminapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dnscovert/dnstun/internal/adminapi"
	"github.com/dnscovert/dnstun/internal/store"
)

func openTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "dnstun.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestHealthEndpoint(t *testing.T) {
	s := openTestStore(t)
	srv := adminapi.New("127.0.0.1:0", s, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp adminapi.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.RunID)
}

func TestStatsEndpointReflectsTransferCounts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id, err := s.BeginTransfer(ctx, "a.txt", "peer", store.DirectionSend, time.Now().UTC())
	require.NoError(t, err)
	require.NoError(t, s.CompleteTransfer(ctx, id, 10, 1, time.Now().UTC()))

	srv := adminapi.New("127.0.0.1:0", s, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp adminapi.StatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(1), resp.Transfers.Completed)
}

func TestTransfersEndpointListsRecords(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	_, err := s.BeginTransfer(ctx, "payload.bin", "10.0.0.9:53", store.DirectionReceive, time.Now().UTC())
	require.NoError(t, err)

	srv := adminapi.New("127.0.0.1:0", s, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transfers", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp adminapi.TransfersListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Transfers, 1)
	assert.Equal(t, "payload.bin", resp.Transfers[0].Filename)
	assert.Equal(t, "receive", resp.Transfers[0].Direction)
}

func TestTransfersEndpointRespectsLimit(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := s.BeginTransfer(ctx, "f", "peer", store.DirectionSend, time.Now().UTC())
		require.NoError(t, err)
	}

	srv := adminapi.New("127.0.0.1:0", s, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transfers?limit=2", nil)
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)

	var resp adminapi.TransfersListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Transfers, 2)
}
