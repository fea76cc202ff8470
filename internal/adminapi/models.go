package adminapi

import "time"

// StatusResponse is a simple status payload, mirroring the shape of the
// original admin surface's /health response.
type StatusResponse struct {
	Status string `json:"status"`
	RunID  string `json:"run_id"`
}

// CPUStats contains system CPU statistics.
type CPUStats struct {
	NumCPU      int     `json:"num_cpu"`
	UsedPercent float64 `json:"used_percent"`
	IdlePercent float64 `json:"idle_percent"`
}

// MemoryStats contains system memory statistics.
type MemoryStats struct {
	TotalMB     float64 `json:"total_mb"`
	FreeMB      float64 `json:"free_mb"`
	UsedMB      float64 `json:"used_mb"`
	UsedPercent float64 `json:"used_percent"`
}

// TransferCounts breaks down logged transfers by lifecycle status.
type TransferCounts struct {
	InProgress int64 `json:"in_progress"`
	Completed  int64 `json:"completed"`
	Failed     int64 `json:"failed"`
}

// StatsResponse is the payload for GET /api/v1/stats.
type StatsResponse struct {
	UptimeSeconds int64          `json:"uptime_seconds"`
	StartTime     time.Time      `json:"start_time"`
	CPU           CPUStats       `json:"cpu"`
	Memory        MemoryStats    `json:"memory"`
	Transfers     TransferCounts `json:"transfers"`
}

// TransferResponse is one row of the GET /api/v1/transfers payload.
type TransferResponse struct {
	ID          int64      `json:"id"`
	Filename    string     `json:"filename"`
	Peer        string     `json:"peer"`
	Direction   string     `json:"direction"`
	Bytes       int64      `json:"bytes"`
	ChunkCount  int        `json:"chunk_count"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
}

// TransfersListResponse is the full payload for GET /api/v1/transfers.
type TransfersListResponse struct {
	Transfers []TransferResponse `json:"transfers"`
}

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error string `json:"error"`
	RunID string `json:"run_id,omitempty"`
}
