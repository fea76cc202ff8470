package adminapi

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/dnscovert/dnstun/internal/store"
)

type handler struct {
	store     *store.Store
	startTime time.Time
	runID     string
}

func (h *handler) health(c *gin.Context) {
	if h.store != nil {
		if err := h.store.Health(); err != nil {
			c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error(), RunID: h.runID})
			return
		}
	}
	c.JSON(http.StatusOK, StatusResponse{Status: "ok", RunID: h.runID})
}

func (h *handler) stats(c *gin.Context) {
	uptime := time.Since(h.startTime)

	memStats := MemoryStats{}
	if vmStat, err := mem.VirtualMemory(); err == nil {
		memStats.TotalMB = float64(vmStat.Total) / 1024 / 1024
		memStats.FreeMB = float64(vmStat.Available) / 1024 / 1024
		memStats.UsedMB = float64(vmStat.Used) / 1024 / 1024
		memStats.UsedPercent = vmStat.UsedPercent
	}

	cpuStats := CPUStats{NumCPU: runtime.NumCPU()}
	if cpuPercent, err := cpu.Percent(200*time.Millisecond, false); err == nil && len(cpuPercent) > 0 {
		cpuStats.UsedPercent = cpuPercent[0]
		cpuStats.IdlePercent = 100.0 - cpuPercent[0]
	}

	resp := StatsResponse{
		UptimeSeconds: int64(uptime.Seconds()),
		StartTime:     h.startTime,
		CPU:           cpuStats,
		Memory:        memStats,
	}

	if h.store != nil {
		if counts, err := h.store.CountByStatus(c.Request.Context()); err == nil {
			resp.Transfers = TransferCounts{
				InProgress: counts[store.StatusInProgress],
				Completed:  counts[store.StatusCompleted],
				Failed:     counts[store.StatusFailed],
			}
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h *handler) transfers(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusOK, TransfersListResponse{})
		return
	}

	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	records, err := h.store.RecentTransfers(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	out := make([]TransferResponse, 0, len(records))
	for _, r := range records {
		out = append(out, TransferResponse{
			ID:          r.ID,
			Filename:    r.Filename,
			Peer:        r.Peer,
			Direction:   string(r.Direction),
			Bytes:       r.Bytes,
			ChunkCount:  r.ChunkCount,
			StartedAt:   r.StartedAt,
			CompletedAt: r.CompletedAt,
			Status:      string(r.Status),
			Error:       r.Error,
		})
	}
	c.JSON(http.StatusOK, TransfersListResponse{Transfers: out})
}
