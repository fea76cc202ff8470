// Package adminapi provides an optional REST surface over the receiver's
// transfer log: health, runtime stats, and recent transfers. It is wired
// in only when the operator enables config.APIConfig.Enabled.
package adminapi

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/dnscovert/dnstun/internal/adminapi/middleware"
	"github.com/dnscovert/dnstun/internal/store"
)

// Server is the admin REST API server.
type Server struct {
	logger     *slog.Logger
	engine     *gin.Engine
	httpServer *http.Server
	startTime  time.Time
	runID      string
}

// New builds a Server listening on addr, backed by s for its data and
// logging every request through logger. Each server instance gets a
// fresh run ID (surfaced at /health) so an operator restarting
// dnstun-recv can tell, from the API alone, that they're talking to a
// new process rather than a stale one behind a reused address.
func New(addr string, s *store.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	runID := uuid.New().String()

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.SlogRequestLogger(logger))

	h := &handler{store: s, startTime: time.Now(), runID: runID}
	group := engine.Group("/api/v1")
	group.GET("/health", h.health)
	group.GET("/stats", h.stats)
	group.GET("/transfers", h.transfers)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return &Server{logger: logger, engine: engine, httpServer: httpServer, startTime: h.startTime, runID: runID}
}

// RunID returns this server instance's generated run identifier.
func (s *Server) RunID() string {
	return s.runID
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	if s.httpServer == nil {
		return ""
	}
	return s.httpServer.Addr
}

// Engine exposes the underlying gin engine, mainly for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// ListenAndServe blocks serving HTTP until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, honoring ctx's deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
