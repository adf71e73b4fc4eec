package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/corebank/backend/internal/interfaces/http/dto"
	"github.com/corebank/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store answers
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves liveness, readiness and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	db        Pinger
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. db may be nil, in which
// case readiness only reports the process as up.
func NewSystemHandler(name, version string, db Pinger) *SystemHandler {
	return &SystemHandler{
		name:      name,
		version:   version,
		db:        db,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// HealthResponse is the liveness and readiness body
type HealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database,omitempty"`
	Time     string `json:"time"`
}

// GetSystemInfo returns version and uptime
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// Health answers as long as the process serves requests
func (h *SystemHandler) Health(c *gin.Context) {
	h.Success(c, HealthResponse{Status: "ok", Time: time.Now().UTC().Format(time.RFC3339)})
}

// Ready checks the database within a short deadline
func (h *SystemHandler) Ready(c *gin.Context) {
	resp := HealthResponse{Status: "ok", Time: time.Now().UTC().Format(time.RFC3339)}
	if h.db == nil {
		h.Success(c, resp)
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Database = err.Error()
		c.JSON(http.StatusServiceUnavailable, dto.Response{
			Success:   false,
			Data:      resp,
			Error:     &dto.ErrorInfo{Code: "ERR_UNAVAILABLE", Message: "Database is not reachable"},
			RequestID: middleware.GetRequestID(c),
		})
		return
	}
	resp.Database = "ok"
	h.Success(c, resp)
}
