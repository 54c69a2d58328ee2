// Health HTTP handler.
//
// GET /health probes every dependency the service relies on: the database,
// the language engine, and the two speech engines. The database is the only
// hard dependency; engine failures degrade the service but keep it alive.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Overall health statuses.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// healthProbeTimeout bounds each individual dependency check.
const healthProbeTimeout = 5 * time.Second

// HealthResponse reports the overall service status plus one entry per
// dependency. Component values are "ok" or "error: <reason>".
type HealthResponse struct {
	Status     string            `json:"status" example:"healthy"`
	Components map[string]string `json:"components"`
}

// Health godoc
// @ID          health
// @Summary     Service health
// @Description Probes the database and AI engines. Returns 200 when healthy or degraded, 503 when the database is unreachable.
// @Tags        Health
// @Produce     json
//
// @Success     200  {object}  handlers.HealthResponse
// @Failure     503  {object}  handlers.HealthResponse
// @Router      /health [get]
func (h *Handlers) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthProbeTimeout)
	defer cancel()

	components := map[string]string{
		"db":  h.probeDB(ctx),
		"llm": probeEngine(ctx, h.deps.Generator),
		"stt": probeEngine(ctx, h.deps.Transcriber),
		"tts": probeEngine(ctx, h.deps.Synthesizer),
	}

	status := StatusHealthy
	code := http.StatusOK
	switch {
	case components["db"] != "ok":
		status = StatusUnhealthy
		code = http.StatusServiceUnavailable
	case components["llm"] != "ok" || components["stt"] != "ok" || components["tts"] != "ok":
		status = StatusDegraded
	}

	c.JSON(code, HealthResponse{Status: status, Components: components})
}

func (h *Handlers) probeDB(ctx context.Context) string {
	if h.deps.DB == nil {
		return "error: not configured"
	}
	if err := h.deps.DB.WithContext(ctx).Exec("SELECT 1").Error; err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}

// pinger is the health surface every engine client exposes.
type pinger interface {
	Ping(ctx context.Context) error
}

func probeEngine(ctx context.Context, p pinger) string {
	if p == nil {
		return "error: not configured"
	}
	if err := p.Ping(ctx); err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return "ok"
}
