package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a dependency is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler handles liveness and readiness probes
type HealthHandler struct {
	deps map[string]Pinger
}

// NewHealthHandler creates a new HealthHandler. Nil pingers are skipped
// so optional dependencies can be left out.
func NewHealthHandler(deps map[string]Pinger) *HealthHandler {
	filtered := make(map[string]Pinger, len(deps))
	for name, p := range deps {
		if p != nil {
			filtered[name] = p
		}
	}
	return &HealthHandler{deps: filtered}
}

// Health handles liveness checks
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles readiness checks by pinging each dependency
// GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx := c.Request.Context()

	checks := make(map[string]string, len(h.deps))
	healthy := true
	for name, p := range h.deps {
		if err := p.Ping(ctx); err != nil {
			checks[name] = err.Error()
			healthy = false
		} else {
			checks[name] = "ok"
		}
	}

	status := http.StatusOK
	overall := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "not ready"
	}

	c.JSON(status, gin.H{"status": overall, "checks": checks})
}
