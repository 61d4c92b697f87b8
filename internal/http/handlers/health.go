package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/http/response"
)

type graphCounter interface {
	Counts(ctx context.Context) (domain.GraphCounts, error)
}

type HealthHandler struct {
	graph graphCounter
}

// NewHealthHandler builds the liveness and readiness probes. Readiness asks graph
// for its counts; a nil graph is always ready.
func NewHealthHandler(graph graphCounter) *HealthHandler { return &HealthHandler{graph: graph} }

// GET /healthcheck
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// GET /readyz
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.graph == nil {
		response.RespondOK(c, gin.H{"status": "ready"})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	counts, err := h.graph.Counts(ctx)
	if err != nil {
		response.RespondError(c, http.StatusServiceUnavailable, "graph_unavailable", err)
		return
	}
	response.RespondOK(c, gin.H{"status": "ready", "counts": counts})
}
