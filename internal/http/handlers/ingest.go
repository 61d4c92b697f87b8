package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/moviegraph/internal/catalog"
	types "github.com/yungbote/moviegraph/internal/domain"
	"github.com/yungbote/moviegraph/internal/http/response"
)

type runLister interface {
	ListRuns(ctx context.Context, dataset string, limit int) ([]*types.IngestRun, error)
}

type IngestHandler struct {
	runs runLister
}

func NewIngestHandler(runs runLister) *IngestHandler {
	return &IngestHandler{runs: runs}
}

// GET /api/ingest/runs?dataset=&limit=
func (h *IngestHandler) ListRuns(c *gin.Context) {
	dataset := c.Query("dataset")
	if dataset != "" && !catalog.Dataset(dataset).Valid() {
		response.RespondError(c, http.StatusBadRequest, "invalid_dataset", fmt.Errorf("unknown dataset %q", dataset))
		return
	}
	limit, err := int64Query(c, "limit", 20)
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_limit", err)
		return
	}
	runs, err := h.runs.ListRuns(c.Request.Context(), dataset, int(limit))
	if err != nil {
		response.RespondServiceError(c, "list_runs_failed", err)
		return
	}
	if runs == nil {
		runs = []*types.IngestRun{}
	}
	response.RespondOK(c, gin.H{"runs": runs})
}
