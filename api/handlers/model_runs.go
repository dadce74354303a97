package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/student-insights/pkg/database/queries"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 200
)

// RunLister is satisfied by *queries.ModelRunRepository.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]queries.ModelRun, error)
}

// ModelRunsHandler serves the history of recorded fits when a database is configured.
type ModelRunsHandler struct {
	runs RunLister
}

func NewModelRunsHandler(runs RunLister) *ModelRunsHandler {
	return &ModelRunsHandler{runs: runs}
}

// Recent godoc
// @Summary Recorded model fits
// @Description Most recent predictor fits stored in the database, newest first
// @Tags Model
// @Produce json
// @Param limit query int false "number of runs" default(10)
// @Success 200 {object} map[string]interface{}
// @Router /api/v1/model/runs [get]
func (h *ModelRunsHandler) Recent(c *gin.Context) {
	limit := parseLimit(c.Query("limit"), defaultRunsLimit, maxRunsLimit)

	runs, err := h.runs.Recent(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  runs,
		"count": len(runs),
	})
}

func parseLimit(raw string, defaultLimit, maxLimit int) int {
	limit := defaultLimit
	if raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
			if limit > maxLimit {
				limit = maxLimit
			}
		}
	}
	return limit
}
