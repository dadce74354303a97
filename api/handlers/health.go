package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/student-insights/internal/insights"
)

// HealthChecker is satisfied by *database.DB.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
	ServerVersion(ctx context.Context) (string, error)
}

type HealthHandler struct {
	db  HealthChecker
	svc *insights.Service
}

// NewHealthHandler accepts a nil db when the dataset was loaded from a file.
func NewHealthHandler(db HealthChecker, svc *insights.Service) *HealthHandler {
	return &HealthHandler{db: db, svc: svc}
}

type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func (h *HealthHandler) checks(ctx context.Context) (map[string]string, bool) {
	checks := make(map[string]string)
	healthy := true

	if h.svc == nil || h.svc.Dataset() == nil || h.svc.Dataset().Len() == 0 {
		checks["dataset"] = "unhealthy: no records loaded"
		healthy = false
	} else {
		checks["dataset"] = "healthy"
	}

	if h.svc != nil && h.svc.Model() != nil {
		checks["model"] = "healthy"
	} else {
		checks["model"] = "unavailable"
	}

	if h.db != nil {
		if err := h.db.HealthCheck(ctx); err != nil {
			checks["database"] = "unhealthy: " + err.Error()
			healthy = false
		} else if version, err := h.db.ServerVersion(ctx); err == nil {
			checks["database"] = "healthy (postgres " + version + ")"
		} else {
			checks["database"] = "healthy"
		}
	}

	return checks, healthy
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks, healthy := h.checks(ctx)

	status, statusCode := "healthy", http.StatusOK
	if !healthy {
		status, statusCode = "unhealthy", http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if _, healthy := h.checks(ctx); !healthy {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "not ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
