package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/insights"
	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/pkg/models"
	"github.com/OldStager01/student-insights/pkg/validation"
)

// criteriaFromQuery reads the grade, topic and class filter parameters.
func criteriaFromQuery(c *gin.Context) models.FilterCriteria {
	return models.FilterCriteria{
		GradeID: c.Query("grade"),
		Topic:   c.Query("topic"),
		Class:   c.Query("class"),
	}
}

func parseBool(raw string, fallback bool) bool {
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

// respondError maps domain errors to status codes. Internal errors are logged and
// reported without detail.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, validation.ErrInvalidInput), errors.Is(err, dataset.ErrUnknownColumn):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, insights.ErrModelUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		logger.WithContext(c.Request.Context()).WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
