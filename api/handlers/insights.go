package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/student-insights/internal/insights"
	"github.com/OldStager01/student-insights/pkg/validation"
)

type InsightsHandler struct {
	svc *insights.Service
}

func NewInsightsHandler(svc *insights.Service) *InsightsHandler {
	return &InsightsHandler{svc: svc}
}

// Filters godoc
// @Summary Filter options
// @Description Selectable grade, topic and class values, each prefixed with "All"
// @Tags Insights
// @Produce json
// @Success 200 {object} models.FilterOptions
// @Router /api/v1/filters [get]
func (h *InsightsHandler) Filters(c *gin.Context) {
	c.JSON(http.StatusOK, h.svc.Filters())
}

// Overview godoc
// @Summary Overview metrics
// @Description Student count, engagement and absence averages and distinct grade, topic and class counts of the filtered view
// @Tags Insights
// @Produce json
// @Param grade query string false "grade id, empty or All for every grade"
// @Param topic query string false "topic, empty or All for every topic"
// @Param class query string false "performance class H, M or L"
// @Success 200 {object} insights.OverviewResult
// @Failure 400 {object} map[string]string
// @Router /api/v1/overview [get]
func (h *InsightsHandler) Overview(c *gin.Context) {
	res, err := h.svc.Overview(criteriaFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Distribution godoc
// @Summary Class distribution
// @Description Record count per performance class for the filtered view, or the whole dataset with scope=all
// @Tags Insights
// @Produce json
// @Param scope query string false "filtered or all"
// @Success 200 {object} insights.DistributionResult
// @Failure 400 {object} map[string]string
// @Router /api/v1/distribution [get]
func (h *InsightsHandler) Distribution(c *gin.Context) {
	scope := insights.Scope(c.DefaultQuery("scope", string(insights.ScopeFiltered)))
	res, err := h.svc.Distribution(criteriaFromQuery(c), scope)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Groups godoc
// @Summary Group percentages
// @Description Per group counts and shares of each category of class_field, with an optional trend of one category
// @Tags Insights
// @Produce json
// @Param by query string false "comma separated grouping columns" default(GradeID)
// @Param class_field query string false "categorical column whose shares are reported" default(Class)
// @Param trend query string false "category whose share is extracted per group"
// @Param include_empty query bool false "report groups with no matching students"
// @Success 200 {object} insights.GroupsResult
// @Failure 400 {object} map[string]string
// @Router /api/v1/groups [get]
func (h *InsightsHandler) Groups(c *gin.Context) {
	by, err := validation.ParseColumns(c.Query("by"))
	if err != nil {
		respondError(c, err)
		return
	}

	classField := validation.SanitizeString(c.Query("class_field"))
	if classField != "" {
		if cols, err := validation.ParseColumns(classField); err != nil || len(cols) != 1 {
			respondError(c, validation.ErrInvalidInput)
			return
		}
	}

	res, err := h.svc.Groups(insights.GroupQuery{
		Criteria:     criteriaFromQuery(c),
		By:           by,
		ClassField:   classField,
		Trend:        validation.SanitizeString(c.Query("trend")),
		IncludeEmpty: parseBool(c.Query("include_empty"), false),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Summary godoc
// @Summary Summary statistics
// @Description Count, mean, std, min, quartiles and max per numeric column; undefined values are null
// @Tags Insights
// @Produce json
// @Param columns query string false "comma separated numeric columns"
// @Success 200 {object} insights.SummaryResult
// @Failure 400 {object} map[string]string
// @Router /api/v1/summary [get]
func (h *InsightsHandler) Summary(c *gin.Context) {
	columns, err := validation.ParseColumns(c.Query("columns"))
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.Summary(criteriaFromQuery(c), columns)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Correlation godoc
// @Summary Correlation matrix
// @Description Pearson correlation of numeric columns; undefined coefficients are null
// @Tags Insights
// @Produce json
// @Param columns query string false "comma separated numeric columns"
// @Success 200 {object} insights.CorrelationResult
// @Failure 400 {object} map[string]string
// @Router /api/v1/correlation [get]
func (h *InsightsHandler) Correlation(c *gin.Context) {
	columns, err := validation.ParseColumns(c.Query("columns"))
	if err != nil {
		respondError(c, err)
		return
	}
	res, err := h.svc.Correlation(criteriaFromQuery(c), columns)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Absence godoc
// @Summary Absence by class
// @Description Absence day statistics for each performance class of the filtered view
// @Tags Insights
// @Produce json
// @Success 200 {object} insights.AbsenceResult
// @Failure 400 {object} map[string]string
// @Router /api/v1/absence [get]
func (h *InsightsHandler) Absence(c *gin.Context) {
	res, err := h.svc.Absence(criteriaFromQuery(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// AtRisk godoc
// @Summary At-risk students
// @Description Flags students below the view's mean raised hands and visited resources with above mean absence
// @Tags Insights
// @Produce json
// @Param only_flagged query bool false "list only flagged students"
// @Success 200 {object} insights.RiskResult
// @Failure 400 {object} map[string]string
// @Router /api/v1/at-risk [get]
func (h *InsightsHandler) AtRisk(c *gin.Context) {
	res, err := h.svc.AtRisk(criteriaFromQuery(c), parseBool(c.Query("only_flagged"), false))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

type PredictRequest struct {
	RaisedHands      *float64 `json:"raised_hands" binding:"required" example:"45"`
	VisitedResources *float64 `json:"visited_resources" binding:"required" example:"60"`
	Discussion       *float64 `json:"discussion" binding:"required" example:"30"`
}

// Predict godoc
// @Summary Predict performance class
// @Description Predicts H, M or L from raised hands, visited resources and discussion counts; inputs outside the training range are accepted and flagged as extrapolated
// @Tags Model
// @Accept json
// @Produce json
// @Param request body PredictRequest true "Engagement values"
// @Success 200 {object} insights.PredictResult
// @Failure 400 {object} map[string]string
// @Failure 503 {object} map[string]string "Model not fitted"
// @Router /api/v1/predict [post]
func (h *InsightsHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}

	res, err := h.svc.Predict(insights.PredictInput{
		RaisedHands:      *req.RaisedHands,
		VisitedResources: *req.VisitedResources,
		Discussion:       *req.Discussion,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Model godoc
// @Summary Model info
// @Description Features, class encoding, split sizes, feature ranges and holdout accuracy of the fitted model
// @Tags Model
// @Produce json
// @Success 200 {object} models.ModelInfo
// @Failure 503 {object} map[string]string "Model not fitted"
// @Router /api/v1/model [get]
func (h *InsightsHandler) Model(c *gin.Context) {
	info, err := h.svc.ModelInfo()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, info)
}
