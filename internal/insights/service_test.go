package insights_test

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/insights"
	"github.com/OldStager01/student-insights/internal/metrics"
	"github.com/OldStager01/student-insights/internal/predictor"
	"github.com/OldStager01/student-insights/pkg/models"
	"github.com/OldStager01/student-insights/pkg/validation"
)

func fixture(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords("fixture", []models.StudentRecord{
		{ID: "1", GradeID: "G-02", Topic: "IT", RaisedHands: 10, VisitedResources: 20, Discussion: 5, AbsenceDays: 8, Class: models.ClassLow},
		{ID: "2", GradeID: "G-02", Topic: "IT", RaisedHands: 80, VisitedResources: 90, Discussion: 60, AbsenceDays: 1, Class: models.ClassHigh},
		{ID: "3", GradeID: "G-04", Topic: "Math", RaisedHands: 50, VisitedResources: 40, Discussion: 30, AbsenceDays: 3, Class: models.ClassMedium},
		{ID: "4", GradeID: "G-04", Topic: "Math", RaisedHands: 70, VisitedResources: 75, Discussion: 40, AbsenceDays: 2, Class: models.ClassHigh},
		{ID: "5", GradeID: "G-07", Topic: "IT", RaisedHands: 5, VisitedResources: 10, Discussion: 2, AbsenceDays: 10, Class: models.ClassLow},
	})
	require.NoError(t, err)
	return ds
}

func TestService_View_RejectsInvalidCriteria(t *testing.T) {
	svc := insights.New(fixture(t), nil, nil)

	_, err := svc.View(models.FilterCriteria{Class: "Z"})
	assert.ErrorIs(t, err, validation.ErrInvalidInput)

	_, err = svc.View(models.FilterCriteria{Topic: "'; DROP TABLE"})
	assert.ErrorIs(t, err, validation.ErrInvalidInput)

	view, err := svc.View(models.FilterCriteria{Class: "h"})
	require.NoError(t, err)
	assert.Equal(t, 2, view.Len())
}

func TestService_View_ReportsFirstInvalidField(t *testing.T) {
	svc := insights.New(fixture(t), nil, nil)
	criteria := models.FilterCriteria{GradeID: "$grade", Topic: "$topic", Class: "$class"}

	for i := 0; i < 20; i++ {
		_, err := svc.View(criteria)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "grade")
		assert.NotContains(t, err.Error(), "topic")
	}
}

func TestService_Overview(t *testing.T) {
	svc := insights.New(fixture(t), nil, nil)

	res, err := svc.Overview(models.FilterCriteria{Topic: "IT"})
	require.NoError(t, err)
	assert.False(t, res.Empty)
	assert.Equal(t, 3, res.Overview.Students)
	assert.InDelta(t, 95.0/3, res.Overview.AvgRaisedHands, 1e-9)

	res, err = svc.Overview(models.FilterCriteria{Topic: "Biology"})
	require.NoError(t, err)
	assert.True(t, res.Empty)
	assert.True(t, math.IsNaN(res.Overview.AvgAbsenceDays))
}

func TestService_Distribution(t *testing.T) {
	svc := insights.New(fixture(t), nil, nil)
	criteria := models.FilterCriteria{GradeID: "G-04"}

	filtered, err := svc.Distribution(criteria, insights.ScopeFiltered)
	require.NoError(t, err)
	assert.Equal(t, 2, filtered.Total)

	all, err := svc.Distribution(criteria, insights.ScopeAll)
	require.NoError(t, err)
	assert.Equal(t, 5, all.Total)
	assert.True(t, all.Criteria.IsEmpty())
	assert.Equal(t, []models.ClassCount{
		{Class: models.ClassHigh, Count: 2},
		{Class: models.ClassLow, Count: 2},
		{Class: models.ClassMedium, Count: 1},
	}, all.Counts)

	_, err = svc.Distribution(criteria, "everything")
	assert.ErrorIs(t, err, validation.ErrInvalidInput)
}

func TestService_Groups_IncludeEmpty(t *testing.T) {
	svc := insights.New(fixture(t), nil, nil)

	res, err := svc.Groups(insights.GroupQuery{
		Criteria:     models.FilterCriteria{Topic: "Math"},
		By:           []string{"gradeid"},
		Trend:        "H",
		IncludeEmpty: true,
	})
	require.NoError(t, err)

	require.Len(t, res.Result.Groups, 3)
	assert.Equal(t, []string{"G-02"}, res.Result.Groups[0].Key)
	assert.Equal(t, 0, res.Result.Groups[0].Total)
	for _, share := range res.Result.Groups[0].Shares {
		assert.Equal(t, 0.0, share.Percentage)
	}

	require.Len(t, res.Trend, 3)
	assert.Equal(t, "G-04", res.Trend[1].Key)
	assert.InDelta(t, 50.0, res.Trend[1].Percentage, 1e-9)
}

func TestService_Groups_UnknownColumn(t *testing.T) {
	svc := insights.New(fixture(t), nil, nil)

	_, err := svc.Groups(insights.GroupQuery{By: []string{"Nope"}})
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestService_Summary_KeepsRequestedOrder(t *testing.T) {
	svc := insights.New(fixture(t), nil, nil)

	res, err := svc.Summary(models.FilterCriteria{}, []string{"Discussion", "raisedhands"})
	require.NoError(t, err)
	require.Len(t, res.Columns, 2)
	assert.Equal(t, models.ColumnDiscussion, res.Columns[0].Column)
	assert.Equal(t, models.ColumnRaisedHands, res.Columns[1].Column)

	_, err = svc.Summary(models.FilterCriteria{}, []string{"Topic"})
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestService_Correlation(t *testing.T) {
	svc := insights.New(fixture(t), nil, nil)

	res, err := svc.Correlation(models.FilterCriteria{}, nil)
	require.NoError(t, err)
	assert.Len(t, res.Matrix.Columns, 4)
	for i := range res.Matrix.Columns {
		assert.Equal(t, 1.0, res.Matrix.Values[i][i])
	}
}

func TestService_Absence(t *testing.T) {
	svc := insights.New(fixture(t), nil, nil)

	res, err := svc.Absence(models.FilterCriteria{})
	require.NoError(t, err)
	assert.Equal(t, models.CanonicalClasses, res.Classes)
	require.Len(t, res.ByClass, 3)
	assert.InDelta(t, 1.5, res.ByClass[0].Mean, 1e-9)
	assert.InDelta(t, 9.0, res.ByClass[2].Mean, 1e-9)
}

func TestService_AtRisk(t *testing.T) {
	svc := insights.New(fixture(t), nil, nil)

	all, err := svc.AtRisk(models.FilterCriteria{}, false)
	require.NoError(t, err)
	assert.Len(t, all.Report.Assessments, 5)
	assert.Equal(t, 2, all.Report.FlaggedCount)

	flagged, err := svc.AtRisk(models.FilterCriteria{}, true)
	require.NoError(t, err)
	require.Len(t, flagged.Report.Assessments, 2)
	assert.Equal(t, "1", flagged.Report.Assessments[0].Record.ID)
	assert.Equal(t, "5", flagged.Report.Assessments[1].Record.ID)
}

func TestService_Predict_Errors(t *testing.T) {
	m := metrics.New()
	svc := insights.New(fixture(t), nil, m)

	_, err := svc.Predict(insights.PredictInput{RaisedHands: 10, VisitedResources: 10, Discussion: 10})
	assert.True(t, errors.Is(err, insights.ErrModelUnavailable))

	_, err = svc.Predict(insights.PredictInput{RaisedHands: math.NaN()})
	assert.ErrorIs(t, err, validation.ErrInvalidInput)

	_, err = svc.ModelInfo()
	assert.ErrorIs(t, err, insights.ErrModelUnavailable)
}

func TestService_Predict_AcceptsOutOfRange(t *testing.T) {
	ds := fixture(t)
	model, err := predictor.Fit(ds, predictor.Config{MinRows: 2, TestRatio: 0.2})
	require.NoError(t, err)
	svc := insights.New(ds, model, metrics.New())

	res, err := svc.Predict(insights.PredictInput{RaisedHands: 5000, VisitedResources: 5000, Discussion: 5000})
	require.NoError(t, err)
	assert.True(t, res.Prediction.Extrapolated)
	assert.NotEmpty(t, res.Prediction.Class)
	assert.InDelta(t, res.Prediction.Probabilities[res.Prediction.Class], res.Confidence, 1e-12)
}
