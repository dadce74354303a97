package aggregation_test

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/student-insights/internal/aggregation"
	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/filter"
	"github.com/OldStager01/student-insights/pkg/models"
)

func newTestDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.FromRecords("test", []models.StudentRecord{
		{ID: "1", GradeID: "G-02", Topic: "IT", RaisedHands: 10, VisitedResources: 12, Discussion: 5, AbsenceDays: 8, Class: models.ClassLow, Attributes: map[string]string{"gender": "M", "AnnouncementsView": "3"}},
		{ID: "2", GradeID: "G-02", Topic: "IT", RaisedHands: 50, VisitedResources: 60, Discussion: 30, AbsenceDays: 2, Class: models.ClassMedium, Attributes: map[string]string{"gender": "F", "AnnouncementsView": "20"}},
		{ID: "3", GradeID: "G-02", Topic: "Math", RaisedHands: 80, VisitedResources: 85, Discussion: 70, AbsenceDays: 1, Class: models.ClassHigh, Attributes: map[string]string{"gender": "F", "AnnouncementsView": "40"}},
		{ID: "4", GradeID: "G-04", Topic: "Math", RaisedHands: 75, VisitedResources: 90, Discussion: 60, AbsenceDays: 0, Class: models.ClassHigh, Attributes: map[string]string{"gender": "M", "AnnouncementsView": "35"}},
		{ID: "5", GradeID: "G-04", Topic: "IT", RaisedHands: 45, VisitedResources: 40, Discussion: 25, AbsenceDays: 3, Class: models.ClassMedium, Attributes: map[string]string{"gender": "M", "AnnouncementsView": "15"}},
		{ID: "6", GradeID: "G-04", Topic: "IT", RaisedHands: 5, VisitedResources: 8, Discussion: 10, AbsenceDays: 9, Class: models.ClassLow, Attributes: map[string]string{"gender": "F", "AnnouncementsView": "1"}},
		{ID: "7", GradeID: "G-07", Topic: "Math", RaisedHands: 90, VisitedResources: 95, Discussion: 80, AbsenceDays: 1, Class: models.ClassHigh, Attributes: map[string]string{"gender": "F", "AnnouncementsView": "50"}},
	})
	require.NoError(t, err)
	return ds
}

func TestDistributionByClass(t *testing.T) {
	ds := newTestDataset(t)

	dist := aggregation.DistributionByClass(ds.All())

	assert.Equal(t, []models.ClassCount{
		{Class: models.ClassHigh, Count: 3},
		{Class: models.ClassMedium, Count: 2},
		{Class: models.ClassLow, Count: 2},
	}, dist)
}

func TestDistributionByClass_SumEqualsViewSize(t *testing.T) {
	ds := newTestDataset(t)

	criteria := []models.FilterCriteria{
		{},
		{GradeID: "G-02"},
		{GradeID: "G-04", Topic: "IT"},
		{Topic: "Math"},
		{GradeID: "G-07", Topic: "IT"},
	}
	for _, c := range criteria {
		view := filter.Apply(ds, c)
		total := 0
		for _, cc := range aggregation.DistributionByClass(view) {
			total += cc.Count
		}
		assert.Equal(t, view.Len(), total, "criteria %+v", c)
	}
}

func TestDistributionByClass_TiesUseCanonicalOrder(t *testing.T) {
	ds, err := dataset.FromRecords("ties", []models.StudentRecord{
		{ID: "1", Class: models.ClassLow},
		{ID: "2", Class: models.ClassMedium},
		{ID: "3", Class: models.ClassHigh},
	})
	require.NoError(t, err)

	dist := aggregation.DistributionByClass(ds.All())

	require.Len(t, dist, 3)
	assert.Equal(t, models.ClassHigh, dist[0].Class)
	assert.Equal(t, models.ClassMedium, dist[1].Class)
	assert.Equal(t, models.ClassLow, dist[2].Class)
}

func TestDistributionByClass_EmptyView(t *testing.T) {
	ds := newTestDataset(t)

	view := filter.Apply(ds, models.FilterCriteria{GradeID: "G-07", Topic: "IT"})

	assert.True(t, view.IsEmpty())
	assert.Empty(t, aggregation.DistributionByClass(view))
}

func TestGroupPercentages(t *testing.T) {
	ds := newTestDataset(t)

	result, err := aggregation.GroupPercentages(ds.All(), []string{"gradeid"}, "")
	require.NoError(t, err)

	assert.Equal(t, []string{models.ColumnGradeID}, result.GroupFields)
	assert.Equal(t, models.ColumnClass, result.ClassField)
	require.Len(t, result.Groups, 3)

	g02 := result.Groups[0]
	assert.Equal(t, []string{"G-02"}, g02.Key)
	assert.Equal(t, 3, g02.Total)
	high, ok := g02.Share("H")
	require.True(t, ok)
	assert.Equal(t, 1, high.Count)
	assert.InDelta(t, 100.0/3, high.Percentage, 1e-9)

	g07 := result.Groups[2]
	assert.Equal(t, []string{"G-07"}, g07.Key)
	low, _ := g07.Share("L")
	assert.Equal(t, 0, low.Count)
	assert.Equal(t, 0.0, low.Percentage)

	for _, g := range result.Groups {
		var sum float64
		for _, s := range g.Shares {
			sum += s.Percentage
		}
		assert.InDelta(t, 100.0, sum, 1e-6, "group %v", g.Key)
	}
}

func TestGroupPercentages_MultipleFieldsAndCustomClassField(t *testing.T) {
	ds := newTestDataset(t)

	result, err := aggregation.GroupPercentages(ds.All(), []string{"Topic", "GradeID"}, "gender")
	require.NoError(t, err)

	require.NotEmpty(t, result.Groups)
	assert.Equal(t, []string{"IT", "G-02"}, result.Groups[0].Key)
	assert.Equal(t, "F", result.Groups[0].Shares[0].Value)
	assert.Equal(t, "M", result.Groups[0].Shares[1].Value)
	assert.InDelta(t, 50.0, result.Groups[0].Shares[0].Percentage, 1e-9)
}

func TestGroupPercentagesOver_ZeroTotalGroup(t *testing.T) {
	ds := newTestDataset(t)
	view := filter.Apply(ds, models.FilterCriteria{Topic: "Math"})

	grades, err := ds.All().Distinct(models.ColumnGradeID)
	require.NoError(t, err)
	keys := make([][]string, len(grades))
	for i, g := range grades {
		keys[i] = []string{g}
	}

	empty := filter.Apply(ds, models.FilterCriteria{Topic: "Arabic"})
	result, err := aggregation.GroupPercentagesOver(empty, []string{models.ColumnGradeID}, models.ColumnClass, keys)
	require.NoError(t, err)
	require.Len(t, result.Groups, 3)
	for _, g := range result.Groups {
		assert.Equal(t, 0, g.Total)
		for _, s := range g.Shares {
			assert.Equal(t, 0.0, s.Percentage)
			assert.False(t, math.IsNaN(s.Percentage))
		}
	}

	result, err = aggregation.GroupPercentagesOver(view, []string{models.ColumnGradeID}, models.ColumnClass, keys)
	require.NoError(t, err)
	require.Len(t, result.Groups, 3)
	assert.Equal(t, 1, result.Groups[0].Total)
	assert.Equal(t, 1, result.Groups[1].Total)
	assert.Equal(t, 1, result.Groups[2].Total)
}

func TestGroupPercentages_UnknownField(t *testing.T) {
	ds := newTestDataset(t)

	_, err := aggregation.GroupPercentages(ds.All(), []string{"Semester"}, "")
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)

	_, err = aggregation.GroupPercentages(ds.All(), []string{"GradeID"}, "Performance")
	assert.ErrorIs(t, err, dataset.ErrUnknownColumn)
}

func TestShareTrend(t *testing.T) {
	ds := newTestDataset(t)
	result, err := aggregation.GroupPercentages(ds.All(), []string{models.ColumnGradeID}, models.ColumnClass)
	require.NoError(t, err)

	trend := aggregation.ShareTrend(result, "H")

	require.Len(t, trend, 3)
	assert.Equal(t, "G-02", trend[0].Key)
	assert.InDelta(t, 33.333, trend[0].Percentage, 1e-3)
	assert.InDelta(t, 100.0/3, trend[1].Percentage, 1e-9)
	assert.InDelta(t, 100.0, trend[2].Percentage, 1e-9)
}
