package aggregation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/pkg/models"
)

// SummaryStatistics describes each requested numeric column of the view. An empty column
// list selects every numeric column of the dataset.
func SummaryStatistics(view dataset.View, columns []string) (map[string]models.ColumnSummary, error) {
	columns, err := numericColumns(view, columns)
	if err != nil {
		return nil, err
	}

	out := make(map[string]models.ColumnSummary, len(columns))
	for _, col := range columns {
		values, err := view.Floats(col)
		if err != nil {
			return nil, err
		}
		out[col] = Summarize(col, values)
	}
	return out, nil
}

// Summarize computes count, mean, sample standard deviation, min, quartiles and max.
func Summarize(column string, values []float64) models.ColumnSummary {
	s := models.ColumnSummary{Column: column, Count: len(values)}
	if len(values) == 0 {
		nan := math.NaN()
		s.Empty = true
		s.Mean, s.Std, s.Min, s.Q25, s.Median, s.Q75, s.Max = nan, nan, nan, nan, nan, nan, nan
		return s
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	s.Mean = stat.Mean(sorted, nil)
	s.Std = math.NaN()
	if len(sorted) > 1 {
		s.Std = stat.StdDev(sorted, nil)
	}
	s.Min = floats.Min(sorted)
	s.Max = floats.Max(sorted)
	s.Q25 = quantile(sorted, 0.25)
	s.Median = quantile(sorted, 0.5)
	s.Q75 = quantile(sorted, 0.75)
	return s
}

// quantile interpolates linearly between the closest order statistics of sorted values.
func quantile(sorted []float64, q float64) float64 {
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac
}

// CorrelationMatrix computes pairwise Pearson correlations. The diagonal is always 1;
// pairs with fewer than two rows or a constant column are NaN.
func CorrelationMatrix(view dataset.View, columns []string) (models.CorrMatrix, error) {
	columns, err := numericColumns(view, columns)
	if err != nil {
		return models.CorrMatrix{}, err
	}

	data := make([][]float64, len(columns))
	for i, col := range columns {
		if data[i], err = view.Floats(col); err != nil {
			return models.CorrMatrix{}, err
		}
	}

	m := models.CorrMatrix{Columns: columns, Values: make([][]float64, len(columns))}
	for i := range m.Values {
		m.Values[i] = make([]float64, len(columns))
		m.Values[i][i] = 1.0
	}
	for i := 0; i < len(columns); i++ {
		for j := 0; j < i; j++ {
			r := pearson(data[i], data[j])
			m.Values[i][j] = r
			m.Values[j][i] = r
		}
	}

	logger.WithDataset(view.Dataset().Name()).Debugf("Correlation matrix: columns=%d rows=%d", len(columns), view.Len())
	return m, nil
}

func pearson(x, y []float64) float64 {
	if len(x) < 2 || len(x) != len(y) {
		return math.NaN()
	}
	if stat.Variance(x, nil) == 0 || stat.Variance(y, nil) == 0 {
		return math.NaN()
	}
	r := stat.Correlation(x, y, nil)
	// clamp rounding drift
	return math.Max(-1, math.Min(1, r))
}

func numericColumns(view dataset.View, columns []string) ([]string, error) {
	ds := view.Dataset()
	if ds == nil {
		return nil, dataset.ErrUnknownColumn
	}
	if len(columns) == 0 {
		return ds.Columns(models.ColumnNumeric), nil
	}

	out := make([]string, 0, len(columns))
	seen := make(map[string]bool, len(columns))
	for _, c := range columns {
		// Floats reports unknown and non-numeric columns
		if _, err := view.Floats(c); err != nil {
			return nil, err
		}
		canonical, _ := ds.Resolve(c)
		if seen[canonical] {
			continue
		}
		seen[canonical] = true
		out = append(out, canonical)
	}
	return out, nil
}

// Overview computes the headline metrics shown above the charts.
func Overview(view dataset.View) models.Overview {
	o := models.Overview{Students: view.Len()}
	if view.IsEmpty() {
		nan := math.NaN()
		o.AvgRaisedHands, o.AvgVisitedResources, o.AvgAbsenceDays = nan, nan, nan
		return o
	}

	grades := make(map[string]bool)
	topics := make(map[string]bool)
	classes := make(map[models.Class]bool)
	var raised, visited, absence float64
	view.Each(func(r *models.StudentRecord) {
		raised += float64(r.RaisedHands)
		visited += float64(r.VisitedResources)
		absence += r.AbsenceDays
		grades[r.GradeID] = true
		topics[r.Topic] = true
		classes[r.Class] = true
	})

	n := float64(view.Len())
	o.AvgRaisedHands = raised / n
	o.AvgVisitedResources = visited / n
	o.AvgAbsenceDays = absence / n
	o.Grades = len(grades)
	o.Topics = len(topics)
	o.Classes = len(classes)
	return o
}

// AbsenceByClass summarizes absence days separately for each canonical class.
func AbsenceByClass(view dataset.View) map[models.Class]models.ColumnSummary {
	byClass := make(map[models.Class][]float64)
	view.Each(func(r *models.StudentRecord) {
		byClass[r.Class] = append(byClass[r.Class], r.AbsenceDays)
	})

	out := make(map[models.Class]models.ColumnSummary, len(models.CanonicalClasses))
	for _, c := range models.CanonicalClasses {
		out[c] = Summarize(models.ColumnAbsenceDays, byClass[c])
	}
	return out
}
