package models

import "math"

type ClassCount struct {
	Class Class `json:"class" yaml:"class"`
	Count int   `json:"count" yaml:"count"`
}

type ClassShare struct {
	Value      string  `json:"value" yaml:"value"`
	Count      int     `json:"count" yaml:"count"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// GroupBreakdown holds per-class counts for one group key.
type GroupBreakdown struct {
	Key    []string     `json:"key" yaml:"key"`
	Total  int          `json:"total" yaml:"total"`
	Shares []ClassShare `json:"shares" yaml:"shares"`
}

func (g *GroupBreakdown) Share(value string) (ClassShare, bool) {
	for _, s := range g.Shares {
		if s.Value == value {
			return s, true
		}
	}
	return ClassShare{}, false
}

// AggregationResult is the group-by count and percentage table.
type AggregationResult struct {
	GroupFields []string         `json:"group_fields" yaml:"group_fields"`
	ClassField  string           `json:"class_field" yaml:"class_field"`
	Groups      []GroupBreakdown `json:"groups" yaml:"groups"`
}

type TrendPoint struct {
	Key        string  `json:"key" yaml:"key"`
	Percentage float64 `json:"percentage" yaml:"percentage"`
}

// ColumnSummary contains descriptive statistics for one numeric column.
// Stats are NaN when Empty is set; Std is NaN for fewer than two values.
type ColumnSummary struct {
	Column string  `json:"column" yaml:"column"`
	Count  int     `json:"count" yaml:"count"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Std    float64 `json:"std" yaml:"std"`
	Min    float64 `json:"min" yaml:"min"`
	Q25    float64 `json:"q25" yaml:"q25"`
	Median float64 `json:"median" yaml:"median"`
	Q75    float64 `json:"q75" yaml:"q75"`
	Max    float64 `json:"max" yaml:"max"`
	Empty  bool    `json:"empty" yaml:"empty"`
}

// CorrMatrix holds a symmetric Pearson correlation matrix, Values[i][j] row-major.
type CorrMatrix struct {
	Columns []string    `json:"columns" yaml:"columns"`
	Values  [][]float64 `json:"values" yaml:"values"`
}

func (m *CorrMatrix) At(a, b string) float64 {
	i, j := -1, -1
	for k, c := range m.Columns {
		if c == a {
			i = k
		}
		if c == b {
			j = k
		}
	}
	if i < 0 || j < 0 {
		return math.NaN()
	}
	return m.Values[i][j]
}

type Overview struct {
	Students            int     `json:"students" yaml:"students"`
	AvgRaisedHands      float64 `json:"avg_raised_hands" yaml:"avg_raised_hands"`
	AvgVisitedResources float64 `json:"avg_visited_resources" yaml:"avg_visited_resources"`
	AvgAbsenceDays      float64 `json:"avg_absence_days" yaml:"avg_absence_days"`
	Grades              int     `json:"grades" yaml:"grades"`
	Topics              int     `json:"topics" yaml:"topics"`
	Classes             int     `json:"classes" yaml:"classes"`
}
