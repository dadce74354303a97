package render

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OldStager01/student-insights/internal/insights"
	"github.com/OldStager01/student-insights/pkg/models"
)

const emptyNote = "No students match the selected filters."

func noteIf(empty bool) string {
	if empty {
		return emptyNote
	}
	return ""
}

func OverviewTable(res *insights.OverviewResult) Table {
	o := res.Overview
	return Table{
		Title:  "Overview",
		Header: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Students", strconv.Itoa(o.Students)},
			{"Avg raised hands", Float(o.AvgRaisedHands)},
			{"Avg visited resources", Float(o.AvgVisitedResources)},
			{"Avg absence days", Float(o.AvgAbsenceDays)},
			{"Grades", strconv.Itoa(o.Grades)},
			{"Topics", strconv.Itoa(o.Topics)},
			{"Classes", strconv.Itoa(o.Classes)},
		},
		Note: noteIf(res.Empty),
	}
}

func DistributionTable(res *insights.DistributionResult) Table {
	rows := make([][]string, 0, len(res.Counts))
	for _, c := range res.Counts {
		share := 0.0
		if res.Total > 0 {
			share = float64(c.Count) / float64(res.Total) * 100
		}
		rows = append(rows, []string{string(c.Class), strconv.Itoa(c.Count), Percent(share)})
	}
	return Table{
		Title:  fmt.Sprintf("Class distribution (%s, %d students)", res.Scope, res.Total),
		Header: []string{"Class", "Count", "Share"},
		Rows:   rows,
		Note:   noteIf(res.Empty),
	}
}

func GroupsTables(res *insights.GroupsResult) []Table {
	r := res.Result
	header := append([]string{}, r.GroupFields...)
	header = append(header, "Total")

	var categories []string
	if len(r.Groups) > 0 {
		for _, s := range r.Groups[0].Shares {
			categories = append(categories, s.Value)
			header = append(header, r.ClassField+"="+s.Value)
		}
	}

	rows := make([][]string, 0, len(r.Groups))
	for i := range r.Groups {
		g := &r.Groups[i]
		row := append([]string{}, g.Key...)
		row = append(row, strconv.Itoa(g.Total))
		for _, c := range categories {
			s, _ := g.Share(c)
			row = append(row, fmt.Sprintf("%d (%s)", s.Count, Percent(s.Percentage)))
		}
		rows = append(rows, row)
	}

	tables := []Table{{
		Title:  fmt.Sprintf("%s by %s", r.ClassField, strings.Join(r.GroupFields, ", ")),
		Header: header,
		Rows:   rows,
		Note:   noteIf(res.Empty),
	}}

	if len(res.Trend) > 0 {
		trend := make([][]string, 0, len(res.Trend))
		for _, p := range res.Trend {
			trend = append(trend, []string{p.Key, Percent(p.Percentage)})
		}
		tables = append(tables, Table{Title: "Trend", Header: []string{"Group", "Share"}, Rows: trend})
	}
	return tables
}

func SummaryTable(res *insights.SummaryResult) Table {
	rows := make([][]string, 0, len(res.Columns))
	for _, s := range res.Columns {
		rows = append(rows, []string{
			s.Column, strconv.Itoa(s.Count), Float(s.Mean), Float(s.Std), Float(s.Min),
			Float(s.Q25), Float(s.Median), Float(s.Q75), Float(s.Max),
		})
	}
	return Table{
		Title:  "Summary statistics",
		Header: []string{"Column", "Count", "Mean", "Std", "Min", "25%", "50%", "75%", "Max"},
		Rows:   rows,
		Note:   noteIf(res.Empty),
	}
}

func CorrelationTable(res *insights.CorrelationResult) Table {
	m := res.Matrix
	rows := make([][]string, 0, len(m.Columns))
	for i, c := range m.Columns {
		row := []string{c}
		for j := range m.Columns {
			row = append(row, Float(m.Values[i][j]))
		}
		rows = append(rows, row)
	}
	return Table{
		Title:  "Correlation matrix",
		Header: append([]string{""}, m.Columns...),
		Rows:   rows,
		Note:   noteIf(res.Empty),
	}
}

func AbsenceTable(res *insights.AbsenceResult) Table {
	rows := make([][]string, 0, len(res.Classes))
	for i, c := range res.Classes {
		s := res.ByClass[i]
		rows = append(rows, []string{
			string(c), strconv.Itoa(s.Count), Float(s.Mean), Float(s.Median), Float(s.Min), Float(s.Max),
		})
	}
	return Table{
		Title:  "Absence days by class",
		Header: []string{"Class", "Students", "Mean", "Median", "Min", "Max"},
		Rows:   rows,
		Note:   noteIf(res.Empty),
	}
}

func RiskTables(res *insights.RiskResult) []Table {
	means := res.Report.Means
	rows := make([][]string, 0, len(res.Report.Assessments))
	for _, a := range res.Report.Assessments {
		r := a.Record
		flag := ""
		if a.AtRisk {
			flag = "AT RISK"
		}
		rows = append(rows, []string{
			r.ID, r.GradeID, r.Topic, string(r.Class), strconv.Itoa(r.RaisedHands),
			strconv.Itoa(r.VisitedResources), Float(r.AbsenceDays), flag,
		})
	}

	return []Table{
		{
			Title:  "Reference means",
			Header: []string{"Raised hands", "Visited resources", "Absence days"},
			Rows:   [][]string{{Float(means.RaisedHands), Float(means.VisitedResources), Float(means.AbsenceDays)}},
		},
		{
			Title:  fmt.Sprintf("At-risk students: %d of %d", res.Report.FlaggedCount, res.Total),
			Header: []string{"ID", "Grade", "Topic", "Class", "Raised hands", "Visited", "Absence", "Flag"},
			Rows:   rows,
			Note:   noteIf(res.Empty),
		},
	}
}

func PredictionTable(res *insights.PredictResult) Table {
	p := res.Prediction
	rows := make([][]string, 0, len(p.Probabilities))
	for _, c := range models.CanonicalClasses {
		v, ok := p.Probabilities[c]
		if !ok {
			continue
		}
		mark := ""
		if c == p.Class {
			mark = "<"
		}
		rows = append(rows, []string{string(c), Percent(v * 100), mark})
	}

	t := Table{
		Title:  fmt.Sprintf("Predicted class: %s (confidence %s)", p.Class, Percent(res.Confidence*100)),
		Header: []string{"Class", "Probability", ""},
		Rows:   rows,
	}
	if p.Extrapolated {
		t.Note = "Inputs lie outside the range seen in training; treat the prediction with care."
	}
	return t
}

func ModelTables(info *models.ModelInfo) []Table {
	classes := make([]string, len(info.Classes))
	for i, c := range info.Classes {
		classes[i] = fmt.Sprintf("%s=%d", c, i)
	}

	ranges := make([][]string, 0, len(info.FeatureRanges))
	for _, r := range info.FeatureRanges {
		ranges = append(ranges, []string{r.Feature, Float(r.Min), Float(r.Max)})
	}

	return []Table{
		{
			Title:  "Model",
			Header: []string{"Property", "Value"},
			Rows: [][]string{
				{"Features", strings.Join(info.Features, ", ")},
				{"Classes", strings.Join(classes, ", ")},
				{"Train rows", strconv.Itoa(info.TrainSize)},
				{"Holdout rows", strconv.Itoa(info.HoldoutSize)},
				{"Seed", strconv.FormatInt(info.Seed, 10)},
				{"Iterations", strconv.Itoa(info.Iterations)},
				{"Holdout accuracy", Percent(info.Accuracy * 100)},
			},
		},
		{Title: "Feature ranges", Header: []string{"Feature", "Min", "Max"}, Rows: ranges},
	}
}

func FilterTable(opts models.FilterOptions) Table {
	return Table{
		Title:  "Filter options",
		Header: []string{"Field", "Values"},
		Rows: [][]string{
			{"grade", strings.Join(opts.Grades, ", ")},
			{"topic", strings.Join(opts.Topics, ", ")},
			{"class", strings.Join(opts.Classes, ", ")},
		},
	}
}
