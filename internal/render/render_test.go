package render_test

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/student-insights/internal/insights"
	"github.com/OldStager01/student-insights/internal/render"
	"github.com/OldStager01/student-insights/pkg/models"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected render.Format
		wantErr  bool
	}{
		{"", render.FormatTable, false},
		{"TABLE", render.FormatTable, false},
		{"json", render.FormatJSON, false},
		{" yaml ", render.FormatYAML, false},
		{"csv", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			f, err := render.ParseFormat(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, f)
		})
	}
}

func summaryResult() *insights.SummaryResult {
	return &insights.SummaryResult{
		Columns: []models.ColumnSummary{{
			Column: "raisedhands", Count: 1, Mean: 42, Std: math.NaN(),
			Min: 42, Q25: 42, Median: 42, Q75: 42, Max: 42,
		}},
	}
}

func TestPrinter_Table(t *testing.T) {
	var buf bytes.Buffer
	p := render.NewPrinter(&buf, render.FormatTable)

	res := summaryResult()
	require.NoError(t, p.Print(res, render.SummaryTable(res)))

	out := buf.String()
	assert.Contains(t, out, "Summary statistics")
	assert.Contains(t, out, "raisedhands")
	assert.Contains(t, out, "42.00")
	assert.Contains(t, out, " - ")
}

func TestPrinter_JSONEncodesNaNAsNull(t *testing.T) {
	var buf bytes.Buffer
	p := render.NewPrinter(&buf, render.FormatJSON)

	res := summaryResult()
	require.NoError(t, p.Print(res, render.SummaryTable(res)))

	assert.Contains(t, buf.String(), `"std": null`)
	assert.NotContains(t, buf.String(), "Summary statistics")
}

func TestPrinter_YAML(t *testing.T) {
	var buf bytes.Buffer
	p := render.NewPrinter(&buf, render.FormatYAML)

	res := &insights.DistributionResult{
		Scope:  insights.ScopeAll,
		Total:  3,
		Counts: []models.ClassCount{{Class: models.ClassHigh, Count: 2}, {Class: models.ClassLow, Count: 1}},
	}
	require.NoError(t, p.Print(res, render.DistributionTable(res)))

	assert.Contains(t, buf.String(), "scope: all")
	assert.Contains(t, buf.String(), "class: H")
}

func TestDistributionTable(t *testing.T) {
	tbl := render.DistributionTable(&insights.DistributionResult{
		Scope:  insights.ScopeFiltered,
		Total:  4,
		Counts: []models.ClassCount{{Class: models.ClassMedium, Count: 3}, {Class: models.ClassLow, Count: 1}},
	})

	assert.Equal(t, [][]string{{"M", "3", "75.0%"}, {"L", "1", "25.0%"}}, tbl.Rows)
	assert.Empty(t, tbl.Note)
}

func TestGroupsTables_Trend(t *testing.T) {
	res := &insights.GroupsResult{
		Result: models.AggregationResult{
			GroupFields: []string{"GradeID"},
			ClassField:  "Class",
			Groups: []models.GroupBreakdown{
				{Key: []string{"G-02"}, Total: 2, Shares: []models.ClassShare{
					{Value: "H", Count: 1, Percentage: 50}, {Value: "M", Count: 1, Percentage: 50}, {Value: "L"},
				}},
			},
		},
		Trend: []models.TrendPoint{{Key: "G-02", Percentage: 50}},
	}

	tables := render.GroupsTables(res)
	require.Len(t, tables, 2)
	assert.Equal(t, []string{"GradeID", "Total", "Class=H", "Class=M", "Class=L"}, tables[0].Header)
	assert.Equal(t, []string{"G-02", "2", "1 (50.0%)", "1 (50.0%)", "0 (0.0%)"}, tables[0].Rows[0])
	assert.Equal(t, [][]string{{"G-02", "50.0%"}}, tables[1].Rows)
}

func TestPredictionTable_Extrapolated(t *testing.T) {
	tbl := render.PredictionTable(&insights.PredictResult{
		Prediction: models.Prediction{
			Class:         models.ClassLow,
			Probabilities: map[models.Class]float64{models.ClassHigh: 0.1, models.ClassMedium: 0.2, models.ClassLow: 0.7},
			Extrapolated:  true,
		},
		Confidence: 0.7,
	})

	assert.Equal(t, "Predicted class: L (confidence 70.0%)", tbl.Title)
	assert.Equal(t, []string{"L", "70.0%", "<"}, tbl.Rows[2])
	assert.NotEmpty(t, tbl.Note)
}

func TestFloat(t *testing.T) {
	assert.Equal(t, "1.50", render.Float(1.5))
	assert.Equal(t, "-", render.Float(math.NaN()))
	assert.Equal(t, "-", render.Percent(math.Inf(-1)))
}
