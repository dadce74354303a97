// Package aggregation computes descriptive results over dataset views: class
// distributions, group percentages, summary statistics and correlations.
// None of its functions fail on an empty view.
package aggregation

import (
	"sort"
	"strings"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/pkg/models"
)

const keySeparator = "\x1f"

// DistributionByClass counts records per class, ordered by descending count with ties in
// H, M, L order. Classes with no records are omitted.
func DistributionByClass(view dataset.View) []models.ClassCount {
	counts := make(map[models.Class]int)
	view.Each(func(r *models.StudentRecord) {
		counts[r.Class]++
	})

	out := make([]models.ClassCount, 0, len(counts))
	for class, n := range counts {
		out = append(out, models.ClassCount{Class: class, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Class.Rank() < out[j].Class.Rank()
		}
		return out[i].Count > out[j].Count
	})
	return out
}

// GroupPercentages counts classField values per distinct combination of groupFields and
// derives each value's percentage of its group total.
func GroupPercentages(view dataset.View, groupFields []string, classField string) (models.AggregationResult, error) {
	return GroupPercentagesOver(view, groupFields, classField, nil)
}

// GroupPercentagesOver is GroupPercentages with a fixed set of group keys that are always
// reported, even when the view holds no record for them. Such groups have a zero total
// and zero percentages.
func GroupPercentagesOver(view dataset.View, groupFields []string, classField string, keys [][]string) (models.AggregationResult, error) {
	if classField == "" {
		classField = models.ColumnClass
	}

	ds := view.Dataset()
	fields := make([]string, len(groupFields))
	columns := make([][]string, len(groupFields))
	for i, f := range groupFields {
		values, err := view.Strings(f)
		if err != nil {
			return models.AggregationResult{}, err
		}
		fields[i], _ = ds.Resolve(f)
		columns[i] = values
	}

	classValues, err := view.Strings(classField)
	if err != nil {
		return models.AggregationResult{}, err
	}
	classField, _ = ds.Resolve(classField)

	result := models.AggregationResult{GroupFields: fields, ClassField: classField}

	type groupAcc struct {
		key    []string
		total  int
		counts map[string]int
	}
	groups := make(map[string]*groupAcc)
	ensure := func(key []string) *groupAcc {
		id := strings.Join(key, keySeparator)
		g, ok := groups[id]
		if !ok {
			g = &groupAcc{key: key, counts: make(map[string]int)}
			groups[id] = g
		}
		return g
	}

	for _, k := range keys {
		if len(k) != len(fields) {
			continue
		}
		key := make([]string, len(k))
		copy(key, k)
		ensure(key)
	}

	for row := 0; row < view.Len(); row++ {
		key := make([]string, len(fields))
		for i := range fields {
			key[i] = columns[i][row]
		}
		g := ensure(key)
		g.total++
		g.counts[classValues[row]]++
	}

	categories := classCategories(classField, classValues)

	result.Groups = make([]models.GroupBreakdown, 0, len(groups))
	for _, g := range groups {
		gb := models.GroupBreakdown{Key: g.key, Total: g.total, Shares: make([]models.ClassShare, 0, len(categories))}
		for _, c := range categories {
			n := g.counts[c]
			gb.Shares = append(gb.Shares, models.ClassShare{
				Value:      c,
				Count:      n,
				Percentage: percentage(n, g.total),
			})
		}
		result.Groups = append(result.Groups, gb)
	}
	sort.Slice(result.Groups, func(i, j int) bool {
		return lessKey(result.Groups[i].Key, result.Groups[j].Key)
	})

	logger.WithDataset(ds.Name()).Debugf(
		"Group percentages: fields=%v class_field=%s groups=%d rows=%d",
		fields, classField, len(result.Groups), view.Len(),
	)

	return result, nil
}

// ShareTrend extracts the percentage of one class value for every group, in group order.
func ShareTrend(result models.AggregationResult, classValue string) []models.TrendPoint {
	out := make([]models.TrendPoint, 0, len(result.Groups))
	for i := range result.Groups {
		g := &result.Groups[i]
		share, _ := g.Share(classValue)
		out = append(out, models.TrendPoint{
			Key:        strings.Join(g.Key, " | "),
			Percentage: share.Percentage,
		})
	}
	return out
}

func percentage(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total) * 100
}

func classCategories(classField string, values []string) []string {
	if classField == models.ColumnClass {
		out := make([]string, len(models.CanonicalClasses))
		for i, c := range models.CanonicalClasses {
			out[i] = string(c)
		}
		return out
	}

	seen := make(map[string]bool)
	var out []string
	for _, v := range values {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	sort.Strings(out)
	return out
}

func lessKey(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
