// Package risk flags students whose engagement is below, and absence above, the
// averages of the group they are compared with.
package risk

import (
	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/pkg/models"
)

// Means computes the reference means of the view. Means are recomputed on every call
// so that a changed filter never reuses the previous subset's averages.
func Means(view dataset.View) models.RiskMeans {
	var m models.RiskMeans
	if view.IsEmpty() {
		return m
	}
	view.Each(func(r *models.StudentRecord) {
		m.RaisedHands += float64(r.RaisedHands)
		m.VisitedResources += float64(r.VisitedResources)
		m.AbsenceDays += r.AbsenceDays
	})
	n := float64(view.Len())
	m.RaisedHands /= n
	m.VisitedResources /= n
	m.AbsenceDays /= n
	return m
}

// IsAtRisk applies the rule with strict comparisons; a value equal to the mean never flags.
func IsAtRisk(r *models.StudentRecord, means models.RiskMeans) bool {
	return float64(r.RaisedHands) < means.RaisedHands &&
		float64(r.VisitedResources) < means.VisitedResources &&
		r.AbsenceDays > means.AbsenceDays
}

// FlagAtRisk returns the at-risk flag of every record in the view, keyed by record ID.
func FlagAtRisk(view dataset.View) map[string]bool {
	flags := make(map[string]bool, view.Len())
	if view.IsEmpty() {
		return flags
	}

	means := Means(view)
	view.Each(func(r *models.StudentRecord) {
		flags[r.ID] = IsAtRisk(r, means)
	})
	return flags
}

// Assess builds the at-risk table for the view in record order.
func Assess(view dataset.View) models.RiskReport {
	report := models.RiskReport{
		Means:       Means(view),
		Assessments: make([]models.RiskAssessment, 0, view.Len()),
	}

	view.Each(func(r *models.StudentRecord) {
		atRisk := IsAtRisk(r, report.Means)
		if atRisk {
			report.FlaggedCount++
		}
		report.Assessments = append(report.Assessments, models.RiskAssessment{Record: r.Clone(), AtRisk: atRisk})
	})

	if ds := view.Dataset(); ds != nil {
		logger.WithDataset(ds.Name()).Debugf(
			"Risk assessment: rows=%d flagged=%d means=(%.2f, %.2f, %.2f)",
			view.Len(), report.FlaggedCount,
			report.Means.RaisedHands, report.Means.VisitedResources, report.Means.AbsenceDays,
		)
	}
	return report
}
