// Package filter turns grade/subject/class selections into row predicates.
package filter

import (
	"strings"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/pkg/models"
)

// Predicate reports whether a record belongs to a view. Predicates are pure.
type Predicate func(models.StudentRecord) bool

// Identity matches every record.
func Identity(models.StudentRecord) bool {
	return true
}

// And returns the conjunction of the given predicates; no predicates yields Identity.
func And(preds ...Predicate) Predicate {
	switch len(preds) {
	case 0:
		return Identity
	case 1:
		return preds[0]
	}
	return func(r models.StudentRecord) bool {
		for _, p := range preds {
			if !p(r) {
				return false
			}
		}
		return true
	}
}

func fieldEquals(value string, get func(models.StudentRecord) string) Predicate {
	want := strings.TrimSpace(value)
	return func(r models.StudentRecord) bool {
		return get(r) == want
	}
}

// Resolve composes every constrained field of criteria into a single predicate.
func Resolve(criteria models.FilterCriteria) Predicate {
	var preds []Predicate
	if !models.IsUnconstrained(criteria.GradeID) {
		preds = append(preds, fieldEquals(criteria.GradeID, func(r models.StudentRecord) string { return r.GradeID }))
	}
	if !models.IsUnconstrained(criteria.Topic) {
		preds = append(preds, fieldEquals(criteria.Topic, func(r models.StudentRecord) string { return r.Topic }))
	}
	if !models.IsUnconstrained(criteria.Class) {
		class := strings.ToUpper(strings.TrimSpace(criteria.Class))
		preds = append(preds, func(r models.StudentRecord) bool { return string(r.Class) == class })
	}
	return And(preds...)
}

// Apply filters ds by criteria. An unconstrained criteria returns the full dataset view.
func Apply(ds *dataset.Dataset, criteria models.FilterCriteria) dataset.View {
	if criteria.IsEmpty() {
		return ds.All()
	}

	view := ds.Filter(Resolve(criteria))
	if view.IsEmpty() {
		logger.WithDataset(ds.Name()).WithFields(map[string]interface{}{
			"grade_id": criteria.GradeID,
			"topic":    criteria.Topic,
			"class":    criteria.Class,
		}).Warn("Filter matched no records")
	}
	return view
}

// Options lists the selectable values of each filter field. With withAll set, each
// list is prefixed with the "All" sentinel.
func Options(ds *dataset.Dataset, withAll bool) models.FilterOptions {
	all := ds.All()
	grades, _ := all.Distinct(models.ColumnGradeID)
	topics, _ := all.Distinct(models.ColumnTopic)

	present := make(map[models.Class]bool)
	all.Each(func(r *models.StudentRecord) {
		present[r.Class] = true
	})
	classes := make([]string, 0, len(models.CanonicalClasses))
	for _, c := range models.CanonicalClasses {
		if present[c] {
			classes = append(classes, string(c))
		}
	}

	if withAll {
		grades = append([]string{models.FilterAll}, grades...)
		topics = append([]string{models.FilterAll}, topics...)
		classes = append([]string{models.FilterAll}, classes...)
	}
	return models.FilterOptions{Grades: grades, Topics: topics, Classes: classes}
}
