package models

import "strings"

// FilterAll is the sentinel value meaning "no constraint" for a filter field.
const FilterAll = "All"

// FilterCriteria selects a subset of the dataset. Empty or "All" fields do not constrain.
type FilterCriteria struct {
	GradeID string `json:"grade_id,omitempty" yaml:"grade_id,omitempty"`
	Topic   string `json:"topic,omitempty" yaml:"topic,omitempty"`
	Class   string `json:"class,omitempty" yaml:"class,omitempty"`
}

func IsUnconstrained(value string) bool {
	v := strings.TrimSpace(value)
	return v == "" || strings.EqualFold(v, FilterAll)
}

func (f FilterCriteria) IsEmpty() bool {
	return IsUnconstrained(f.GradeID) && IsUnconstrained(f.Topic) && IsUnconstrained(f.Class)
}

// FilterOptions are the selectable values for each filter field.
type FilterOptions struct {
	Grades  []string `json:"grades" yaml:"grades"`
	Topics  []string `json:"topics" yaml:"topics"`
	Classes []string `json:"classes" yaml:"classes"`
}
