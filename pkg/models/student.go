package models

import (
	"fmt"
	"maps"
	"strings"
)

type Class string

const (
	ClassHigh   Class = "H"
	ClassMedium Class = "M"
	ClassLow    Class = "L"
)

// CanonicalClasses is the fixed display order used for chart axes and tie breaking.
var CanonicalClasses = []Class{ClassHigh, ClassMedium, ClassLow}

func ParseClass(s string) (Class, error) {
	switch Class(strings.ToUpper(strings.TrimSpace(s))) {
	case ClassHigh:
		return ClassHigh, nil
	case ClassMedium:
		return ClassMedium, nil
	case ClassLow:
		return ClassLow, nil
	default:
		return "", fmt.Errorf("invalid class %q: must be one of H, M, L", s)
	}
}

// Rank returns the position of the class in CanonicalClasses, or len(CanonicalClasses) if unknown.
func (c Class) Rank() int {
	for i, cc := range CanonicalClasses {
		if cc == c {
			return i
		}
	}
	return len(CanonicalClasses)
}

func (c Class) String() string {
	return string(c)
}

type ColumnKind string

const (
	ColumnNumeric     ColumnKind = "numeric"
	ColumnCategorical ColumnKind = "categorical"
)

// Column names of the fixed dataset schema.
const (
	ColumnID               = "ID"
	ColumnGradeID          = "GradeID"
	ColumnTopic            = "Topic"
	ColumnRaisedHands      = "raisedhands"
	ColumnVisitedResources = "VisitedResources"
	ColumnDiscussion       = "Discussion"
	ColumnAbsenceDays      = "StudentAbsenceDays"
	ColumnClass            = "Class"
)

// RequiredColumns lists every column a data source must provide.
var RequiredColumns = []string{
	ColumnID,
	ColumnGradeID,
	ColumnTopic,
	ColumnClass,
	ColumnRaisedHands,
	ColumnVisitedResources,
	ColumnDiscussion,
	ColumnAbsenceDays,
}

// StudentRecord is one row of the dataset. Records are never modified after load.
type StudentRecord struct {
	ID               string            `json:"id" yaml:"id"`
	GradeID          string            `json:"grade_id" yaml:"grade_id"`
	Topic            string            `json:"topic" yaml:"topic"`
	RaisedHands      int               `json:"raised_hands" yaml:"raised_hands"`
	VisitedResources int               `json:"visited_resources" yaml:"visited_resources"`
	Discussion       int               `json:"discussion" yaml:"discussion"`
	AbsenceDays      float64           `json:"absence_days" yaml:"absence_days"`
	Class            Class             `json:"class" yaml:"class"`
	Attributes       map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

func (r *StudentRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("record has empty %s", ColumnID)
	}
	if _, err := ParseClass(string(r.Class)); err != nil {
		return fmt.Errorf("record %s: %w", r.ID, err)
	}
	if r.RaisedHands < 0 || r.VisitedResources < 0 || r.Discussion < 0 || r.AbsenceDays < 0 {
		return fmt.Errorf("record %s: engagement values must be non-negative", r.ID)
	}
	return nil
}

// Clone returns a copy that shares no state with r.
func (r *StudentRecord) Clone() StudentRecord {
	out := *r
	out.Attributes = maps.Clone(r.Attributes)
	return out
}

// Categorical returns the string value of a categorical column, including extra attributes.
func (r *StudentRecord) Categorical(column string) (string, bool) {
	switch column {
	case ColumnID:
		return r.ID, true
	case ColumnGradeID:
		return r.GradeID, true
	case ColumnTopic:
		return r.Topic, true
	case ColumnClass:
		return string(r.Class), true
	}
	v, ok := r.Attributes[column]
	return v, ok
}

// Numeric returns the value of one of the core numeric columns.
func (r *StudentRecord) Numeric(column string) (float64, bool) {
	switch column {
	case ColumnRaisedHands:
		return float64(r.RaisedHands), true
	case ColumnVisitedResources:
		return float64(r.VisitedResources), true
	case ColumnDiscussion:
		return float64(r.Discussion), true
	case ColumnAbsenceDays:
		return r.AbsenceDays, true
	}
	return 0, false
}
