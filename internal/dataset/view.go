package dataset

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/OldStager01/student-insights/pkg/models"
)

// View is a read-only subset of a Dataset.
type View struct {
	ds      *Dataset
	records []models.StudentRecord
}

func (v View) Dataset() *Dataset {
	return v.ds
}

func (v View) Len() int {
	return len(v.records)
}

func (v View) IsEmpty() bool {
	return len(v.records) == 0
}

// Records returns deep copies of the records in view order.
func (v View) Records() []models.StudentRecord {
	out := make([]models.StudentRecord, len(v.records))
	for i := range v.records {
		out[i] = v.records[i].Clone()
	}
	return out
}

// Each calls fn for every record in view order without copying. r points into the
// dataset and must be treated as read-only; use Clone to keep a record.
func (v View) Each(fn func(r *models.StudentRecord)) {
	for i := range v.records {
		fn(&v.records[i])
	}
}

// Floats returns the values of a numeric column in view order.
func (v View) Floats(column string) ([]float64, error) {
	if v.ds == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	col, ok := v.ds.Resolve(column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if !v.ds.IsNumeric(col) {
		return nil, fmt.Errorf("%w: %q is not numeric", ErrUnknownColumn, column)
	}

	out := make([]float64, len(v.records))
	for i := range v.records {
		if x, ok := v.records[i].Numeric(col); ok {
			out[i] = x
			continue
		}
		x, err := parseFloat(v.records[i].Attributes[col])
		if err != nil {
			return nil, fmt.Errorf("column %q record %s: %w", col, v.records[i].ID, err)
		}
		out[i] = x
	}
	return out, nil
}

// Strings returns the values of any column as strings in view order.
func (v View) Strings(column string) ([]string, error) {
	if v.ds == nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	col, ok := v.ds.Resolve(column)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}

	out := make([]string, len(v.records))
	for i := range v.records {
		r := &v.records[i]
		if s, ok := r.Categorical(col); ok {
			out[i] = s
			continue
		}
		if x, ok := r.Numeric(col); ok {
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		}
	}
	return out, nil
}

// Distinct returns the sorted distinct values of a column.
func (v View) Distinct(column string) ([]string, error) {
	values, err := v.Strings(column)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0)
	for _, s := range values {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out, nil
}
