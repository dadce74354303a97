package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/OldStager01/student-insights/pkg/models"
)

// Dataset is an immutable, ordered collection of student records plus column metadata.
// It is safe for concurrent readers.
type Dataset struct {
	name        string
	records     []models.StudentRecord
	numeric     []string
	categorical []string
	canonical   map[string]string
}

// FromRecords validates records and wraps them in a Dataset. Extra attribute columns are
// classified as numeric when every value parses as a finite float.
func FromRecords(name string, records []models.StudentRecord) (*Dataset, error) {
	extras := make(map[string]bool)
	for i := range records {
		if err := records[i].Validate(); err != nil {
			return nil, sourceError(name, "invalid record", err)
		}
		for k := range records[i].Attributes {
			extras[k] = true
		}
	}

	if err := checkUniqueIDs(name, records); err != nil {
		return nil, err
	}

	numericExtras := make(map[string]bool)
	for col := range extras {
		numericExtras[col] = allNumeric(records, col)
	}
	return newDataset(name, records, numericExtras), nil
}

func newDataset(name string, records []models.StudentRecord, extras map[string]bool) *Dataset {
	ds := &Dataset{
		name:      name,
		records:   records,
		numeric:   []string{models.ColumnRaisedHands, models.ColumnVisitedResources, models.ColumnDiscussion, models.ColumnAbsenceDays},
		canonical: make(map[string]string),
		categorical: []string{
			models.ColumnID, models.ColumnGradeID, models.ColumnTopic, models.ColumnClass,
		},
	}
	for col, isNumeric := range extras {
		if isNumeric {
			ds.numeric = append(ds.numeric, col)
		} else {
			ds.categorical = append(ds.categorical, col)
		}
	}
	sort.Strings(ds.numeric)
	sort.Strings(ds.categorical)

	for _, c := range ds.numeric {
		ds.canonical[strings.ToLower(c)] = c
	}
	for _, c := range ds.categorical {
		ds.canonical[strings.ToLower(c)] = c
	}
	return ds
}

// checkUniqueIDs rejects a source in which two records share an ID.
func checkUniqueIDs(name string, records []models.StudentRecord) error {
	seen := make(map[string]int, len(records))
	for i := range records {
		id := records[i].ID
		if first, ok := seen[id]; ok {
			return sourceError(name, fmt.Sprintf("duplicate ID %q in rows %d and %d", id, first+1, i+1), nil)
		}
		seen[id] = i
	}
	return nil
}

func allNumeric(records []models.StudentRecord, column string) bool {
	if len(records) == 0 {
		return false
	}
	for i := range records {
		v, ok := records[i].Attributes[column]
		if !ok {
			return false
		}
		if _, err := parseFloat(v); err != nil {
			return false
		}
	}
	return true
}

func (d *Dataset) Name() string {
	return d.name
}

func (d *Dataset) Len() int {
	return len(d.records)
}

// Columns returns the sorted column names of the given kind.
func (d *Dataset) Columns(kind models.ColumnKind) []string {
	var src []string
	switch kind {
	case models.ColumnNumeric:
		src = d.numeric
	case models.ColumnCategorical:
		src = d.categorical
	}
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// Resolve maps a column name, matched case-insensitively, to its canonical spelling.
func (d *Dataset) Resolve(column string) (string, bool) {
	c, ok := d.canonical[strings.ToLower(strings.TrimSpace(column))]
	return c, ok
}

func (d *Dataset) IsNumeric(column string) bool {
	c, ok := d.Resolve(column)
	if !ok {
		return false
	}
	for _, n := range d.numeric {
		if n == c {
			return true
		}
	}
	return false
}

// All returns a view over every record.
func (d *Dataset) All() View {
	return View{ds: d, records: d.records}
}

// Filter returns a new view holding the records matching pred. The dataset is not modified.
func (d *Dataset) Filter(pred func(models.StudentRecord) bool) View {
	out := make([]models.StudentRecord, 0)
	for _, r := range d.records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return View{ds: d, records: out}
}
