package dataset

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/pkg/models"
)

// Raw xAPI exports record absence as a two-level category.
const (
	absenceUnder7 = "under-7"
	absenceAbove7 = "above-7"
)

// RecordSource provides records from a store other than a CSV file.
type RecordSource interface {
	ListStudents(ctx context.Context) ([]models.StudentRecord, error)
}

// LoadFile reads a CSV dataset from disk.
func LoadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, sourceError(path, "open file", err)
	}
	defer f.Close()

	return Load(f, filepath.Base(path))
}

// Load parses a CSV dataset with a header row. Columns are matched case-insensitively
// against the required schema; any other column is kept as a record attribute.
func Load(r io.Reader, name string) (*Dataset, error) {
	// Every column is read as text so identifiers such as "007" keep their leading zeros
	// and extras keep their original spelling; numeric parsing happens per column below.
	df := dataframe.ReadCSV(r,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if err := df.Error(); err != nil {
		return nil, sourceError(name, "parse csv", err)
	}

	headers := make(map[string]string, df.Ncol())
	for _, h := range df.Names() {
		headers[strings.ToLower(strings.TrimSpace(h))] = h
	}

	var missing []string
	required := make(map[string]bool, len(models.RequiredColumns))
	for _, col := range models.RequiredColumns {
		required[strings.ToLower(col)] = true
		if _, ok := headers[strings.ToLower(col)]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, sourceError(name, "missing required columns: "+strings.Join(missing, ", "), nil)
	}

	column := func(canonical string) []string {
		return df.Col(headers[strings.ToLower(canonical)]).Records()
	}
	ids := column(models.ColumnID)
	grades := column(models.ColumnGradeID)
	topics := column(models.ColumnTopic)
	classes := column(models.ColumnClass)
	raised := column(models.ColumnRaisedHands)
	visited := column(models.ColumnVisitedResources)
	discussion := column(models.ColumnDiscussion)
	absence := column(models.ColumnAbsenceDays)

	extras := make(map[string][]string)
	for _, h := range df.Names() {
		if required[strings.ToLower(strings.TrimSpace(h))] {
			continue
		}
		extras[h] = df.Col(h).Records()
	}

	records := make([]models.StudentRecord, df.Nrow())
	for i := range records {
		row := i + 1
		rec := models.StudentRecord{
			ID:      strings.TrimSpace(ids[i]),
			GradeID: strings.TrimSpace(grades[i]),
			Topic:   strings.TrimSpace(topics[i]),
		}

		class, err := models.ParseClass(classes[i])
		if err != nil {
			return nil, sourceError(name, fmt.Sprintf("row %d", row), err)
		}
		rec.Class = class

		if rec.RaisedHands, err = parseCount(raised[i]); err != nil {
			return nil, sourceError(name, fmt.Sprintf("row %d column %s", row, models.ColumnRaisedHands), err)
		}
		if rec.VisitedResources, err = parseCount(visited[i]); err != nil {
			return nil, sourceError(name, fmt.Sprintf("row %d column %s", row, models.ColumnVisitedResources), err)
		}
		if rec.Discussion, err = parseCount(discussion[i]); err != nil {
			return nil, sourceError(name, fmt.Sprintf("row %d column %s", row, models.ColumnDiscussion), err)
		}
		if rec.AbsenceDays, err = ParseAbsence(absence[i]); err != nil {
			return nil, sourceError(name, fmt.Sprintf("row %d column %s", row, models.ColumnAbsenceDays), err)
		}

		if len(extras) > 0 {
			rec.Attributes = make(map[string]string, len(extras))
			for col, values := range extras {
				rec.Attributes[col] = strings.TrimSpace(values[i])
			}
		}

		if err := rec.Validate(); err != nil {
			return nil, sourceError(name, fmt.Sprintf("row %d", row), err)
		}
		records[i] = rec
	}

	if err := checkUniqueIDs(name, records); err != nil {
		return nil, err
	}

	numericExtras := make(map[string]bool, len(extras))
	for col := range extras {
		numericExtras[col] = allNumeric(records, col)
	}
	ds := newDataset(name, records, numericExtras)
	logger.WithDataset(name).WithFields(map[string]interface{}{
		"data.samples": ds.Len(),
		"data.columns": df.Ncol(),
	}).Info("Dataset loaded")

	return ds, nil
}

// LoadFrom builds a dataset from a record source such as the Postgres students table.
func LoadFrom(ctx context.Context, name string, src RecordSource) (*Dataset, error) {
	records, err := src.ListStudents(ctx)
	if err != nil {
		return nil, sourceError(name, "list students", err)
	}
	if len(records) == 0 {
		return nil, sourceError(name, "source returned no records", nil)
	}

	ds, err := FromRecords(name, records)
	if err != nil {
		return nil, err
	}
	logger.WithDataset(name).WithField("data.samples", ds.Len()).Info("Dataset loaded")
	return ds, nil
}

// ParseAbsence accepts a numeric day count or the raw Under-7/Above-7 categories,
// encoded as 0 and 1 so that larger still means more absence.
func ParseAbsence(s string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case absenceUnder7:
		return 0, nil
	case absenceAbove7:
		return 1, nil
	}
	x, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if x < 0 {
		return 0, fmt.Errorf("negative value %v", x)
	}
	return x, nil
}

func parseCount(s string) (int, error) {
	x, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	if x < 0 {
		return 0, fmt.Errorf("negative value %v", x)
	}
	if x != math.Trunc(x) {
		return 0, fmt.Errorf("value %v is not a whole number", x)
	}
	return int(x), nil
}

var errNotFinite = errors.New("value is not a finite number")

func parseFloat(s string) (float64, error) {
	x, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, errNotFinite
	}
	return x, nil
}
