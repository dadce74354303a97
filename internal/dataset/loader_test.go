package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/pkg/models"
)

const sampleCSV = `ID,gender,GradeID,Topic,raisedhands,VisITedResources,AnnouncementsView,Discussion,StudentAbsenceDays,Class
1,M,G-04,IT,15,16,2,20,3,M
2,F,G-04,IT,20,20,3,25,2,M
3,M,G-04,Math,10,7,0,30,9,L
4,F,G-07,Math,80,90,40,60,1,H
5,M,G-07,Arabic,5,3,1,8,12,L
`

func TestLoad_ParsesRecords(t *testing.T) {
	ds, err := dataset.Load(strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)

	assert.Equal(t, "sample.csv", ds.Name())
	assert.Equal(t, 5, ds.Len())

	records := ds.All().Records()
	first := records[0]
	assert.Equal(t, "1", first.ID)
	assert.Equal(t, "G-04", first.GradeID)
	assert.Equal(t, "IT", first.Topic)
	assert.Equal(t, 15, first.RaisedHands)
	assert.Equal(t, 16, first.VisitedResources)
	assert.Equal(t, 20, first.Discussion)
	assert.Equal(t, 3.0, first.AbsenceDays)
	assert.Equal(t, models.ClassMedium, first.Class)
	assert.Equal(t, "M", first.Attributes["gender"])
}

func TestLoad_ColumnKinds(t *testing.T) {
	ds, err := dataset.Load(strings.NewReader(sampleCSV), "sample.csv")
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"AnnouncementsView", "Discussion", "StudentAbsenceDays", "VisitedResources", "raisedhands"},
		ds.Columns(models.ColumnNumeric),
	)
	assert.Equal(t,
		[]string{"Class", "GradeID", "ID", "Topic", "gender"},
		ds.Columns(models.ColumnCategorical),
	)
}

func TestLoad_MissingColumns(t *testing.T) {
	csv := "ID,GradeID,Topic,raisedhands,Class\n1,G-04,IT,10,H\n"

	_, err := dataset.Load(strings.NewReader(csv), "broken.csv")
	require.Error(t, err)

	assert.True(t, errors.Is(err, dataset.ErrDataSource))
	var dsErr *dataset.DataSourceError
	require.True(t, errors.As(err, &dsErr))
	assert.Contains(t, dsErr.Reason, "VisitedResources")
	assert.Contains(t, dsErr.Reason, "Discussion")
	assert.Contains(t, dsErr.Reason, "StudentAbsenceDays")
}

func TestLoad_InvalidValues(t *testing.T) {
	header := "ID,GradeID,Topic,raisedhands,VisitedResources,Discussion,StudentAbsenceDays,Class\n"
	tests := []struct {
		name string
		row  string
	}{
		{name: "unknown class", row: "1,G-04,IT,10,10,10,2,X\n"},
		{name: "negative raised hands", row: "1,G-04,IT,-1,10,10,2,H\n"},
		{name: "fractional discussion", row: "1,G-04,IT,10,10,2.5,2,H\n"},
		{name: "unparseable absence", row: "1,G-04,IT,10,10,10,often,H\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := dataset.Load(strings.NewReader(header+tt.row), "bad.csv")
			assert.ErrorIs(t, err, dataset.ErrDataSource)
		})
	}
}

func TestLoad_CategoricalAbsence(t *testing.T) {
	csv := `ID,GradeID,Topic,raisedhands,VisitedResources,Discussion,StudentAbsenceDays,Class
1,G-04,IT,10,10,10,Under-7,H
2,G-04,IT,10,10,10,Above-7,L
`
	ds, err := dataset.Load(strings.NewReader(csv), "raw.csv")
	require.NoError(t, err)

	records := ds.All().Records()
	assert.Equal(t, 0.0, records[0].AbsenceDays)
	assert.Equal(t, 1.0, records[1].AbsenceDays)
}

func TestLoad_DuplicateIDs(t *testing.T) {
	csv := `ID,GradeID,Topic,raisedhands,VisitedResources,Discussion,StudentAbsenceDays,Class
7,G-04,IT,5,5,1,10,L
7,G-04,IT,50,50,1,2,H
9,G-04,IT,50,50,1,2,H
`
	_, err := dataset.Load(strings.NewReader(csv), "dupes.csv")
	require.Error(t, err)
	assert.ErrorIs(t, err, dataset.ErrDataSource)
	assert.Contains(t, err.Error(), `duplicate ID "7" in rows 1 and 2`)
}

func TestLoad_KeepsTextualValues(t *testing.T) {
	csv := `ID,GradeID,Topic,raisedhands,VisitedResources,Discussion,StudentAbsenceDays,Class,Score
007,G-04,IT,10,10,10,2,H,2.5
008,G-04,IT,10,10,10,2,M,3
`
	ds, err := dataset.Load(strings.NewReader(csv), "ids.csv")
	require.NoError(t, err)

	records := ds.All().Records()
	assert.Equal(t, "007", records[0].ID)
	assert.Equal(t, "2.5", records[0].Attributes["Score"])
	assert.Contains(t, ds.Columns(models.ColumnNumeric), "Score")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "students.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0o644))

	ds, err := dataset.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "students.csv", ds.Name())
	assert.Equal(t, 5, ds.Len())

	_, err = dataset.LoadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.ErrorIs(t, err, dataset.ErrDataSource)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

type fakeSource struct {
	records []models.StudentRecord
	err     error
}

func (f fakeSource) ListStudents(ctx context.Context) ([]models.StudentRecord, error) {
	return f.records, f.err
}

func TestLoadFrom(t *testing.T) {
	src := fakeSource{records: []models.StudentRecord{
		{ID: "a", GradeID: "G-02", Topic: "IT", RaisedHands: 1, Class: models.ClassLow},
		{ID: "b", GradeID: "G-02", Topic: "IT", RaisedHands: 9, Class: models.ClassHigh},
	}}

	ds, err := dataset.LoadFrom(context.Background(), "postgres", src)
	require.NoError(t, err)
	assert.Equal(t, 2, ds.Len())

	_, err = dataset.LoadFrom(context.Background(), "postgres", fakeSource{})
	assert.ErrorIs(t, err, dataset.ErrDataSource)

	_, err = dataset.LoadFrom(context.Background(), "postgres", fakeSource{err: errors.New("connection refused")})
	assert.ErrorIs(t, err, dataset.ErrDataSource)
}

func TestParseAbsence(t *testing.T) {
	tests := []struct {
		input    string
		expected float64
		wantErr  bool
	}{
		{input: "7", expected: 7},
		{input: " 4.5 ", expected: 4.5},
		{input: "under-7", expected: 0},
		{input: "ABOVE-7", expected: 1},
		{input: "-3", wantErr: true},
		{input: "NaN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := dataset.ParseAbsence(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
