package queries_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/student-insights/pkg/database"
	"github.com/OldStager01/student-insights/pkg/database/queries"
	"github.com/OldStager01/student-insights/pkg/models"
)

// openTestDB connects to the database named by INSIGHTS_TEST_DB_HOST and skips otherwise.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	host := os.Getenv("INSIGHTS_TEST_DB_HOST")
	if host == "" {
		t.Skip("INSIGHTS_TEST_DB_HOST not set")
	}

	db, err := database.New(database.Config{
		Host:           host,
		Port:           5432,
		Name:           "insights_test",
		User:           os.Getenv("INSIGHTS_TEST_DB_USER"),
		Password:       os.Getenv("INSIGHTS_TEST_DB_PASSWORD"),
		MaxConnections: 2,
		PingTimeout:    5 * time.Second,
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = database.NewMigrator(db).Run(context.Background())
	require.NoError(t, err)
	return db
}

func TestStudentRepository_RoundTrip(t *testing.T) {
	db := openTestDB(t)
	repo := queries.NewStudentRepository(db.DB)
	ctx := context.Background()

	_, err := repo.DeleteAll(ctx)
	require.NoError(t, err)

	students := []models.StudentRecord{
		{ID: "1", GradeID: "G-04", Topic: "IT", RaisedHands: 15, VisitedResources: 16, Discussion: 20,
			AbsenceDays: 1, Class: models.ClassMedium, Attributes: map[string]string{"gender": "M"}},
		{ID: "2", GradeID: "G-07", Topic: "Math", RaisedHands: 80, VisitedResources: 90, Discussion: 70,
			AbsenceDays: 0, Class: models.ClassHigh},
	}
	require.NoError(t, repo.Upsert(ctx, students))
	require.NoError(t, repo.Upsert(ctx, students[:1]))

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	loaded, err := repo.ListStudents(ctx)
	require.NoError(t, err)
	assert.Equal(t, students, loaded)
}

func TestModelRunRepository_Record(t *testing.T) {
	db := openTestDB(t)
	repo := queries.NewModelRunRepository(db.DB)
	ctx := context.Background()

	run, err := repo.Record(ctx, "students", models.ModelInfo{Seed: 42, TrainSize: 8, HoldoutSize: 2, Iterations: 100, Accuracy: 0.5})
	require.NoError(t, err)
	assert.NotZero(t, run.ID)

	recent, err := repo.Recent(ctx, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, run.ID, recent[0].ID)
}
