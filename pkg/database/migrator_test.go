package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/student-insights/pkg/database"
)

func TestMigrationFiles_Ordered(t *testing.T) {
	files, err := database.MigrationFiles()
	require.NoError(t, err)

	assert.Equal(t, []string{"001_create_students.sql", "002_create_model_runs.sql"}, files)
}

func TestConfig_DSN(t *testing.T) {
	tests := []struct {
		name     string
		cfg      database.Config
		expected string
	}{
		{
			name:     "explicit ssl mode",
			cfg:      database.Config{Host: "db", Port: 5433, Name: "insights", User: "u", Password: "p", SSLMode: "require"},
			expected: "host=db port=5433 user=u password=p dbname=insights sslmode=require",
		},
		{
			name:     "ssl mode defaults to disable",
			cfg:      database.Config{Host: "localhost", Port: 5432, Name: "insights", User: "u", Password: "p"},
			expected: "host=localhost port=5432 user=u password=p dbname=insights sslmode=disable",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.cfg.DSN())
		})
	}
}

func TestMissingTables(t *testing.T) {
	err := database.MissingTables([]string{"students", "model_runs"}, map[string]bool{"students": true, "model_runs": true})
	assert.NoError(t, err)

	err = database.MissingTables([]string{"students", "model_runs"}, map[string]bool{"model_runs": true})
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrSchemaMissing)
	assert.Contains(t, err.Error(), "missing table(s) students")

	err = database.MissingTables([]string{"students", "model_runs"}, nil)
	assert.Contains(t, err.Error(), "students, model_runs")
}
