package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/student-insights/pkg/config"
)

func validConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:     "test-app",
			Mode:     "development",
			LogLevel: "info",
		},
		Dataset: config.DatasetConfig{
			Source: config.SourceCSV,
			Path:   "data/processed_dataset.csv",
			Name:   "students",

			LoadAttempts: 3,
		},
		Database: config.DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			Name:           "testdb",
			User:           "user",
			Password:       "pass",
			MaxConnections: 10,
		},
		Model: config.ModelConfig{
			Seed:          42,
			TestRatio:     0.2,
			MaxIterations: 1000,
			LearningRate:  0.1,
			L2:            1.0,
			Tolerance:     1e-6,
			MinRows:       10,
		},
		API: config.APIConfig{
			Port:         8080,
			RateLimit:    60,
			MaxBodyBytes: 1024,
		},
		Metrics: config.MetricsConfig{
			Enabled: true,
			Port:    9090,
		},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modifyFunc  func(*config.Config)
		expectErr   bool
		errContains string
	}{
		{
			name:       "valid config",
			modifyFunc: func(c *config.Config) {},
			expectErr:  false,
		},
		{
			name: "unknown dataset source",
			modifyFunc: func(c *config.Config) {
				c.Dataset.Source = "excel"
			},
			expectErr:   true,
			errContains: "dataset.source must be one of",
		},
		{
			name: "csv source without path",
			modifyFunc: func(c *config.Config) {
				c.Dataset.Path = ""
			},
			expectErr:   true,
			errContains: "dataset.path is required",
		},
		{
			name: "postgres source checks database",
			modifyFunc: func(c *config.Config) {
				c.Dataset.Source = config.SourcePostgres
				c.Database.Host = ""
			},
			expectErr:   true,
			errContains: "database.host is required",
		},
		{
			name: "postgres source needs load attempts",
			modifyFunc: func(c *config.Config) {
				c.Dataset.Source = config.SourcePostgres
				c.Dataset.LoadAttempts = 0
			},
			expectErr:   true,
			errContains: "dataset.load_attempts must be positive",
		},
		{
			name: "csv source ignores database",
			modifyFunc: func(c *config.Config) {
				c.Database.Host = ""
			},
			expectErr: false,
		},
		{
			name: "test ratio out of range",
			modifyFunc: func(c *config.Config) {
				c.Model.TestRatio = 1.0
			},
			expectErr:   true,
			errContains: "model.test_ratio",
		},
		{
			name: "min rows below two",
			modifyFunc: func(c *config.Config) {
				c.Model.MinRows = 1
			},
			expectErr:   true,
			errContains: "model.min_rows must be at least 2",
		},
		{
			name: "invalid api port",
			modifyFunc: func(c *config.Config) {
				c.API.Port = 70000
			},
			expectErr:   true,
			errContains: "api.port",
		},
		{
			name: "invalid log level",
			modifyFunc: func(c *config.Config) {
				c.App.LogLevel = "verbose"
			},
			expectErr:   true,
			errContains: "app.log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modifyFunc(cfg)

			err := cfg.Validate()

			if tt.expectErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateReportsAllViolations(t *testing.T) {
	cfg := validConfig()
	cfg.App.Name = ""
	cfg.Model.LearningRate = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.name is required")
	assert.Contains(t, err.Error(), "model.learning_rate must be positive")
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  mode: test
dataset:
  path: /data/students.csv
model:
  seed: 7
api:
  read_timeout: 3s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("INSIGHTS_MODEL_MAX_ITERATIONS", "250")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Mode)
	assert.Equal(t, "student-insights", cfg.App.Name)
	assert.Equal(t, "/data/students.csv", cfg.Dataset.Path)
	assert.Equal(t, config.SourceCSV, cfg.Dataset.Source)
	assert.Equal(t, int64(7), cfg.Model.Seed)
	assert.Equal(t, 250, cfg.Model.MaxIterations)
	assert.Equal(t, 0.2, cfg.Model.TestRatio)
	assert.Equal(t, 3*time.Second, cfg.API.ReadTimeout)
	assert.Equal(t, []string{"*"}, cfg.API.CORS.AllowedOrigins)
	assert.NoError(t, cfg.Validate())
}

func TestModelConfig_ToPredictorConfig(t *testing.T) {
	m := validConfig().Model
	m.Seed = 99

	pc := m.ToPredictorConfig()
	assert.Equal(t, int64(99), pc.Seed)
	assert.Equal(t, 0.2, pc.TestRatio)
	assert.Equal(t, 1000, pc.MaxIterations)
	assert.Equal(t, 10, pc.MinRows)
}

func TestDatabaseConfig_ToDBConfig(t *testing.T) {
	dbCfg := config.DatabaseConfig{
		Host:     "localhost",
		Port:     5432,
		Name:     "testdb",
		User:     "admin",
		Password: "secret",
		SSLMode:  "disable",
	}

	dsn := dbCfg.ToDBConfig().DSN()

	expected := "host=localhost port=5432 user=admin password=secret dbname=testdb sslmode=disable"
	assert.Equal(t, expected, dsn)
	assert.Equal(t, "localhost:5432/testdb", dbCfg.Address())
}
