package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const EnvPrefix = "INSIGHTS"

func Load(configPath string) (*Config, error) {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/student-insights")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "student-insights")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "10s")

	v.SetDefault("dataset.source", SourceCSV)
	v.SetDefault("dataset.path", "data/processed_dataset.csv")
	v.SetDefault("dataset.name", "students")
	v.SetDefault("dataset.load_attempts", 3)
	v.SetDefault("dataset.retry_delay", "2s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "insights")
	v.SetDefault("database.user", "admin")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.migration_timeout", "30s")

	v.SetDefault("model.seed", 42)
	v.SetDefault("model.test_ratio", 0.2)
	v.SetDefault("model.max_iterations", 1000)
	v.SetDefault("model.learning_rate", 0.1)
	v.SetDefault("model.l2", 1.0)
	v.SetDefault("model.tolerance", 1e-6)
	v.SetDefault("model.min_rows", 10)

	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.rate_limit", 120)
	v.SetDefault("api.max_body_bytes", 1<<20)
	v.SetDefault("api.cors.allowed_origins", []string{"*"})
	v.SetDefault("api.cors.allowed_methods", []string{"GET", "POST", "OPTIONS"})
	v.SetDefault("api.cors.allowed_headers", []string{"Content-Type", "X-Trace-ID"})
	v.SetDefault("api.cors.exposed_headers", []string{"X-Trace-ID"})

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
}
