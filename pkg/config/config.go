package config

import (
	"fmt"
	"time"
)

type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Dataset  DatasetConfig  `mapstructure:"dataset"`
	Database DatabaseConfig `mapstructure:"database"`
	Model    ModelConfig    `mapstructure:"model"`
	API      APIConfig      `mapstructure:"api"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// DatasetConfig selects where student records are loaded from at startup.
type DatasetConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
	Name   string `mapstructure:"name"`
	// LoadAttempts and RetryDelay govern retries of the postgres source.
	LoadAttempts int           `mapstructure:"load_attempts"`
	RetryDelay   time.Duration `mapstructure:"retry_delay"`
}

type DatabaseConfig struct {
	Host             string        `mapstructure:"host"`
	Port             int           `mapstructure:"port"`
	Name             string        `mapstructure:"name"`
	User             string        `mapstructure:"user"`
	Password         string        `mapstructure:"password"`
	MaxConnections   int           `mapstructure:"max_connections"`
	SSLMode          string        `mapstructure:"ssl_mode"`
	ConnMaxLifetime  time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime  time.Duration `mapstructure:"conn_max_idle_time"`
	PingTimeout      time.Duration `mapstructure:"ping_timeout"`
	MigrationTimeout time.Duration `mapstructure:"migration_timeout"`
}

func (d DatabaseConfig) Address() string {
	return fmt.Sprintf("%s:%d/%s", d.Host, d.Port, d.Name)
}

type ModelConfig struct {
	Seed          int64   `mapstructure:"seed"`
	TestRatio     float64 `mapstructure:"test_ratio"`
	MaxIterations int     `mapstructure:"max_iterations"`
	LearningRate  float64 `mapstructure:"learning_rate"`
	L2            float64 `mapstructure:"l2"`
	Tolerance     float64 `mapstructure:"tolerance"`
	MinRows       int     `mapstructure:"min_rows"`
}

type APIConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	// RateLimit is the number of requests per minute allowed per client IP.
	RateLimit    int        `mapstructure:"rate_limit"`
	MaxBodyBytes int64      `mapstructure:"max_body_bytes"`
	CORS         CORSConfig `mapstructure:"cors"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}
