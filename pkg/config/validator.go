package config

import (
	"errors"
	"fmt"
)

func (c *Config) Validate() error {
	var errs []error

	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	switch c.Dataset.Source {
	case SourceCSV:
		if c.Dataset.Path == "" {
			errs = append(errs, errors.New("dataset.path is required for csv source"))
		}
	case SourcePostgres:
		if c.Database.Host == "" {
			errs = append(errs, errors.New("database.host is required"))
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, errors.New("database.port must be between 1 and 65535"))
		}
		if c.Database.Name == "" {
			errs = append(errs, errors.New("database.name is required"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
		if c.Dataset.LoadAttempts <= 0 {
			errs = append(errs, errors.New("dataset.load_attempts must be positive"))
		}
	default:
		errs = append(errs, fmt.Errorf("dataset.source must be one of: %s, %s", SourceCSV, SourcePostgres))
	}

	if c.Model.TestRatio <= 0 || c.Model.TestRatio >= 1 {
		errs = append(errs, errors.New("model.test_ratio must be between 0 and 1 (exclusive)"))
	}
	if c.Model.MaxIterations <= 0 {
		errs = append(errs, errors.New("model.max_iterations must be positive"))
	}
	if c.Model.LearningRate <= 0 {
		errs = append(errs, errors.New("model.learning_rate must be positive"))
	}
	if c.Model.L2 < 0 {
		errs = append(errs, errors.New("model.l2 must not be negative"))
	}
	if c.Model.MinRows < 2 {
		errs = append(errs, errors.New("model.min_rows must be at least 2"))
	}

	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}
	if c.API.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("api.max_body_bytes must be positive"))
	}

	if c.Metrics.Enabled && (c.Metrics.Port <= 0 || c.Metrics.Port > 65535) {
		errs = append(errs, errors.New("metrics.port must be between 1 and 65535"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}

	return nil
}
