package config

import (
	"github.com/OldStager01/student-insights/internal/predictor"
	"github.com/OldStager01/student-insights/pkg/database"
)

func (d DatabaseConfig) ToDBConfig() database.Config {
	return database.Config{
		Host:            d.Host,
		Port:            d.Port,
		Name:            d.Name,
		User:            d.User,
		Password:        d.Password,
		MaxConnections:  d.MaxConnections,
		SSLMode:         d.SSLMode,
		ConnMaxLifetime: d.ConnMaxLifetime,
		ConnMaxIdleTime: d.ConnMaxIdleTime,
		PingTimeout:     d.PingTimeout,
	}
}

func (m ModelConfig) ToPredictorConfig() predictor.Config {
	return predictor.Config{
		Seed:          m.Seed,
		TestRatio:     m.TestRatio,
		MaxIterations: m.MaxIterations,
		LearningRate:  m.LearningRate,
		L2:            m.L2,
		Tolerance:     m.Tolerance,
		MinRows:       m.MinRows,
	}
}
