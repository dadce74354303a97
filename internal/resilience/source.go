package resilience

import (
	"context"
	"time"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/pkg/models"
)

// ResilientSource retries a record source behind a circuit breaker. It satisfies
// dataset.RecordSource.
type ResilientSource struct {
	source   dataset.RecordSource
	breaker  *CircuitBreaker
	attempts int
	delay    time.Duration
}

type SourceConfig struct {
	Name        string
	Attempts    int
	Delay       time.Duration
	MaxFailures int
	Cooldown    time.Duration
}

func NewResilientSource(src dataset.RecordSource, cfg SourceConfig) *ResilientSource {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 3
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}

	return &ResilientSource{
		source: src,
		breaker: NewCircuitBreaker(CircuitBreakerConfig{
			Name:        cfg.Name,
			MaxFailures: cfg.MaxFailures,
			Cooldown:    cfg.Cooldown,
			OnStateChange: func(name string, from, to State) {
				logger.WithDataset(name).Warnf("Record source circuit %s -> %s", from, to)
			},
		}),
		attempts: cfg.Attempts,
		delay:    cfg.Delay,
	}
}

func (s *ResilientSource) ListStudents(ctx context.Context) ([]models.StudentRecord, error) {
	var (
		records []models.StudentRecord
		lastErr error
	)

	for attempt := 1; attempt <= s.attempts; attempt++ {
		lastErr = s.breaker.Execute(ctx, func(ctx context.Context) error {
			var err error
			records, err = s.source.ListStudents(ctx)
			return err
		})
		if lastErr == nil {
			return records, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		logger.WithField("attempt", attempt).Warnf("Loading students failed (%d/%d): %v", attempt, s.attempts, lastErr)

		if attempt < s.attempts {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(s.delay):
			}
		}
	}
	return nil, lastErr
}

func (s *ResilientSource) CircuitState() State {
	return s.breaker.State()
}
