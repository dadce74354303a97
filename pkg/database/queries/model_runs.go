package queries

import (
	"context"
	"database/sql"
	"time"

	"github.com/OldStager01/student-insights/pkg/models"
)

// ModelRun is one recorded fit of the predictor.
type ModelRun struct {
	ID          int64     `json:"id" yaml:"id"`
	Dataset     string    `json:"dataset" yaml:"dataset"`
	Seed        int64     `json:"seed" yaml:"seed"`
	TrainSize   int       `json:"train_size" yaml:"train_size"`
	HoldoutSize int       `json:"holdout_size" yaml:"holdout_size"`
	Iterations  int       `json:"iterations" yaml:"iterations"`
	Accuracy    float64   `json:"accuracy" yaml:"accuracy"`
	CreatedAt   time.Time `json:"created_at" yaml:"created_at"`
}

type ModelRunRepository struct {
	db *sql.DB
}

func NewModelRunRepository(db *sql.DB) *ModelRunRepository {
	return &ModelRunRepository{db: db}
}

func (r *ModelRunRepository) Record(ctx context.Context, dataset string, info models.ModelInfo) (*ModelRun, error) {
	run := &ModelRun{
		Dataset:     dataset,
		Seed:        info.Seed,
		TrainSize:   info.TrainSize,
		HoldoutSize: info.HoldoutSize,
		Iterations:  info.Iterations,
		Accuracy:    info.Accuracy,
	}

	query := `
		INSERT INTO model_runs (dataset, seed, train_size, holdout_size, iterations, accuracy)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		run.Dataset, run.Seed, run.TrainSize, run.HoldoutSize, run.Iterations, run.Accuracy,
	).Scan(&run.ID, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return run, nil
}

func (r *ModelRunRepository) Recent(ctx context.Context, limit int) ([]ModelRun, error) {
	if limit <= 0 {
		limit = 10
	}

	query := `
		SELECT id, dataset, seed, train_size, holdout_size, iterations, accuracy, created_at
		FROM model_runs
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []ModelRun
	for rows.Next() {
		var run ModelRun
		if err := rows.Scan(&run.ID, &run.Dataset, &run.Seed, &run.TrainSize, &run.HoldoutSize,
			&run.Iterations, &run.Accuracy, &run.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
