package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/insights"
	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/internal/metrics"
	"github.com/OldStager01/student-insights/internal/predictor"
	"github.com/OldStager01/student-insights/internal/resilience"
	"github.com/OldStager01/student-insights/pkg/config"
	"github.com/OldStager01/student-insights/pkg/database"
	"github.com/OldStager01/student-insights/pkg/database/queries"
)

const loadTimeout = 60 * time.Second

// runtime is everything a query or the server needs: the service plus the
// database handle when records come from Postgres.
type runtime struct {
	svc *insights.Service
	db  *database.DB
}

func (r *runtime) Close() {
	if r.db != nil {
		r.db.Close()
	}
}

func (c *cli) openDB() (*database.DB, error) {
	db, err := database.New(c.cfg.Database.ToDBConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	logger.Infof("Database connection established (%s)", c.cfg.Database.Address())
	return db, nil
}

// bootstrap loads the configured dataset and fits the predictor. A dataset too
// small to train on still yields a runtime; prediction calls then fail with
// insights.ErrModelUnavailable.
func (c *cli) bootstrap(ctx context.Context) (*runtime, error) {
	ctx, cancel := context.WithTimeout(ctx, loadTimeout)
	defer cancel()

	rt := &runtime{}
	var (
		ds  *dataset.Dataset
		err error
	)

	switch c.cfg.Dataset.Source {
	case config.SourcePostgres:
		if rt.db, err = c.openDB(); err != nil {
			return nil, err
		}
		if err = rt.db.RequireTables(ctx, "students"); err != nil {
			rt.Close()
			return nil, schemaError(c.cfg.Dataset.Name, err)
		}
		src := resilience.NewResilientSource(queries.NewStudentRepository(rt.db.DB), resilience.SourceConfig{
			Name:     c.cfg.Dataset.Name,
			Attempts: c.cfg.Dataset.LoadAttempts,
			Delay:    c.cfg.Dataset.RetryDelay,
		})
		ds, err = dataset.LoadFrom(ctx, c.cfg.Dataset.Name, src)
	default:
		ds, err = dataset.LoadFile(c.cfg.Dataset.Path)
	}
	if err != nil {
		rt.Close()
		return nil, err
	}

	m := metrics.Get()
	m.SetDatasetRows(ds.Name(), ds.Len())

	start := time.Now()
	model, err := predictor.Fit(ds, c.cfg.Model.ToPredictorConfig())
	switch {
	case errors.Is(err, predictor.ErrInsufficientData):
		logger.WithDataset(ds.Name()).WithError(err).Warn("Predictor disabled")
	case err != nil:
		rt.Close()
		return nil, err
	default:
		m.SetModel(model.Evaluate(), time.Since(start))
		if rt.db != nil {
			c.recordRun(ctx, rt.db, ds.Name(), model)
		}
	}

	rt.svc = insights.New(ds, model, m)
	return rt, nil
}

// schemaError points the user at the migrate command when tables are missing.
func schemaError(source string, err error) error {
	reason := "check schema"
	if errors.Is(err, database.ErrSchemaMissing) {
		reason = "run `insights migrate` first"
	}
	return &dataset.DataSourceError{Source: source, Reason: reason, Err: err}
}

// recordRun stores the fit outcome. Failure only costs the history entry.
func (c *cli) recordRun(ctx context.Context, db *database.DB, name string, model *predictor.Model) {
	run, err := queries.NewModelRunRepository(db.DB).Record(ctx, name, model.Info())
	if err != nil {
		logger.WithDataset(name).WithError(err).Warn("Failed to record model run")
		return
	}
	logger.WithDataset(name).WithField("run_id", run.ID).Info("Model run recorded")
}
