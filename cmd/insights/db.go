package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/OldStager01/student-insights/internal/dataset"
	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/internal/render"
	"github.com/OldStager01/student-insights/pkg/database"
	"github.com/OldStager01/student-insights/pkg/database/queries"
)

func newMigrateCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			timeout := c.cfg.Database.MigrationTimeout
			if timeout <= 0 {
				timeout = loadTimeout
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			logger.Info("Running database migrations")
			applied, err := database.NewMigrator(db).Run(ctx)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			logger.Info("Migrations completed successfully")

			if err := c.printer.Print(map[string][]string{"applied": applied}); err != nil {
				return err
			}
			c.printer.Success("%d migration(s) applied", len(applied))
			return nil
		},
	}
}

func newSeedCmd(c *cli) *cobra.Command {
	var (
		path    string
		replace bool
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load a CSV dataset into the students table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = c.cfg.Dataset.Path
			}
			ds, err := dataset.LoadFile(path)
			if err != nil {
				return err
			}

			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(cmd.Context(), loadTimeout)
			defer cancel()

			if err := db.RequireTables(ctx, "students"); err != nil {
				return schemaError(ds.Name(), err)
			}

			repo := queries.NewStudentRepository(db.DB)
			if replace {
				removed, err := repo.DeleteAll(ctx)
				if err != nil {
					return fmt.Errorf("failed to clear students: %w", err)
				}
				logger.WithDataset(ds.Name()).WithField("removed", removed).Info("Students table cleared")
			}

			if err := repo.Upsert(ctx, ds.All().Records()); err != nil {
				return fmt.Errorf("failed to seed students: %w", err)
			}
			total, err := repo.Count(ctx)
			if err != nil {
				return err
			}
			logger.WithDataset(ds.Name()).WithField("data.samples", ds.Len()).Info("Students seeded")

			out := map[string]int{"seeded": ds.Len(), "total": total}
			if err := c.printer.Print(out); err != nil {
				return err
			}
			c.printer.Success("Seeded %d students (%d in table)", ds.Len(), total)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "file", "", "CSV file to load (default dataset.path)")
	cmd.Flags().BoolVar(&replace, "replace", false, "delete existing students first")
	return cmd
}

func newRunsCmd(c *cli) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent model fits recorded in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := c.openDB()
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := queries.NewModelRunRepository(db.DB).Recent(cmd.Context(), limit)
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(runs))
			for _, r := range runs {
				rows = append(rows, []string{
					strconv.FormatInt(r.ID, 10), r.Dataset, strconv.FormatInt(r.Seed, 10),
					strconv.Itoa(r.TrainSize), strconv.Itoa(r.HoldoutSize), strconv.Itoa(r.Iterations),
					render.Percent(r.Accuracy * 100), r.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			return c.printer.Print(runs, render.Table{
				Title:  "Model runs",
				Header: []string{"ID", "Dataset", "Seed", "Train", "Holdout", "Iterations", "Accuracy", "Created"},
				Rows:   rows,
			})
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to list")
	return cmd
}
