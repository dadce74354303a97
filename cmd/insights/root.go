package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OldStager01/student-insights/internal/logger"
	"github.com/OldStager01/student-insights/internal/render"
	"github.com/OldStager01/student-insights/pkg/config"
	"github.com/OldStager01/student-insights/pkg/models"
)

// cli holds state shared by every subcommand once the root pre-run has loaded it.
type cli struct {
	configPath string
	output     string

	cfg     *config.Config
	printer *render.Printer
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:           "insights",
		Short:         "Student performance insights over an engagement dataset",
		Long:          "insights loads a student engagement dataset, fits a class predictor and answers filter, aggregation, risk and prediction queries from the terminal or over HTTP.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init(cmd)
		},
	}

	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVarP(&c.output, "output", "o", "table", "output format: table, json or yaml")

	root.AddCommand(
		newServeCmd(c),
		newFiltersCmd(c),
		newOverviewCmd(c),
		newDistributionCmd(c),
		newGroupsCmd(c),
		newDescribeCmd(c),
		newCorrelationCmd(c),
		newAbsenceCmd(c),
		newAtRiskCmd(c),
		newPredictCmd(c),
		newModelCmd(c),
		newMigrateCmd(c),
		newSeedCmd(c),
		newRunsCmd(c),
	)
	return root
}

func (c *cli) init(cmd *cobra.Command) error {
	format, err := render.ParseFormat(c.output)
	if err != nil {
		return err
	}
	c.printer = render.NewPrinter(cmd.OutOrStdout(), format)

	cfg, err := config.Load(c.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	c.cfg = cfg

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	return nil
}

// filterFlags are the grade, topic and class selectors shared by query commands.
type filterFlags struct {
	grade string
	topic string
	class string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.grade, "grade", "", "filter by grade id (empty or \"All\" for every grade)")
	cmd.Flags().StringVar(&f.topic, "topic", "", "filter by topic")
	cmd.Flags().StringVar(&f.class, "class", "", "filter by performance class (H, M or L)")
}

func (f *filterFlags) criteria() models.FilterCriteria {
	return models.FilterCriteria{GradeID: f.grade, Topic: f.topic, Class: f.class}
}
