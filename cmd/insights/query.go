package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OldStager01/student-insights/internal/insights"
	"github.com/OldStager01/student-insights/internal/render"
	"github.com/OldStager01/student-insights/pkg/validation"
)

// withService bootstraps a runtime for the duration of fn.
func (c *cli) withService(ctx context.Context, fn func(svc *insights.Service) error) error {
	rt, err := c.bootstrap(ctx)
	if err != nil {
		return err
	}
	defer rt.Close()
	return fn(rt.svc)
}

func newFiltersCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "filters",
		Short: "List selectable grade, topic and class values",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *insights.Service) error {
				opts := svc.Filters()
				return c.printer.Print(opts, render.FilterTable(opts))
			})
		},
	}
}

func newOverviewCmd(c *cli) *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "overview",
		Short: "Show headline metrics for the selected students",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *insights.Service) error {
				res, err := svc.Overview(f.criteria())
				if err != nil {
					return err
				}
				return c.printer.Print(res, render.OverviewTable(res))
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newDistributionCmd(c *cli) *cobra.Command {
	var (
		f     filterFlags
		scope string
	)
	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Count students per performance class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *insights.Service) error {
				res, err := svc.Distribution(f.criteria(), insights.Scope(scope))
				if err != nil {
					return err
				}
				return c.printer.Print(res, render.DistributionTable(res))
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&scope, "scope", string(insights.ScopeFiltered), "count the filtered view or all records (filtered|all)")
	return cmd
}

func newGroupsCmd(c *cli) *cobra.Command {
	var (
		f            filterFlags
		by           string
		classField   string
		trend        string
		includeEmpty bool
	)
	cmd := &cobra.Command{
		Use:   "groups",
		Short: "Break class shares down by one or more grouping columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := validation.ParseColumns(by)
			if err != nil {
				return err
			}
			return c.withService(cmd.Context(), func(svc *insights.Service) error {
				res, err := svc.Groups(insights.GroupQuery{
					Criteria:     f.criteria(),
					By:           fields,
					ClassField:   classField,
					Trend:        trend,
					IncludeEmpty: includeEmpty,
				})
				if err != nil {
					return err
				}
				return c.printer.Print(res, render.GroupsTables(res)...)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&by, "by", "GradeID", "comma separated grouping columns")
	cmd.Flags().StringVar(&classField, "class-field", "Class", "categorical column whose shares are reported")
	cmd.Flags().StringVar(&trend, "trend", "", "also report this category's share per group")
	cmd.Flags().BoolVar(&includeEmpty, "include-empty", false, "report groups with no matching students")
	return cmd
}

func newDescribeCmd(c *cli) *cobra.Command {
	var (
		f       filterFlags
		columns string
	)
	cmd := &cobra.Command{
		Use:   "describe",
		Short: "Summary statistics for numeric columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := validation.ParseColumns(columns)
			if err != nil {
				return err
			}
			return c.withService(cmd.Context(), func(svc *insights.Service) error {
				res, err := svc.Summary(f.criteria(), cols)
				if err != nil {
					return err
				}
				return c.printer.Print(res, render.SummaryTable(res))
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&columns, "columns", "", "comma separated numeric columns (default all)")
	return cmd
}

func newCorrelationCmd(c *cli) *cobra.Command {
	var (
		f       filterFlags
		columns string
	)
	cmd := &cobra.Command{
		Use:   "correlation",
		Short: "Pearson correlation matrix of numeric columns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cols, err := validation.ParseColumns(columns)
			if err != nil {
				return err
			}
			return c.withService(cmd.Context(), func(svc *insights.Service) error {
				res, err := svc.Correlation(f.criteria(), cols)
				if err != nil {
					return err
				}
				return c.printer.Print(res, render.CorrelationTable(res))
			})
		},
	}
	f.register(cmd)
	cmd.Flags().StringVar(&columns, "columns", "", "comma separated numeric columns (default all)")
	return cmd
}

func newAbsenceCmd(c *cli) *cobra.Command {
	var f filterFlags
	cmd := &cobra.Command{
		Use:   "absence",
		Short: "Absence statistics per performance class",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *insights.Service) error {
				res, err := svc.Absence(f.criteria())
				if err != nil {
					return err
				}
				return c.printer.Print(res, render.AbsenceTable(res))
			})
		},
	}
	f.register(cmd)
	return cmd
}

func newAtRiskCmd(c *cli) *cobra.Command {
	var (
		f       filterFlags
		flagged bool
	)
	cmd := &cobra.Command{
		Use:   "at-risk",
		Short: "Flag students below average engagement with above average absence",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *insights.Service) error {
				res, err := svc.AtRisk(f.criteria(), flagged)
				if err != nil {
					return err
				}
				return c.printer.Print(res, render.RiskTables(res)...)
			})
		},
	}
	f.register(cmd)
	cmd.Flags().BoolVar(&flagged, "flagged", false, "list only flagged students")
	return cmd
}

func newPredictCmd(c *cli) *cobra.Command {
	var in insights.PredictInput
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the performance class from engagement features",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range []string{"raised-hands", "visited-resources", "discussion"} {
				if !cmd.Flags().Changed(name) {
					return fmt.Errorf("%w: --%s is required", validation.ErrInvalidInput, name)
				}
			}
			return c.withService(cmd.Context(), func(svc *insights.Service) error {
				res, err := svc.Predict(in)
				if err != nil {
					return err
				}
				return c.printer.Print(res, render.PredictionTable(res))
			})
		},
	}
	cmd.Flags().Float64Var(&in.RaisedHands, "raised-hands", 0, "times the student raised a hand")
	cmd.Flags().Float64Var(&in.VisitedResources, "visited-resources", 0, "course resources visited")
	cmd.Flags().Float64Var(&in.Discussion, "discussion", 0, "discussion group participation")
	return cmd
}

func newModelCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "model",
		Short: "Describe the fitted predictor",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withService(cmd.Context(), func(svc *insights.Service) error {
				info, err := svc.ModelInfo()
				if err != nil {
					return err
				}
				return c.printer.Print(info, render.ModelTables(info)...)
			})
		},
	}
}
