package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/agropredict-cli/internal/trainer"
	"github.com/idlab-discover/agropredict-cli/internal/ui"
)

const dashboardHeadRows = 15

var dashboardLogLevel string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Open the interactive dashboard",
	Long:  "Full-screen dashboard with overview, dataset, analytics, model lab and roadmap tabs. Models train in the background while the dashboard is open.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := resolveLogLevel("dashboard"); err != nil {
			return err
		}
		// Package logs would tear the full-screen view.
		wireLogging("quiet", nil)

		ds, err := loadDataset()
		if err != nil {
			return err
		}
		opts, err := trainOptions()
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		return ui.RunDashboard(ctx, ui.DashboardConfig{
			Summary: ds.Summarize(),
			Head:    ds.Head(dashboardHeadRows),
			Load: func(ctx context.Context) (ui.Benchmark, error) {
				res, err := trainer.Train(ctx, ds, opts)
				if err != nil {
					return ui.Benchmark{}, err
				}
				return benchmarkOf(res), nil
			},
			Input:  cmd.InOrStdin(),
			Output: cmd.OutOrStdout(),
		})
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardLogLevel, "log-level", "", "Log level: quiet|standard|debug")
	viper.BindPFlag("dashboard.log-level", dashboardCmd.Flags().Lookup("log-level"))
}
