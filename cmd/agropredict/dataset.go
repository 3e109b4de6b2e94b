package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/agropredict-cli/internal/advisor"
	"github.com/idlab-discover/agropredict-cli/internal/apperr"
	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	bomio "github.com/idlab-discover/agropredict-cli/internal/io"
	"github.com/idlab-discover/agropredict-cli/internal/ui"
)

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Export or summarise the synthetic dataset",
}

var (
	exportOutput      string
	exportCompression string
	exportLogLevel    string

	summaryFormat   string
	summaryLogLevel string
	summaryInsights bool
)

var datasetExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the dataset as CSV (optionally gzip or zstd compressed)",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := resolveLogLevel("export")
		if err != nil {
			return err
		}
		output := strings.TrimSpace(viper.GetString("export.output"))
		c, err := bomio.ParseCompression(viper.GetString("export.compression"), output)
		if err != nil {
			return apperr.User(err.Error())
		}
		if output == "" {
			output = "agro_data.csv" + c.Extension()
		}

		ds, err := loadDataset()
		if err != nil {
			return err
		}
		if err := bomio.ExportDataset(ds, output, c); err != nil {
			return err
		}
		if level != "quiet" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatStatus("success",
				fmt.Sprintf("Wrote %d rows to %s (%s, fingerprint %s)", ds.Len(), ui.Highlight.Render(output), c, ds.FingerprintHex())))
		}
		return nil
	},
}

var datasetSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print descriptive statistics and chart series",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := resolveLogLevel("summary")
		if err != nil {
			return err
		}
		ds, err := loadDataset()
		if err != nil {
			return err
		}
		sum := ds.Summarize()

		switch format := strings.ToLower(strings.TrimSpace(viper.GetString("summary.format"))); format {
		case "", "table":
			ui.NewReportUI(cmd.OutOrStdout(), level == "quiet").PrintSummary(sum)
			if viper.GetBool("summary.insights") {
				printInsights(cmd, ds, level)
			}
			return nil
		case "json", "yaml", "yml":
			return bomio.Encode(cmd.OutOrStdout(), sum, format)
		default:
			return apperr.Userf("invalid --format %q (expected table|json|yaml)", format)
		}
	},
}

// printInsights asks the advisor about the first rows. Failures are notices.
func printInsights(cmd *cobra.Command, ds *dataset.Dataset, level string) {
	wireLogging(level, cmd.ErrOrStderr())
	out := ui.NewPredictionUI(cmd.OutOrStdout(), level == "quiet")
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	adv, err := advisor.New(ctx, advisorConfig())
	if err != nil {
		out.PrintNotice(err.Error())
		return
	}
	text, err := adv.Insights(ctx, ds.Head(advisor.InsightsSampleSize))
	if err != nil {
		out.PrintNotice(err.Error())
		return
	}
	out.PrintAdvice(text)
}

func init() {
	datasetCmd.AddCommand(datasetExportCmd, datasetSummaryCmd)

	datasetExportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output path (default agro_data.csv plus the compression suffix; .gz/.zst select compression)")
	datasetExportCmd.Flags().StringVar(&exportCompression, "compression", "", "Compression: auto|none|gzip|zstd")
	datasetExportCmd.Flags().StringVar(&exportLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	datasetSummaryCmd.Flags().StringVarP(&summaryFormat, "format", "f", "", "Output format: table|json|yaml")
	datasetSummaryCmd.Flags().StringVar(&summaryLogLevel, "log-level", "", "Log level: quiet|standard|debug")
	datasetSummaryCmd.Flags().BoolVar(&summaryInsights, "insights", false, "Ask the AI advisor for key insights about the data")

	viper.BindPFlag("export.output", datasetExportCmd.Flags().Lookup("output"))
	viper.BindPFlag("export.compression", datasetExportCmd.Flags().Lookup("compression"))
	viper.BindPFlag("export.log-level", datasetExportCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("summary.format", datasetSummaryCmd.Flags().Lookup("format"))
	viper.BindPFlag("summary.log-level", datasetSummaryCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("summary.insights", datasetSummaryCmd.Flags().Lookup("insights"))
}
