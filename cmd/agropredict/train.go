package cmd

import (
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/agropredict-cli/internal/apperr"
	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	bomio "github.com/idlab-discover/agropredict-cli/internal/io"
	"github.com/idlab-discover/agropredict-cli/internal/ml"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
	"github.com/idlab-discover/agropredict-cli/internal/ui"
)

var (
	trainFormat       string
	trainLogLevel     string
	trainPlainSummary bool
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Benchmark the three yield regressors",
	Long:  "Encodes the dataset, holds out a test partition and reports R², RMSE and MAE for Linear Regression, Decision Tree and Random Forest.",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := resolveLogLevel("train")
		if err != nil {
			return err
		}
		wireLogging(level, cmd.ErrOrStderr())

		format := strings.ToLower(strings.TrimSpace(viper.GetString("train.format")))
		switch format {
		case "":
			format = "table"
		case "table", "json", "yaml", "yml":
			// ok
		default:
			return apperr.Userf("invalid --format %q (expected table|json|yaml)", format)
		}
		plain := viper.GetBool("train.plain-summary")

		ds, err := loadDataset()
		if err != nil {
			return err
		}
		opts, err := trainOptions()
		if err != nil {
			return err
		}

		// Structured output keeps stdout clean for piping.
		progressOut := cmd.OutOrStdout()
		if format != "table" || plain {
			progressOut = cmd.ErrOrStderr()
		}
		res, err := runTraining(cmd.Context(), progressOut, ds, opts, level == "quiet")
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch {
		case plain:
			ui.NewReportUI(out, false).PrintSimpleBenchmark(benchmarkOf(res))
		case format == "table":
			ui.NewReportUI(out, level == "quiet").PrintBenchmark(benchmarkOf(res))
		default:
			return bomio.Encode(out, bomio.NewReport(ds, res), format)
		}
		return nil
	},
}

// runTraining trains with a spinner workflow on w unless quiet.
func runTraining(ctx context.Context, w io.Writer, ds *dataset.Dataset, opts trainer.Options, quiet bool) (*trainer.Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	trainUI := ui.NewTrainUI(w, quiet)
	trainUI.StartWorkflow(trainer.ModelNames)

	opts.OnProgress = func(ev trainer.ProgressEvent) {
		switch ev.Type {
		case trainer.EventEncodeStart:
			trainUI.StartEncoding(ev.Total)
		case trainer.EventEncodeComplete:
			trainUI.CompleteEncoding(ev.Total)
		case trainer.EventSplitComplete:
			trainUI.CompleteSplit(ev.Message)
		case trainer.EventFitStart:
			trainUI.StartModel(ev.Model)
		case trainer.EventEvaluateComplete:
			trainUI.CompleteModel(ev.Model, ev.Message, ev.Elapsed)
		case trainer.EventError:
			trainUI.Fail(ev.Model, ev.Error)
		}
	}

	res, err := trainer.Train(ctx, ds, opts)
	trainUI.FinishWorkflow()
	return res, err
}

func benchmarkOf(res *trainer.Result) ui.Benchmark {
	b := ui.Benchmark{
		Metrics:     res.Metrics,
		Importances: res.Importances,
		Fingerprint: res.Fingerprint,
		TrainRows:   res.TrainRows,
		TestRows:    res.TestRows,
	}
	if tree, ok := res.Models[trainer.ModelTree].(*ml.DecisionTree); ok {
		b.TreeDepth = tree.Depth()
	}
	if forest, ok := res.Models[trainer.ModelForest].(*ml.RandomForest); ok {
		b.ForestTrees = forest.Size()
	}
	return b
}

func init() {
	trainCmd.Flags().StringVarP(&trainFormat, "format", "f", "", "Output format: table|json|yaml")
	trainCmd.Flags().StringVar(&trainLogLevel, "log-level", "", "Log level: quiet|standard|debug")
	trainCmd.Flags().BoolVar(&trainPlainSummary, "plain-summary", false, "Print one plain line per model (no styling)")

	viper.BindPFlag("train.format", trainCmd.Flags().Lookup("format"))
	viper.BindPFlag("train.log-level", trainCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("train.plain-summary", trainCmd.Flags().Lookup("plain-summary"))
}
