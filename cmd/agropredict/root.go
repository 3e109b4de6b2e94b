package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/agropredict-cli/internal/advisor"
	"github.com/idlab-discover/agropredict-cli/internal/apperr"
	"github.com/idlab-discover/agropredict-cli/internal/builder"
	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/engine"
	bomio "github.com/idlab-discover/agropredict-cli/internal/io"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
	"github.com/idlab-discover/agropredict-cli/internal/ui"
	"github.com/idlab-discover/agropredict-cli/internal/validator"
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "agropredict",
	Short: "Crop yield prediction benchmark and advisor",
	Long:  longDescription,

	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		initUIAndBanner(cmd)
	},

	// When invoked without a subcommand, show help (with banner) instead of
	// printing a plain usage output.
	RunE: func(cmd *cobra.Command, args []string) error {
		initUIAndBanner(cmd)
		return cmd.Help()
	},
}

var (
	cfgFile  string
	version  string
	noColor  bool
	dataPath string

	dataSeed      uint64
	dataRows      int
	trainSeed     uint64
	trainTestSize float64
	trainTrees    int
	trainDepth    int
)

// SetVersion sets the version for the CLI
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
	builder.Version = v
}

// GetRootCmd returns the root command for use with fang
func GetRootCmd() *cobra.Command {
	return rootCmd
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.agropredict.yaml or ./config/defaults.yaml)")
	pf.BoolVar(&noColor, "no-color", false, "Disable colored output")
	pf.StringVar(&dataPath, "data", "", "Load the dataset from a CSV file (.csv, .csv.gz, .csv.zst) instead of generating it")
	pf.Uint64Var(&dataSeed, "seed", dataset.DefaultSeed, "Dataset generation seed")
	pf.IntVar(&dataRows, "rows", dataset.DefaultRows, "Number of generated records")
	pf.Uint64Var(&trainSeed, "train-seed", trainer.DefaultOptions().Seed, "Train/test split and forest seed")
	pf.Float64Var(&trainTestSize, "test-size", trainer.DefaultOptions().TestSize, "Held-out fraction")
	pf.IntVar(&trainTrees, "trees", trainer.DefaultOptions().Trees, "Random Forest size")
	pf.IntVar(&trainDepth, "max-depth", trainer.DefaultOptions().MaxDepth, "Decision Tree depth limit")

	viper.BindPFlag("dataset.path", pf.Lookup("data"))
	viper.BindPFlag("dataset.seed", pf.Lookup("seed"))
	viper.BindPFlag("dataset.rows", pf.Lookup("rows"))
	viper.BindPFlag("train.seed", pf.Lookup("train-seed"))
	viper.BindPFlag("train.test-size", pf.Lookup("test-size"))
	viper.BindPFlag("train.trees", pf.Lookup("trees"))
	viper.BindPFlag("train.max-depth", pf.Lookup("max-depth"))

	viper.SetDefault("advisor.model", advisor.DefaultModel)
	viper.SetDefault("advisor.timeout", int(advisor.DefaultTimeout.Seconds()))

	// Ensure `--help` (and help subcommands) show the banner consistently.
	defaultHelp := rootCmd.HelpFunc()
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		initUIAndBanner(cmd)
		defaultHelp(cmd, args)
	})

	rootCmd.AddCommand(datasetCmd, trainCmd, predictCmd, dashboardCmd, bomCmd, validateCmd, serveCmd)
}

func initConfig() {
	// AGROPREDICT_ADVISOR_API_KEY, AGROPREDICT_TRAIN_TREES, ...
	viper.SetEnvPrefix("AGROPREDICT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			cobra.CheckErr(err)
		}
		printConfigUsed()
		return
	}

	home, err := os.UserHomeDir()
	cobra.CheckErr(err)

	viper.SetConfigType("yaml")
	viper.AddConfigPath(home)
	viper.AddConfigPath("./config")

	// Try .agropredict first, then defaults.yaml
	viper.SetConfigName(".agropredict")
	err = viper.ReadInConfig()

	notFound := &viper.ConfigFileNotFoundError{}
	if err != nil && errors.As(err, notFound) {
		viper.SetConfigName("defaults")
		err = viper.ReadInConfig()
	}

	switch {
	case err != nil && !errors.As(err, notFound):
		cobra.CheckErr(err)
	case err != nil:
		// The config file is optional
	default:
		printConfigUsed()
	}
}

func printConfigUsed() {
	configMsg := ui.Dim.Render("Using config file: ") + ui.Secondary.Render(viper.ConfigFileUsed())
	fmt.Fprintln(os.Stderr, configMsg)
}

const longDescription = "Synthesizes a deterministic crop-yield dataset, benchmarks linear, tree and forest regressors on it, and predicts the yield of a single field with optional AI agronomy advice."

func initUIAndBanner(cmd *cobra.Command) {
	if cmd == nil {
		return
	}
	ui.Init(noColor)
	cmd.Root().Long = ui.RenderGradientBanner(ui.BannerASCII) + "\n" + longDescription
}

// resolveLogLevel reads <command>.log-level and validates it.
func resolveLogLevel(command string) (string, error) {
	level := strings.ToLower(strings.TrimSpace(viper.GetString(command + ".log-level")))
	if level == "" {
		level = "standard"
	}
	switch level {
	case "quiet", "standard", "debug":
		return level, nil
	}
	return "", apperr.Userf("invalid --log-level %q (expected quiet|standard|debug)", level)
}

// wireLogging routes the internal package loggers to w in debug mode and
// silences them otherwise.
func wireLogging(level string, w io.Writer) {
	if level != "debug" {
		w = nil
	}
	trainer.SetLogger(w)
	engine.SetLogger(w)
	builder.SetLogger(w)
	advisor.SetLogger(w)
	validator.SetLogger(w)
}

func loadDataset() (*dataset.Dataset, error) {
	if path := strings.TrimSpace(viper.GetString("dataset.path")); path != "" {
		return bomio.ImportDataset(path)
	}
	rows := viper.GetInt("dataset.rows")
	if rows <= 0 {
		return nil, apperr.Userf("invalid --rows %d (must be positive)", rows)
	}
	return dataset.Generate(viper.GetUint64("dataset.seed"), rows), nil
}

func trainOptions() (trainer.Options, error) {
	opts := trainer.DefaultOptions()
	opts.Seed = viper.GetUint64("train.seed")
	opts.TestSize = viper.GetFloat64("train.test-size")
	opts.Trees = viper.GetInt("train.trees")
	opts.MaxDepth = viper.GetInt("train.max-depth")
	if opts.TestSize <= 0 || opts.TestSize >= 1 {
		return opts, apperr.Userf("invalid --test-size %g (expected 0 < size < 1)", opts.TestSize)
	}
	if opts.Trees < 1 {
		return opts, apperr.Userf("invalid --trees %d (must be positive)", opts.Trees)
	}
	if opts.MaxDepth < 0 {
		return opts, apperr.Userf("invalid --max-depth %d", opts.MaxDepth)
	}
	return opts, nil
}

// advisorConfig reads advisor.* with a fallback to the bare API_KEY variable.
func advisorConfig() advisor.Config {
	key := viper.GetString("advisor.api-key")
	if key == "" {
		key = os.Getenv("API_KEY")
	}
	return advisor.Config{
		APIKey:  key,
		Model:   viper.GetString("advisor.model"),
		Timeout: time.Duration(viper.GetInt("advisor.timeout")) * time.Second,
	}
}
