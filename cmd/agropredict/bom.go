package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/agropredict-cli/internal/apperr"
	"github.com/idlab-discover/agropredict-cli/internal/builder"
	bomio "github.com/idlab-discover/agropredict-cli/internal/io"
	"github.com/idlab-discover/agropredict-cli/internal/ui"
)

var (
	bomOutput        string
	bomFormat        string
	bomSpec          string
	bomNoImportances bool
	bomLogLevel      string
)

var bomCmd = &cobra.Command{
	Use:   "bom",
	Short: "Write a CycloneDX model-card BOM for the trained models",
	Long:  "Trains the models and writes a CycloneDX BOM with one machine-learning-model component per regressor (model card with held-out metrics) and a data component for the dataset. Use '-' as output for stdout.",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := resolveLogLevel("bom")
		if err != nil {
			return err
		}
		wireLogging(level, cmd.ErrOrStderr())

		format := strings.ToLower(strings.TrimSpace(viper.GetString("bom.format")))
		output := strings.TrimSpace(viper.GetString("bom.output"))
		if format == "" || format == "auto" {
			format = "json"
			if strings.EqualFold(filepath.Ext(output), ".xml") {
				format = "xml"
			}
		}
		if format != "json" && format != "xml" {
			return apperr.Userf("invalid --format %q (expected json|xml)", format)
		}
		if output == "" {
			output = "dist/agropredict.cdx." + format
		}
		spec := viper.GetString("bom.spec")
		if spec != "" {
			if _, ok := bomio.ParseSpecVersion(spec); !ok {
				return apperr.Userf("invalid --spec %q (expected 1.0 … 1.6)", spec)
			}
		}

		ds, err := loadDataset()
		if err != nil {
			return err
		}
		opts, err := trainOptions()
		if err != nil {
			return err
		}
		res, err := runTraining(cmd.Context(), cmd.ErrOrStderr(), ds, opts, level == "quiet")
		if err != nil {
			return err
		}

		bopts := builder.DefaultOptions()
		bopts.IncludeImportances = !viper.GetBool("bom.no-importances")
		bopts.ToolVersion = version
		bom, err := builder.NewBOMBuilder(bopts).Build(builder.BuildContext{Dataset: ds, Result: res})
		if err != nil {
			return err
		}

		if output == "-" {
			return bomio.EncodeBOM(cmd.OutOrStdout(), bom, format, spec)
		}
		if err := bomio.WriteBOM(bom, output, format, spec); err != nil {
			return err
		}
		if level != "quiet" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.FormatStatus("success",
				fmt.Sprintf("Wrote BOM with %d components to %s", len(*bom.Components), ui.Highlight.Render(output))))
		}
		return nil
	},
}

func init() {
	bomCmd.Flags().StringVarP(&bomOutput, "output", "o", "", "Output file path (default dist/agropredict.cdx.<format>, '-' for stdout)")
	bomCmd.Flags().StringVarP(&bomFormat, "format", "f", "", "Output BOM format: json|xml|auto")
	bomCmd.Flags().StringVar(&bomSpec, "spec", "", "CycloneDX spec version for output (e.g., 1.5, 1.6)")
	bomCmd.Flags().BoolVar(&bomNoImportances, "no-importances", false, "Omit Random Forest feature importances")
	bomCmd.Flags().StringVar(&bomLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	viper.BindPFlag("bom.output", bomCmd.Flags().Lookup("output"))
	viper.BindPFlag("bom.format", bomCmd.Flags().Lookup("format"))
	viper.BindPFlag("bom.spec", bomCmd.Flags().Lookup("spec"))
	viper.BindPFlag("bom.no-importances", bomCmd.Flags().Lookup("no-importances"))
	viper.BindPFlag("bom.log-level", bomCmd.Flags().Lookup("log-level"))
}
