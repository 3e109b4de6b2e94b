package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/agropredict-cli/internal/apperr"
	bomio "github.com/idlab-discover/agropredict-cli/internal/io"
	"github.com/idlab-discover/agropredict-cli/internal/ui"
	"github.com/idlab-discover/agropredict-cli/internal/validator"
)

var (
	validateInput        string
	validateFormat       string
	validateStrict       bool
	validateSpec         string
	validateMinR2        float64
	validateLogLevel     string
	validatePlainSummary bool
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate a model-card BOM written by 'agropredict bom'",
	Long:  "Reads a CycloneDX BOM and checks that every machine-learning-model component has a model card with task, inputs, outputs and r2/rmse/mae metrics, and that its dataset reference resolves to a data component in the same BOM.",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, err := resolveLogLevel("validate")
		if err != nil {
			return err
		}
		wireLogging(level, cmd.ErrOrStderr())

		spec := strings.TrimSpace(viper.GetString("validate.spec"))
		if spec != "" {
			if _, ok := bomio.ParseSpecVersion(spec); !ok {
				return apperr.Userf("invalid --spec %q (expected 1.0 … 1.6)", spec)
			}
		}
		minR2 := viper.GetFloat64("validate.min-r2")
		if minR2 > 1 {
			return apperr.Userf("invalid --min-r2 %v (must be at most 1)", minR2)
		}

		bom, err := bomio.ReadBOM(validateInput, validateFormat)
		if err != nil {
			return apperr.Userf("failed to read BOM: %v", err)
		}

		result := validator.Validate(bom, validator.ValidationOptions{
			StrictMode:   viper.GetBool("validate.strict"),
			ExpectedSpec: spec,
			MinR2:        minR2,
		})

		switch {
		case level == "debug":
			validator.PrintReport(result)
		case level == "standard":
			vui := ui.NewValidationUI(cmd.OutOrStdout(), false)
			if viper.GetBool("validate.plain-summary") {
				vui.PrintSimpleReport(uiReport(result))
			} else {
				vui.PrintReport(uiReport(result))
			}
		}

		if !result.Valid {
			return fmt.Errorf("%s", validator.FormatSummary(result))
		}
		return nil
	},
}

func uiReport(r validator.ValidationResult) ui.ValidationReport {
	report := ui.ValidationReport{
		Valid:    r.Valid,
		Errors:   r.Errors,
		Warnings: r.Warnings,
		Datasets: r.Datasets,
	}
	for _, m := range r.Models {
		report.Models = append(report.Models, ui.ModelValidation{
			Name:     m.Name,
			Score:    m.Score,
			Errors:   m.Errors,
			Warnings: m.Warnings,
		})
	}
	return report
}

func init() {
	validateCmd.Flags().StringVarP(&validateInput, "input", "i", "", "Path to BOM file (required)")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "auto", "Input format: json|xml|auto")
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Strict mode: treat warnings as errors")
	validateCmd.Flags().StringVar(&validateSpec, "spec", "", "Expected CycloneDX spec version (e.g., 1.6)")
	validateCmd.Flags().Float64Var(&validateMinR2, "min-r2", 0, "Fail models whose reported R² is lower (0 disables)")
	validateCmd.Flags().StringVar(&validateLogLevel, "log-level", "", "Log level: quiet|standard|debug")
	validateCmd.Flags().BoolVar(&validatePlainSummary, "plain-summary", false, "Print a plain text summary instead of the boxed report")

	validateCmd.MarkFlagRequired("input")

	viper.BindPFlag("validate.strict", validateCmd.Flags().Lookup("strict"))
	viper.BindPFlag("validate.spec", validateCmd.Flags().Lookup("spec"))
	viper.BindPFlag("validate.min-r2", validateCmd.Flags().Lookup("min-r2"))
	viper.BindPFlag("validate.log-level", validateCmd.Flags().Lookup("log-level"))
	viper.BindPFlag("validate.plain-summary", validateCmd.Flags().Lookup("plain-summary"))
}
