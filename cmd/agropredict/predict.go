package cmd

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/idlab-discover/agropredict-cli/internal/advisor"
	"github.com/idlab-discover/agropredict-cli/internal/apperr"
	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/encoding"
	"github.com/idlab-discover/agropredict-cli/internal/engine"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
	"github.com/idlab-discover/agropredict-cli/internal/ui"
)

// referenceInput pre-fills the flags and the interactive form.
var referenceInput = engine.Input{
	Crop: "Rice", Season: "Kharif", State: "Punjab",
	Area: 100, Rainfall: 1200, Temperature: 26, PH: 6.8,
	N: 100, P: 50, K: 50,
}

var (
	predictInput       engine.Input
	predictModel       string
	predictAdvice      bool
	predictInteractive bool
	predictLogLevel    string
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the yield of one field",
	Long:  "Predicts the yield (tonnes per hectare) of one set of field conditions with the Random Forest, optionally followed by AI soil-management advice. Use --interactive for a guided form.",
	RunE:  runPredict,
}

func runPredict(cmd *cobra.Command, args []string) error {
	level, err := resolveLogLevel("predict")
	if err != nil {
		return err
	}
	wireLogging(level, cmd.ErrOrStderr())
	quiet := level == "quiet"

	model := strings.TrimSpace(viper.GetString("predict.model"))
	if model == "" {
		model = trainer.ModelForest
	}
	if !slices.Contains(trainer.ModelNames, model) {
		return apperr.Userf("invalid --model %q (expected one of: %s)", model, strings.Join(trainer.ModelNames, ", "))
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	ds, err := loadDataset()
	if err != nil {
		return err
	}
	opts, err := trainOptions()
	if err != nil {
		return err
	}

	in := inputFromConfig()
	wantAdvice := viper.GetBool("predict.advice")

	if viper.GetBool("predict.interactive") {
		form := &ui.PredictForm{
			Crops:       ds.Distinct(dataset.ColCrop),
			Seasons:     ds.Distinct(dataset.ColSeason),
			States:      ds.Distinct(dataset.ColState),
			Defaults:    in.Record(),
			OfferAdvice: true,
			Input:       cmd.InOrStdin(),
			Output:      cmd.OutOrStdout(),
		}
		got, err := form.Run(ctx)
		if err != nil {
			return err
		}
		r := got.Record
		in = engine.Input{
			Crop: r.Crop, Season: r.Season, State: r.State,
			Area: r.Area, Rainfall: r.Rainfall, Temperature: r.Temperature,
			PH: r.PH, N: r.N, P: r.P, K: r.K,
		}
		wantAdvice = got.Advice
	}
	if err := in.Validate(); err != nil {
		return apperr.User(err.Error())
	}

	res, err := runTraining(ctx, cmd.ErrOrStderr(), ds, opts, quiet)
	if err != nil {
		return err
	}
	eng := engine.NewTrained(ds, res)

	pred, err := eng.PredictWith(ctx, model, in)
	var unknown *encoding.UnknownCategoryError
	if errors.As(err, &unknown) {
		return apperr.Userf("unknown %s %q (known: %s)", strings.ToLower(unknown.Field), unknown.Value, strings.Join(unknown.Known, ", "))
	}
	if err != nil {
		return err
	}

	out := ui.NewPredictionUI(cmd.OutOrStdout(), quiet)
	out.PrintPrediction(pred.Model, pred.Yield, in.Record())

	if wantAdvice {
		requestAdvice(ctx, cmd, out, pred, quiet)
	}
	return nil
}

// requestAdvice prints advice or a notice. It never fails the command: the
// prediction above already stands on its own.
func requestAdvice(ctx context.Context, cmd *cobra.Command, out *ui.PredictionUI, pred *engine.Prediction, quiet bool) {
	adv, err := advisor.New(ctx, advisorConfig())
	if err != nil {
		out.PrintNotice(fmt.Sprintf("AI advisor unavailable: %v", err))
		return
	}
	if !adv.Enabled() {
		out.PrintNotice("AI advisor disabled: set AGROPREDICT_ADVISOR_API_KEY (or API_KEY) to enable expert analysis")
		return
	}

	var spin *ui.SimpleSpinner
	if !quiet {
		spin = ui.NewSimpleSpinner(cmd.ErrOrStderr(), "Consulting the AI advisor...")
		spin.Start()
	}
	in := pred.Input
	text, err := adv.Advise(ctx, advisor.Request{
		Crop:           in.Crop,
		State:          in.State,
		Rainfall:       in.Rainfall,
		Temperature:    in.Temperature,
		PH:             in.PH,
		N:              in.N,
		P:              in.P,
		K:              in.K,
		PredictedYield: pred.Yield,
	})
	if spin != nil {
		spin.Stop(err == nil, "AI advisor")
	}
	if err != nil {
		out.PrintNotice(err.Error())
		return
	}
	out.PrintAdvice(text)
}

func inputFromConfig() engine.Input {
	return engine.Input{
		Crop:        viper.GetString("predict.crop"),
		Season:      viper.GetString("predict.season"),
		State:       viper.GetString("predict.state"),
		Area:        viper.GetFloat64("predict.area"),
		Rainfall:    viper.GetFloat64("predict.rainfall"),
		Temperature: viper.GetFloat64("predict.temperature"),
		PH:          viper.GetFloat64("predict.ph"),
		N:           viper.GetFloat64("predict.n"),
		P:           viper.GetFloat64("predict.p"),
		K:           viper.GetFloat64("predict.k"),
	}
}

func init() {
	f := predictCmd.Flags()
	f.StringVar(&predictInput.Crop, "crop", referenceInput.Crop, "Crop: "+strings.Join(dataset.Crops, "|"))
	f.StringVar(&predictInput.Season, "season", referenceInput.Season, "Season: "+strings.Join(dataset.Seasons, "|"))
	f.StringVar(&predictInput.State, "state", referenceInput.State, "State: "+strings.Join(dataset.States, "|"))
	f.Float64Var(&predictInput.Area, "area", referenceInput.Area, "Area in hectares")
	f.Float64Var(&predictInput.Rainfall, "rainfall", referenceInput.Rainfall, "Rainfall in mm")
	f.Float64Var(&predictInput.Temperature, "temperature", referenceInput.Temperature, "Temperature in °C")
	f.Float64Var(&predictInput.PH, "ph", referenceInput.PH, "Soil pH")
	f.Float64Var(&predictInput.N, "n", referenceInput.N, "Nitrogen")
	f.Float64Var(&predictInput.P, "p", referenceInput.P, "Phosphorus")
	f.Float64Var(&predictInput.K, "k", referenceInput.K, "Potassium")
	f.StringVarP(&predictModel, "model", "m", "", "Model: "+strings.Join(trainer.ModelNames, "|"))
	f.BoolVar(&predictAdvice, "advice", false, "Ask the AI advisor for soil-management tips")
	f.BoolVarP(&predictInteractive, "interactive", "i", false, "Fill in the conditions with an interactive form")
	f.StringVar(&predictLogLevel, "log-level", "", "Log level: quiet|standard|debug")

	for _, name := range []string{"crop", "season", "state", "area", "rainfall", "temperature", "ph", "n", "p", "k", "model", "advice", "interactive", "log-level"} {
		viper.BindPFlag("predict."+name, f.Lookup(name))
	}
}
