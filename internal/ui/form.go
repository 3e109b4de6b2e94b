package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/idlab-discover/agropredict-cli/internal/apperr"
	"github.com/idlab-discover/agropredict-cli/internal/dataset"
)

// PredictForm collects one set of field conditions interactively
type PredictForm struct {
	Crops   []string
	Seasons []string
	States  []string

	// Defaults pre-fills every field
	Defaults dataset.Record
	// OfferAdvice adds a final confirm asking whether to consult the advisor
	OfferAdvice bool

	Input      io.Reader
	Output     io.Writer
	Accessible bool
}

// PredictFormResult holds the submitted conditions
type PredictFormResult struct {
	Record dataset.Record
	Advice bool
}

// numericField binds a record field to the text shown in the form
type numericField struct {
	title string
	hint  string
	text  string
	set   func(*dataset.Record, float64)
}

func (f *PredictForm) numericFields() []*numericField {
	d := f.Defaults
	return []*numericField{
		{"Area (ha)", "", formatFormFloat(d.Area), func(r *dataset.Record, v float64) { r.Area = v }},
		{"Rainfall (mm)", rangeHint(dataset.RainfallRange), formatFormFloat(d.Rainfall), func(r *dataset.Record, v float64) { r.Rainfall = v }},
		{"Temperature (°C)", rangeHint(dataset.TemperatureRange), formatFormFloat(d.Temperature), func(r *dataset.Record, v float64) { r.Temperature = v }},
		{"Soil pH", rangeHint(dataset.PHRange), formatFormFloat(d.PH), func(r *dataset.Record, v float64) { r.PH = v }},
		{"Nitrogen (N)", rangeHint(dataset.NRange), formatFormFloat(d.N), func(r *dataset.Record, v float64) { r.N = v }},
		{"Phosphorus (P)", rangeHint(dataset.PRange), formatFormFloat(d.P), func(r *dataset.Record, v float64) { r.P = v }},
		{"Potassium (K)", rangeHint(dataset.KRange), formatFormFloat(d.K), func(r *dataset.Record, v float64) { r.K = v }},
	}
}

// Run shows the form and returns the submitted record. Aborting the form
// returns apperr.ErrCancelled.
func (f *PredictForm) Run(ctx context.Context) (PredictFormResult, error) {
	rec := f.Defaults
	advice := f.OfferAdvice

	fields := f.numericFields()
	numeric := make([]huh.Field, 0, len(fields))
	for _, nf := range fields {
		numeric = append(numeric, huh.NewInput().
			Title(nf.title).
			Description(nf.hint).
			Value(&nf.text).
			Validate(func(s string) error {
				_, err := ParseFinite(s)
				return err
			}))
	}

	groups := []*huh.Group{
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Crop").
				Options(huh.NewOptions(f.Crops...)...).
				Value(&rec.Crop),
			huh.NewSelect[string]().
				Title("Season").
				Options(huh.NewOptions(f.Seasons...)...).
				Value(&rec.Season),
			huh.NewSelect[string]().
				Title("State").
				Options(huh.NewOptions(f.States...)...).
				Value(&rec.State),
		).Title("Crop & Region"),
		huh.NewGroup(numeric...).Title("Field Conditions"),
	}
	if f.OfferAdvice {
		groups = append(groups, huh.NewGroup(
			huh.NewConfirm().
				Title("Ask the AI advisor?").
				Description("Sends the conditions and the prediction to the advisory service.").
				Value(&advice).
				Affirmative("Yes").
				Negative("No"),
		))
	}

	form := huh.NewForm(groups...).WithAccessible(f.Accessible)
	if f.Input != nil {
		form = form.WithInput(f.Input)
	}
	if f.Output != nil {
		form = form.WithOutput(f.Output)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return PredictFormResult{}, apperr.ErrCancelled
		}
		return PredictFormResult{}, err
	}

	for _, nf := range fields {
		v, err := ParseFinite(nf.text)
		if err != nil {
			return PredictFormResult{}, fmt.Errorf("%s: %w", nf.title, err)
		}
		nf.set(&rec, v)
	}
	rec.Yield = 0
	return PredictFormResult{Record: rec, Advice: advice}, nil
}

// ParseFinite parses a decimal number and rejects NaN and infinities.
func ParseFinite(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%q is not a finite number", s)
	}
	return v, nil
}

func formatFormFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func rangeHint(r dataset.Range) string {
	return fmt.Sprintf("training range %g to %g", r.Min, r.Max)
}
