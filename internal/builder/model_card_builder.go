package builder

import (
	"fmt"
	"strconv"
	"strings"

	cdx "github.com/CycloneDX/cyclonedx-go"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/ml"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
)

// ModelContext is what the model card builder knows about one trained model.
type ModelContext struct {
	Metric     ml.Metric
	DatasetRef string
	Options    trainer.Options
	TestRows   int
}

type ModelCardBuilder struct{}

// architecture describes each model the trainer produces.
func architecture(name string, opts trainer.Options) (family, arch string) {
	switch name {
	case trainer.ModelLinear:
		return "linear-model", "ordinary least squares with intercept"
	case trainer.ModelTree:
		depth := "unlimited depth"
		if opts.MaxDepth > 0 {
			depth = fmt.Sprintf("max depth %d", opts.MaxDepth)
		}
		return "decision-tree", "CART regression tree, squared error, " + depth
	case trainer.ModelForest:
		return "ensemble", fmt.Sprintf("random forest of %d bootstrap CART trees (seed %d)", opts.Trees, opts.Seed)
	}
	return "", ""
}

func (b ModelCardBuilder) Build(ctx ModelContext) (*cdx.MLModelCard, error) {
	name := ctx.Metric.Model
	logf(name, "model card start")

	family, arch := architecture(name, ctx.Options)
	if family == "" {
		return nil, fmt.Errorf("model card: unknown model %q", name)
	}

	inputs := []cdx.MLInputOutputParameters{{Format: "tabular: " + strings.Join(dataset.FeatureColumns, ", ")}}
	outputs := []cdx.MLInputOutputParameters{{Format: "float: yield in tonnes per hectare"}}
	mp := &cdx.MLModelParameters{
		Approach:           &cdx.MLModelParametersApproach{Type: cdx.MLModelParametersApproachTypeSupervised},
		Task:               "regression",
		ArchitectureFamily: family,
		ModelArchitecture:  arch,
		Inputs:             &inputs,
		Outputs:            &outputs,
	}
	if ctx.DatasetRef != "" {
		mp.Datasets = &[]cdx.MLDatasetChoice{{Ref: ctx.DatasetRef}}
	}

	slice := fmt.Sprintf("held-out test split (%d rows, seed %d)", ctx.TestRows, ctx.Options.Seed)
	metrics := []cdx.MLPerformanceMetric{
		{Type: "r2", Value: formatMetric(ctx.Metric.R2), Slice: slice},
		{Type: "rmse", Value: formatMetric(ctx.Metric.RMSE), Slice: slice},
		{Type: "mae", Value: formatMetric(ctx.Metric.MAE), Slice: slice},
	}

	useCases := []string{
		"Estimating crop yield from crop, season, state, field area, climate and soil readings.",
		"Benchmarking regression approaches on agricultural telemetry.",
	}
	limitations := []string{
		"Trained on synthetic data generated from a heuristic formula, not on field observations.",
		"Crop, season and state values outside the training set are rejected.",
		"Numeric inputs outside the generated ranges are extrapolated.",
	}

	card := &cdx.MLModelCard{
		ModelParameters:      mp,
		QuantitativeAnalysis: &cdx.MLQuantitativeAnalysis{PerformanceMetrics: &metrics},
		Considerations: &cdx.MLModelCardConsiderations{
			UseCases:             &useCases,
			TechnicalLimitations: &limitations,
		},
	}
	logf(name, "model card ok (r2=%s)", formatMetric(ctx.Metric.R2))
	return card, nil
}

// ImportanceProperties renders ranked importances as component properties.
func ImportanceProperties(imps []ml.Importance) []cdx.Property {
	props := make([]cdx.Property, 0, len(imps))
	for _, im := range imps {
		props = append(props, cdx.Property{
			Name:  "agropredict:featureImportance:" + im.Feature,
			Value: formatMetric(im.Value),
		})
	}
	return props
}

func formatMetric(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
