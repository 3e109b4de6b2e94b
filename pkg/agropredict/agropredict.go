// Package agropredict is the public entry point for embedding the yield
// benchmark: generate the synthetic dataset, train the three regressors and
// answer single predictions.
package agropredict

import (
	"context"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/encoding"
	"github.com/idlab-discover/agropredict-cli/internal/engine"
	"github.com/idlab-discover/agropredict-cli/internal/ml"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
)

type (
	Dataset    = dataset.Dataset
	Record     = dataset.Record
	Options    = trainer.Options
	Result     = trainer.Result
	Metric     = ml.Metric
	Engine     = engine.Engine
	Input      = engine.Input
	Prediction = engine.Prediction

	// UnknownCategoryError reports an input category the encoders never saw.
	UnknownCategoryError = encoding.UnknownCategoryError
)

// Model names accepted by (*Engine).PredictWith.
const (
	ModelLinear = trainer.ModelLinear
	ModelTree   = trainer.ModelTree
	ModelForest = trainer.ModelForest
)

// ErrNotTrained is returned when a model is used before it was fitted.
var ErrNotTrained = ml.ErrNotTrained

// Generate returns rows synthetic records drawn from seed. The same seed
// always yields the same dataset.
func Generate(seed uint64, rows int) *Dataset {
	return dataset.Generate(seed, rows)
}

// DefaultDataset returns the 1500-row reference dataset.
func DefaultDataset() *Dataset { return dataset.Default() }

// DefaultOptions returns the reference training configuration.
func DefaultOptions() Options { return trainer.DefaultOptions() }

// Train encodes ds, splits it and benchmarks every model.
func Train(ctx context.Context, ds *Dataset, opts Options) (*Result, error) {
	return trainer.Train(ctx, ds, opts)
}

// NewEngine returns a prediction engine over ds that trains on first use.
func NewEngine(ds *Dataset, opts Options) *Engine {
	return engine.New(ds, opts)
}

// IsUnknownCategory reports whether err is (or wraps) an *UnknownCategoryError.
func IsUnknownCategory(err error) bool { return encoding.IsUnknownCategory(err) }
