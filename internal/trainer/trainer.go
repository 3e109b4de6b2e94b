// Package trainer encodes a dataset, splits it and benchmarks the three
// yield regressors on the held-out partition.
package trainer

import (
	"context"
	"fmt"
	"time"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/encoding"
	"github.com/idlab-discover/agropredict-cli/internal/ml"
)

// Model names, in training and reporting order.
const (
	ModelLinear = "Linear Regression"
	ModelTree   = "Decision Tree"
	ModelForest = "Random Forest"
)

// ModelNames lists every trained model.
var ModelNames = []string{ModelLinear, ModelTree, ModelForest}

// Options configures a training run.
type Options struct {
	Seed     uint64  // split and forest seed
	TestSize float64 // held-out fraction
	Trees    int     // forest size
	MaxDepth int     // decision tree depth limit; the forest grows unlimited trees

	OnProgress ProgressCallback
}

// DefaultOptions mirror the reference benchmark.
func DefaultOptions() Options {
	return Options{Seed: 42, TestSize: 0.2, Trees: 150, MaxDepth: 12}
}

// Result is the outcome of a training run. It is either complete or absent.
type Result struct {
	Metrics     []ml.Metric
	Models      map[string]ml.Regressor
	Encoders    *encoding.Set
	Importances []ml.Importance // Random Forest importances, ranked
	Fingerprint string          // hex fingerprint of the training dataset
	TrainRows   int
	TestRows    int
	Options     Options
}

// Model returns the trained model with the given name.
func (r *Result) Model(name string) (ml.Regressor, error) {
	m, ok := r.Models[name]
	if !ok {
		return nil, fmt.Errorf("model %q: %w", name, ml.ErrNotTrained)
	}
	return m, nil
}

// Best returns the metric row with the highest R².
func (r *Result) Best() ml.Metric {
	var best ml.Metric
	for i, m := range r.Metrics {
		if i == 0 || m.R2 > best.R2 {
			best = m
		}
	}
	return best
}

func newModels(opts Options) map[string]ml.Regressor {
	return map[string]ml.Regressor{
		ModelLinear: ml.NewLinearRegression(),
		ModelTree:   ml.NewDecisionTree(ml.WithMaxDepth(opts.MaxDepth)),
		ModelForest: ml.NewRandomForest(ml.WithTrees(opts.Trees), ml.WithSeed(opts.Seed)),
	}
}

// Train fits the encoders on ds, encodes it, splits it and fits and scores
// every model. Any failure aborts the run.
func Train(ctx context.Context, ds *dataset.Dataset, opts Options) (*Result, error) {
	if ds == nil || ds.Len() == 0 {
		return nil, fmt.Errorf("train: empty dataset")
	}
	fail := func(model string, err error) (*Result, error) {
		opts.emit(ProgressEvent{Type: EventError, Model: model, Error: err})
		logf(model, "failed: %v", err)
		return nil, err
	}

	opts.emit(ProgressEvent{Type: EventEncodeStart, Total: ds.Len()})
	enc := encoding.FitSet(ds)
	X, y, err := enc.EncodeDataset(ds)
	if err != nil {
		return fail("", fmt.Errorf("encode: %w", err))
	}
	opts.emit(ProgressEvent{Type: EventEncodeComplete, Total: ds.Len()})

	split, err := ml.TrainTestSplit(X, y, opts.TestSize, opts.Seed)
	if err != nil {
		return fail("", err)
	}
	opts.emit(ProgressEvent{
		Type:    EventSplitComplete,
		Message: fmt.Sprintf("%d train / %d test", len(split.XTrain), len(split.XTest)),
		Total:   len(ModelNames),
	})
	logf("all", "split %d train / %d test (seed %d)", len(split.XTrain), len(split.XTest), opts.Seed)

	models := newModels(opts)
	metrics := make([]ml.Metric, 0, len(ModelNames))
	for i, name := range ModelNames {
		m := models[name]
		opts.emit(ProgressEvent{Type: EventFitStart, Model: name, Index: i, Total: len(ModelNames)})

		start := time.Now()
		if err := ml.Fit(ctx, m, split.XTrain, split.YTrain); err != nil {
			return fail(name, fmt.Errorf("fit %s: %w", name, err))
		}
		elapsed := time.Since(start)
		opts.emit(ProgressEvent{Type: EventFitComplete, Model: name, Index: i, Total: len(ModelNames), Elapsed: elapsed})

		pred, err := m.Predict(split.XTest)
		if err != nil {
			return fail(name, fmt.Errorf("evaluate %s: %w", name, err))
		}
		scores, err := ml.Evaluate(split.YTest, pred)
		if err != nil {
			return fail(name, fmt.Errorf("evaluate %s: %w", name, err))
		}
		metrics = append(metrics, ml.Metric{Model: name, Scores: scores})
		opts.emit(ProgressEvent{
			Type:    EventEvaluateComplete,
			Model:   name,
			Message: fmt.Sprintf("R² %.3f", scores.R2),
			Index:   i,
			Total:   len(ModelNames),
			Elapsed: elapsed,
		})
		logf(name, "fitted in %s: r2=%.4f rmse=%.4f mae=%.4f", elapsed.Round(time.Millisecond), scores.R2, scores.RMSE, scores.MAE)
	}

	opts.OnProgress = nil
	return &Result{
		Metrics:     metrics,
		Models:      models,
		Encoders:    enc,
		Importances: ml.FeatureImportances(models[ModelForest], dataset.FeatureColumns),
		Fingerprint: ds.FingerprintHex(),
		TrainRows:   len(split.XTrain),
		TestRows:    len(split.XTest),
		Options:     opts,
	}, nil
}
