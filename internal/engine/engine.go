// Package engine owns the dataset and the trained models and answers
// single-record yield predictions.
package engine

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
	"github.com/idlab-discover/agropredict-cli/internal/ml"
	"github.com/idlab-discover/agropredict-cli/internal/trainer"
)

// Input is one field observation to predict a yield for.
type Input struct {
	Crop        string  `json:"crop" yaml:"crop"`
	Season      string  `json:"season" yaml:"season"`
	State       string  `json:"state" yaml:"state"`
	Area        float64 `json:"area" yaml:"area"`
	Rainfall    float64 `json:"rainfall" yaml:"rainfall"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
	PH          float64 `json:"ph" yaml:"ph"`
	N           float64 `json:"n" yaml:"n"`
	P           float64 `json:"p" yaml:"p"`
	K           float64 `json:"k" yaml:"k"`
}

// Record converts the input to a dataset record with a zero yield.
func (in Input) Record() dataset.Record {
	return dataset.Record{
		Crop: in.Crop, Season: in.Season, State: in.State,
		Area: in.Area, Rainfall: in.Rainfall, Temperature: in.Temperature,
		PH: in.PH, N: in.N, P: in.P, K: in.K,
	}
}

// Validate rejects non-finite numeric fields.
func (in Input) Validate() error {
	r := in.Record()
	for _, col := range dataset.FeatureColumns {
		v, ok := r.Numeric(col)
		if ok && (math.IsNaN(v) || math.IsInf(v, 0)) {
			return fmt.Errorf("%s must be a finite number", col)
		}
	}
	return nil
}

// Prediction is the outcome of a single inference.
type Prediction struct {
	Model string  `json:"model" yaml:"model"`
	Yield float64 `json:"yield" yaml:"yield"`
	Input Input   `json:"input" yaml:"input"`
}

// Engine trains lazily on first use and keeps the result for its lifetime.
// It is safe for concurrent use.
type Engine struct {
	ds   *dataset.Dataset
	opts trainer.Options

	mu     sync.Mutex
	result *trainer.Result
}

// New returns an engine over ds. Nothing is trained until the first call
// that needs a model.
func New(ds *dataset.Dataset, opts trainer.Options) *Engine {
	opts.OnProgress = nil
	return &Engine{ds: ds, opts: opts}
}

// NewTrained wraps an existing training result, e.g. one produced with a
// progress callback by the CLI.
func NewTrained(ds *dataset.Dataset, res *trainer.Result) *Engine {
	return &Engine{ds: ds, opts: res.Options, result: res}
}

// Dataset returns the dataset the engine trains on.
func (e *Engine) Dataset() *dataset.Dataset { return e.ds }

// Result returns the training result, training first if needed. A failed
// run is not cached.
func (e *Engine) Result(ctx context.Context) (*trainer.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.result != nil {
		return e.result, nil
	}
	res, err := trainer.Train(ctx, e.ds, e.opts)
	if err != nil {
		return nil, err
	}
	e.result = res
	return res, nil
}

// Trained reports whether the models are already available.
func (e *Engine) Trained() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.result != nil
}

// Predict estimates the yield of in with the Random Forest.
func (e *Engine) Predict(ctx context.Context, in Input) (*Prediction, error) {
	return e.PredictWith(ctx, trainer.ModelForest, in)
}

// PredictWith estimates the yield of in with the named model. Unknown
// categories yield an *encoding.UnknownCategoryError.
func (e *Engine) PredictWith(ctx context.Context, model string, in Input) (*Prediction, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	res, err := e.Result(ctx)
	if err != nil {
		return nil, err
	}
	m, err := res.Model(model)
	if err != nil {
		return nil, err
	}
	x, err := res.Encoders.EncodeRecord(in.Record())
	if err != nil {
		return nil, err
	}
	y, err := ml.PredictOne(m, x)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", model, err)
	}
	logf(in.Crop, "%s predicted %.3f T/Ha for %s/%s", model, y, in.State, in.Season)
	return &Prediction{Model: model, Yield: y, Input: in}, nil
}
