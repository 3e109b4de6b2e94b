package ml

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scores are the held-out metrics reported for each model.
type Scores struct {
	R2   float64 `json:"r2" yaml:"r2"`
	RMSE float64 `json:"rmse" yaml:"rmse"`
	MAE  float64 `json:"mae" yaml:"mae"`
}

// MSE is the mean squared error.
func MSE(yTrue, yPred []float64) float64 {
	s := 0.0
	for i := range yTrue {
		d := yPred[i] - yTrue[i]
		s += d * d
	}
	return s / float64(len(yTrue))
}

// RMSE is the root mean squared error.
func RMSE(yTrue, yPred []float64) float64 { return math.Sqrt(MSE(yTrue, yPred)) }

// MAE is the mean absolute error.
func MAE(yTrue, yPred []float64) float64 {
	s := 0.0
	for i := range yTrue {
		s += math.Abs(yPred[i] - yTrue[i])
	}
	return s / float64(len(yTrue))
}

// R2 is the coefficient of determination of yPred against yTrue.
func R2(yTrue, yPred []float64) float64 {
	return stat.RSquaredFrom(yPred, yTrue, nil)
}

// Evaluate computes all three scores.
func Evaluate(yTrue, yPred []float64) (Scores, error) {
	if len(yTrue) == 0 {
		return Scores{}, fmt.Errorf("evaluate: no samples")
	}
	if len(yTrue) != len(yPred) {
		return Scores{}, fmt.Errorf("evaluate: %d targets but %d predictions", len(yTrue), len(yPred))
	}
	return Scores{
		R2:   R2(yTrue, yPred),
		RMSE: RMSE(yTrue, yPred),
		MAE:  MAE(yTrue, yPred),
	}, nil
}

// Metric is one row of the benchmark table.
type Metric struct {
	Model  string `json:"model" yaml:"model"`
	Scores `yaml:",inline"`
}
