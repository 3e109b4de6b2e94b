// Package ml holds the three yield regressors and the helpers used to
// benchmark them: a seeded train/test split, R², RMSE, MAE and feature
// importances.
package ml

import (
	"context"
	"errors"
	"fmt"
	"slices"
)

// ErrNotTrained is returned by Predict before a successful Fit.
var ErrNotTrained = errors.New("model is not trained")

// Regressor is a model mapping a numeric feature vector to a real target.
type Regressor interface {
	Fit(X [][]float64, y []float64) error
	Predict(X [][]float64) ([]float64, error)
}

// ContextFitter is implemented by regressors whose training can be
// cancelled part-way.
type ContextFitter interface {
	FitContext(ctx context.Context, X [][]float64, y []float64) error
}

// Importancer is implemented by tree models. Values are aligned with the
// training columns and sum to one (or are all zero for a constant target).
type Importancer interface {
	FeatureImportances() []float64
}

// Fit trains m, honouring ctx when m supports it.
func Fit(ctx context.Context, m Regressor, X [][]float64, y []float64) error {
	if cf, ok := m.(ContextFitter); ok {
		return cf.FitContext(ctx, X, y)
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Fit(X, y)
}

// PredictOne is a convenience wrapper for a single feature vector.
func PredictOne(m Regressor, x []float64) (float64, error) {
	out, err := m.Predict([][]float64{x})
	if err != nil {
		return 0, err
	}
	return out[0], nil
}

func checkXY(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, errors.New("empty training set")
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("X has %d rows but y has %d", len(X), len(y))
	}
	p := len(X[0])
	if p == 0 {
		return 0, errors.New("no features")
	}
	for i, row := range X {
		if len(row) != p {
			return 0, fmt.Errorf("row %d has %d features, want %d", i, len(row), p)
		}
	}
	return p, nil
}

func checkWidth(X [][]float64, p int) error {
	for i, row := range X {
		if len(row) != p {
			return fmt.Errorf("row %d has %d features, model expects %d", i, len(row), p)
		}
	}
	return nil
}

// Importance is one feature's share of a tree model's total impurity
// reduction.
type Importance struct {
	Feature string  `json:"feature" yaml:"feature"`
	Value   float64 `json:"value" yaml:"value"`
}

// RankImportances pairs names with values and orders them most important
// first; ties keep column order.
func RankImportances(names []string, values []float64) []Importance {
	n := min(len(names), len(values))
	out := make([]Importance, n)
	for i := range n {
		out[i] = Importance{Feature: names[i], Value: values[i]}
	}
	slices.SortStableFunc(out, func(a, b Importance) int {
		switch {
		case a.Value > b.Value:
			return -1
		case a.Value < b.Value:
			return 1
		}
		return 0
	})
	return out
}

// FeatureImportances returns the ranked importances of m, or nil when m is
// not a tree model.
func FeatureImportances(m Regressor, names []string) []Importance {
	im, ok := m.(Importancer)
	if !ok {
		return nil
	}
	vals := im.FeatureImportances()
	if vals == nil {
		return nil
	}
	return RankImportances(names, vals)
}
