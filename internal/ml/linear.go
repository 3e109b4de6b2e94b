package ml

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// LinearRegression is ordinary least squares with an intercept.
type LinearRegression struct {
	Intercept    float64
	Coefficients []float64
}

// NewLinearRegression returns an untrained model.
func NewLinearRegression() *LinearRegression { return &LinearRegression{} }

// Fit solves min ||Xb - y||² over the design matrix [1 X] using a QR
// factorisation.
func (lr *LinearRegression) Fit(X [][]float64, y []float64) error {
	p, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("linear regression: %w", err)
	}
	n := len(X)
	if n < p+1 {
		return fmt.Errorf("linear regression: %d rows cannot determine %d parameters", n, p+1)
	}

	design := mat.NewDense(n, p+1, nil)
	for i, row := range X {
		design.Set(i, 0, 1)
		for j, v := range row {
			design.Set(i, j+1, v)
		}
	}
	target := mat.NewVecDense(n, append([]float64(nil), y...))

	var beta mat.VecDense
	if err := beta.SolveVec(design, target); err != nil {
		return fmt.Errorf("linear regression: solve: %w", err)
	}

	lr.Intercept = beta.AtVec(0)
	lr.Coefficients = make([]float64, p)
	for j := range p {
		lr.Coefficients[j] = beta.AtVec(j + 1)
	}
	return nil
}

// Predict returns Intercept + X·Coefficients for each row.
func (lr *LinearRegression) Predict(X [][]float64) ([]float64, error) {
	if lr.Coefficients == nil {
		return nil, ErrNotTrained
	}
	if err := checkWidth(X, len(lr.Coefficients)); err != nil {
		return nil, err
	}
	coef := mat.NewVecDense(len(lr.Coefficients), lr.Coefficients)
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = lr.Intercept + mat.Dot(mat.NewVecDense(len(row), row), coef)
	}
	return out, nil
}
