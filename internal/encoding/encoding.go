// Package encoding maps categorical columns to integers for the numeric-only
// regressors.
package encoding

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/idlab-discover/agropredict-cli/internal/dataset"
)

// UnknownCategoryError is returned when a value was not seen while fitting.
type UnknownCategoryError struct {
	Field string
	Value string
	Known []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown category %q for %s (known: %s)", e.Value, e.Field, strings.Join(e.Known, ", "))
}

// IsUnknownCategory reports whether err is (or wraps) an *UnknownCategoryError.
func IsUnknownCategory(err error) bool {
	var e *UnknownCategoryError
	return errors.As(err, &e)
}

// LabelEncoder assigns each distinct value its index in sorted order.
type LabelEncoder struct {
	field   string
	classes []string
	index   map[string]int
}

// Fit builds an encoder over the distinct values. Classes are sorted
// lexicographically so the mapping does not depend on row order.
func Fit(field string, values []string) *LabelEncoder {
	classes := slices.Clone(values)
	slices.Sort(classes)
	classes = slices.Compact(classes)

	idx := make(map[string]int, len(classes))
	for i, c := range classes {
		idx[c] = i
	}
	return &LabelEncoder{field: field, classes: classes, index: idx}
}

// Field returns the column name the encoder was fitted for.
func (e *LabelEncoder) Field() string { return e.field }

// Classes returns a copy of the fitted classes in code order.
func (e *LabelEncoder) Classes() []string { return slices.Clone(e.classes) }

// Transform returns the code of v.
func (e *LabelEncoder) Transform(v string) (int, error) {
	i, ok := e.index[v]
	if !ok {
		return 0, &UnknownCategoryError{Field: e.field, Value: v, Known: e.Classes()}
	}
	return i, nil
}

// Inverse returns the class with code i.
func (e *LabelEncoder) Inverse(i int) (string, error) {
	if i < 0 || i >= len(e.classes) {
		return "", fmt.Errorf("code %d out of range for %s", i, e.field)
	}
	return e.classes[i], nil
}

// Set holds one encoder per categorical column.
type Set struct {
	Crop   *LabelEncoder
	Season *LabelEncoder
	State  *LabelEncoder
}

// FitSet fits the three encoders on the observed values of ds.
func FitSet(ds *dataset.Dataset) *Set {
	return &Set{
		Crop:   Fit(dataset.ColCrop, ds.Categories(dataset.ColCrop)),
		Season: Fit(dataset.ColSeason, ds.Categories(dataset.ColSeason)),
		State:  Fit(dataset.ColState, ds.Categories(dataset.ColState)),
	}
}

// EncodeRecord returns the feature vector of r in dataset.FeatureColumns order.
func (s *Set) EncodeRecord(r dataset.Record) ([]float64, error) {
	crop, err := s.Crop.Transform(r.Crop)
	if err != nil {
		return nil, err
	}
	season, err := s.Season.Transform(r.Season)
	if err != nil {
		return nil, err
	}
	state, err := s.State.Transform(r.State)
	if err != nil {
		return nil, err
	}
	return []float64{
		float64(crop), float64(season), float64(state),
		r.Area, r.Rainfall, r.Temperature, r.PH, r.N, r.P, r.K,
	}, nil
}

// EncodeDataset returns the feature matrix and target vector of ds.
func (s *Set) EncodeDataset(ds *dataset.Dataset) ([][]float64, []float64, error) {
	X := make([][]float64, ds.Len())
	y := make([]float64, ds.Len())
	for i := range X {
		r := ds.At(i)
		row, err := s.EncodeRecord(r)
		if err != nil {
			return nil, nil, fmt.Errorf("row %d: %w", i, err)
		}
		X[i] = row
		y[i] = r.Yield
	}
	return X, y, nil
}
