package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecisionTree_LearnsStep(t *testing.T) {
	X, y := stepData()
	tree := NewDecisionTree(WithMaxDepth(1))
	require.NoError(t, tree.Fit(X, y))
	require.Equal(t, 1, tree.Depth())

	pred, err := tree.Predict([][]float64{{3, 4}, {9.4, 0}, {9.6, 0}, {100, 1}})
	require.NoError(t, err)
	require.Equal(t, []float64{0, 0, 5, 5}, pred)

	imp := tree.FeatureImportances()
	assert.InDelta(t, 1, imp[0], 1e-12)
	assert.InDelta(t, 0, imp[1], 1e-12)
}

func TestDecisionTree_RespectsMaxDepth(t *testing.T) {
	X, y := linearData(200)
	tree := NewDecisionTree(WithMaxDepth(3))
	require.NoError(t, tree.Fit(X, y))
	require.LessOrEqual(t, tree.Depth(), 3)

	deep := NewDecisionTree()
	require.NoError(t, deep.Fit(X, y))
	require.Greater(t, deep.Depth(), 3)
}

func TestDecisionTree_UnlimitedDepthInterpolatesTraining(t *testing.T) {
	X, y := linearData(60)
	tree := NewDecisionTree()
	require.NoError(t, tree.Fit(X, y))
	pred, err := tree.Predict(X)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, R2(y, pred), 1e-9)
}

func TestDecisionTree_MinSamplesLeaf(t *testing.T) {
	X, y := stepData()
	tree := NewDecisionTree(WithMinSamplesLeaf(15))
	require.NoError(t, tree.Fit(X, y))
	// No split can leave 15 rows on both sides of 20.
	require.Equal(t, 0, tree.Depth())
	pred, err := tree.Predict([][]float64{{0, 0}})
	require.NoError(t, err)
	require.Equal(t, 2.5, pred[0])
}

func TestDecisionTree_ConstantTarget(t *testing.T) {
	X := [][]float64{{1}, {2}, {3}}
	tree := NewDecisionTree()
	require.NoError(t, tree.Fit(X, []float64{4, 4, 4}))
	require.Equal(t, 0, tree.Depth())
	require.Equal(t, []float64{0}, tree.FeatureImportances())
}
