package ml

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRandomForest_Deterministic(t *testing.T) {
	X, y := linearData(120)
	a := NewRandomForest(WithTrees(20), WithSeed(42))
	b := NewRandomForest(WithTrees(20), WithSeed(42))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))
	require.Equal(t, 20, a.Size())

	pa, err := a.Predict(X[:10])
	require.NoError(t, err)
	pb, err := b.Predict(X[:10])
	require.NoError(t, err)
	require.Equal(t, pa, pb)
	require.Equal(t, a.FeatureImportances(), b.FeatureImportances())
}

func TestRandomForest_SeedChangesTrees(t *testing.T) {
	X, y := linearData(120)
	a := NewRandomForest(WithTrees(5), WithSeed(1))
	b := NewRandomForest(WithTrees(5), WithSeed(2))
	require.NoError(t, a.Fit(X, y))
	require.NoError(t, b.Fit(X, y))

	pa, _ := a.Predict(X)
	pb, _ := b.Predict(X)
	require.NotEqual(t, pa, pb)
}

func TestRandomForest_WithoutBootstrapMatchesTree(t *testing.T) {
	X, y := stepData()
	rf := NewRandomForest(WithTrees(3), WithForestDepth(2))
	rf.Bootstrap = false
	require.NoError(t, rf.Fit(X, y))

	tree := NewDecisionTree(WithMaxDepth(2))
	require.NoError(t, tree.Fit(X, y))

	want, _ := tree.Predict(X)
	got, err := rf.Predict(X)
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestRandomForest_GeneralisesOnHeldOut(t *testing.T) {
	X, y := linearData(300)
	s, err := TrainTestSplit(X, y, 0.2, 7)
	require.NoError(t, err)

	rf := NewRandomForest(WithTrees(30), WithSeed(7))
	require.NoError(t, rf.Fit(s.XTrain, s.YTrain))
	pred, err := rf.Predict(s.XTest)
	require.NoError(t, err)
	assert.Greater(t, R2(s.YTest, pred), 0.8)

	imp := rf.FeatureImportances()
	require.Len(t, imp, 2)
	assert.InDelta(t, 1, imp[0]+imp[1], 1e-9)
	// |d y / d x1| > |d y / d x0|
	assert.Greater(t, imp[1], imp[0])
}

func TestRandomForest_ZeroTrees(t *testing.T) {
	X, y := stepData()
	require.Error(t, NewRandomForest(WithTrees(0)).Fit(X, y))
}
