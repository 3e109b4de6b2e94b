package ml

import (
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForest averages bootstrap-trained regression trees.
type RandomForest struct {
	Trees     int
	MaxDepth  int
	Seed      uint64
	Bootstrap bool

	trees     []*DecisionTree
	nFeatures int
}

// ForestOption configures a RandomForest.
type ForestOption func(*RandomForest)

func WithTrees(n int) ForestOption       { return func(rf *RandomForest) { rf.Trees = n } }
func WithSeed(seed uint64) ForestOption  { return func(rf *RandomForest) { rf.Seed = seed } }
func WithForestDepth(d int) ForestOption { return func(rf *RandomForest) { rf.MaxDepth = d } }

// NewRandomForest returns an untrained forest of 100 unlimited-depth trees
// with bootstrap sampling and seed 0.
func NewRandomForest(opts ...ForestOption) *RandomForest {
	rf := &RandomForest{Trees: 100, Bootstrap: true}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

// Fit trains the forest without cancellation.
func (rf *RandomForest) Fit(X [][]float64, y []float64) error {
	return rf.FitContext(context.Background(), X, y)
}

// FitContext trains the trees in parallel. Tree i draws its bootstrap sample
// from a PCG stream keyed by (Seed, i) and is stored at index i, so the
// result does not depend on scheduling.
func (rf *RandomForest) FitContext(ctx context.Context, X [][]float64, y []float64) error {
	p, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("random forest: %w", err)
	}
	if rf.Trees < 1 {
		return fmt.Errorf("random forest: need at least one tree, got %d", rf.Trees)
	}

	trees := make([]*DecisionTree, rf.Trees)
	n := len(X)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range rf.Trees {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			idx := make([]int, n)
			if rf.Bootstrap {
				rng := rand.New(rand.NewPCG(rf.Seed, uint64(i)))
				for j := range idx {
					idx[j] = rng.IntN(n)
				}
			} else {
				for j := range idx {
					idx[j] = j
				}
			}
			tree := NewDecisionTree(WithMaxDepth(rf.MaxDepth))
			if err := tree.fitIndices(X, y, idx); err != nil {
				return fmt.Errorf("tree %d: %w", i, err)
			}
			trees[i] = tree
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("random forest: %w", err)
	}

	rf.trees = trees
	rf.nFeatures = p
	return nil
}

// Predict returns the mean of the tree predictions for each row.
func (rf *RandomForest) Predict(X [][]float64) ([]float64, error) {
	if rf.trees == nil {
		return nil, ErrNotTrained
	}
	if err := checkWidth(X, rf.nFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		var s float64
		for _, t := range rf.trees {
			s += t.predictRow(row)
		}
		out[i] = s / float64(len(rf.trees))
	}
	return out, nil
}

// FeatureImportances averages the per-tree importances.
func (rf *RandomForest) FeatureImportances() []float64 {
	if rf.trees == nil {
		return nil
	}
	out := make([]float64, rf.nFeatures)
	for _, t := range rf.trees {
		for j, v := range t.importances {
			out[j] += v
		}
	}
	var total float64
	for _, v := range out {
		total += v
	}
	if total > 0 {
		for j := range out {
			out[j] /= total
		}
	}
	return out
}

// Size returns the number of fitted trees.
func (rf *RandomForest) Size() int { return len(rf.trees) }
