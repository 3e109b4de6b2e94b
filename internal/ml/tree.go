package ml

import (
	"cmp"
	"fmt"
	"slices"
)

// DecisionTree is a CART regression tree using squared error as the split
// criterion. All features are considered at every node.
type DecisionTree struct {
	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int

	root        *treeNode
	nFeatures   int
	importances []float64
}

type treeNode struct {
	leaf      bool
	value     float64
	feature   int
	threshold float64 // x[feature] <= threshold goes left
	left      *treeNode
	right     *treeNode
}

// TreeOption configures a DecisionTree.
type TreeOption func(*DecisionTree)

func WithMaxDepth(d int) TreeOption       { return func(t *DecisionTree) { t.MaxDepth = d } }
func WithMinSamplesLeaf(n int) TreeOption { return func(t *DecisionTree) { t.MinSamplesLeaf = n } }

// NewDecisionTree returns an untrained tree. Defaults: unlimited depth, at
// least two samples to split and one per leaf.
func NewDecisionTree(opts ...TreeOption) *DecisionTree {
	t := &DecisionTree{MinSamplesSplit: 2, MinSamplesLeaf: 1}
	for _, o := range opts {
		o(t)
	}
	t.MinSamplesSplit = max(t.MinSamplesSplit, 2)
	t.MinSamplesLeaf = max(t.MinSamplesLeaf, 1)
	return t
}

// Fit grows the tree on every row of X.
func (t *DecisionTree) Fit(X [][]float64, y []float64) error {
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	return t.fitIndices(X, y, idx)
}

// fitIndices grows the tree on the rows selected by idx. Repeated indices
// (bootstrap samples) count once per occurrence.
func (t *DecisionTree) fitIndices(X [][]float64, y []float64, idx []int) error {
	p, err := checkXY(X, y)
	if err != nil {
		return fmt.Errorf("decision tree: %w", err)
	}
	if len(idx) == 0 {
		return fmt.Errorf("decision tree: empty sample")
	}
	t.nFeatures = p
	t.importances = make([]float64, p)
	t.root = t.grow(X, y, idx, 0)

	var total float64
	for _, v := range t.importances {
		total += v
	}
	if total > 0 {
		for i := range t.importances {
			t.importances[i] /= total
		}
	}
	return nil
}

type split struct {
	ok        bool
	feature   int
	threshold float64
	gain      float64
}

func (t *DecisionTree) grow(X [][]float64, y []float64, idx []int, depth int) *treeNode {
	var sum, sumSq float64
	for _, i := range idx {
		sum += y[i]
		sumSq += y[i] * y[i]
	}
	n := float64(len(idx))
	node := &treeNode{leaf: true, value: sum / n}

	if len(idx) < t.MinSamplesSplit || (t.MaxDepth > 0 && depth >= t.MaxDepth) {
		return node
	}
	parentSSE := sumSq - sum*sum/n
	if parentSSE <= 1e-12 {
		return node
	}

	best := t.bestSplit(X, y, idx, sum, sumSq, parentSSE)
	if !best.ok {
		return node
	}

	var left, right []int
	for _, i := range idx {
		if X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	t.importances[best.feature] += best.gain

	node.leaf = false
	node.feature = best.feature
	node.threshold = best.threshold
	node.left = t.grow(X, y, left, depth+1)
	node.right = t.grow(X, y, right, depth+1)
	return node
}

// bestSplit scans every feature in sorted order keeping running sums, so the
// SSE of both children is available in constant time per candidate.
func (t *DecisionTree) bestSplit(X [][]float64, y []float64, idx []int, sum, sumSq, parentSSE float64) split {
	var best split
	order := make([]int, len(idx))
	total := len(idx)

	for f := range t.nFeatures {
		copy(order, idx)
		slices.SortStableFunc(order, func(a, b int) int { return cmp.Compare(X[a][f], X[b][f]) })

		var lSum, lSq float64
		for k := 0; k < total-1; k++ {
			v := y[order[k]]
			lSum += v
			lSq += v * v

			cur, next := X[order[k]][f], X[order[k+1]][f]
			if cur == next {
				continue
			}
			nl := k + 1
			nr := total - nl
			if nl < t.MinSamplesLeaf || nr < t.MinSamplesLeaf {
				continue
			}
			rSum := sum - lSum
			rSq := sumSq - lSq
			sse := (lSq - lSum*lSum/float64(nl)) + (rSq - rSum*rSum/float64(nr))
			gain := parentSSE - sse
			if gain > best.gain+1e-12 {
				thr := (cur + next) / 2
				if thr >= next {
					thr = cur
				}
				best = split{ok: true, feature: f, threshold: thr, gain: gain}
			}
		}
	}
	return best
}

// Predict walks the tree for each row.
func (t *DecisionTree) Predict(X [][]float64) ([]float64, error) {
	if t.root == nil {
		return nil, ErrNotTrained
	}
	if err := checkWidth(X, t.nFeatures); err != nil {
		return nil, err
	}
	out := make([]float64, len(X))
	for i, row := range X {
		out[i] = t.predictRow(row)
	}
	return out, nil
}

func (t *DecisionTree) predictRow(x []float64) float64 {
	n := t.root
	for !n.leaf {
		if x[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.value
}

// FeatureImportances returns the normalised total SSE reduction per feature.
func (t *DecisionTree) FeatureImportances() []float64 {
	if t.importances == nil {
		return nil
	}
	return slices.Clone(t.importances)
}

// Depth returns the length of the longest root-to-leaf path.
func (t *DecisionTree) Depth() int {
	var walk func(*treeNode) int
	walk = func(n *treeNode) int {
		if n == nil || n.leaf {
			return 0
		}
		return 1 + max(walk(n.left), walk(n.right))
	}
	return walk(t.root)
}
