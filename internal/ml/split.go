package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

// Split is a train/test partition of a feature matrix and target.
type Split struct {
	XTrain, XTest [][]float64
	YTrain, YTest []float64
}

// TrainTestSplit shuffles the row indices with a PCG stream seeded by seed
// and puts the first ceil(n*testSize) of them in the test partition. Rows
// are shared with X, not copied.
func TrainTestSplit(X [][]float64, y []float64, testSize float64, seed uint64) (*Split, error) {
	n := len(X)
	if n != len(y) {
		return nil, fmt.Errorf("split: X has %d rows but y has %d", n, len(y))
	}
	if n < 2 {
		return nil, errors.New("split: need at least two rows")
	}
	if !(testSize > 0 && testSize < 1) {
		return nil, fmt.Errorf("split: test size %v must be in (0, 1)", testSize)
	}
	nTest := int(math.Ceil(float64(n)*testSize - 1e-9))
	nTest = min(max(nTest, 1), n-1)

	perm := rand.New(rand.NewPCG(seed, seed^0x5851f42d4c957f2d)).Perm(n)
	s := &Split{
		XTrain: make([][]float64, 0, n-nTest),
		XTest:  make([][]float64, 0, nTest),
		YTrain: make([]float64, 0, n-nTest),
		YTest:  make([]float64, 0, nTest),
	}
	for k, i := range perm {
		if k < nTest {
			s.XTest = append(s.XTest, X[i])
			s.YTest = append(s.YTest, y[i])
		} else {
			s.XTrain = append(s.XTrain, X[i])
			s.YTrain = append(s.YTrain, y[i])
		}
	}
	return s, nil
}
