package advisor

import (
	"math"
	"math/rand"
	"sort"
)

// Least-squares gradient boosting over depth-limited regression trees.
// Training is deterministic for a fixed seed, and the fitted model is
// JSON-serializable so it survives the ModelStore round trip.

// GBTParams are the boosting hyperparameters
type GBTParams struct {
	NEstimators     int     `json:"n_estimators"`
	MaxDepth        int     `json:"max_depth"`
	LearningRate    float64 `json:"learning_rate"`
	Subsample       float64 `json:"subsample"`
	MinSamplesSplit int     `json:"min_samples_split"`
	MinSamplesLeaf  int     `json:"min_samples_leaf"`
	Seed            int64   `json:"seed"`
}

// DefaultGBTParams returns the fixed production hyperparameters
func DefaultGBTParams() GBTParams {
	return GBTParams{
		NEstimators:     200,
		MaxDepth:        6,
		LearningRate:    0.05,
		Subsample:       0.8,
		MinSamplesSplit: 10,
		MinSamplesLeaf:  5,
		Seed:            42,
	}
}

// treeNode is one node of a regression tree. Leaf iff Left is nil.
type treeNode struct {
	Feature   int       `json:"feature,omitempty"`
	Threshold float64   `json:"threshold,omitempty"`
	Value     float64   `json:"value"`
	Left      *treeNode `json:"left,omitempty"`
	Right     *treeNode `json:"right,omitempty"`
}

func (n *treeNode) predict(x []float64) float64 {
	for n.Left != nil {
		if x[n.Feature] <= n.Threshold {
			n = n.Left
		} else {
			n = n.Right
		}
	}
	return n.Value
}

// GBTModel is a fitted boosted ensemble
type GBTModel struct {
	Params GBTParams   `json:"params"`
	Base   float64     `json:"base"`
	Trees  []*treeNode `json:"trees"`
}

// Predict returns the ensemble prediction for one feature vector
func (m *GBTModel) Predict(x []float64) float64 {
	pred := m.Base
	for _, t := range m.Trees {
		pred += m.Params.LearningRate * t.predict(x)
	}
	return pred
}

// TrainGBT fits a boosted regression ensemble to X, y.
// Returns nil when the training set is empty.
func TrainGBT(x [][]float64, y []float64, params GBTParams) *GBTModel {
	n := len(x)
	if n == 0 || len(y) != n {
		return nil
	}

	base := mean(y)
	model := &GBTModel{
		Params: params,
		Base:   base,
		Trees:  make([]*treeNode, 0, params.NEstimators),
	}

	rng := rand.New(rand.NewSource(params.Seed))

	current := make([]float64, n)
	residuals := make([]float64, n)
	for i := range current {
		current[i] = base
	}

	sampleSize := int(float64(n) * params.Subsample)
	if sampleSize < 1 {
		sampleSize = n
	}
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	for t := 0; t < params.NEstimators; t++ {
		for i := range residuals {
			residuals[i] = y[i] - current[i]
		}

		// Subsample rows without replacement
		rng.Shuffle(n, func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		sample := make([]int, sampleSize)
		copy(sample, indices[:sampleSize])
		sort.Ints(sample)

		tree := buildTree(x, residuals, sample, 0, params)
		model.Trees = append(model.Trees, tree)

		for i := 0; i < n; i++ {
			current[i] += params.LearningRate * tree.predict(x[i])
		}
	}

	return model
}

// buildTree grows one regression tree on the residuals of the sampled rows
func buildTree(x [][]float64, residuals []float64, idx []int, depth int, params GBTParams) *treeNode {
	if depth >= params.MaxDepth || len(idx) < params.MinSamplesSplit {
		return &treeNode{Value: meanAt(residuals, idx)}
	}

	feature, threshold, ok := bestSplit(x, residuals, idx, params.MinSamplesLeaf)
	if !ok {
		return &treeNode{Value: meanAt(residuals, idx)}
	}

	var left, right []int
	for _, i := range idx {
		if x[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	return &treeNode{
		Feature:   feature,
		Threshold: threshold,
		Value:     meanAt(residuals, idx),
		Left:      buildTree(x, residuals, left, depth+1, params),
		Right:     buildTree(x, residuals, right, depth+1, params),
	}
}

// bestSplit scans every feature for the variance-minimizing threshold,
// honoring the minimum leaf size
func bestSplit(x [][]float64, residuals []float64, idx []int, minLeaf int) (int, float64, bool) {
	n := len(idx)
	if n < 2*minLeaf {
		return 0, 0, false
	}

	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += residuals[i]
		totalSq += residuals[i] * residuals[i]
	}
	baseSSE := totalSq - totalSum*totalSum/float64(n)

	bestFeature := -1
	bestThreshold := 0.0
	bestSSE := baseSSE - 1e-12

	numFeatures := len(x[idx[0]])
	order := make([]int, n)

	for f := 0; f < numFeatures; f++ {
		copy(order, idx)
		sort.Slice(order, func(a, b int) bool {
			return x[order[a]][f] < x[order[b]][f]
		})

		var leftSum, leftSq float64
		for pos := 0; pos < n-1; pos++ {
			i := order[pos]
			leftSum += residuals[i]
			leftSq += residuals[i] * residuals[i]

			leftCount := pos + 1
			rightCount := n - leftCount
			if leftCount < minLeaf || rightCount < minLeaf {
				continue
			}

			// Cannot split between tied feature values
			if x[order[pos]][f] == x[order[pos+1]][f] {
				continue
			}

			rightSum := totalSum - leftSum
			rightSq := totalSq - leftSq
			sse := (leftSq - leftSum*leftSum/float64(leftCount)) +
				(rightSq - rightSum*rightSum/float64(rightCount))

			if sse < bestSSE {
				bestSSE = sse
				bestFeature = f
				bestThreshold = (x[order[pos]][f] + x[order[pos+1]][f]) / 2
			}
		}
	}

	if bestFeature < 0 {
		return 0, 0, false
	}
	return bestFeature, bestThreshold, true
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func meanAt(values []float64, idx []int) float64 {
	if len(idx) == 0 {
		return 0
	}
	var sum float64
	for _, i := range idx {
		sum += values[i]
	}
	return sum / float64(len(idx))
}

func stddev(values []float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	m := mean(values)
	var sq float64
	for _, v := range values {
		d := v - m
		sq += d * d
	}
	return math.Sqrt(sq / float64(n))
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
