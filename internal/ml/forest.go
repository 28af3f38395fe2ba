package ml

import (
	"fmt"
	"math"
	"math/rand"
)

// Params are the random forest hyperparameters.
type Params struct {
	NumTrees        int   `json:"num_trees"`
	MaxDepth        int   `json:"max_depth"` // 0 means unlimited
	MinSamplesSplit int   `json:"min_samples_split"`
	MinSamplesLeaf  int   `json:"min_samples_leaf"`
	Seed            int64 `json:"seed"`
}

// DefaultParams mirror the configuration the production model was trained
// with: 200 unbounded trees, seed 42.
func DefaultParams() Params {
	return Params{
		NumTrees:        200,
		MaxDepth:        0,
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Seed:            42,
	}
}

// Forest is a fitted random forest binary classifier. It is immutable after
// training and safe for unsynchronized concurrent prediction.
type Forest struct {
	Params      Params `json:"params"`
	Trees       []tree `json:"trees"`
	NumFeatures int    `json:"num_features"`
}

// Train fits a random forest on the given matrix and binary labels.
// Trees are grown sequentially from one seeded source, so results are
// fully reproducible for a given seed.
func Train(x [][]float64, y []int, p Params) (*Forest, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("cannot train on empty dataset")
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("feature matrix has %d rows but %d labels", len(x), len(y))
	}
	for _, label := range y {
		if label != 0 && label != 1 {
			return nil, fmt.Errorf("labels must be 0 or 1, got %d", label)
		}
	}
	if p.NumTrees <= 0 {
		return nil, fmt.Errorf("num_trees must be positive, got %d", p.NumTrees)
	}
	if p.MinSamplesSplit < 2 {
		p.MinSamplesSplit = 2
	}
	if p.MinSamplesLeaf < 1 {
		p.MinSamplesLeaf = 1
	}

	numFeatures := len(x[0])
	rng := rand.New(rand.NewSource(p.Seed))
	maxFeatures := int(math.Sqrt(float64(numFeatures)))
	if maxFeatures < 1 {
		maxFeatures = 1
	}

	forest := &Forest{
		Params:      p,
		NumFeatures: numFeatures,
		Trees:       make([]tree, 0, p.NumTrees),
	}

	for i := 0; i < p.NumTrees; i++ {
		samples := make([]int, len(x))
		for j := range samples {
			samples[j] = rng.Intn(len(x))
		}

		order := make([]int, numFeatures)
		for j := range order {
			order[j] = j
		}

		b := &treeBuilder{
			x:               x,
			y:               y,
			rng:             rng,
			featureOrder:    order,
			maxDepth:        p.MaxDepth,
			minSamplesSplit: p.MinSamplesSplit,
			minSamplesLeaf:  p.MinSamplesLeaf,
			maxFeatures:     maxFeatures,
		}
		b.build(samples, 0)
		forest.Trees = append(forest.Trees, tree{Nodes: b.nodes})
	}

	return forest, nil
}

// PredictProba returns the class probabilities (negative, positive) for a
// feature vector, averaged over the leaf distributions of all trees.
func (f *Forest) PredictProba(x []float64) (float64, float64, error) {
	if len(x) != f.NumFeatures {
		return 0, 0, fmt.Errorf("expected %d features, got %d", f.NumFeatures, len(x))
	}
	var p0, p1 float64
	for i := range f.Trees {
		d := f.Trees[i].predictProba(x)
		p0 += d[0]
		p1 += d[1]
	}
	n := float64(len(f.Trees))
	return p0 / n, p1 / n, nil
}

// Predict returns the majority class for a feature vector. A tie resolves
// to the negative class.
func (f *Forest) Predict(x []float64) (int, error) {
	p0, p1, err := f.PredictProba(x)
	if err != nil {
		return 0, err
	}
	if p1 > p0 {
		return 1, nil
	}
	return 0, nil
}
