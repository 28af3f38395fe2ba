// Package ml implements the seeded random forest classifier behind the
// PCOS risk predictions. All randomness flows from a single seeded source,
// so the same seed and data always produce the same model.
package ml

import (
	"math"
	"math/rand"
	"sort"
)

// node is a single tree node, flattened for serialization. Leaf nodes have
// Feature == -1 and carry the class distribution in Dist.
type node struct {
	Threshold float64    `json:"t"`
	Dist      [2]float64 `json:"d"`
	Feature   int        `json:"f"`
	Left      int        `json:"l"`
	Right     int        `json:"r"`
}

// tree is a fitted CART decision tree over a flattened node array.
type tree struct {
	Nodes []node `json:"nodes"`
}

// predictProba walks the tree and returns the leaf class distribution.
func (t *tree) predictProba(x []float64) [2]float64 {
	i := 0
	for {
		n := t.Nodes[i]
		if n.Feature < 0 {
			return n.Dist
		}
		if x[n.Feature] <= n.Threshold {
			i = n.Left
		} else {
			i = n.Right
		}
	}
}

// treeBuilder grows one tree over a bootstrap sample.
type treeBuilder struct {
	x               [][]float64
	y               []int
	rng             *rand.Rand
	nodes           []node
	featureOrder    []int
	maxDepth        int
	minSamplesSplit int
	minSamplesLeaf  int
	maxFeatures     int
}

func (b *treeBuilder) build(samples []int, depth int) int {
	c0, c1 := classCounts(b.y, samples)
	total := float64(c0 + c1)

	pure := c0 == 0 || c1 == 0
	tooDeep := b.maxDepth > 0 && depth >= b.maxDepth
	tooSmall := len(samples) < b.minSamplesSplit

	if !pure && !tooDeep && !tooSmall {
		feat, thresh, ok := b.bestSplit(samples)
		if ok {
			left, right := partition(b.x, samples, feat, thresh)
			idx := len(b.nodes)
			b.nodes = append(b.nodes, node{Feature: feat, Threshold: thresh})
			b.nodes[idx].Left = b.build(left, depth+1)
			b.nodes[idx].Right = b.build(right, depth+1)
			return idx
		}
	}

	idx := len(b.nodes)
	b.nodes = append(b.nodes, node{
		Feature: -1,
		Left:    -1,
		Right:   -1,
		Dist:    [2]float64{float64(c0) / total, float64(c1) / total},
	})
	return idx
}

// bestSplit scans a random subset of features for the threshold with the
// lowest weighted Gini impurity. Feature candidates are drawn in a fixed
// shuffle order from the shared seeded source; ties keep the first find.
func (b *treeBuilder) bestSplit(samples []int) (int, float64, bool) {
	candidates := b.featureOrder
	b.rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})

	bestGini := math.Inf(1)
	bestFeat, bestThresh := -1, 0.0

	for _, feat := range candidates[:b.maxFeatures] {
		values := make([]float64, len(samples))
		for i, s := range samples {
			values[i] = b.x[s][feat]
		}
		sort.Float64s(values)

		for i := 1; i < len(values); i++ {
			if values[i] == values[i-1] {
				continue
			}
			thresh := (values[i] + values[i-1]) / 2
			g, nl, nr := b.splitGini(samples, feat, thresh)
			if nl < b.minSamplesLeaf || nr < b.minSamplesLeaf {
				continue
			}
			if g < bestGini {
				bestGini, bestFeat, bestThresh = g, feat, thresh
			}
		}
	}

	return bestFeat, bestThresh, bestFeat >= 0
}

// splitGini computes the weighted Gini impurity of splitting samples on
// feature <= thresh, along with the resulting partition sizes.
func (b *treeBuilder) splitGini(samples []int, feat int, thresh float64) (float64, int, int) {
	var l0, l1, r0, r1 int
	for _, s := range samples {
		if b.x[s][feat] <= thresh {
			if b.y[s] == 0 {
				l0++
			} else {
				l1++
			}
		} else {
			if b.y[s] == 0 {
				r0++
			} else {
				r1++
			}
		}
	}
	nl, nr := l0+l1, r0+r1
	total := float64(nl + nr)
	weighted := float64(nl)/total*gini(l0, l1) + float64(nr)/total*gini(r0, r1)
	return weighted, nl, nr
}

func gini(c0, c1 int) float64 {
	n := float64(c0 + c1)
	if n == 0 {
		return 0
	}
	p0 := float64(c0) / n
	p1 := float64(c1) / n
	return 1 - p0*p0 - p1*p1
}

func classCounts(y []int, samples []int) (int, int) {
	var c0, c1 int
	for _, s := range samples {
		if y[s] == 0 {
			c0++
		} else {
			c1++
		}
	}
	return c0, c1
}

func partition(x [][]float64, samples []int, feat int, thresh float64) ([]int, []int) {
	var left, right []int
	for _, s := range samples {
		if x[s][feat] <= thresh {
			left = append(left, s)
		} else {
			right = append(right, s)
		}
	}
	return left, right
}
