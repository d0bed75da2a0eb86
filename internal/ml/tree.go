package ml

import (
	"math"
	"math/rand"
	"sort"
)

// treeNode is one node of a fitted decision tree. Leaf nodes have Feature set
// to -1. Value is the positive-class fraction of the training rows that
// reached the node; it is kept on internal nodes too so attribution can track
// how the expected prediction shifts along a decision path.
type treeNode struct {
	Feature   int     `json:"feature"`
	Threshold float64 `json:"threshold"`
	Left      int     `json:"left"`
	Right     int     `json:"right"`
	Value     float64 `json:"value"`
}

// Tree is a binary classification tree (CART, gini criterion).
type Tree struct {
	Nodes       []treeNode `json:"nodes"`
	NumFeatures int        `json:"num_features"`
}

type treeConfig struct {
	maxDepth    int
	minLeafSize int
	// maxFeatures is the number of feature candidates sampled per split.
	maxFeatures int
	rng         *rand.Rand
}

func growTree(X [][]float64, y []int, indices []int, cfg treeConfig) Tree {
	t := Tree{NumFeatures: 0}
	if len(X) > 0 {
		t.NumFeatures = len(X[0])
	}
	t.build(X, y, indices, 0, cfg)
	return t
}

// build appends the subtree for the given sample indices and returns its root
// node index.
func (t *Tree) build(X [][]float64, y []int, indices []int, depth int, cfg treeConfig) int {
	value := positiveFraction(y, indices)
	nodeIdx := len(t.Nodes)
	t.Nodes = append(t.Nodes, treeNode{Feature: -1, Left: -1, Right: -1, Value: value})

	if depth >= cfg.maxDepth || len(indices) < 2*cfg.minLeafSize || value == 0 || value == 1 {
		return nodeIdx
	}

	feature, threshold, ok := bestSplit(X, y, indices, cfg)
	if !ok {
		return nodeIdx
	}

	var left, right []int
	for _, i := range indices {
		if X[i][feature] <= threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	if len(left) < cfg.minLeafSize || len(right) < cfg.minLeafSize {
		return nodeIdx
	}

	t.Nodes[nodeIdx].Feature = feature
	t.Nodes[nodeIdx].Threshold = threshold
	leftIdx := t.build(X, y, left, depth+1, cfg)
	rightIdx := t.build(X, y, right, depth+1, cfg)
	t.Nodes[nodeIdx].Left = leftIdx
	t.Nodes[nodeIdx].Right = rightIdx
	return nodeIdx
}

// bestSplit searches a random feature subset for the split with the lowest
// weighted gini impurity.
func bestSplit(X [][]float64, y []int, indices []int, cfg treeConfig) (int, float64, bool) {
	numFeatures := len(X[0])
	candidates := cfg.rng.Perm(numFeatures)
	if cfg.maxFeatures > 0 && cfg.maxFeatures < numFeatures {
		candidates = candidates[:cfg.maxFeatures]
	}

	bestGini := math.Inf(1)
	bestFeature, bestThreshold := -1, 0.0

	for _, feature := range candidates {
		values := make([]float64, 0, len(indices))
		for _, i := range indices {
			values = append(values, X[i][feature])
		}
		sort.Float64s(values)

		for v := 1; v < len(values); v++ {
			if values[v] == values[v-1] {
				continue
			}
			threshold := (values[v] + values[v-1]) / 2

			leftPos, leftN, rightPos, rightN := 0, 0, 0, 0
			for _, i := range indices {
				if X[i][feature] <= threshold {
					leftN++
					leftPos += y[i]
				} else {
					rightN++
					rightPos += y[i]
				}
			}
			if leftN == 0 || rightN == 0 {
				continue
			}

			g := weightedGini(leftPos, leftN, rightPos, rightN)
			if g < bestGini {
				bestGini = g
				bestFeature = feature
				bestThreshold = threshold
			}
		}
	}

	return bestFeature, bestThreshold, bestFeature >= 0
}

func weightedGini(leftPos, leftN, rightPos, rightN int) float64 {
	total := float64(leftN + rightN)
	return float64(leftN)/total*gini(leftPos, leftN) + float64(rightN)/total*gini(rightPos, rightN)
}

func gini(pos, n int) float64 {
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}

func positiveFraction(y []int, indices []int) float64 {
	if len(indices) == 0 {
		return 0
	}
	pos := 0
	for _, i := range indices {
		pos += y[i]
	}
	return float64(pos) / float64(len(indices))
}

// predict walks the tree and returns the leaf's positive-class probability.
func (t *Tree) predict(x []float64) float64 {
	idx := 0
	for {
		node := &t.Nodes[idx]
		if node.Feature < 0 {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			idx = node.Left
		} else {
			idx = node.Right
		}
	}
}
