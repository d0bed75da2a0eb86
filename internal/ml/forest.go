package ml

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
)

// ErrShapeMismatch is returned when an instance vector does not match the
// feature count the model was trained on. Callers are expected to skip the
// affected symptom and continue, not abort the batch.
var ErrShapeMismatch = errors.New("feature vector shape does not match trained model")

// ForestConfig controls random-forest training. Zero values fall back to the
// defaults used by every per-symptom classifier.
type ForestConfig struct {
	NumTrees    int
	MaxDepth    int
	MinLeafSize int
	Seed        int64
}

func (c ForestConfig) withDefaults() ForestConfig {
	if c.NumTrees <= 0 {
		c.NumTrees = 50
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 6
	}
	if c.MinLeafSize <= 0 {
		c.MinLeafSize = 1
	}
	if c.Seed == 0 {
		c.Seed = 42
	}
	return c
}

// Forest is a bagged ensemble of classification trees, one fitted per symptom
// with at least one positive example.
type Forest struct {
	Trees       []Tree `json:"trees"`
	NumFeatures int    `json:"num_features"`
}

// TrainForest fits a random forest on the given table. y must hold 0/1 labels
// parallel to X.
func TrainForest(X [][]float64, y []int, cfg ForestConfig) (*Forest, error) {
	if len(X) == 0 {
		return nil, errors.New("empty training set")
	}
	if len(X) != len(y) {
		return nil, fmt.Errorf("feature rows (%d) and labels (%d) differ", len(X), len(y))
	}

	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))
	numFeatures := len(X[0])
	maxFeatures := int(math.Ceil(math.Sqrt(float64(numFeatures))))

	forest := &Forest{NumFeatures: numFeatures}
	for t := 0; t < cfg.NumTrees; t++ {
		sample := make([]int, len(X))
		for i := range sample {
			sample[i] = rng.Intn(len(X))
		}
		tree := growTree(X, y, sample, treeConfig{
			maxDepth:    cfg.MaxDepth,
			minLeafSize: cfg.MinLeafSize,
			maxFeatures: maxFeatures,
			rng:         rng,
		})
		forest.Trees = append(forest.Trees, tree)
	}
	return forest, nil
}

// PredictProba returns the forest's positive-class probability for one
// instance.
func (f *Forest) PredictProba(x []float64) (float64, error) {
	if len(x) != f.NumFeatures {
		return 0, fmt.Errorf("%w: got %d features, want %d", ErrShapeMismatch, len(x), f.NumFeatures)
	}
	sum := 0.0
	for i := range f.Trees {
		sum += f.Trees[i].predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}
