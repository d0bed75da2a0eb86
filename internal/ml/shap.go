package ml

import "fmt"

// Attributions computes per-feature contribution scores for a single
// instance by decomposing each tree's decision path: every split shifts the
// expected prediction from the parent node's value to the taken child's
// value, and that shift is credited to the split feature. Contributions sum
// (with the root expectation) to the forest's prediction.
func (f *Forest) Attributions(x []float64) ([]float64, error) {
	if len(x) != f.NumFeatures {
		return nil, fmt.Errorf("%w: got %d features, want %d", ErrShapeMismatch, len(x), f.NumFeatures)
	}

	contrib := make([]float64, f.NumFeatures)
	for t := range f.Trees {
		tree := &f.Trees[t]
		idx := 0
		for {
			node := &tree.Nodes[idx]
			if node.Feature < 0 {
				break
			}
			next := node.Left
			if x[node.Feature] > node.Threshold {
				next = node.Right
			}
			contrib[node.Feature] += tree.Nodes[next].Value - node.Value
			idx = next
		}
	}

	for i := range contrib {
		contrib[i] /= float64(len(f.Trees))
	}
	return contrib, nil
}

// MeanAbsAttributions averages the absolute per-feature attribution over a
// set of instances. This is the score the explanation engine ranks features
// by: mean |contribution| across the symptom's positive-class rows.
func (f *Forest) MeanAbsAttributions(X [][]float64) ([]float64, error) {
	if len(X) == 0 {
		return make([]float64, f.NumFeatures), nil
	}

	mean := make([]float64, f.NumFeatures)
	for _, x := range X {
		contrib, err := f.Attributions(x)
		if err != nil {
			return nil, err
		}
		for i, c := range contrib {
			if c < 0 {
				c = -c
			}
			mean[i] += c
		}
	}
	for i := range mean {
		mean[i] /= float64(len(X))
	}
	return mean, nil
}
