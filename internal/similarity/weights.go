package similarity

import "math"

// Weights controls how keyword, description, and headline scores blend into
// the combined similarity, and the pass threshold applied to the result.
type Weights struct {
	Keywords    float64
	Description float64
	Headline    float64
	Threshold   float64
}

// DefaultWeights returns the standard blend.
func DefaultWeights() Weights {
	return Weights{Keywords: 0.6, Description: 0.3, Headline: 0.1, Threshold: 30.0}
}

// Normalize rescales the three weights to sum to 1 and reports whether
// rescaling happened. Sums already within 1e-6 of 1 are left untouched, as
// is a non-positive sum.
func (w Weights) Normalize() (Weights, bool) {
	total := w.Keywords + w.Description + w.Headline
	if total <= 0 || math.Abs(total-1.0) <= 1e-6 {
		return w, false
	}
	w.Keywords /= total
	w.Description /= total
	w.Headline /= total
	return w, true
}
