package similarity

import (
	"math"
	"testing"
)

func TestNormalizeRescales(t *testing.T) {
	w := Weights{Keywords: 2, Description: 1, Headline: 1, Threshold: 30}
	norm, changed := w.Normalize()
	if !changed {
		t.Error("expected normalization to apply")
	}
	if math.Abs(norm.Keywords-0.5) > 1e-9 || math.Abs(norm.Description-0.25) > 1e-9 {
		t.Errorf("unexpected normalized weights: %+v", norm)
	}
	if norm.Threshold != 30 {
		t.Errorf("threshold must not be rescaled, got %v", norm.Threshold)
	}
}

func TestNormalizeUnitSumUntouched(t *testing.T) {
	w := DefaultWeights()
	norm, changed := w.Normalize()
	if changed {
		t.Error("unit-sum weights should not be rescaled")
	}
	if norm != w {
		t.Errorf("weights changed: %+v", norm)
	}
}

func TestNormalizeWithinTolerance(t *testing.T) {
	w := Weights{Keywords: 0.6, Description: 0.3, Headline: 0.1 + 5e-7}
	if _, changed := w.Normalize(); changed {
		t.Error("sum within 1e-6 of 1 should not be rescaled")
	}
}

func TestNormalizeZeroSum(t *testing.T) {
	w := Weights{}
	norm, changed := w.Normalize()
	if changed {
		t.Error("zero-sum weights should be left alone")
	}
	if norm.Keywords != 0 {
		t.Errorf("unexpected weights: %+v", norm)
	}
}
