package ebmcore

import "testing"

func TestShapeTermContributeAddsPerCaseValue(t *testing.T) {
	fc, err := NewFeatureCombination(Feature{StateCount: 3, FeatureIndex: 0})
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}
	term := NewShapeTerm(fc, 1)
	term.Region.Values[0] = 10
	term.Region.Values[1] = 20
	term.Region.Values[2] = 30

	states := []int{0, 1, 2, 1}
	view, err := PackInput(fc, len(states), [][]int{states})
	if err != nil {
		t.Fatalf("PackInput: %v", err)
	}

	out := make([]float64, len(states))
	if err := term.Contribute(view, out, 1); err != nil {
		t.Fatalf("Contribute: %v", err)
	}
	want := []float64{10, 20, 30, 20}
	for i, w := range want {
		if out[i] != w {
			t.Fatalf("out[%d] = %v, want %v", i, out[i], w)
		}
	}
}

func TestShapeTermContributeAccumulatesAcrossTerms(t *testing.T) {
	fc, err := NewFeatureCombination(Feature{StateCount: 2, FeatureIndex: 0})
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}
	termA := NewShapeTerm(fc, 1)
	termA.Region.Values[0] = 1
	termA.Region.Values[1] = 2
	termB := NewShapeTerm(fc, 1)
	termB.Region.Values[0] = 100
	termB.Region.Values[1] = 200

	states := []int{0, 1}
	view, err := PackInput(fc, len(states), [][]int{states})
	if err != nil {
		t.Fatalf("PackInput: %v", err)
	}

	out := make([]float64, len(states))
	if err := termA.Contribute(view, out, 1); err != nil {
		t.Fatalf("Contribute A: %v", err)
	}
	if err := termB.Contribute(view, out, 1); err != nil {
		t.Fatalf("Contribute B: %v", err)
	}
	if out[0] != 101 || out[1] != 202 {
		t.Fatalf("out = %v, want [101 202]", out)
	}
}
