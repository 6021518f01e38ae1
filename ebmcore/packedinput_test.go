package ebmcore

import "testing"

func TestPackInputRoundTripsTensorIndex(t *testing.T) {
	fc, err := NewFeatureCombination(
		Feature{StateCount: 5, FeatureIndex: 0},
		Feature{StateCount: 3, FeatureIndex: 1},
	)
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}

	col0 := []int{0, 1, 2, 3, 4, 0, 4}
	col1 := []int{0, 1, 2, 0, 2, 2, 0}
	caseCount := len(col0)

	view, err := PackInput(fc, caseCount, [][]int{col0, col1})
	if err != nil {
		t.Fatalf("PackInput: %v", err)
	}
	if view.CaseCount != caseCount {
		t.Fatalf("case count = %d, want %d", view.CaseCount, caseCount)
	}

	for i := 0; i < caseCount; i++ {
		want := uint64(col0[i]) + uint64(col1[i])*5
		if got := view.TensorIndex(i); got != want {
			t.Fatalf("case %d: tensor index = %d, want %d", i, got, want)
		}
	}
}

func TestPackInputRejectsNonPositiveCaseCount(t *testing.T) {
	fc, err := NewFeatureCombination(Feature{StateCount: 2, FeatureIndex: 0})
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}
	if _, err := PackInput(fc, 0, [][]int{{}}); err == nil {
		t.Fatal("expected error for zero case count")
	}
}

func TestPackInputRejectsDimensionMismatch(t *testing.T) {
	fc, err := NewFeatureCombination(
		Feature{StateCount: 2, FeatureIndex: 0},
		Feature{StateCount: 2, FeatureIndex: 1},
	)
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}
	if _, err := PackInput(fc, 3, [][]int{{0, 1, 0}}); err == nil {
		t.Fatal("expected error for rawStates shorter than fc.Dimensions()")
	}
}

func TestPackInputPacksManyCasesAcrossWords(t *testing.T) {
	fc, err := NewFeatureCombination(Feature{StateCount: 4, FeatureIndex: 0})
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}

	caseCount := 1000
	states := make([]int, caseCount)
	for i := range states {
		states[i] = i % 4
	}

	view, err := PackInput(fc, caseCount, [][]int{states})
	if err != nil {
		t.Fatalf("PackInput: %v", err)
	}
	for i := 0; i < caseCount; i++ {
		if got := view.TensorIndex(i); got != uint64(states[i]) {
			t.Fatalf("case %d: tensor index = %d, want %d", i, got, states[i])
		}
	}
}
