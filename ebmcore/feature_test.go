package ebmcore

import "testing"

func TestNewFeatureCombinationDerivesLayout(t *testing.T) {
	fc, err := NewFeatureCombination(
		Feature{StateCount: 4, FeatureIndex: 0},
		Feature{StateCount: 3, FeatureIndex: 1},
	)
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}
	if fc.Dimensions() != 2 {
		t.Fatalf("dimensions = %d, want 2", fc.Dimensions())
	}
	if fc.TensorVolume != 12 {
		t.Fatalf("tensor volume = %d, want 12", fc.TensorVolume)
	}
	if got := fc.StateCounts(); got[0] != 4 || got[1] != 3 {
		t.Fatalf("state counts = %v", got)
	}
	if fc.AxisStride[0] != 1 || fc.AxisStride[1] != 4 {
		t.Fatalf("axis strides = %v, want [1 4]", fc.AxisStride)
	}
}

func TestNewFeatureCombinationRejectsDegenerateState(t *testing.T) {
	if _, err := NewFeatureCombination(Feature{StateCount: 1, FeatureIndex: 0}); err == nil {
		t.Fatal("expected error for a single-state feature")
	}
}

func TestNewFeatureCombinationRejectsTooManyAxes(t *testing.T) {
	features := make([]Feature, maxDimensions+1)
	for i := range features {
		features[i] = Feature{StateCount: 2, FeatureIndex: i}
	}
	if _, err := NewFeatureCombination(features...); err == nil {
		t.Fatal("expected error for exceeding maxDimensions")
	}
}

func TestBitLength(t *testing.T) {
	cases := map[uint64]int{0: 0, 1: 1, 2: 2, 3: 2, 4: 3, 255: 8, 256: 9}
	for v, want := range cases {
		if got := bitLength(v); got != want {
			t.Fatalf("bitLength(%d) = %d, want %d", v, got, want)
		}
	}
}
