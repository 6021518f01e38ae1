package ebmcore

import "testing"

func scatterAll(fc *FeatureCombination, l int, mode Mode, values map[uint64]float64) *Histogram {
	h, err := NewHistogram(fc, l, mode)
	if err != nil {
		panic(err)
	}
	for flat, v := range values {
		h.Bins[flat].Count = 1
		h.Bins[flat].SumResidual[0] = v
	}
	return h
}

func TestBuildFastTotals1DMatchesPrefixSum(t *testing.T) {
	fc, err := NewFeatureCombination(Feature{StateCount: 5, FeatureIndex: 0})
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}
	h := scatterAll(fc, 1, Regression, map[uint64]float64{0: 1, 1: 2, 2: 3, 3: 4, 4: 5})

	if err := (&Builder{Debug: true}).Build(fc, h); err != nil {
		t.Fatalf("Build: %v", err)
	}

	want := []float64{1, 3, 6, 10, 15}
	for i, w := range want {
		if got := h.Bins[i].SumResidual[0]; got != w {
			t.Fatalf("bin %d = %v, want %v", i, got, w)
		}
	}
}

func TestBuildFastTotals2DMatchesClassicSAT(t *testing.T) {
	fc, err := NewFeatureCombination(
		Feature{StateCount: 3, FeatureIndex: 0},
		Feature{StateCount: 3, FeatureIndex: 1},
	)
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}

	raw := [3][3]float64{
		{1, 2, 3},
		{4, 5, 6},
		{7, 8, 9},
	}
	values := map[uint64]float64{}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			values[uint64(x)+uint64(y)*3] = raw[y][x]
		}
	}
	h := scatterAll(fc, 1, Regression, values)

	if err := (&Builder{Debug: true}).Build(fc, h); err != nil {
		t.Fatalf("Build: %v", err)
	}

	prefix := [3][3]float64{}
	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			prefix[y][x] = raw[y][x]
			if x > 0 {
				prefix[y][x] += prefix[y][x-1]
			}
			if y > 0 {
				prefix[y][x] += prefix[y-1][x]
			}
			if x > 0 && y > 0 {
				prefix[y][x] -= prefix[y-1][x-1]
			}
		}
	}

	for y := 0; y < 3; y++ {
		for x := 0; x < 3; x++ {
			flat := uint64(x) + uint64(y)*3
			if got := h.Bins[flat].SumResidual[0]; got != prefix[y][x] {
				t.Fatalf("cell (%d,%d) = %v, want %v", x, y, got, prefix[y][x])
			}
		}
	}
}

func TestBuildFastTotals3DSelfValidates(t *testing.T) {
	fc, err := NewFeatureCombination(
		Feature{StateCount: 2, FeatureIndex: 0},
		Feature{StateCount: 2, FeatureIndex: 1},
		Feature{StateCount: 2, FeatureIndex: 2},
	)
	if err != nil {
		t.Fatalf("NewFeatureCombination: %v", err)
	}
	values := map[uint64]float64{}
	for i := uint64(0); i < 8; i++ {
		values[i] = float64(i + 1)
	}
	h := scatterAll(fc, 1, Regression, values)

	if err := (&Builder{Debug: true}).Build(fc, h); err != nil {
		t.Fatalf("Build: %v", err)
	}
}
