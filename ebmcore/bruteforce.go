package ebmcore

// This file is the debug-only slow-reference validator: an implementation
// must be able to check its fast-path totals against an obviously-correct
// reference. It is grounded on the cumulative-sum helpers of a legacy
// single-axis boosting package that used straightforward nested loops over
// small, explicit dimensionalities rather than a tensor library; here the
// same "just loop over it" style is generalized to an arbitrary hyper-box
// over D axes, since its only job is to be obviously correct, not fast.

// multiIndexFromFlat decomposes a flat tensor index into its per-axis
// coordinates, axis 0 fastest, matching the row-major layout used
// everywhere else in this package.
func multiIndexFromFlat(fc *FeatureCombination, flat uint64) []int {
	d := fc.Dimensions()
	idx := make([]int, d)
	counts := fc.StateCounts()
	for k := 0; k < d; k++ {
		idx[k] = int(flat % uint64(counts[k]))
		flat /= uint64(counts[k])
	}
	return idx
}

// bruteForceBoxSum adds every reference bin whose multi-index lies within
// [lower_k, upper_k] on every axis k into an accumulator, by literal
// enumeration. Used only under Debug.
func bruteForceBoxSum(fc *FeatureCombination, reference []StatBin, lower, upper []int, l int, mode Mode) StatBin {
	acc := NewStatBin(l, mode)
	counts := fc.StateCounts()
	d := fc.Dimensions()

	idx := make([]int, d)
	copy(idx, lower)

	for {
		flat := uint64(0)
		mult := uint64(1)
		for k := 0; k < d; k++ {
			flat += mult * uint64(idx[k])
			mult *= uint64(counts[k])
		}
		acc.Add(&reference[flat])

		k := 0
		for ; k < d; k++ {
			idx[k]++
			if idx[k] <= upper[k] {
				break
			}
			idx[k] = lower[k]
		}
		if k == d {
			break
		}
	}
	return acc
}

// validateSummedArea checks, for every cell, that the fast-path result
// equals the brute-force prefix sum over [0,i0]x...x[0,i_{D-1}] of the
// pre-construction histogram.
func validateSummedArea(fc *FeatureCombination, h *Histogram, reference []StatBin) error {
	lower := make([]int, fc.Dimensions())
	for c := uint64(0); c < h.Volume; c++ {
		upper := multiIndexFromFlat(fc, c)
		expected := bruteForceBoxSum(fc, reference, lower, upper, h.L, h.Mode)
		if !statBinsEqual(&expected, &h.Bins[c]) {
			return &InvariantViolation{Detail: "summed-area cell disagrees with brute-force reference"}
		}
	}
	return nil
}

// statBinsEqual compares two bins for exact equality (used only by debug
// validators; production code never compares bins for equality).
func statBinsEqual(a, b *StatBin) bool {
	if a.Count != b.Count {
		return false
	}
	for i := range a.SumResidual {
		if a.SumResidual[i] != b.SumResidual[i] {
			return false
		}
	}
	for i := range a.SumHessian {
		if a.SumHessian[i] != b.SumHessian[i] {
			return false
		}
	}
	return true
}
