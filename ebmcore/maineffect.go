package ebmcore

// FullResolutionRegion fits a single-axis feature combination at full bin
// resolution: one segment per state, with no split search needed, since a
// main effect's bins are already the model's leaves. fc must have exactly
// one feature. h must already hold a summed-area tensor built by
// BuildFastTotals.
//
// Per-bin statistics are recovered from the prefix-sum tensor as consecutive
// differences: RegionTotals(c) - RegionTotals(c-1) is exactly the raw bin
// at state c, since RegionTotals with mask 0 is a cumulative prefix.
func FullResolutionRegion(fc *FeatureCombination, h *Histogram, out *SegmentedRegion) (totalGain float64, err error) {
	if fc.Dimensions() != 1 {
		return 0, &Unsupported{Reason: "full-resolution fit only supports single-axis combinations"}
	}
	stateCount := fc.StateCounts()[0]

	identity := make([]int, stateCount-1)
	for i := range identity {
		identity[i] = i
	}
	if err := out.SetCountDivisions(0, len(identity)); err != nil {
		return 0, err
	}
	copy(out.Divisions[0], identity)
	if err := out.EnsureValueCapacity(stateCount * out.L); err != nil {
		return 0, err
	}
	out.Values = out.Values[:stateCount*out.L]

	prev := NewStatBin(h.L, h.Mode)
	leaf := make([]float64, out.L)
	for c := 0; c < stateCount; c++ {
		total, err := RegionTotals(fc, h, []int{c}, 0)
		if err != nil {
			return 0, err
		}
		bin := NewStatBin(h.L, h.Mode)
		bin.Copy(&total)
		bin.Subtract(&prev)

		totalGain += bin.NodeGain()
		bin.LeafPrediction(leaf)
		copy(out.Values[c*out.L:c*out.L+out.L], leaf)

		prev = total
	}
	out.Expanded = true
	return totalGain, nil
}
