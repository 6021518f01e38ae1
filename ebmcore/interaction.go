package ebmcore

// ScoreInteraction sweeps every cut pair (c0, c1) in [0, s0-2] x [0, s1-2]
// and returns the maximum, over that grid, of the sum of the four quadrant
// node gains RegionTotals carves out of fc's summed-area tensor at that
// anchor (masks 0/1/2/3 select low/low, high/low, low/high, high/high on
// axis 0/axis 1). Unlike FindBestPairSplit, which searches the inner cut
// independently per outer slab, both cuts here are pinned to the same
// anchor: this is the single-anchor four-quadrant figure a pair's
// interaction strength is scored by, not the richer piecewise-constant tree
// a full pair split is allowed to produce.
func ScoreInteraction(fc *FeatureCombination, h *Histogram) (float64, error) {
	if fc.Dimensions() != 2 {
		return 0, &Unsupported{Reason: "interaction scoring only supports D == 2"}
	}

	counts := fc.StateCounts()
	anchor := make([]int, 2)

	first := true
	var best float64

	outer := NewCutRange(counts[0] - 1)
	for outer.HasNext() {
		anchor[0] = outer.GetNext()

		inner := NewCutRange(counts[1] - 1)
		for inner.HasNext() {
			anchor[1] = inner.GetNext()

			var score float64
			for mask := uint64(0); mask < 4; mask++ {
				total, err := RegionTotals(fc, h, anchor, mask)
				if err != nil {
					return 0, err
				}
				score += total.NodeGain()
			}

			if first || score > best {
				first = false
				best = score
			}
		}
	}

	return best, nil
}
