package ebmcore

// PairSplit is the result of an exhaustive best-split search over a
// 2-feature combination's summed-area tensor.
type PairSplit struct {
	OuterAxis int
	COut      int
	CInLow    int
	CInHigh   int
	Gain      float64
	LowLow    StatBin
	LowHigh   StatBin
	HighLow   StatBin
	HighHigh  StatBin
}

// FindBestPairSplit enumerates both outer-axis choices, every outer cut, and
// for each the best inner cut on the low and high slabs independently.
// fc must have exactly two features; h must already hold a summed-area
// tensor built by BuildFastTotals for fc. It returns Unsupported for any
// other dimensionality.
func FindBestPairSplit(fc *FeatureCombination, h *Histogram) (*PairSplit, error) {
	if fc.Dimensions() != 2 {
		return nil, &Unsupported{Reason: "pair split-search only supports D == 2"}
	}

	counts := fc.StateCounts()
	var best *PairSplit

	for _, outerAxis := range [2]int{0, 1} {
		innerAxis := 1 - outerAxis
		sOuter := counts[outerAxis]
		sInner := counts[innerAxis]

		outer := NewCutRange(sOuter - 1)
		for outer.HasNext() {
			cOut := outer.GetNext()

			lowGain, lowCIn, lowLL, lowLH := bestInnerCut(fc, h, outerAxis, innerAxis, cOut, sInner, false)
			highGain, highCIn, highHL, highHH := bestInnerCut(fc, h, outerAxis, innerAxis, cOut, sInner, true)

			score := lowGain + highGain
			if best == nil || score > best.Gain {
				best = &PairSplit{
					OuterAxis: outerAxis,
					COut:      cOut,
					CInLow:    lowCIn,
					CInHigh:   highCIn,
					Gain:      score,
					LowLow:    lowLL,
					LowHigh:   lowLH,
					HighLow:   highHL,
					HighHigh:  highHH,
				}
			}
		}
	}

	return best, nil
}

// bestInnerCut sweeps every inner-axis cut for one outer slab (the low
// slab [0,cOut] when high is false, the high slab [cOut+1,sOuter-1] when
// true) and returns the best inner cut's combined two-piece gain, the cut
// itself, and the two quadrant totals it produced.
func bestInnerCut(fc *FeatureCombination, h *Histogram, outerAxis, innerAxis, cOut, sInner int, high bool) (float64, int, StatBin, StatBin) {
	anchor := make([]int, 2)
	var outerMask uint64
	if high {
		outerMask = uint64(1) << uint(outerAxis)
	}
	anchor[outerAxis] = cOut

	var bestGain float64
	var bestCIn int
	var bestLow, bestHigh StatBin
	first := true

	inner := NewCutRange(sInner - 1)
	for inner.HasNext() {
		cIn := inner.GetNext()
		anchor[innerAxis] = cIn

		lowMask := outerMask
		highMask := outerMask | (uint64(1) << uint(innerAxis))

		lowTotal, _ := RegionTotals(fc, h, anchor, lowMask)
		highTotal, _ := RegionTotals(fc, h, anchor, highMask)

		gain := lowTotal.NodeGain() + highTotal.NodeGain()
		if first || gain > bestGain {
			first = false
			bestGain = gain
			bestCIn = cIn
			bestLow = lowTotal
			bestHigh = highTotal
		}
	}

	return bestGain, bestCIn, bestLow, bestHigh
}

// WriteSegmentedRegion writes split into out as a piecewise-constant tree
// with one division on the outer axis and one or two on the inner axis: if
// CInLow == CInHigh the inner axis collapses to a single division and a 2x2
// grid; otherwise it emits both divisions sorted ascending and fills the
// resulting 2x3 grid so that each outer row only varies across its own real
// cut point.
func (split *PairSplit) WriteSegmentedRegion(out *SegmentedRegion) error {
	outerAxis := split.OuterAxis
	innerAxis := 1 - outerAxis

	if err := out.SetCountDivisions(outerAxis, 1); err != nil {
		return err
	}
	out.Divisions[outerAxis][0] = split.COut

	var innerDivisions []int
	if split.CInLow == split.CInHigh {
		innerDivisions = []int{split.CInLow}
	} else if split.CInLow < split.CInHigh {
		innerDivisions = []int{split.CInLow, split.CInHigh}
	} else {
		innerDivisions = []int{split.CInHigh, split.CInLow}
	}
	if err := out.SetCountDivisions(innerAxis, len(innerDivisions)); err != nil {
		return err
	}
	copy(out.Divisions[innerAxis], innerDivisions)

	outerSegCount := 2
	innerSegCount := len(innerDivisions) + 1
	total := outerSegCount * innerSegCount
	if err := out.EnsureValueCapacity(total * out.L); err != nil {
		return err
	}
	out.Values = out.Values[:total*out.L]

	sInner := out.StateCounts[innerAxis]

	segCounts := make([]int, out.D)
	segCounts[outerAxis] = outerSegCount
	segCounts[innerAxis] = innerSegCount
	strides := stridesFor(segCounts)

	idx := make([]int, out.D)
	leaf := make([]float64, out.L)
	for oSeg := 0; oSeg < outerSegCount; oSeg++ {
		for iSeg := 0; iSeg < innerSegCount; iSeg++ {
			rep := segmentRepresentative(innerDivisions, iSeg, sInner)

			var bin *StatBin
			if oSeg == 0 {
				if segmentIndexForState([]int{split.CInLow}, rep) == 0 {
					bin = &split.LowLow
				} else {
					bin = &split.LowHigh
				}
			} else {
				if segmentIndexForState([]int{split.CInHigh}, rep) == 0 {
					bin = &split.HighLow
				} else {
					bin = &split.HighHigh
				}
			}
			bin.LeafPrediction(leaf)

			idx[outerAxis] = oSeg
			idx[innerAxis] = iSeg
			flat := 0
			for k := 0; k < out.D; k++ {
				flat += idx[k] * strides[k]
			}
			copy(out.Values[flat*out.L:flat*out.L+out.L], leaf)
		}
	}
	out.Expanded = false
	return nil
}
