package ebmcore

import "gorgonia.org/tensor"

// ExportValueGrid exports a term's fully expanded per-state value grid as a
// *tensor.Dense shaped exactly like its feature combination's state counts,
// for callers that want to feed a shape function into downstream tensor
// tooling (plotting, further numeric transforms) rather than reading
// SegmentedRegion.Values directly.
func ExportValueGrid(t *ShapeTerm) (*tensor.Dense, error) {
	if !t.Region.Expanded {
		if err := t.Region.Expand(); err != nil {
			return nil, err
		}
	}
	shape := t.Region.StateCounts
	if t.Region.L > 1 {
		shape = append(append([]int(nil), shape...), t.Region.L)
	}
	return tensor.New(tensor.WithShape(shape...), tensor.WithBacking(append([]float64(nil), t.Region.Values...))), nil
}

// ExportInteractionSurface exports the dense gain landscape of a 2-D pair
// combination, one cell per (c0, c1) cut pair on axis 0 and axis 1, as a
// *tensor.Dense — the same rawHessian-style outer-product allocation
// pattern used elsewhere in this package, here applied to visualize where
// the strongest cuts lie instead of to accumulate curvature. Each cell
// holds the sum of the four quadrant node gains at that anchor, the
// per-anchor score ScoreInteraction maximizes.
func ExportInteractionSurface(fc *FeatureCombination, h *Histogram) (*tensor.Dense, error) {
	if fc.Dimensions() != 2 {
		return nil, &Unsupported{Reason: "interaction surface export only supports D == 2"}
	}
	counts := fc.StateCounts()
	rows, cols := counts[0]-1, counts[1]-1
	if rows < 1 || cols < 1 {
		return nil, &Unsupported{Reason: "interaction surface export needs at least one candidate cut per axis"}
	}

	surface := tensor.New(tensor.WithShape(rows, cols), tensor.Of(tensor.Float64))
	anchor := make([]int, 2)
	for r := 0; r < rows; r++ {
		anchor[0] = r
		for c := 0; c < cols; c++ {
			anchor[1] = c
			var score float64
			for mask := uint64(0); mask < 4; mask++ {
				total, err := RegionTotals(fc, h, anchor, mask)
				if err != nil {
					return nil, err
				}
				score += total.NodeGain()
			}
			if err := surface.SetAt(score, r, c); err != nil {
				return nil, err
			}
		}
	}
	return surface, nil
}
