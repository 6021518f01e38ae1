package ebmcore

// Builder converts a dense histogram in place into a summed-area ("fast
// totals") tensor. Debug, when true, keeps a brute-force copy of
// the original histogram and validates every cell against it after
// construction; it never runs by default, since the production path
// is infallible and the validation itself is O(volume^2).
type Builder struct {
	Debug bool
}

// BuildFastTotals implements Algorithm A: a single row-major sweep that
// maintains one rolling "previous" bin (the histogram's trailing scratch
// cell) holding the axis-0 row prefix, combined with an inclusion-exclusion
// correction over the remaining axes 1..D-1 using cells that the same sweep
// already finalized earlier in iteration order.
//
// The combinatorial correction's sign is derived, not copied from prose: for
// a subset S of the non-leading axes, summing a (D-1)-axis prefix table by
// injecting the axis-0 row prefix as the new term at each step forces sign
// (-1)^(|S|+1) on the term reached by decrementing every axis in S — i.e.
// add when |S| is odd, subtract when |S| is even. This is the same sign rule
// the classic 2D summed-area recurrence SAT(x,y) = I(x,y) + SAT(x-1,y) +
// SAT(x,y-1) - SAT(x-1,y-1) uses for its single cross term.
func BuildFastTotals(fc *FeatureCombination, h *Histogram) error {
	return (&Builder{}).Build(fc, h)
}

// Build runs Algorithm A against h, optionally validating the result against
// a brute-force reference when b.Debug is set.
func (b *Builder) Build(fc *FeatureCombination, h *Histogram) error {
	var reference []StatBin
	if b.Debug {
		reference = make([]StatBin, h.Volume)
		for i := uint64(0); i < h.Volume; i++ {
			reference[i] = NewStatBin(h.L, h.Mode)
			reference[i].Copy(&h.Bins[i])
		}
	}

	d := fc.Dimensions()
	counts := fc.StateCounts()
	strides := fc.AxisStride

	idx := make([]int, d)
	scratch := h.Scratch()
	scratch.Zero()

	nonLeadingMask := uint64(1)<<uint(d-1) - 1 // bits 0..d-2 represent axes 1..d-1

	for c := uint64(0); c < h.Volume; c++ {
		if idx[0] == 0 {
			scratch.Zero()
		}

		cell := &h.Bins[c]
		cell.Add(scratch)
		scratch.Copy(cell)

		for mask := uint64(1); mask <= nonLeadingMask; mask++ {
			offset := c
			popcount := 0
			skip := false
			for j := 1; j < d; j++ {
				bit := uint64(1) << uint(j-1)
				if mask&bit == 0 {
					continue
				}
				if idx[j] == 0 {
					skip = true
					break
				}
				offset -= strides[j]
				popcount++
			}
			if skip {
				continue
			}
			if popcount%2 == 1 {
				cell.Add(&h.Bins[offset])
			} else {
				cell.Subtract(&h.Bins[offset])
			}
		}

		for j := 0; j < d; j++ {
			idx[j]++
			if idx[j] < counts[j] {
				break
			}
			idx[j] = 0
		}
	}

	if b.Debug {
		violation := validateSummedArea(fc, h, reference)
		if violation != nil {
			return violation
		}
	}
	return nil
}
