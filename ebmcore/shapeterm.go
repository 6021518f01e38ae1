package ebmcore

// ShapeTerm is one additive component of the model: a feature combination
// (a single feature's bins, or a 2-D pair) together with the fully expanded
// piecewise-constant contribution it currently adds to the score. Main
// effects are always at full bin resolution; pairs keep whatever coarse
// split structure the pair search settled on before being expanded for
// O(1) lookup.
type ShapeTerm struct {
	Combination *FeatureCombination
	Region      *SegmentedRegion
}

// NewShapeTerm allocates an empty term for fc with an all-zero contribution,
// already expanded to one value per state.
func NewShapeTerm(fc *FeatureCombination, l int) *ShapeTerm {
	region := NewSegmentedRegion(fc.StateCounts(), l)
	// Expanding a freshly allocated region only grows its slices and never
	// reports an error.
	_ = region.Expand()
	return &ShapeTerm{Combination: fc, Region: region}
}

// Contribute adds this term's per-case contribution into out, a
// caseCount x L row-major buffer, for every case described by view.
// Region is expanded first if it is not already, so a case's tensor index
// addresses its leaf value directly.
func (t *ShapeTerm) Contribute(view *PackedInputView, out []float64, l int) error {
	if !t.Region.Expanded {
		if err := t.Region.Expand(); err != nil {
			return err
		}
	}
	for i := 0; i < view.CaseCount; i++ {
		idx := view.TensorIndex(i)
		src := t.Region.Values[idx*uint64(l) : idx*uint64(l)+uint64(l)]
		dst := out[i*l : i*l+l]
		for j := range dst {
			dst[j] += src[j]
		}
	}
	return nil
}
