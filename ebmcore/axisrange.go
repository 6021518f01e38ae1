package ebmcore

// CutRange iterates candidate cut points on one axis, [0, end) with a step
// of 1, in the same ascending order split-search and the interaction
// scorer walk outer and inner cuts in.
type CutRange struct {
	end, pos int
}

// NewCutRange builds an iterator over the half-open interval [0, end).
func NewCutRange(end int) *CutRange {
	return &CutRange{end: end, pos: 0}
}

// HasNext reports whether more cut points remain.
func (r *CutRange) HasNext() bool {
	return r.pos < r.end
}

// GetNext returns the next cut point and advances the iterator.
func (r *CutRange) GetNext() int {
	val := r.pos
	r.pos++
	return val
}
