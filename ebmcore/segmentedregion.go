package ebmcore

// SegmentedRegion is a piecewise-constant N-D function over integer state
// indices, stored as a sorted strictly-increasing division list per axis
// plus a dense value grid. Divisions on axis k always lie in
// [0, StateCounts[k]-1); K divisions on an axis define K+1 segments.
//
// The value grid is row-major, cell index fastest-varying on axis 0, with
// the L output values for one cell contiguous: Values[cellFlat*L+l].
type SegmentedRegion struct {
	D           int
	L           int
	StateCounts []int
	Divisions   [][]int
	Values      []float64
	Expanded    bool
}

// initialDivisionCapacity and initialValueCapacity mirror the starting
// allocation sizes of the original template's realloc-based growth, chosen
// small since most segmented regions in this engine hold only one or two
// divisions per axis (a pair split has at most two).
const (
	initialDivisionCapacity = 2
	initialValueCapacity    = 4
)

// growthFactor is the geometric growth multiplier (x1.5) applied whenever a
// division or value array needs more room than it currently has, amortizing
// the cost of repeated grows the same way the original realloc-based growth
// does.
func growthFactor(n int) int {
	grown := n + n/2
	if grown <= n {
		grown = n + 1
	}
	return grown
}

// NewSegmentedRegion allocates an empty instance with one segment per axis
// (zero divisions everywhere) and L zero values "allocate".
func NewSegmentedRegion(stateCounts []int, l int) *SegmentedRegion {
	d := len(stateCounts)
	valueCap := l
	if valueCap < initialValueCapacity {
		valueCap = initialValueCapacity
	}
	r := &SegmentedRegion{
		D:           d,
		L:           l,
		StateCounts: append([]int(nil), stateCounts...),
		Divisions:   make([][]int, d),
		Values:      make([]float64, l, valueCap),
	}
	for k := range r.Divisions {
		r.Divisions[k] = make([]int, 0, initialDivisionCapacity)
	}
	return r
}

// Reset reverts every axis to zero divisions, shrinks the values to L
// zeros, and clears the expanded flag.
func (r *SegmentedRegion) Reset() {
	for k := range r.Divisions {
		r.Divisions[k] = r.Divisions[k][:0]
	}
	if cap(r.Values) < r.L {
		r.Values = make([]float64, r.L)
	} else {
		r.Values = r.Values[:r.L]
		for i := range r.Values {
			r.Values[i] = 0
		}
	}
	r.Expanded = false
}

// SetCountDivisions grows the division array on axis to length k, never
// shrinking below the axis's current occupancy, preserving existing
// division values. It does not touch the value grid; callers own writing
// both the divisions and the corresponding cells afterward.
func (r *SegmentedRegion) SetCountDivisions(axis, k int) error {
	cur := r.Divisions[axis]
	if k <= len(cur) {
		return nil
	}
	if k > cap(cur) {
		newCap := growthFactor(len(cur))
		if newCap < k {
			newCap = k
		}
		grown := make([]int, len(cur), newCap)
		copy(grown, cur)
		cur = grown
	}
	r.Divisions[axis] = cur[:k]
	return nil
}

// EnsureValueCapacity grows the value buffer to at least n entries using the
// same geometric (x1.5) growth as SetCountDivisions.
func (r *SegmentedRegion) EnsureValueCapacity(n int) error {
	if n <= cap(r.Values) {
		if n > len(r.Values) {
			r.Values = r.Values[:n]
		}
		return nil
	}
	newCap := growthFactor(cap(r.Values))
	if newCap < n {
		newCap = n
	}
	grown := make([]float64, len(r.Values), newCap)
	copy(grown, r.Values)
	r.Values = grown[:n]
	return nil
}

// segmentCounts returns, for each axis, the number of segments (divisions+1)
// the current division lists imply.
func (r *SegmentedRegion) segmentCounts() []int {
	counts := make([]int, r.D)
	for k, divs := range r.Divisions {
		counts[k] = len(divs) + 1
	}
	return counts
}

// stridesFor returns axis-0-fastest mixed-radix strides for the given
// per-axis counts.
func stridesFor(counts []int) []int {
	strides := make([]int, len(counts))
	mult := 1
	for k, c := range counts {
		strides[k] = mult
		mult *= c
	}
	return strides
}

func productOf(counts []int) int {
	p := 1
	for _, c := range counts {
		p *= c
	}
	return p
}

// Copy deep-overwrites r with a byte-equivalent replacement of src.
func (r *SegmentedRegion) Copy(src *SegmentedRegion) error {
	r.D = src.D
	r.L = src.L
	r.StateCounts = append(r.StateCounts[:0], src.StateCounts...)
	if len(r.Divisions) != src.D {
		r.Divisions = make([][]int, src.D)
	}
	for k, divs := range src.Divisions {
		if err := r.SetCountDivisions(k, len(divs)); err != nil {
			return err
		}
		r.Divisions[k] = r.Divisions[k][:len(divs)]
		copy(r.Divisions[k], divs)
	}
	if err := r.EnsureValueCapacity(len(src.Values)); err != nil {
		return err
	}
	r.Values = r.Values[:len(src.Values)]
	copy(r.Values, src.Values)
	r.Expanded = src.Expanded
	return nil
}

// Multiply scales every value in the grid by scalar.
func (r *SegmentedRegion) Multiply(scalar float64) {
	for i := range r.Values {
		r.Values[i] *= scalar
	}
}

// Equals reports whether r and other hold identical divisions and values
// (used by tests; not part of the production call surface).
func (r *SegmentedRegion) Equals(other *SegmentedRegion) bool {
	if r.D != other.D || r.L != other.L {
		return false
	}
	for k := range r.Divisions {
		if len(r.Divisions[k]) != len(other.Divisions[k]) {
			return false
		}
		for i, v := range r.Divisions[k] {
			if other.Divisions[k][i] != v {
				return false
			}
		}
	}
	if len(r.Values) != len(other.Values) {
		return false
	}
	for i, v := range r.Values {
		if other.Values[i] != v {
			return false
		}
	}
	return true
}

// segmentIndexForState returns the index of the segment that state falls
// into given a sorted division list: the count of divisions strictly below
// state. Divisions [c] partition states into [0,c] (segment 0) and
// [c+1,...] (segment 1), so state <= c always lands in segment 0.
func segmentIndexForState(divisions []int, state int) int {
	count := 0
	for _, d := range divisions {
		if d < state {
			count++
		} else {
			break
		}
	}
	return count
}

// segmentRepresentative returns a state value guaranteed to fall in segment
// idx of an axis with the given divisions and state count: the last state
// the segment covers.
func segmentRepresentative(divisions []int, idx int, stateCount int) int {
	if idx < len(divisions) {
		return divisions[idx]
	}
	return stateCount - 1
}

// Expand extends every axis's divisions to the full identity sequence
// [0,1,...,StateCounts[k]-2] (one segment per original state) and rewrites
// the value grid so each expanded cell holds the value of whichever
// pre-expansion segment contained it.
//
// The rewrite walks new cells from the highest flat index down to zero.
// This is load-before-store correctness, not an optimization: the grown
// value buffer keeps the pre-expansion grid in its low-index prefix (the
// same region EnsureValueCapacity extends), and because a new cell's source
// cell never has a higher flat index than the new cell itself, a forward
// rewrite would overwrite source cells the later iterations still need to
// read.
func (r *SegmentedRegion) Expand() error {
	if r.Expanded {
		return nil
	}

	oldDivisions := make([][]int, r.D)
	for k := range r.Divisions {
		oldDivisions[k] = append([]int(nil), r.Divisions[k]...)
	}
	oldSegCounts := r.segmentCounts()
	oldStrides := stridesFor(oldSegCounts)

	newSegCounts := make([]int, r.D)
	for k := range newSegCounts {
		newSegCounts[k] = r.StateCounts[k]
	}
	newStrides := stridesFor(newSegCounts)
	newCellCount := productOf(newSegCounts)

	// Precompute, per axis, the mapping from a new segment (== state, since
	// the new grid is fully expanded) to the old segment it was part of.
	oldSegForNewState := make([][]int, r.D)
	for k := 0; k < r.D; k++ {
		m := make([]int, newSegCounts[k])
		for s := 0; s < newSegCounts[k]; s++ {
			m[s] = segmentIndexForState(oldDivisions[k], s)
		}
		oldSegForNewState[k] = m
	}

	if err := r.EnsureValueCapacity(newCellCount * r.L); err != nil {
		return err
	}
	r.Values = r.Values[:newCellCount*r.L]

	newIdx := make([]int, r.D)
	for newFlat := newCellCount - 1; newFlat >= 0; newFlat-- {
		rem := newFlat
		for k := r.D - 1; k >= 0; k-- {
			newIdx[k] = rem / newStrides[k]
			rem %= newStrides[k]
		}

		oldFlat := 0
		for k := 0; k < r.D; k++ {
			oldFlat += oldSegForNewState[k][newIdx[k]] * oldStrides[k]
		}

		copy(r.Values[newFlat*r.L:newFlat*r.L+r.L], r.Values[oldFlat*r.L:oldFlat*r.L+r.L])
	}

	for k := 0; k < r.D; k++ {
		identity := make([]int, r.StateCounts[k]-1)
		for i := range identity {
			identity[i] = i
		}
		if err := r.SetCountDivisions(k, len(identity)); err != nil {
			return err
		}
		copy(r.Divisions[k], identity)
	}
	r.Expanded = true
	return nil
}

// mergeDivisionsUnion returns the sorted, duplicate-collapsed union of two
// strictly-ascending division lists "add" division-union rule.
func mergeDivisionsUnion(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i] < b[j]:
			out = append(out, a[i])
			i++
		case a[i] > b[j]:
			out = append(out, b[j])
			j++
		default:
			out = append(out, a[i])
			i++
			j++
		}
	}
	out = append(out, a[i:]...)
	out = append(out, b[j:]...)
	return out
}

// Add computes r += other, re-gridding both onto the union of their per-axis
// division sets. r and other must share D and L.
//
// The value grid is rewritten in reverse linear order for the same
// load-before-store reason as Expand: r's own pre-add values occupy the
// low-index prefix of its (possibly just-grown) buffer, and the union grid
// is never smaller, so cells must be filled from the top down. other's
// buffer is a separate, untouched read-only source throughout.
func (r *SegmentedRegion) Add(other *SegmentedRegion) error {
	if r.D != other.D || r.L != other.L {
		return &ResourceError{Op: "SegmentedRegion.Add: shape mismatch", Size: uint64(other.D)}
	}

	oldDivisionsR := make([][]int, r.D)
	for k := range r.Divisions {
		oldDivisionsR[k] = append([]int(nil), r.Divisions[k]...)
	}
	oldSegCountsR := r.segmentCounts()
	oldStridesR := stridesFor(oldSegCountsR)
	oldSegCountsOther := other.segmentCounts()
	oldStridesOther := stridesFor(oldSegCountsOther)

	unionDivisions := make([][]int, r.D)
	newSegCounts := make([]int, r.D)
	for k := 0; k < r.D; k++ {
		unionDivisions[k] = mergeDivisionsUnion(oldDivisionsR[k], other.Divisions[k])
		newSegCounts[k] = len(unionDivisions[k]) + 1
	}
	newStrides := stridesFor(newSegCounts)
	newCellCount := productOf(newSegCounts)

	rSegForUnion := make([][]int, r.D)
	otherSegForUnion := make([][]int, r.D)
	for k := 0; k < r.D; k++ {
		rm := make([]int, newSegCounts[k])
		om := make([]int, newSegCounts[k])
		for u := 0; u < newSegCounts[k]; u++ {
			rep := segmentRepresentative(unionDivisions[k], u, r.StateCounts[k])
			rm[u] = segmentIndexForState(oldDivisionsR[k], rep)
			om[u] = segmentIndexForState(other.Divisions[k], rep)
		}
		rSegForUnion[k] = rm
		otherSegForUnion[k] = om
	}

	if err := r.EnsureValueCapacity(newCellCount * r.L); err != nil {
		return err
	}
	r.Values = r.Values[:newCellCount*r.L]

	newIdx := make([]int, r.D)
	for newFlat := newCellCount - 1; newFlat >= 0; newFlat-- {
		rem := newFlat
		for k := r.D - 1; k >= 0; k-- {
			newIdx[k] = rem / newStrides[k]
			rem %= newStrides[k]
		}

		rFlat, otherFlat := 0, 0
		for k := 0; k < r.D; k++ {
			rFlat += rSegForUnion[k][newIdx[k]] * oldStridesR[k]
			otherFlat += otherSegForUnion[k][newIdx[k]] * oldStridesOther[k]
		}

		for l := 0; l < r.L; l++ {
			r.Values[newFlat*r.L+l] = r.Values[rFlat*r.L+l] + other.Values[otherFlat*r.L+l]
		}
	}

	for k := 0; k < r.D; k++ {
		if err := r.SetCountDivisions(k, len(unionDivisions[k])); err != nil {
			return err
		}
		copy(r.Divisions[k], unionDivisions[k])
	}
	r.Expanded = r.Expanded && other.Expanded
	return nil
}
