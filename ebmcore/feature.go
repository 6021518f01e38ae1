package ebmcore

// Feature is the minimal metadata contract this package needs from the
// feature-combination constructor, which otherwise lives outside this core.
// StateCount is the number of discrete categories the feature takes;
// FeatureIndex is its position in the orchestrator's row-major per-feature
// input arrays.
type Feature struct {
	StateCount   int
	FeatureIndex int
}

// wordBits is the bit width of the packed-input machine word this package
// packs tensor indices into.
const wordBits = 64

// wordSizeBytes is the byte size of one packed-input machine word, used by
// the word_size . data_words resource check in PackInput.
const wordSizeBytes = wordBits / 8

// maxDimensions is the hard D <= word_bits-1 resource limit: one bit per
// axis is reserved so direction masks and subset-enumeration bitmasks over
// D-1 axes always fit comfortably in a uint.
const maxDimensions = wordBits - 1

// FeatureCombination is an ordered list of 1..maxDimensions distinct features
// treated as one N-D categorical variable, together with the bit-packing
// layout derived from it.
type FeatureCombination struct {
	Features      []Feature
	TensorVolume  uint64
	ItemsPerWord  int
	BitsPerItem   int
	AxisStride    []uint64 // AxisStride[k] = product of StateCount[j] for j<k
}

// NewFeatureCombination validates and derives the packing layout for a list
// of features treated as one N-D categorical variable. It fails with
// ResourceError if the combination's dimensionality or tensor volume cannot
// be represented safely.
func NewFeatureCombination(features ...Feature) (*FeatureCombination, error) {
	d := len(features)
	if d < 1 || d > maxDimensions {
		return nil, &ResourceError{Op: "NewFeatureCombination: dimension count", Size: uint64(d)}
	}

	strides := make([]uint64, d)
	volume := uint64(1)
	for k, f := range features {
		if f.StateCount < 2 {
			return nil, &ResourceError{Op: "NewFeatureCombination: state count", Size: uint64(f.StateCount)}
		}
		strides[k] = volume
		var err error
		volume, err = SafeMultiply("NewFeatureCombination: tensor volume", volume, uint64(f.StateCount))
		if err != nil {
			return nil, err
		}
	}

	// cBitsPerItemMax in the source: the number of bits needed to represent
	// any single tensor index up to volume-1.
	bitsPerItem := bitLength(volume - 1)
	if bitsPerItem == 0 {
		bitsPerItem = 1
	}
	itemsPerWord := wordBits / bitsPerItem
	if itemsPerWord < 1 {
		itemsPerWord = 1
	}

	return &FeatureCombination{
		Features:     features,
		TensorVolume: volume,
		ItemsPerWord: itemsPerWord,
		BitsPerItem:  bitsPerItem,
		AxisStride:   strides,
	}, nil
}

// Dimensions reports D, the number of features in the combination.
func (fc *FeatureCombination) Dimensions() int {
	return len(fc.Features)
}

// StateCounts returns the per-axis state counts in axis order.
func (fc *FeatureCombination) StateCounts() []int {
	counts := make([]int, len(fc.Features))
	for i, f := range fc.Features {
		counts[i] = f.StateCount
	}
	return counts
}

// bitLength returns the number of bits needed to represent v (0 for v == 0).
func bitLength(v uint64) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}
