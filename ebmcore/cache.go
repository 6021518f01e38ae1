package ebmcore

// ThreadCache is a per-thread scratch allocator for the buffers a single
// feature combination's split search needs (a Histogram and a
// SegmentedRegion). An Acquire call resets and returns the cached buffer
// when it already matches the requested shape, and otherwise replaces it
// with a freshly allocated one; callers in different goroutines must use
// different ThreadCache instances.
type ThreadCache struct {
	histogram *Histogram
	region    *SegmentedRegion
}

// NewThreadCache returns an empty cache; its buffers are allocated lazily
// by the first Acquire call.
func NewThreadCache() *ThreadCache {
	return &ThreadCache{}
}

// AcquireHistogram returns a Histogram sized for fc and mode, reallocating
// unless the cached one has exactly fc's tensor volume, l and mode.
func (c *ThreadCache) AcquireHistogram(fc *FeatureCombination, l int, mode Mode) (*Histogram, error) {
	if c.histogram != nil && c.histogram.Volume == fc.TensorVolume && c.histogram.L == l && c.histogram.Mode == mode {
		c.histogram.Reset()
		return c.histogram, nil
	}
	h, err := NewHistogram(fc, l, mode)
	if err != nil {
		return nil, err
	}
	c.histogram = h
	return h, nil
}

// AcquireSegmentedRegion returns a SegmentedRegion sized for fc's state
// counts and an L-wide output, resetting it to zero divisions.
func (c *ThreadCache) AcquireSegmentedRegion(fc *FeatureCombination, l int) *SegmentedRegion {
	counts := fc.StateCounts()
	if c.region != nil && c.region.D == len(counts) && c.region.L == l && sameStateCounts(c.region.StateCounts, counts) {
		c.region.Reset()
		return c.region
	}
	r := NewSegmentedRegion(counts, l)
	c.region = r
	return r
}

func sameStateCounts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
