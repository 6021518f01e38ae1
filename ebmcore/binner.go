package ebmcore

// Histogram is a dense array of tensor_volume+1 statistics bins for one
// feature combination: the final bin is the rolling-previous scratch used by
// the summed-area builder and must be zeroed before every fresh binning
// pass.
type Histogram struct {
	Bins   []StatBin
	Volume uint64
	L      int
	Mode   Mode
}

// statBinByteSize estimates one bin's memory footprint for the
// volume·bin_byte_size resource check: one float64 count plus L float64
// residuals, plus another L float64 hessians in classification mode.
func statBinByteSize(l int, mode Mode) uint64 {
	const float64Bytes = 8
	size := float64Bytes + uint64(l)*float64Bytes
	if mode == Classification {
		size += uint64(l) * float64Bytes
	}
	return size
}

// NewHistogram allocates a zeroed histogram sized for fc's tensor volume, an
// L-wide output vector, and the given mode. It fails with ResourceError if
// (volume+1)·bin_byte_size would not fit a machine size.
func NewHistogram(fc *FeatureCombination, l int, mode Mode) (*Histogram, error) {
	binSize := statBinByteSize(l, mode)
	if _, err := SafeMultiply("NewHistogram: bin count times bin byte size", fc.TensorVolume+1, binSize); err != nil {
		return nil, err
	}
	bins := make([]StatBin, fc.TensorVolume+1)
	for i := range bins {
		bins[i] = NewStatBin(l, mode)
	}
	return &Histogram{Bins: bins, Volume: fc.TensorVolume, L: l, Mode: mode}, nil
}

// Reset zeroes every bin, including the trailing scratch bin, for reuse by a
// fresh binning pass.
func (h *Histogram) Reset() {
	for i := range h.Bins {
		h.Bins[i].Zero()
	}
}

// Scratch returns the trailing rolling-previous bin used by the summed-area
// builder.
func (h *Histogram) Scratch() *StatBin {
	return &h.Bins[h.Volume]
}

// Scatter bins caseCount training cases into h: for case i, unpack its
// tensor index from view, then accumulate weights[i] into count and, per
// output column, weights[i]*residuals[i][l] into sum_residual and (in
// Classification mode) weights[i]*hessians[i][l] into sum_hessian.
//
// residuals and hessians are row-major case x output; hessians is ignored in
// Regression mode. The binary-classification special case (L==1, residual
// representing log-odds) needs no special-case code here: it is simply the
// L==1 instance of the general loop.
func (h *Histogram) Scatter(view *PackedInputView, weights []float64, residuals, hessians [][]float64) {
	for i := 0; i < view.CaseCount; i++ {
		t := view.TensorIndex(i)
		bin := &h.Bins[t]
		w := weights[i]
		bin.Count += w
		row := residuals[i]
		for l := 0; l < h.L; l++ {
			bin.SumResidual[l] += w * row[l]
		}
		if h.Mode == Classification {
			hrow := hessians[i]
			for l := 0; l < h.L; l++ {
				bin.SumHessian[l] += w * hrow[l]
			}
		}
	}
}
